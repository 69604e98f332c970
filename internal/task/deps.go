package task

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/smarttask/models"
)

// DependencyRef names a dependency entry of one task.
type DependencyRef struct {
	TaskID       string `json:"task_id"`
	DependencyID string `json:"dependency_id"`
}

// DependencyReport lists dependency oddities in a batch. None of them make
// the batch invalid; the analysis service decides how to treat them.
type DependencyReport struct {
	Unknown    []DependencyRef `json:"unknown,omitempty"`
	SelfRefs   []string        `json:"self_refs,omitempty"`
	Duplicates []DependencyRef `json:"duplicates,omitempty"`
	Cycle      []string        `json:"cycle,omitempty"`
}

// Empty reports whether nothing was found.
func (r DependencyReport) Empty() bool {
	return len(r.Unknown) == 0 && len(r.SelfRefs) == 0 && len(r.Duplicates) == 0 && len(r.Cycle) == 0
}

// Warnings renders the report as human-readable lines.
func (r DependencyReport) Warnings() []string {
	var out []string
	for _, ref := range r.Unknown {
		out = append(out, fmt.Sprintf("task %s depends on %s, which is not in the batch", ref.TaskID, ref.DependencyID))
	}
	for _, id := range r.SelfRefs {
		out = append(out, fmt.Sprintf("task %s depends on itself", id))
	}
	for _, ref := range r.Duplicates {
		out = append(out, fmt.Sprintf("task %s lists dependency %s more than once", ref.TaskID, ref.DependencyID))
	}
	if len(r.Cycle) > 0 {
		out = append(out, fmt.Sprintf("dependency cycle: %s", strings.Join(r.Cycle, " -> ")))
	}
	return out
}

// InspectDependencies reports unknown references, self references, duplicate
// entries and the first cycle found by a depth-first walk.
func InspectDependencies(tasks []models.Task) DependencyReport {
	var report DependencyReport

	taskMap := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		if t.ID != "" {
			taskMap[t.ID] = t
		}
	}

	for _, t := range tasks {
		seen := make(map[string]bool, len(t.Dependencies))
		for _, depID := range t.Dependencies {
			if seen[depID] {
				report.Duplicates = append(report.Duplicates, DependencyRef{TaskID: t.ID, DependencyID: depID})
				continue
			}
			seen[depID] = true
			if depID == t.ID {
				report.SelfRefs = append(report.SelfRefs, t.ID)
				continue
			}
			if _, ok := taskMap[depID]; !ok {
				report.Unknown = append(report.Unknown, DependencyRef{TaskID: t.ID, DependencyID: depID})
			}
		}
	}

	report.Cycle = findCycle(tasks, taskMap)
	return report
}

// findCycle returns the ids along the first cycle of two or more tasks,
// closing back on the starting id. Self references are reported separately.
func findCycle(tasks []models.Task, taskMap map[string]models.Task) []string {
	visited := make(map[string]bool)
	recursionStack := make(map[string]bool)
	var path []string

	var walk func(taskID string) []string
	walk = func(taskID string) []string {
		visited[taskID] = true
		recursionStack[taskID] = true
		path = append(path, taskID)

		t, exists := taskMap[taskID]
		if exists {
			for _, depID := range t.Dependencies {
				if depID == taskID {
					continue
				}
				if _, ok := taskMap[depID]; !ok {
					continue
				}
				if !visited[depID] {
					if cycle := walk(depID); cycle != nil {
						return cycle
					}
				} else if recursionStack[depID] {
					for i, id := range path {
						if id == depID {
							cycle := append([]string{}, path[i:]...)
							return append(cycle, depID)
						}
					}
				}
			}
		}

		recursionStack[taskID] = false
		path = path[:len(path)-1]
		return nil
	}

	for _, t := range tasks {
		if t.ID == "" || visited[t.ID] {
			continue
		}
		if cycle := walk(t.ID); cycle != nil {
			return cycle
		}
	}
	return nil
}
