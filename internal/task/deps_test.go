package task

import (
	"testing"

	"github.com/josephgoksu/smarttask/models"
)

func TestInspectDependencies_Clean(t *testing.T) {
	// A <- B <- C (linear, no cycle)
	tasks := []models.Task{
		{ID: "task-A", Title: "Task A"},
		{ID: "task-B", Title: "Task B", Dependencies: []string{"task-A"}},
		{ID: "task-C", Title: "Task C", Dependencies: []string{"task-B"}},
	}

	report := InspectDependencies(tasks)
	if !report.Empty() {
		t.Errorf("InspectDependencies() reported issues for a clean batch: %+v", report)
	}
	if len(report.Warnings()) != 0 {
		t.Errorf("Warnings() = %v, want none", report.Warnings())
	}
}

func TestInspectDependencies_Cycle(t *testing.T) {
	// A -> C -> B -> A
	tasks := []models.Task{
		{ID: "task-A", Title: "Task A", Dependencies: []string{"task-C"}},
		{ID: "task-B", Title: "Task B", Dependencies: []string{"task-A"}},
		{ID: "task-C", Title: "Task C", Dependencies: []string{"task-B"}},
	}

	report := InspectDependencies(tasks)
	if len(report.Cycle) == 0 {
		t.Fatal("expected a cycle to be reported")
	}
	if report.Cycle[0] != report.Cycle[len(report.Cycle)-1] {
		t.Errorf("cycle should close on its first id, got %v", report.Cycle)
	}
	if len(report.Cycle) != 4 {
		t.Errorf("cycle length = %d, want 4 (%v)", len(report.Cycle), report.Cycle)
	}
}

func TestInspectDependencies_SelfAndUnknown(t *testing.T) {
	tasks := []models.Task{
		{ID: "task-A", Title: "Task A", Dependencies: []string{"task-A", "ghost", "ghost"}},
	}

	report := InspectDependencies(tasks)
	if len(report.SelfRefs) != 1 || report.SelfRefs[0] != "task-A" {
		t.Errorf("SelfRefs = %v, want [task-A]", report.SelfRefs)
	}
	if len(report.Unknown) != 1 || report.Unknown[0].DependencyID != "ghost" {
		t.Errorf("Unknown = %v, want one ghost reference", report.Unknown)
	}
	if len(report.Duplicates) != 1 {
		t.Errorf("Duplicates = %v, want one entry", report.Duplicates)
	}
	if len(report.Cycle) != 0 {
		t.Errorf("self reference must not be reported as a cycle, got %v", report.Cycle)
	}
	if got := len(report.Warnings()); got != 3 {
		t.Errorf("Warnings() returned %d lines, want 3", got)
	}
}
