package policy

import (
	"encoding/json"

	"github.com/josephgoksu/smarttask/internal/task"
	"github.com/josephgoksu/smarttask/models"
)

// BuildInput assembles the policy input for a batch about to be analyzed.
func BuildInput(tasks []models.Task, strategy models.SortingStrategy) *BatchInput {
	in := &BatchInput{
		Tasks:        tasks,
		Strategy:     strategy.OrDefault(),
		Dependencies: task.InspectDependencies(tasks),
	}
	if in.Tasks == nil {
		in.Tasks = []models.Task{}
	}
	in.Summary.Count = len(tasks)
	for _, t := range tasks {
		in.Summary.TotalHours += t.EstimatedHours
	}
	return in
}

// toRegoValue converts v into the plain map/slice form OPA evaluates, so
// JSON tags decide the field names policies see.
func toRegoValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
