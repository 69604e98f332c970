// Package policy evaluates local Rego policies against a task batch before
// it is sent for analysis. Evaluation is fully local.
package policy

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/josephgoksu/smarttask/internal/task"
	"github.com/josephgoksu/smarttask/models"
)

// Decision is the outcome of evaluating the loaded policies against one batch.
type Decision struct {
	DecisionID  string    `json:"decisionId"`
	PolicyPath  string    `json:"policyPath"`           // Rego package path (e.g., "smarttask.policy")
	Result      string    `json:"result"`               // "allow" or "deny"
	Violations  []string  `json:"violations,omitempty"` // deny messages
	Warnings    []string  `json:"warnings,omitempty"`   // warn messages, never blocking
	Input       any       `json:"input"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
}

// Result values.
const (
	ResultAllow = "allow"
	ResultDeny  = "deny"
)

// IsAllowed returns true if no deny rule fired.
func (d *Decision) IsAllowed() bool {
	return d.Result == ResultAllow
}

// IsDenied returns true if at least one deny rule fired.
func (d *Decision) IsDenied() bool {
	return d.Result == ResultDeny
}

// InputJSON returns the evaluated input as JSON, for debug output.
func (d *Decision) InputJSON() string {
	if d.Input == nil {
		return "{}"
	}
	b, err := json.Marshal(d.Input)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ViolationError blocks a submission denied by policy.
type ViolationError struct {
	DecisionID string
	Violations []string
}

func (e *ViolationError) Error() string {
	if len(e.Violations) == 1 {
		return "blocked by policy: " + e.Violations[0]
	}
	return fmt.Sprintf("blocked by policy: %s", strings.Join(e.Violations, "; "))
}

// BatchInput is what Rego policies receive as `input`.
//
//	{
//	  "tasks": [{ "id": "...", "title": "...", "due_date": "...", ... }],
//	  "strategy": "smart_balance",
//	  "summary": { "count": 3, "total_hours": 7.5 },
//	  "dependencies": { "unknown": [...], "self_refs": [...], "cycle": [...] }
//	}
type BatchInput struct {
	Tasks        []models.Task          `json:"tasks"`
	Strategy     models.SortingStrategy `json:"strategy"`
	Summary      BatchSummary           `json:"summary"`
	Dependencies task.DependencyReport  `json:"dependencies"`
}

// BatchSummary carries precomputed aggregates so policies stay short.
type BatchSummary struct {
	Count      int     `json:"count"`
	TotalHours float64 `json:"total_hours"`
}
