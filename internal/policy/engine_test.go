package policy

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/josephgoksu/smarttask/models"
)

const batchPolicy = `package smarttask.policy

import rego.v1

deny contains msg if {
    input.summary.total_hours > 40
    msg := sprintf("batch needs %v hours, more than a 40 hour week", [input.summary.total_hours])
}

deny contains msg if {
    count(input.dependencies.cycle) > 0
    msg := sprintf("dependency cycle: %s", [concat(" -> ", input.dependencies.cycle)])
}

warn contains msg if {
    some t in input.tasks
    t.importance == 10
    input.strategy == "fastest_wins"
    msg := sprintf("%s is critical but the strategy favors quick tasks", [t.title])
}
`

func batch(hours ...float64) []models.Task {
	tasks := make([]models.Task, len(hours))
	for i, h := range hours {
		tasks[i] = models.Task{
			ID:             string(rune('a' + i)),
			Title:          "Task " + string(rune('A'+i)),
			DueDate:        "2025-12-01",
			EstimatedHours: h,
			Importance:     5,
			Dependencies:   []string{},
		}
	}
	return tasks
}

func TestEngine_Evaluate_NoPolicies(t *testing.T) {
	engine := NewEngineWithPolicies(nil)

	decision, err := engine.EvaluateBatch(context.Background(), batch(100), "")
	if err != nil {
		t.Fatalf("EvaluateBatch() error = %v", err)
	}
	if !decision.IsAllowed() {
		t.Errorf("Result = %v, want allow", decision.Result)
	}
	if decision.DecisionID == "" || decision.PolicyPath != DefaultPolicyPackage {
		t.Errorf("decision metadata not set: %+v", decision)
	}
}

func TestEngine_EvaluateBatch(t *testing.T) {
	engine := NewEngineWithPolicies([]*PolicyFile{{Name: "batch", Path: "batch.rego", Content: batchPolicy}})

	cyclic := batch(1, 1)
	cyclic[0].Dependencies = []string{"b"}
	cyclic[1].Dependencies = []string{"a"}

	critical := batch(1)
	critical[0].Importance = 10

	tests := []struct {
		name         string
		tasks        []models.Task
		strategy     models.SortingStrategy
		wantResult   string
		wantViolate  string
		wantWarnings int
	}{
		{name: "small batch", tasks: batch(2, 3), wantResult: ResultAllow},
		{name: "too many hours", tasks: batch(30, 20), wantResult: ResultDeny, wantViolate: "50 hours"},
		{name: "cycle", tasks: cyclic, wantResult: ResultDeny, wantViolate: "a -> b -> a"},
		{name: "warning only", tasks: critical, strategy: models.StrategyFastestWins, wantResult: ResultAllow, wantWarnings: 1},
		{name: "warning needs strategy", tasks: critical, strategy: models.StrategyHighImpact, wantResult: ResultAllow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := engine.EvaluateBatch(context.Background(), tt.tasks, tt.strategy)
			if err != nil {
				t.Fatalf("EvaluateBatch() error = %v", err)
			}
			if decision.Result != tt.wantResult {
				t.Errorf("Result = %v, want %v (violations %v)", decision.Result, tt.wantResult, decision.Violations)
			}
			if tt.wantViolate != "" {
				if len(decision.Violations) != 1 || !strings.Contains(decision.Violations[0], tt.wantViolate) {
					t.Errorf("Violations = %v, want one containing %q", decision.Violations, tt.wantViolate)
				}
			}
			if len(decision.Warnings) != tt.wantWarnings {
				t.Errorf("Warnings = %v, want %d", decision.Warnings, tt.wantWarnings)
			}
		})
	}
}

func TestEngine_Check(t *testing.T) {
	engine := NewEngineWithPolicies([]*PolicyFile{{Name: "batch", Path: "batch.rego", Content: batchPolicy}})

	if err := engine.Check(context.Background(), batch(1), models.StrategySmartBalance); err != nil {
		t.Fatalf("Check() error = %v for allowed batch", err)
	}

	err := engine.Check(context.Background(), batch(41), models.StrategySmartBalance)
	var violation *ViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("Check() error = %v, want *ViolationError", err)
	}
	if violation.DecisionID == "" || len(violation.Violations) != 1 {
		t.Errorf("unexpected violation %+v", violation)
	}
	if !strings.HasPrefix(err.Error(), "blocked by policy: ") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestEngine_CalendarBuiltins(t *testing.T) {
	restore := SetClock(func() time.Time { return time.Date(2025, 11, 20, 15, 0, 0, 0, time.UTC) })
	defer restore()

	policy := `package smarttask.policy

import rego.v1

deny contains msg if {
    some t in input.tasks
    not smarttask.is_calendar_date(t.due_date)
    msg := sprintf("%s: %s is not a real date", [t.id, t.due_date])
}

warn contains msg if {
    some t in input.tasks
    smarttask.days_until(t.due_date) < 0
    msg := sprintf("%s is overdue", [t.id])
}
`
	engine := NewEngineWithPolicies([]*PolicyFile{{Name: "dates", Path: "dates.rego", Content: policy}})

	tasks := batch(1, 1)
	tasks[0].DueDate = "2025-13-99"
	tasks[1].DueDate = "2025-11-01"

	decision, err := engine.EvaluateBatch(context.Background(), tasks, "")
	if err != nil {
		t.Fatalf("EvaluateBatch() error = %v", err)
	}
	if len(decision.Violations) != 1 || !strings.Contains(decision.Violations[0], "2025-13-99") {
		t.Errorf("Violations = %v", decision.Violations)
	}
	if len(decision.Warnings) != 1 || decision.Warnings[0] != "b is overdue" {
		t.Errorf("Warnings = %v", decision.Warnings)
	}
}

func TestDaysUntil(t *testing.T) {
	restore := SetClock(func() time.Time { return time.Date(2025, 11, 20, 23, 59, 0, 0, time.UTC) })
	defer restore()

	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"2025-11-20", 0, true},
		{"2025-11-21", 1, true},
		{"2025-11-10", -10, true},
		{"2025-02-30", 0, false},
		{"soon", 0, false},
	}
	for _, tt := range tests {
		got, ok := daysUntil(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("daysUntil(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
	if !IsBuiltin(BuiltinDaysUntil) || IsBuiltin("smarttask.nope") {
		t.Error("IsBuiltin() mismatch")
	}
}

func TestNewEngine_FromDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/work/.smarttask/policies/batch.rego", []byte(batchPolicy), 0644)

	engine, err := NewEngine(EngineConfig{WorkDir: "/work", Fs: fs})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if engine.PolicyCount() != 1 || engine.PolicyNames()[0] != "batch" {
		t.Errorf("loaded %v", engine.PolicyNames())
	}

}

func TestValidatePolicy(t *testing.T) {
	if err := ValidatePolicy(batchPolicy); err != nil {
		t.Errorf("ValidatePolicy() error = %v for valid policy", err)
	}
	if err := ValidatePolicy("package smarttask.policy\n\ndeny contains msg if {"); err == nil {
		t.Error("ValidatePolicy() expected error for broken policy")
	}
}

func TestBuildInput(t *testing.T) {
	tasks := batch(1.5, 2)
	tasks[1].Dependencies = []string{"zzz"}

	in := BuildInput(tasks, "")
	if in.Strategy != models.StrategySmartBalance {
		t.Errorf("Strategy = %v, want default", in.Strategy)
	}
	if in.Summary.Count != 2 || in.Summary.TotalHours != 3.5 {
		t.Errorf("Summary = %+v", in.Summary)
	}
	if len(in.Dependencies.Unknown) != 1 {
		t.Errorf("Dependencies.Unknown = %v", in.Dependencies.Unknown)
	}

	empty := BuildInput(nil, models.StrategyHighImpact)
	if empty.Tasks == nil || empty.Summary.Count != 0 {
		t.Errorf("empty input = %+v", empty)
	}
}
