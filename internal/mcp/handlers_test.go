package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/smarttask/internal/analyzer"
	"github.com/josephgoksu/smarttask/internal/policy"
	"github.com/josephgoksu/smarttask/internal/session"
	"github.com/josephgoksu/smarttask/internal/task"
	"github.com/josephgoksu/smarttask/models"
)

type fakeAnalyzer struct {
	err      error
	got      []models.Task
	strategy models.SortingStrategy
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, tasks []models.Task, strategy models.SortingStrategy) ([]models.AnalyzedTask, error) {
	f.got = tasks
	f.strategy = strategy
	if f.err != nil {
		return nil, f.err
	}
	out := []models.AnalyzedTask{}
	for _, t := range tasks {
		out = append(out, models.AnalyzedTask{Task: t, PriorityScore: 80, PriorityLevel: models.PriorityHigh, Explanation: "Urgent"})
	}
	return out, nil
}

func (f *fakeAnalyzer) Suggest(ctx context.Context) ([]models.SuggestedTask, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.SuggestedTask{{
		AnalyzedTask:     models.AnalyzedTask{Task: models.Task{Title: "Fix login"}, PriorityLevel: models.PriorityMedium},
		SuggestionReason: "Blocks the release",
	}}, nil
}

func fixedIDs() *task.Validator {
	n := 0
	return task.NewValidator(func() string {
		n++
		return "task-" + strings.Repeat("x", n)
	})
}

const batch = `[{"title":"Write docs","due_date":"2025-03-01","estimated_hours":2,"importance":6}]`

func TestHandleValidate(t *testing.T) {
	res, err := HandleValidate(context.Background(), Deps{Validator: fixedIDs()}, BatchParams{Batch: batch})
	require.NoError(t, err)
	assert.Empty(t, res.Error)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "task-x", res.Tasks[0].ID)
	assert.Contains(t, res.Content, "1 valid task")
	assert.Contains(t, res.Content, "| task-x | Write docs |")
}

func TestHandleValidate_YAMLAndWarnings(t *testing.T) {
	yamlBatch := `
- id: a
  title: Loop
  due_date: "2025-03-01"
  estimated_hours: 1
  importance: 2
  dependencies: [a]
`
	res, err := HandleValidate(context.Background(), Deps{}, BatchParams{Batch: yamlBatch, Format: "YAML"})
	require.NoError(t, err)
	require.Empty(t, res.Error)
	assert.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Content, "**Warnings**")
}

func TestHandleValidate_Invalid(t *testing.T) {
	res, err := HandleValidate(context.Background(), Deps{}, BatchParams{Batch: `[{"title":"x","due_date":"03/01/2025"}]`})
	require.NoError(t, err)
	assert.Contains(t, res.Error, "Task at index 0")
	assert.Contains(t, res.Content, "Validation Error")
	assert.Nil(t, res.Tasks)
}

func TestHandleAnalyze(t *testing.T) {
	svc := &fakeAnalyzer{}
	var events []session.EventType
	deps := Deps{
		Validator: fixedIDs(),
		Analyzer:  svc,
		Listener:  func(e session.Event) { events = append(events, e.Type) },
	}

	res, err := HandleAnalyze(context.Background(), deps, AnalyzeParams{Batch: batch, Strategy: "high-impact"})
	require.NoError(t, err)
	require.Empty(t, res.Error)
	assert.Equal(t, models.StrategyHighImpact, svc.strategy)
	assert.Equal(t, models.StrategyHighImpact, res.Strategy)
	assert.Equal(t, 1, res.Summary.High)
	assert.Contains(t, res.Content, "Prioritized (High Impact)")
	assert.Contains(t, res.Content, "1. **Write docs** [high, score 80]")
	assert.Equal(t, []session.EventType{
		session.EventTasksImported, session.EventAnalysisStarted, session.EventAnalysisCompleted,
	}, events)
}

func TestHandleAnalyze_Failures(t *testing.T) {
	t.Run("unknown strategy", func(t *testing.T) {
		svc := &fakeAnalyzer{}
		res, err := HandleAnalyze(context.Background(), Deps{Analyzer: svc}, AnalyzeParams{Batch: batch, Strategy: "chaos"})
		require.NoError(t, err)
		assert.Contains(t, res.Error, "unknown strategy")
		assert.Nil(t, svc.got)
	})

	t.Run("policy deny", func(t *testing.T) {
		svc := &fakeAnalyzer{}
		gate := func(ctx context.Context, tasks []models.Task, s models.SortingStrategy) error {
			return &policy.ViolationError{Violations: []string{"batch exceeds 40 hours"}}
		}
		res, err := HandleAnalyze(context.Background(), Deps{Analyzer: svc, Gate: gate}, AnalyzeParams{Batch: batch})
		require.NoError(t, err)
		assert.Contains(t, res.Error, "batch exceeds 40 hours")
		assert.Nil(t, svc.got)
	})

	t.Run("service error", func(t *testing.T) {
		svc := &fakeAnalyzer{err: &analyzer.Error{Message: "internal error", StatusCode: 500}}
		res, err := HandleAnalyze(context.Background(), Deps{Analyzer: svc}, AnalyzeParams{Batch: batch})
		require.NoError(t, err)
		assert.Equal(t, "internal error", res.Error)
		assert.Contains(t, res.Content, "## ❌ Error")
	})

	t.Run("duplicate ids", func(t *testing.T) {
		dup := `[{"id":"a","title":"x","due_date":"2025-01-01","estimated_hours":1,"importance":1},
		         {"id":"a","title":"y","due_date":"2025-01-01","estimated_hours":1,"importance":1}]`
		res, err := HandleAnalyze(context.Background(), Deps{Analyzer: &fakeAnalyzer{}}, AnalyzeParams{Batch: dup})
		require.NoError(t, err)
		assert.Contains(t, res.Error, `"a"`)
	})
}

func TestHandleSuggest(t *testing.T) {
	res, err := HandleSuggest(context.Background(), Deps{Analyzer: &fakeAnalyzer{}})
	require.NoError(t, err)
	require.Len(t, res.Suggestions, 1)
	assert.Contains(t, res.Content, "Blocks the release")

	res, err = HandleSuggest(context.Background(), Deps{Analyzer: &fakeAnalyzer{err: &analyzer.Error{Message: "Failed to get suggestions"}}})
	require.NoError(t, err)
	assert.Equal(t, "Failed to get suggestions", res.Error)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "abc...", truncate("abcdef", 3))
	assert.Equal(t, `a \| b`, escapeCell("a | b"))
	assert.Equal(t, "No suggestions right now.", FormatSuggestions(nil))
	assert.Contains(t, FormatValidationError("batch", "bad"), "`batch`")
}
