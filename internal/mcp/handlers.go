package mcp

import (
	"context"
	"strings"

	"github.com/josephgoksu/smarttask/internal/analyzer"
	"github.com/josephgoksu/smarttask/internal/session"
	"github.com/josephgoksu/smarttask/internal/task"
	"github.com/josephgoksu/smarttask/models"
)

// Deps are the collaborators the tool handlers need.
type Deps struct {
	Validator *task.Validator
	Analyzer  analyzer.Service
	// Gate runs before submission. Nil allows every batch.
	Gate session.Gate
	// Listener receives the session events of each analysis.
	Listener session.Listener
}

func (d Deps) validator() *task.Validator {
	if d.Validator == nil {
		return task.NewValidator(nil)
	}
	return d.Validator
}

// HandleValidate parses and validates a batch. Failures are reported in the
// result, not as a Go error.
func HandleValidate(ctx context.Context, deps Deps, params BatchParams) (*ValidateResult, error) {
	tasks, err := parseBatch(deps.validator(), params)
	if err != nil {
		return &ValidateResult{Error: err.Error(), Content: FormatValidationError("batch", err.Error())}, nil
	}
	warnings := task.InspectDependencies(tasks).Warnings()
	return &ValidateResult{
		Tasks:    tasks,
		Warnings: warnings,
		Content:  FormatTasks(tasks, warnings),
	}, nil
}

// HandleAnalyze validates a batch and submits it through a one-shot session
// so the policy gate and the empty-batch rule apply.
func HandleAnalyze(ctx context.Context, deps Deps, params AnalyzeParams) (*AnalyzeResult, error) {
	strategy, err := models.ParseStrategy(params.Strategy)
	if err != nil {
		return &AnalyzeResult{Error: err.Error(), Content: FormatValidationError("strategy", err.Error())}, nil
	}
	result := &AnalyzeResult{Strategy: strategy}

	tasks, err := parseBatch(deps.validator(), params.batch())
	if err != nil {
		result.Error = err.Error()
		result.Content = FormatValidationError("batch", err.Error())
		return result, nil
	}

	opts := []session.Option{session.WithStrategy(strategy)}
	if deps.Gate != nil {
		opts = append(opts, session.WithGate(deps.Gate))
	}
	if deps.Listener != nil {
		opts = append(opts, session.WithListener(deps.Listener))
	}
	sess := session.New(opts...)
	if err := sess.Import(tasks); err != nil {
		result.Error = err.Error()
		result.Content = FormatValidationError("batch", err.Error())
		return result, nil
	}

	ranked, err := sess.Analyze(ctx, deps.Analyzer)
	if err != nil {
		result.Error = err.Error()
		result.Content = FormatError(err.Error())
		return result, nil
	}

	result.SortedTasks = ranked
	result.Summary = models.CountPriorities(ranked)
	result.Warnings = task.InspectDependencies(tasks).Warnings()
	result.Content = FormatRanked(ranked, strategy, result.Warnings)
	return result, nil
}

// HandleSuggest fetches the service's current suggestions.
func HandleSuggest(ctx context.Context, deps Deps) (*SuggestResult, error) {
	suggestions, err := deps.Analyzer.Suggest(ctx)
	if err != nil {
		return &SuggestResult{Error: err.Error(), Content: FormatError(err.Error())}, nil
	}
	return &SuggestResult{Suggestions: suggestions, Content: FormatSuggestions(suggestions)}, nil
}

func parseBatch(v *task.Validator, params BatchParams) ([]models.Task, error) {
	format := task.FormatJSON
	if f := strings.ToLower(strings.TrimSpace(params.Format)); f == "yaml" || f == "yml" {
		format = task.FormatYAML
	}
	return v.Parse([]byte(params.Batch), format)
}
