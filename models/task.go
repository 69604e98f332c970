package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SortingStrategy selects the heuristic the analysis service ranks with.
// The value is passed through untouched; only the service interprets it.
type SortingStrategy string

const (
	StrategySmartBalance   SortingStrategy = "smart_balance"
	StrategyFastestWins    SortingStrategy = "fastest_wins"
	StrategyHighImpact     SortingStrategy = "high_impact"
	StrategyDeadlineDriven SortingStrategy = "deadline_driven"
)

// DefaultStrategy is used whenever the caller does not pick one.
const DefaultStrategy = StrategySmartBalance

// Strategies lists every known strategy in display order.
var Strategies = []SortingStrategy{
	StrategySmartBalance,
	StrategyFastestWins,
	StrategyHighImpact,
	StrategyDeadlineDriven,
}

var strategyDescriptions = map[SortingStrategy]string{
	StrategySmartBalance:   "Balanced approach considering all factors",
	StrategyFastestWins:    "Prioritize quick, low-effort tasks",
	StrategyHighImpact:     "Focus on most important tasks first",
	StrategyDeadlineDriven: "Sort by urgency and due dates",
}

// Description returns a one-line summary of the strategy.
func (s SortingStrategy) Description() string {
	return strategyDescriptions[s]
}

// IsKnown reports whether s is one of the four documented strategies.
func (s SortingStrategy) IsKnown() bool {
	_, ok := strategyDescriptions[s]
	return ok
}

// OrDefault returns s, or DefaultStrategy when s is empty.
func (s SortingStrategy) OrDefault() SortingStrategy {
	if s == "" {
		return DefaultStrategy
	}
	return s
}

// ParseStrategy accepts a strategy name in snake_case or kebab-case.
func ParseStrategy(s string) (SortingStrategy, error) {
	normalized := SortingStrategy(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if normalized == "" {
		return DefaultStrategy, nil
	}
	if !normalized.IsKnown() {
		return "", fmt.Errorf("unknown strategy %q (valid: smart_balance, fastest_wins, high_impact, deadline_driven)", s)
	}
	return normalized, nil
}

// PriorityLevel is the categorical bucket the service derives from the score.
type PriorityLevel string

const (
	PriorityHigh   PriorityLevel = "high"
	PriorityMedium PriorityLevel = "medium"
	PriorityLow    PriorityLevel = "low"
)

// Task represents a unit of work submitted for prioritization.
type Task struct {
	ID             string   `json:"id,omitempty" yaml:"id,omitempty"`
	Title          string   `json:"title" yaml:"title" validate:"required,notblank"`
	DueDate        string   `json:"due_date" yaml:"due_date" validate:"required,duedate"`
	EstimatedHours float64  `json:"estimated_hours" yaml:"estimated_hours" validate:"gt=0"`
	Importance     float64  `json:"importance" yaml:"importance" validate:"gte=1,lte=10"`
	Dependencies   []string `json:"dependencies" yaml:"dependencies"`
}

// AnalyzedTask is a Task annotated by the analysis service.
type AnalyzedTask struct {
	Task          `yaml:",inline"`
	PriorityScore float64       `json:"priority_score" yaml:"priority_score"`
	PriorityLevel PriorityLevel `json:"priority_level" yaml:"priority_level"`
	Explanation   string        `json:"explanation" yaml:"explanation"`
}

// SuggestedTask is an AnalyzedTask the service recommends working on next.
type SuggestedTask struct {
	AnalyzedTask     `yaml:",inline"`
	SuggestionReason string `json:"suggestion_reason" yaml:"suggestion_reason"`
}

// AnalyzeRequest is the body of POST /api/tasks/analyze/.
type AnalyzeRequest struct {
	Tasks    []Task          `json:"tasks"`
	Strategy SortingStrategy `json:"strategy"`
}

// AnalyzeResponse is the success body of POST /api/tasks/analyze/.
type AnalyzeResponse struct {
	SortedTasks []AnalyzedTask `json:"sorted_tasks"`
}

// SuggestResponse is the success body of GET /api/tasks/suggest/.
type SuggestResponse struct {
	Suggestions []SuggestedTask `json:"suggestions"`
}

// PriorityCounts tallies analyzed tasks per priority level.
type PriorityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// CountPriorities buckets tasks by their priority level. Unknown levels are ignored.
func CountPriorities(tasks []AnalyzedTask) PriorityCounts {
	var c PriorityCounts
	for _, t := range tasks {
		switch t.PriorityLevel {
		case PriorityHigh:
			c.High++
		case PriorityMedium:
			c.Medium++
		case PriorityLow:
			c.Low++
		}
	}
	return c
}

// DueDatePattern is the lexical shape of a due date. It does not check
// that the date exists on the calendar.
var DueDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// global validator instance
var validate *validator.Validate

func init() {
	validate = newValidator()
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("duedate", func(fl validator.FieldLevel) bool {
		return DueDatePattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	if validate == nil {
		validate = newValidator()
	}
	err := validate.Struct(s)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var errorMessages []string
		for _, e := range validationErrors {
			errorMessages = append(errorMessages, fieldMessage(e))
		}
		return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
	}
	return nil
}

func fieldMessage(e validator.FieldError) string {
	switch e.Field() {
	case "Title":
		return "title is required"
	case "DueDate":
		return "due_date must be in YYYY-MM-DD format"
	case "EstimatedHours":
		return "estimated_hours must be a positive number"
	case "Importance":
		return "importance must be between 1 and 10"
	}
	return fmt.Sprintf("validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value())
}
