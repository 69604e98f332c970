package ui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/josephgoksu/smarttask/internal/task"
	"github.com/josephgoksu/smarttask/models"
)

// ErrFormCancelled is returned when the user aborts a prompt.
var ErrFormCancelled = errors.New("cancelled")

// TaskFormData backs the add-task form fields.
type TaskFormData struct {
	Title          string
	DueDate        string
	EstimatedHours string
	Importance     string
	Dependencies   []string
}

// Input converts the form fields into builder input.
func (d *TaskFormData) Input() task.FormInput {
	importance, _ := strconv.Atoi(strings.TrimSpace(d.Importance))
	return task.FormInput{
		Title:          d.Title,
		DueDate:        d.DueDate,
		EstimatedHours: d.EstimatedHours,
		Importance:     importance,
		Dependencies:   d.Dependencies,
	}
}

// NewTaskForm builds the add-task form. Dependencies can only be picked
// from tasks already in the batch.
func NewTaskForm(data *TaskFormData, existing []models.Task) *huh.Form {
	if data.Importance == "" {
		data.Importance = strconv.Itoa(task.DefaultImportance)
	}

	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("Write release notes").
			Value(&data.Title).
			Validate(validateTitle),
		huh.NewInput().
			Title("Due Date").
			Description("YYYY-MM-DD").
			Value(&data.DueDate).
			Validate(validateDueDate),
		huh.NewInput().
			Title("Estimated Hours").
			Value(&data.EstimatedHours).
			Validate(validateHours),
		huh.NewSelect[string]().
			Title("Importance").
			Description("1 (low) to 10 (critical)").
			Options(importanceOptions()...).
			Value(&data.Importance),
	}

	if len(existing) > 0 {
		opts := make([]huh.Option[string], 0, len(existing))
		for _, t := range existing {
			opts = append(opts, huh.NewOption(t.Title+" ("+TruncateID(t.ID)+")", t.ID))
		}
		fields = append(fields, huh.NewMultiSelect[string]().
			Title("Depends On").
			Options(opts...).
			Value(&data.Dependencies))
	}

	return huh.NewForm(huh.NewGroup(fields...))
}

// PromptTask runs the add-task form and returns the built task.
func PromptTask(ctx context.Context, existing []models.Task) (models.Task, error) {
	data := &TaskFormData{}
	if err := runForm(ctx, NewTaskForm(data, existing)); err != nil {
		return models.Task{}, err
	}
	ids := make([]string, len(existing))
	for i, t := range existing {
		ids[i] = t.ID
	}
	return task.NewFromForm(data.Input(), ids)
}

// NewStrategyPicker builds a single-select over every strategy.
func NewStrategyPicker(value *string) *huh.Form {
	opts := make([]huh.Option[string], 0, len(models.Strategies))
	for _, s := range models.Strategies {
		opts = append(opts, huh.NewOption(StrategyLabel(s)+" - "+s.Description(), string(s)))
	}
	return huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Sorting Strategy").
			Options(opts...).
			Value(value),
	))
}

// PromptStrategy asks for a strategy, starting at current.
func PromptStrategy(ctx context.Context, current models.SortingStrategy) (models.SortingStrategy, error) {
	value := string(current.OrDefault())
	if err := runForm(ctx, NewStrategyPicker(&value)); err != nil {
		return current, err
	}
	return models.SortingStrategy(value), nil
}

// Confirm asks a yes/no question.
func Confirm(ctx context.Context, title string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Value(&ok),
	))
	if err := runForm(ctx, form); err != nil {
		return false, err
	}
	return ok, nil
}

func runForm(ctx context.Context, form *huh.Form) error {
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrFormCancelled
		}
		return err
	}
	return nil
}

func importanceOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, 10)
	for i := 1; i <= 10; i++ {
		v := strconv.Itoa(i)
		opts = append(opts, huh.NewOption(v, v))
	}
	return opts
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("title is required")
	}
	return nil
}

func validateDueDate(s string) error {
	if !models.DueDatePattern.MatchString(strings.TrimSpace(s)) {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func validateHours(s string) error {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || h <= 0 {
		return errors.New("must be a positive number")
	}
	return nil
}
