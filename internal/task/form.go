package task

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/josephgoksu/smarttask/models"
)

// DefaultImportance is the starting value of the importance field.
const DefaultImportance = 5

// FormInput holds the raw fields of the add-task form.
type FormInput struct {
	Title          string
	DueDate        string
	EstimatedHours string
	Importance     int
	Dependencies   []string
}

// NewFromForm builds a task from form fields. Dependencies may only name
// tasks already in the batch; duplicates are dropped, order is kept.
func NewFromForm(in FormInput, existingIDs []string) (models.Task, error) {
	return defaultValidator.NewFromForm(in, existingIDs)
}

// NewFromForm builds a task from form fields using v's id generator.
func (v *Validator) NewFromForm(in FormInput, existingIDs []string) (models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Task{}, fmt.Errorf("title is required")
	}
	dueDate := strings.TrimSpace(in.DueDate)
	if dueDate == "" {
		return models.Task{}, fmt.Errorf("due date is required")
	}
	hoursText := strings.TrimSpace(in.EstimatedHours)
	if hoursText == "" {
		return models.Task{}, fmt.Errorf("estimated hours are required")
	}
	hours, err := strconv.ParseFloat(hoursText, 64)
	if err != nil || !isFinite(hours) {
		return models.Task{}, fmt.Errorf("estimated_hours must be a positive number")
	}

	importance := in.Importance
	if importance == 0 {
		importance = DefaultImportance
	}

	known := make(map[string]bool, len(existingIDs))
	for _, id := range existingIDs {
		known[id] = true
	}
	deps := make([]string, 0, len(in.Dependencies))
	seen := make(map[string]bool, len(in.Dependencies))
	for _, d := range in.Dependencies {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		if !known[d] {
			return models.Task{}, fmt.Errorf("unknown dependency %q", d)
		}
		seen[d] = true
		deps = append(deps, d)
	}

	t := models.Task{
		ID:             v.newID(),
		Title:          title,
		DueDate:        dueDate,
		EstimatedHours: hours,
		Importance:     float64(importance),
		Dependencies:   deps,
	}
	if err := models.ValidateStruct(t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}
