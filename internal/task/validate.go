// Package task turns untrusted task input (pasted batches, form fields)
// into well-formed models.Task values.
package task

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/josephgoksu/smarttask/models"
)

// IDFunc returns a fresh task id.
type IDFunc func() string

// NewID generates a task id that stays unique across imports made in the same instant.
func NewID() string {
	return "task-" + uuid.New().String()
}

// Validator converts loosely typed batches into tasks.
type Validator struct {
	newID IDFunc
}

// NewValidator returns a Validator using newID for tasks that arrive without one.
// A nil newID falls back to NewID.
func NewValidator(newID IDFunc) *Validator {
	if newID == nil {
		newID = NewID
	}
	return &Validator{newID: newID}
}

var defaultValidator = NewValidator(nil)

// Validate checks raw with the default id generator.
func Validate(raw any) ([]models.Task, error) {
	return defaultValidator.Validate(raw)
}

// Validate converts raw, a decoded JSON or YAML value, into tasks.
// The whole batch is rejected at the first offending element.
func (v *Validator) Validate(raw any) ([]models.Task, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, batchError(KindMalformedBatch)
	}
	if len(items) == 0 {
		return nil, batchError(KindEmptyBatch)
	}

	tasks := make([]models.Task, 0, len(items))
	for i, item := range items {
		t, err := v.validateElement(item, i)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (v *Validator) validateElement(item any, index int) (models.Task, error) {
	obj, ok := asObject(item)
	if !ok {
		return models.Task{}, elementError(KindNotAnObject, index)
	}

	title, ok := obj["title"].(string)
	if !ok || strings.TrimSpace(title) == "" {
		return models.Task{}, elementError(KindMissingTitle, index)
	}

	dueDate, ok := obj["due_date"].(string)
	if !ok || !models.DueDatePattern.MatchString(dueDate) {
		return models.Task{}, elementError(KindBadDateFormat, index)
	}

	hours, ok := asNumber(obj["estimated_hours"])
	if !ok || !(hours > 0) {
		return models.Task{}, elementError(KindBadHours, index)
	}

	importance, ok := asNumber(obj["importance"])
	if !ok || importance < 1 || importance > 10 {
		return models.Task{}, elementError(KindBadImportance, index)
	}

	deps, ok := asDependencies(obj["dependencies"])
	if !ok {
		return models.Task{}, elementError(KindBadDependencies, index)
	}

	id, ok := asID(obj["id"])
	if !ok {
		id = v.newID()
	}

	return models.Task{
		ID:             id,
		Title:          strings.TrimSpace(title),
		DueDate:        dueDate,
		EstimatedHours: hours,
		Importance:     importance,
		Dependencies:   deps,
	}, nil
}

// asObject accepts the map shapes produced by encoding/json and yaml.v3.
func asObject(item any) (map[string]any, bool) {
	switch m := item.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	}
	return nil, false
}

// asNumber accepts finite numbers only; NaN and ±Inf cannot be sent as JSON.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, isFinite(n)
	case float32:
		return float64(n), isFinite(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil && isFinite(f)
	}
	return 0, false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// asDependencies treats a missing or null field as no dependencies. Numeric
// elements become their decimal string, as ids do; any other element type
// rejects the list.
func asDependencies(v any) ([]string, bool) {
	if v == nil {
		return []string{}, true
	}
	switch deps := v.(type) {
	case []string:
		out := make([]string, len(deps))
		copy(out, deps)
		return out, true
	case []any:
		out := make([]string, 0, len(deps))
		for _, d := range deps {
			if s, ok := d.(string); ok {
				out = append(out, s)
				continue
			}
			if _, isBool := d.(bool); isBool {
				return nil, false
			}
			n, ok := asNumber(d)
			if !ok {
				return nil, false
			}
			out = append(out, strconv.FormatFloat(n, 'f', -1, 64))
		}
		return out, true
	}
	return nil, false
}

// asID keeps a truthy id as-is. Empty strings, zero, false and null count as missing.
func asID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case bool:
		return "", false
	case nil:
		return "", false
	}
	if n, ok := asNumber(v); ok {
		if n == 0 {
			return "", false
		}
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}
