package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromForm(t *testing.T) {
	v := NewValidator(sequentialIDs())

	got, err := v.NewFromForm(FormInput{
		Title:          "  Ship release  ",
		DueDate:        "2025-12-01",
		EstimatedHours: "2.5",
		Importance:     7,
		Dependencies:   []string{"task-1", "task-1", " ", "task-2"},
	}, []string{"task-1", "task-2"})
	require.NoError(t, err)

	assert.Equal(t, "gen-1", got.ID)
	assert.Equal(t, "Ship release", got.Title)
	assert.Equal(t, 2.5, got.EstimatedHours)
	assert.Equal(t, 7.0, got.Importance)
	assert.Equal(t, []string{"task-1", "task-2"}, got.Dependencies)
}

func TestNewFromForm_DefaultImportance(t *testing.T) {
	got, err := NewFromForm(FormInput{Title: "x", DueDate: "2025-01-01", EstimatedHours: "1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultImportance), got.Importance)
	assert.NotNil(t, got.Dependencies)
}

func TestNewFromForm_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   FormInput
		want string
	}{
		{"blank title", FormInput{Title: " ", DueDate: "2025-01-01", EstimatedHours: "1"}, "title is required"},
		{"no due date", FormInput{Title: "x", EstimatedHours: "1"}, "due date is required"},
		{"no hours", FormInput{Title: "x", DueDate: "2025-01-01"}, "estimated hours are required"},
		{"hours not numeric", FormInput{Title: "x", DueDate: "2025-01-01", EstimatedHours: "lots"}, "estimated_hours must be a positive number"},
		{"hours infinite", FormInput{Title: "x", DueDate: "2025-01-01", EstimatedHours: "Inf"}, "estimated_hours must be a positive number"},
		{"hours nan", FormInput{Title: "x", DueDate: "2025-01-01", EstimatedHours: "NaN"}, "estimated_hours must be a positive number"},
		{"hours zero", FormInput{Title: "x", DueDate: "2025-01-01", EstimatedHours: "0"}, "estimated_hours must be a positive number"},
		{"bad date", FormInput{Title: "x", DueDate: "01/01/2025", EstimatedHours: "1"}, "due_date must be in YYYY-MM-DD format"},
		{"importance out of range", FormInput{Title: "x", DueDate: "2025-01-01", EstimatedHours: "1", Importance: 12}, "importance must be between 1 and 10"},
		{"unknown dependency", FormInput{Title: "x", DueDate: "2025-01-01", EstimatedHours: "1", Dependencies: []string{"nope"}}, `unknown dependency "nope"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFromForm(tt.in, []string{"task-1"})
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}
