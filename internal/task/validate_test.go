package task

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var raw any
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func sequentialIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func TestValidate_NonArrayIsMalformed(t *testing.T) {
	inputs := []string{`{}`, `"tasks"`, `42`, `null`, `true`, `{"tasks": []}`}
	for _, in := range inputs {
		_, err := Validate(decode(t, in))
		require.Error(t, err, in)
		assert.Equal(t, KindMalformedBatch, KindOf(err), in)
		assert.Equal(t, "JSON must be an array of tasks", err.Error())
	}
}

func TestValidate_EmptyArray(t *testing.T) {
	_, err := Validate(decode(t, `[]`))
	require.Error(t, err)
	assert.Equal(t, KindEmptyBatch, KindOf(err))
	assert.Equal(t, "Array must contain at least one task", err.Error())
}

func TestValidate_SingleFieldViolations(t *testing.T) {
	valid := `{"title":"ok","due_date":"2025-12-01","estimated_hours":1,"importance":5,"dependencies":[]}`

	tests := []struct {
		name    string
		bad     string
		kind    ErrorKind
		message string
	}{
		{"not an object", `"just a string"`, KindNotAnObject, "Task at index 1 is not an object"},
		{"null element", `null`, KindNotAnObject, "Task at index 1 is not an object"},
		{"array element", `[]`, KindNotAnObject, "Task at index 1 is not an object"},
		{"missing title", `{"due_date":"2025-12-01","estimated_hours":1,"importance":5}`, KindMissingTitle, "Task at index 1: title is required"},
		{"blank title", `{"title":"   ","due_date":"2025-12-01","estimated_hours":1,"importance":5}`, KindMissingTitle, "Task at index 1: title is required"},
		{"numeric title", `{"title":7,"due_date":"2025-12-01","estimated_hours":1,"importance":5}`, KindMissingTitle, "Task at index 1: title is required"},
		{"bad date", `{"title":"x","due_date":"12-01-2025","estimated_hours":1,"importance":5}`, KindBadDateFormat, "Task at index 1: due_date must be in YYYY-MM-DD format"},
		{"date with time", `{"title":"x","due_date":"2025-12-01T00:00:00Z","estimated_hours":1,"importance":5}`, KindBadDateFormat, "Task at index 1: due_date must be in YYYY-MM-DD format"},
		{"missing date", `{"title":"x","estimated_hours":1,"importance":5}`, KindBadDateFormat, "Task at index 1: due_date must be in YYYY-MM-DD format"},
		{"zero hours", `{"title":"x","due_date":"2025-12-01","estimated_hours":0,"importance":5}`, KindBadHours, "Task at index 1: estimated_hours must be a positive number"},
		{"string hours", `{"title":"x","due_date":"2025-12-01","estimated_hours":"3","importance":5}`, KindBadHours, "Task at index 1: estimated_hours must be a positive number"},
		{"negative hours", `{"title":"x","due_date":"2025-12-01","estimated_hours":-2,"importance":5}`, KindBadHours, "Task at index 1: estimated_hours must be a positive number"},
		{"importance zero", `{"title":"x","due_date":"2025-12-01","estimated_hours":1,"importance":0}`, KindBadImportance, "Task at index 1: importance must be between 1 and 10"},
		{"importance eleven", `{"title":"x","due_date":"2025-12-01","estimated_hours":1,"importance":11}`, KindBadImportance, "Task at index 1: importance must be between 1 and 10"},
		{"importance missing", `{"title":"x","due_date":"2025-12-01","estimated_hours":1}`, KindBadImportance, "Task at index 1: importance must be between 1 and 10"},
		{"dependencies object", `{"title":"x","due_date":"2025-12-01","estimated_hours":1,"importance":5,"dependencies":{}}`, KindBadDependencies, "Task at index 1: dependencies must be an array"},
		{"dependencies string", `{"title":"x","due_date":"2025-12-01","estimated_hours":1,"importance":5,"dependencies":"task-1"}`, KindBadDependencies, "Task at index 1: dependencies must be an array"},
		{"dependency is an object", `{"title":"x","due_date":"2025-12-01","estimated_hours":1,"importance":5,"dependencies":[{"id":"a"}]}`, KindBadDependencies, "Task at index 1: dependencies must be an array"},
		{"dependency is a bool", `{"title":"x","due_date":"2025-12-01","estimated_hours":1,"importance":5,"dependencies":[true]}`, KindBadDependencies, "Task at index 1: dependencies must be an array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := "[" + valid + "," + tt.bad + "," + valid + "]"
			_, err := Validate(decode(t, batch))
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.kind, verr.Kind)
			assert.Equal(t, 1, verr.Index)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestValidate_ChecksRunInOrder(t *testing.T) {
	// Title, date and hours are all wrong; only the title is reported.
	_, err := Validate(decode(t, `[{"title":"","due_date":"bad","estimated_hours":0,"importance":99}]`))
	require.Error(t, err)
	assert.Equal(t, KindMissingTitle, KindOf(err))
}

func TestValidate_FailsFastOnFirstElement(t *testing.T) {
	calls := 0
	v := NewValidator(func() string {
		calls++
		return "id"
	})

	_, err := v.Validate(decode(t, `[
		{"title":"first","due_date":"2025-12-01","estimated_hours":1,"importance":5},
		{"title":"","due_date":"2025-12-01","estimated_hours":1,"importance":5},
		{"title":"third","due_date":"nope","estimated_hours":1,"importance":5}
	]`))
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Index)
	assert.Equal(t, KindMissingTitle, verr.Kind)
	assert.Equal(t, 1, calls, "elements after the failing one must not be processed")
}

func TestValidate_LexicalDateOnly(t *testing.T) {
	tasks, err := Validate(decode(t, `[{"title":"x","due_date":"2025-13-99","estimated_hours":1,"importance":5}]`))
	require.NoError(t, err)
	assert.Equal(t, "2025-13-99", tasks[0].DueDate)
}

func TestValidate_Defaults(t *testing.T) {
	v := NewValidator(sequentialIDs())

	tasks, err := v.Validate(decode(t, `[
		{"title":"  Fix bug  ","due_date":"2025-12-01","estimated_hours":3,"importance":8},
		{"id":"","title":"b","due_date":"2025-12-01","estimated_hours":1,"importance":1,"dependencies":null},
		{"id":0,"title":"c","due_date":"2025-12-01","estimated_hours":1,"importance":10,"dependencies":["x"]},
		{"id":17,"title":"d","due_date":"2025-12-01","estimated_hours":0.5,"importance":2.5}
	]`))
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	assert.Equal(t, "gen-1", tasks[0].ID)
	assert.Equal(t, "Fix bug", tasks[0].Title)
	assert.NotNil(t, tasks[0].Dependencies)
	assert.Empty(t, tasks[0].Dependencies)

	assert.Equal(t, "gen-2", tasks[1].ID)
	assert.NotNil(t, tasks[1].Dependencies)

	assert.Equal(t, "gen-3", tasks[2].ID)
	assert.Equal(t, []string{"x"}, tasks[2].Dependencies)

	assert.Equal(t, "17", tasks[3].ID)
	assert.Equal(t, 2.5, tasks[3].Importance)
}

func TestValidate_IdempotentOnValidTasks(t *testing.T) {
	v := NewValidator(func() string {
		t.Fatal("id must not be regenerated")
		return ""
	})

	in := `[{"id":"task-1","title":"Fix login bug","due_date":"2025-12-01","estimated_hours":3,"importance":8,"dependencies":[]},
		{"id":"task-2","title":"Write documentation","due_date":"2025-12-05","estimated_hours":5,"importance":6,"dependencies":["task-1"]}]`

	first, err := v.Validate(decode(t, in))
	require.NoError(t, err)

	encoded, err := json.Marshal(first)
	require.NoError(t, err)

	second, err := v.Validate(decode(t, string(encoded)))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestValidate_GeneratedIDsUniqueAcrossImports(t *testing.T) {
	in := `[{"title":"a","due_date":"2025-12-01","estimated_hours":1,"importance":5},
		{"title":"b","due_date":"2025-12-01","estimated_hours":1,"importance":5}]`

	first, err := ParseJSON([]byte(in))
	require.NoError(t, err)
	second, err := ParseJSON([]byte(in))
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, tk := range append(first, second...) {
		assert.NotEmpty(t, tk.ID)
		assert.False(t, seen[tk.ID], "duplicate id %s", tk.ID)
		seen[tk.ID] = true
	}
}

func TestParseJSON_Scenarios(t *testing.T) {
	t.Run("valid single task", func(t *testing.T) {
		tasks, err := ParseJSON([]byte(`[{"title":"Fix bug","due_date":"2025-12-01","estimated_hours":3,"importance":8,"dependencies":[]}]`))
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.NotEmpty(t, tasks[0].ID)
		assert.Equal(t, "Fix bug", tasks[0].Title)
		assert.Equal(t, 3.0, tasks[0].EstimatedHours)
		assert.Equal(t, 8.0, tasks[0].Importance)
	})

	t.Run("empty title", func(t *testing.T) {
		_, err := ParseJSON([]byte(`[{"title":"","due_date":"2025-12-01","estimated_hours":3,"importance":8,"dependencies":[]}]`))
		require.Error(t, err)
		assert.Equal(t, "Task at index 0: title is required", err.Error())
	})

	t.Run("date format", func(t *testing.T) {
		_, err := ParseJSON([]byte(`[{"title":"X","due_date":"12-01-2025","estimated_hours":1,"importance":5,"dependencies":[]}]`))
		require.Error(t, err)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, KindBadDateFormat, verr.Kind)
		assert.Equal(t, 0, verr.Index)
	})

	t.Run("blank input", func(t *testing.T) {
		_, err := ParseJSON([]byte("  \n "))
		require.Error(t, err)
		assert.Equal(t, KindEmptyInput, KindOf(err))
		assert.Equal(t, "Please enter JSON data", err.Error())
	})

	t.Run("broken json", func(t *testing.T) {
		_, err := ParseJSON([]byte(`[{"title":`))
		require.Error(t, err)
		assert.Equal(t, KindInvalidSyntax, KindOf(err))
		assert.Contains(t, err.Error(), "Invalid JSON format")
	})
}

func TestParseYAML(t *testing.T) {
	doc := `
- id: task-1
  title: Fix login bug
  due_date: 2025-12-01
  estimated_hours: 3
  importance: 8
  dependencies: []
- title: Write documentation
  due_date: "2025-12-05"
  estimated_hours: 4.5
  importance: 6
  dependencies: [task-1]
`
	tasks, err := ParseYAML([]byte(doc))
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "task-1", tasks[0].ID)
	assert.Equal(t, "2025-12-01", tasks[0].DueDate)
	assert.Equal(t, 4.5, tasks[1].EstimatedHours)
	assert.Equal(t, []string{"task-1"}, tasks[1].Dependencies)
	assert.NotEmpty(t, tasks[1].ID)
}

func TestParseYAML_ScalarTyping(t *testing.T) {
	const tmpl = "- title: Fix bug\n  due_date: %s\n  estimated_hours: %s\n  importance: 8\n"

	tests := []struct {
		name    string
		dueDate string
		hours   string
		kind    ErrorKind // KindUnknown when the batch is valid
		wantDue string
	}{
		{"unquoted date", "2025-12-01", "3", KindUnknown, "2025-12-01"},
		{"quoted date", `"2025-12-01"`, "3", KindUnknown, "2025-12-01"},
		{"lax unquoted date", "2025-13-99", "3", KindUnknown, "2025-13-99"},
		{"timestamp with time", "2025-12-01T10:00:00Z", "3", KindBadDateFormat, ""},
		{"date as number", "20251201", "3", KindBadDateFormat, ""},
		{"infinite hours", "2025-12-01", ".inf", KindBadHours, ""},
		{"nan hours", "2025-12-01", ".nan", KindBadHours, ""},
		{"hours as text", "2025-12-01", "three", KindBadHours, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := ParseYAML([]byte(fmt.Sprintf(tmpl, tt.dueDate, tt.hours)))
			if tt.kind == KindUnknown {
				require.NoError(t, err)
				require.Len(t, tasks, 1)
				assert.Equal(t, tt.wantDue, tasks[0].DueDate)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, 0, verrIndex(t, err))
		})
	}
}

func TestParseYAML_AnchorsAndNumericDependencies(t *testing.T) {
	doc := `
- id: 1
  title: Base
  due_date: 2025-12-01
  estimated_hours: 1
  importance: 5
- title: Follow-up
  due_date: &due 2025-12-02
  estimated_hours: 2
  importance: 5
  dependencies: &deps [1]
- title: Review
  due_date: *due
  estimated_hours: 1
  importance: 3
  dependencies: *deps
`
	tasks, err := ParseYAML([]byte(doc))
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "1", tasks[0].ID)
	assert.Equal(t, []string{"1"}, tasks[1].Dependencies)
	assert.Equal(t, "2025-12-02", tasks[2].DueDate)
	assert.Equal(t, []string{"1"}, tasks[2].Dependencies)
}

func TestValidate_NumericDependenciesBecomeStrings(t *testing.T) {
	tasks, err := Validate(decode(t, `[{"title":"x","due_date":"2025-12-01","estimated_hours":1,"importance":5,"dependencies":[7, "task-2", 1.5]}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"7", "task-2", "1.5"}, tasks[0].Dependencies)
}

func verrIndex(t *testing.T, err error) int {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Index
}

func TestParseYAML_MappingIsMalformed(t *testing.T) {
	_, err := ParseYAML([]byte("title: lonely\n"))
	require.Error(t, err)
	assert.Equal(t, KindMalformedBatch, KindOf(err))
}

func TestParseFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/batches/tasks.json", []byte(`[{"title":"a","due_date":"2025-01-01","estimated_hours":1,"importance":1}]`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/batches/tasks.yml", []byte("- title: b\n  due_date: \"2025-01-02\"\n  estimated_hours: 2\n  importance: 2\n"), 0644))

	tasks, err := ParseFile(fs, "/batches/tasks.json")
	require.NoError(t, err)
	assert.Equal(t, "a", tasks[0].Title)

	tasks, err = ParseFile(fs, "/batches/tasks.yml")
	require.NoError(t, err)
	assert.Equal(t, "b", tasks[0].Title)

	_, err = ParseFile(fs, "/batches/missing.json")
	require.Error(t, err)
	assert.Equal(t, KindUnknown, KindOf(err))
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatForPath("a.yaml"))
	assert.Equal(t, FormatYAML, FormatForPath("a.YML"))
	assert.Equal(t, FormatJSON, FormatForPath("a.json"))
	assert.Equal(t, FormatJSON, FormatForPath("-"))
}
