package task

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a batch was rejected.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindEmptyInput: nothing but whitespace was pasted.
	KindEmptyInput
	// KindInvalidSyntax: the text could not be parsed at all.
	KindInvalidSyntax
	KindMalformedBatch
	KindEmptyBatch
	KindNotAnObject
	KindMissingTitle
	KindBadDateFormat
	KindBadHours
	KindBadImportance
	KindBadDependencies
)

var kindNames = map[ErrorKind]string{
	KindEmptyInput:      "empty_input",
	KindInvalidSyntax:   "invalid_syntax",
	KindMalformedBatch:  "malformed_batch",
	KindEmptyBatch:      "empty_batch",
	KindNotAnObject:     "not_an_object",
	KindMissingTitle:    "missing_title",
	KindBadDateFormat:   "bad_date_format",
	KindBadHours:        "bad_hours",
	KindBadImportance:   "bad_importance",
	KindBadDependencies: "bad_dependencies",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ValidationError rejects a whole batch. Index is the offending element,
// or -1 when the problem is with the batch itself.
type ValidationError struct {
	Kind  ErrorKind
	Index int
	Cause error
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindEmptyInput:
		return "Please enter JSON data"
	case KindInvalidSyntax:
		if e.Cause != nil {
			return fmt.Sprintf("Invalid JSON format: %v", e.Cause)
		}
		return "Invalid JSON format"
	case KindMalformedBatch:
		return "JSON must be an array of tasks"
	case KindEmptyBatch:
		return "Array must contain at least one task"
	case KindNotAnObject:
		return fmt.Sprintf("Task at index %d is not an object", e.Index)
	case KindMissingTitle:
		return fmt.Sprintf("Task at index %d: title is required", e.Index)
	case KindBadDateFormat:
		return fmt.Sprintf("Task at index %d: due_date must be in YYYY-MM-DD format", e.Index)
	case KindBadHours:
		return fmt.Sprintf("Task at index %d: estimated_hours must be a positive number", e.Index)
	case KindBadImportance:
		return fmt.Sprintf("Task at index %d: importance must be between 1 and 10", e.Index)
	case KindBadDependencies:
		return fmt.Sprintf("Task at index %d: dependencies must be an array", e.Index)
	}
	return "invalid task batch"
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func batchError(kind ErrorKind) *ValidationError {
	return &ValidationError{Kind: kind, Index: -1}
}

func elementError(kind ErrorKind, index int) *ValidationError {
	return &ValidationError{Kind: kind, Index: index}
}

// KindOf returns the ErrorKind carried by err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return KindUnknown
}
