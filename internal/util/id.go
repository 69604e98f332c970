// Package util provides shared utility functions.
package util

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	// TaskIDPrefix starts every generated task ID ("task-" + UUID).
	TaskIDPrefix = "task-"
	// DefaultShortIDLength is the default number of characters for short IDs.
	DefaultShortIDLength = 11
	// MaxAmbiguousCandidates is the max number of candidates to show in ambiguous error.
	MaxAmbiguousCandidates = 5
)

// Errors returned by ID resolution functions.
var (
	ErrAmbiguousID = errors.New("ambiguous ID prefix")
	ErrNotFound    = errors.New("not found")
)

// ShortID returns the first n characters of id.
// If n is 0 or negative, DefaultShortIDLength is used.
//
//	ShortID("task-1b9d6bcd-bbfd-4b2d", 0)  → "task-1b9d6b"
//	ShortID("a", 4)                         → "a"
func ShortID(id string, n int) string {
	if n <= 0 {
		n = DefaultShortIDLength
	}
	if len(id) <= n {
		return id
	}
	return id[:n]
}

// ResolveTaskID resolves a task ID or prefix against ids.
//
// Resolution rules:
//  1. An exact match wins, even when it is also a prefix of other IDs.
//  2. Otherwise a prefix matching exactly one ID resolves to it. The
//     "task-" prefix may be left out.
//  3. Several matches return ErrAmbiguousID with candidates.
//  4. No match returns ErrNotFound.
func ResolveTaskID(idOrPrefix string, ids []string) (string, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return "", fmt.Errorf("task ID: %w", ErrNotFound)
	}

	for _, id := range ids {
		if id == idOrPrefix {
			return id, nil
		}
	}

	prefixes := []string{idOrPrefix}
	if !strings.HasPrefix(idOrPrefix, TaskIDPrefix) {
		prefixes = append(prefixes, TaskIDPrefix+idOrPrefix)
	}

	seen := make(map[string]bool)
	var candidates []string
	for _, id := range ids {
		for _, p := range prefixes {
			if strings.HasPrefix(id, p) && !seen[id] {
				seen[id] = true
				candidates = append(candidates, id)
			}
		}
	}
	sort.Strings(candidates)

	return resolveFromCandidates(idOrPrefix, candidates)
}

// resolveFromCandidates handles the common resolution logic.
func resolveFromCandidates(prefix string, candidates []string) (string, error) {
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("task with prefix %q: %w", prefix, ErrNotFound)
	case 1:
		return candidates[0], nil
	default:
		shown := candidates
		if len(shown) > MaxAmbiguousCandidates {
			shown = shown[:MaxAmbiguousCandidates]
		}
		return "", fmt.Errorf("%w: prefix %q matches %d tasks: %v",
			ErrAmbiguousID, prefix, len(candidates), shown)
	}
}
