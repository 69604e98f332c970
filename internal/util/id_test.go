package util

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		n    int
		want string
	}{
		{"default length truncates", "task-1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed", 0, "task-1b9d6b"},
		{"negative uses default", "task-1b9d6bcd-bbfd", -1, "task-1b9d6b"},
		{"explicit length", "task-1b9d6bcd", 7, "task-1b"},
		{"short id untouched", "a", 4, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortID(tt.id, tt.n))
		})
	}
}

func TestResolveTaskID(t *testing.T) {
	ids := []string{
		"task-1b9d6bcd-bbfd-4b2d",
		"task-1b0000aa-0000-0000",
		"task-ffee0011-2233-4455",
		"a",
		"ab",
	}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"full id", "task-ffee0011-2233-4455", "task-ffee0011-2233-4455", nil},
		{"unique prefix", "task-1b9", "task-1b9d6bcd-bbfd-4b2d", nil},
		{"prefix without task-", "ffee", "task-ffee0011-2233-4455", nil},
		{"exact match beats prefix", "a", "a", nil},
		{"user id prefix", "ab", "ab", nil},
		{"ambiguous", "task-1b", "", ErrAmbiguousID},
		{"ambiguous without task-", "1b", "", ErrAmbiguousID},
		{"unknown", "zzz", "", ErrNotFound},
		{"empty", "  ", "", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTaskID(tt.input, ids)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmbiguousErrorMessage(t *testing.T) {
	var ids []string
	for i := 0; i < 8; i++ {
		ids = append(ids, fmt.Sprintf("task-00%d", i))
	}

	_, err := ResolveTaskID("task-00", ids)
	require.ErrorIs(t, err, ErrAmbiguousID)
	assert.Contains(t, err.Error(), "matches 8 tasks")
	assert.Contains(t, err.Error(), "task-004")
	assert.NotContains(t, err.Error(), "task-005")
}
