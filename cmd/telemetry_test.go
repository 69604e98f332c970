package cmd

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/smarttask/internal/telemetry"
)

func TestTelemetryCommands(t *testing.T) {
	store := telemetry.NewStore(afero.NewMemMapFs(), "/home/u/.smarttask")
	orig := telemetryStore
	telemetryStore = func() (*telemetry.Store, error) { return store, nil }
	defer func() { telemetryStore = orig }()

	out, err := executeCommand(t, "", "telemetry", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Telemetry: disabled")

	out, err = executeCommand(t, "", "telemetry", "enable")
	require.NoError(t, err)
	assert.Contains(t, out, "Telemetry enabled")

	out, err = executeCommand(t, "", "telemetry", "status", "--json")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, true, got["enabled"])
	assert.NotEmpty(t, got["anonymous_id"])

	t.Setenv("SMARTTASK_TELEMETRY_DISABLED", "true")
	out, err = executeCommand(t, "", "telemetry", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "disabled by config")

	_, err = executeCommand(t, "", "telemetry", "disable")
	require.NoError(t, err)
	cfg, err := store.Load()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}

func TestNewRecorder_NoKeyMeansNoop(t *testing.T) {
	GlobalAppConfig.Telemetry.APIKey = ""
	rec := newRecorder()
	require.NotNil(t, rec)
	assert.NoError(t, rec.Close())
}
