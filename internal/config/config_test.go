package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		key     string
		raw     string
		want    any
		wantErr bool
	}{
		{key: "api.url", raw: " http://svc:9000 ", want: "http://svc:9000"},
		{key: "server.port", raw: "9090", want: 9090},
		{key: "server.port", raw: "ninety", wantErr: true},
		{key: "log.json", raw: "true", want: true},
		{key: "log.json", raw: "maybe", wantErr: true},
		{key: "server.allowedOrigins", raw: "http://a, ,http://b", want: []string{"http://a", "http://b"}},
		{key: "llm.provider", raw: "x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.raw, func(t *testing.T) {
			got, err := ParseValue(tt.key, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriter_SetAndUnset(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWriter(fs, "/home/u/.smarttask/config.yaml")

	require.NoError(t, w.Set("api.url", "http://svc:9000"))
	require.NoError(t, w.Set("api.timeoutSeconds", 30))
	require.NoError(t, w.Set("log.level", "debug"))

	doc, err := w.Load()
	require.NoError(t, err)
	api := doc["api"].(map[string]any)
	assert.Equal(t, "http://svc:9000", api["url"])
	assert.Equal(t, 30, api["timeoutSeconds"])

	raw, err := afero.ReadFile(fs, w.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "# smarttask configuration")

	require.NoError(t, w.Unset("api.url"))
	require.NoError(t, w.Unset("missing.key"))
	doc, err = w.Load()
	require.NoError(t, err)
	assert.NotContains(t, doc["api"].(map[string]any), "url")
	assert.Equal(t, "debug", doc["log"].(map[string]any)["level"])
}

func TestWriter_LoadMissingAndBroken(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc, err := NewWriter(fs, "/nope.yaml").Load()
	require.NoError(t, err)
	assert.Empty(t, doc)

	require.NoError(t, afero.WriteFile(fs, "/bad.yaml", []byte("api: [unclosed"), 0600))
	_, err = NewWriter(fs, "/bad.yaml").Load()
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	orig := GetGlobalConfigDir
	defer func() { GetGlobalConfigDir = orig }()
	GetGlobalConfigDir = func() (string, error) { return "/home/u/.smarttask", nil }

	path, err := GetGlobalConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/home/u/.smarttask/config.yaml", path)
	assert.Equal(t, "/home/u/.smarttask", GetCrashLogBase())

	assert.Equal(t, "/custom", GetPoliciesDir("/custom", "/work"))
	assert.Equal(t, filepath.Join("/work", ".smarttask", "policies"), GetPoliciesDir("", "/work"))
}

func TestKnownKeysCoverDefaults(t *testing.T) {
	keys := KnownKeys()
	assert.Len(t, keys, len(Defaults()))
	assert.Contains(t, keys, "api.url")
	assert.IsNonDecreasing(t, keys)
}
