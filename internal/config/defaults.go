// Package config holds smarttask's configuration defaults, well-known paths
// and the global config file writer.
package config

import "github.com/josephgoksu/smarttask/models"

const (
	// EnvPrefix is prepended to every environment override (SMARTTASK_API_URL, ...).
	EnvPrefix = "SMARTTASK"

	// ConfigName is the config file name without extension.
	ConfigName = ".smarttask"

	// ProjectDirName is the per-project and per-user state directory.
	ProjectDirName = ".smarttask"

	// GlobalConfigFile is the file written by `smarttask config set`.
	GlobalConfigFile = "config.yaml"
)

const (
	// DefaultAPIURL is the local development address of the analysis service.
	DefaultAPIURL = "http://localhost:8000"

	// DefaultTimeoutSeconds leaves request timeouts to the transport.
	DefaultTimeoutSeconds = 0

	// DefaultPort is where `smarttask serve` listens.
	DefaultPort = 8787

	// DefaultLogLevel is used when log.level is unset.
	DefaultLogLevel = "info"
)

// DefaultStrategy is the strategy used when analysis.strategy is unset.
var DefaultStrategy = string(models.DefaultStrategy)

// Defaults returns every config key with its default value.
func Defaults() map[string]any {
	return map[string]any{
		"api.url":               DefaultAPIURL,
		"api.timeoutSeconds":    DefaultTimeoutSeconds,
		"analysis.strategy":     DefaultStrategy,
		"server.port":           DefaultPort,
		"server.allowedOrigins": []string{"http://localhost:3000", "http://localhost:5173"},
		"policy.dir":            "",
		"log.level":             DefaultLogLevel,
		"log.json":              false,
		"telemetry.disabled":    false,
		"telemetry.apiKey":      "",
		"telemetry.endpoint":    "",
	}
}
