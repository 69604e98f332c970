/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package types

// AppConfig represents the complete application configuration
type AppConfig struct {
	Verbose   bool            `mapstructure:"verbose"`
	JSON      bool            `mapstructure:"json"`
	Quiet     bool            `mapstructure:"quiet"`
	Config    string          `mapstructure:"config"`
	API       APIConfig       `mapstructure:"api" validate:"required"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Server    ServerConfig    `mapstructure:"server"`
	Policy    PolicyConfig    `mapstructure:"policy"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// APIConfig points at the external analysis service.
type APIConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
	// TimeoutSeconds bounds a single request. Zero leaves the transport default in place.
	TimeoutSeconds int `mapstructure:"timeoutSeconds" validate:"omitempty,min=0,max=600"`
}

// AnalysisConfig holds defaults for analysis requests
type AnalysisConfig struct {
	Strategy string `mapstructure:"strategy" validate:"omitempty,oneof=smart_balance fastest_wins high_impact deadline_driven"`
}

// ServerConfig configures the local dashboard API (smarttask serve)
type ServerConfig struct {
	Port           int      `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// PolicyConfig locates the Rego policies evaluated before submission
type PolicyConfig struct {
	Dir string `mapstructure:"dir"`
}

// LogConfig controls the structured logger
type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig controls anonymous usage events
type TelemetryConfig struct {
	Disabled bool   `mapstructure:"disabled"`
	APIKey   string `mapstructure:"apiKey"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}
