package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/josephgoksu/smarttask/internal/config"
	"github.com/josephgoksu/smarttask/internal/logger"
	"github.com/josephgoksu/smarttask/types"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// validate is a single instance of Validate, it caches struct info
var validate = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their config key rather than the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("mapstructure")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateAppConfig performs validation on the AppConfig struct.
func validateAppConfig(cfg *types.AppConfig) error {
	return validate.Struct(cfg)
}

// InitConfig reads in config files and ENV variables if set.
// Precedence, lowest first: defaults, ~/.smarttask/config.yaml, the project
// config (or --config), environment, flags.
func InitConfig() {
	if err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	initLogging(&GlobalAppConfig)
}

func loadConfig() error {
	// It's okay if the .env file doesn't exist.
	_ = godotenv.Load()

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// Deployments of the analysis service already export API_URL.
	_ = viper.BindEnv("api.url", config.EnvPrefix+"_API_URL", "API_URL")

	_ = viper.BindPFlags(rootCmd.PersistentFlags())
	_ = viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api-url"))

	for key, value := range config.Defaults() {
		viper.SetDefault(key, value)
	}

	if err := loadConfigFiles(viper.GetString("config")); err != nil {
		return fmt.Errorf("Error reading config: %w", err)
	}

	GlobalAppConfig = types.AppConfig{}
	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		return fmt.Errorf("Error unmarshaling config: %w", err)
	}

	if err := validateAppConfig(&GlobalAppConfig); err != nil {
		return fmt.Errorf("Configuration validation error: %s", describeConfigError(err))
	}
	return nil
}

// loadConfigFiles merges the global config file and then either the file
// named by --config or the first project config found.
func loadConfigFiles(explicit string) error {
	if global, err := config.GetGlobalConfigPath(); err == nil {
		if _, err := os.Stat(global); err == nil {
			if err := mergeConfigFile(global); err != nil {
				return err
			}
		}
	}

	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return fmt.Errorf("specified config file not found: %s", explicit)
		}
		return mergeConfigFile(explicit)
	}

	for _, dir := range projectConfigDirs() {
		path := filepath.Join(dir, config.ConfigName+".yaml")
		if _, err := os.Stat(path); err == nil {
			return mergeConfigFile(path)
		}
	}
	if viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "No project config file found. Using defaults and environment variables.")
	}
	return nil
}

func projectConfigDirs() []string {
	dirs := []string{config.ProjectDirName, "."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	return dirs
}

func mergeConfigFile(path string) error {
	viper.SetConfigFile(path)
	if err := viper.MergeInConfig(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", path)
	}
	return nil
}

// describeConfigError turns validator errors into "api.url failed 'url'" lines.
func describeConfigError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		key := e.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		msgs = append(msgs, fmt.Sprintf("%s failed '%s' (value: %v)", key, e.Tag(), e.Value()))
	}
	return strings.Join(msgs, "; ")
}

func initLogging(cfg *types.AppConfig) {
	level := logger.LogLevel(strings.ToLower(cfg.Log.Level))
	if cfg.Verbose {
		level = logger.DebugLevel
	}
	logger.Init(&logger.Config{
		Level:      level,
		Output:     os.Stderr,
		JSON:       cfg.Log.JSON,
		TimeFormat: "15:04:05",
	})
	logger.SetVersion(GetVersion())
	logger.SetBasePath(config.GetCrashLogBase())
}

// GetConfig returns a pointer to the global types.AppConfig instance.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}
