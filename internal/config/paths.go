package config

import (
	"os"
	"path/filepath"
)

// GetGlobalConfigDir returns the per-user directory (~/.smarttask).
// It is a variable so tests can point it elsewhere.
var GetGlobalConfigDir = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ProjectDirName), nil
}

// GetGlobalConfigPath returns ~/.smarttask/config.yaml.
func GetGlobalConfigPath() (string, error) {
	dir, err := GetGlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, GlobalConfigFile), nil
}

// GetPoliciesDir resolves the policy directory: the configured one when set,
// otherwise .smarttask/policies under workDir.
func GetPoliciesDir(configured, workDir string) string {
	if configured != "" {
		return configured
	}
	return filepath.Join(workDir, ProjectDirName, "policies")
}

// GetCrashLogBase returns the directory crash logs are written under,
// falling back to the working directory when $HOME is unavailable.
func GetCrashLogBase() string {
	dir, err := GetGlobalConfigDir()
	if err != nil {
		return ProjectDirName
	}
	return dir
}
