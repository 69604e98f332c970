// Package telemetry sends anonymous, opt-in usage events for smarttask.
//
// Nothing is sent until the user runs `smarttask telemetry enable`. Events
// carry counts and the chosen strategy only, never task content.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ConfigFileName is the consent file inside the global config directory.
const ConfigFileName = "telemetry.json"

// Config is the stored consent state.
type Config struct {
	Enabled bool `json:"enabled"`
	// AnonymousID is generated once and is not tied to the user.
	AnonymousID string    `json:"anonymous_id"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// IsEnabled reports whether the user opted in.
func (c *Config) IsEnabled() bool {
	return c != nil && c.Enabled
}

// Store reads and writes the consent file.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore returns a Store keeping telemetry.json in dir on fs.
func NewStore(fs afero.Fs, dir string) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{fs: fs, dir: dir}
}

// DefaultStore keeps the consent file in ~/.smarttask.
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}
	return NewStore(afero.NewOsFs(), filepath.Join(home, ".smarttask")), nil
}

// Path returns the location of the consent file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, ConfigFileName)
}

// Load returns the stored config. A missing file yields a disabled config
// with a fresh anonymous id.
func (s *Store) Load() (*Config, error) {
	cfg := &Config{}
	data, err := afero.ReadFile(s.fs, s.Path())
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read telemetry config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse telemetry config: %w", err)
		}
	}
	if cfg.AnonymousID == "" {
		cfg.AnonymousID = uuid.New().String()
	}
	return cfg, nil
}

// Save writes cfg with owner-only permissions.
func (s *Store) Save(cfg *Config) error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal telemetry config: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.Path(), data, 0600); err != nil {
		return fmt.Errorf("write telemetry config: %w", err)
	}
	return nil
}

// SetEnabled loads, updates and saves the consent state.
func (s *Store) SetEnabled(enabled bool) (*Config, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	cfg.Enabled = enabled
	cfg.UpdatedAt = time.Now().UTC()
	if err := s.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
