package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Path returns ~/.config/appmonitor/config.yaml, or "" when the home
// directory is unknown.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "appmonitor", "config.yaml")
}

// DefaultLogFile returns the log path used by the interactive viewer when
// log_file is unset: $XDG_STATE_HOME/appmonitor/appmonitor.log, falling back
// to ~/.local/state.
func DefaultLogFile() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "appmonitor", "appmonitor.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "appmonitor.log")
	}
	return filepath.Join(home, ".local", "state", "appmonitor", "appmonitor.log")
}

// Load loads configuration from ~/.config/appmonitor/config.yaml. A missing
// or unreadable file yields the defaults.
func Load() Config {
	cfg := DefaultConfig()

	path := Path()
	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	parsed := cfg
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return cfg
	}
	return parsed
}

// LoadFile loads configuration from an explicit path. Unlike Load it reports
// read and parse errors.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
