package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading.
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Path returns the resolved config file path.
func (l *Loader) Path() (string, error) {
	if l.configPath != "" {
		return l.configPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".fleetmind", "fleetmind.json"), nil
}

// Load loads the configuration from file, falling back to defaults when
// no file exists. Environment variables with the FLEETMIND_ prefix
// override file values.
func (l *Loader) Load() (*Config, error) {
	configPath, err := l.Path()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix("FLEETMIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// No file is fine; env vars may still override defaults.
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides pulls secrets from the environment so they never need
// to live in the config file.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("FLEETMIND_SOLVER_API_KEY"); key != "" {
		cfg.Solver.APIKey = key
	}
	if key := os.Getenv("FLEETMIND_AGENT_API_KEY"); key != "" {
		cfg.Agent.APIKey = key
	}
}
