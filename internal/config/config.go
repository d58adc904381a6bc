package config

import (
	"time"

	"github.com/fleetmind/fleetmind/pkg/complexity"
)

// Config is the main FleetMind configuration.
type Config struct {
	// HTTP API server
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Remote VRP solver
	Solver SolverConfig `json:"solver" mapstructure:"solver"`

	// Assistant agent
	Agent AgentConfig `json:"agent" mapstructure:"agent"`

	// Admission control limits
	Limits complexity.Limits `json:"limits" mapstructure:"limits"`

	// Session context store
	Store StoreConfig `json:"store" mapstructure:"store"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`
}

// SolverConfig holds remote solver client settings.
type SolverConfig struct {
	BaseURL        string `json:"base_url" mapstructure:"base_url"`
	APIKey         string `json:"api_key" mapstructure:"api_key"`
	TimeoutSeconds int    `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// Timeout returns the solver call timeout.
func (c SolverConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AgentConfig holds assistant agent settings.
type AgentConfig struct {
	Provider    string  `json:"provider" mapstructure:"provider"` // openai, anthropic
	Model       string  `json:"model" mapstructure:"model"`
	APIKey      string  `json:"api_key" mapstructure:"api_key"`
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `json:"max_tokens" mapstructure:"max_tokens"`
}

// StoreConfig holds session store housekeeping settings.
type StoreConfig struct {
	// MaxAgeHours is the age beyond which a session context is evicted.
	MaxAgeHours int `json:"max_age_hours" mapstructure:"max_age_hours"`
	// EvictSchedule is a cron expression driving the eviction sweep.
	EvictSchedule string `json:"evict_schedule" mapstructure:"evict_schedule"`
}

// MaxAge returns the eviction age threshold.
func (c StoreConfig) MaxAge() time.Duration {
	if c.MaxAgeHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.MaxAgeHours) * time.Hour
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	File   string `json:"file" mapstructure:"file"`
	Pretty bool   `json:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Solver: SolverConfig{
			BaseURL:        "https://api.solvice.io",
			TimeoutSeconds: 60,
		},
		Agent: AgentConfig{
			Provider:    "openai",
			Model:       "gpt-4.1-mini",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Limits: complexity.DefaultLimits(),
		Store: StoreConfig{
			MaxAgeHours:   24,
			EvictSchedule: "@hourly",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}
