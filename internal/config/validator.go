package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for values that would fail at runtime.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Solver.BaseURL == "" {
		return fmt.Errorf("solver base URL cannot be empty")
	}
	switch c.Agent.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unsupported agent provider: %s", c.Agent.Provider)
	}
	if c.Agent.Model == "" {
		return fmt.Errorf("agent model cannot be empty")
	}
	if err := validateLimits(c); err != nil {
		return err
	}
	if c.Store.EvictSchedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.Store.EvictSchedule); err != nil {
			return fmt.Errorf("invalid eviction schedule %q: %w", c.Store.EvictSchedule, err)
		}
	}
	return nil
}

func validateLimits(c *Config) error {
	if c.Limits.MaxJobs <= 0 {
		return fmt.Errorf("limits.max_jobs must be positive")
	}
	if c.Limits.MaxResources <= 0 {
		return fmt.Errorf("limits.max_resources must be positive")
	}
	if c.Limits.MaxTimeWindowsPerJob <= 0 {
		return fmt.Errorf("limits.max_time_windows_per_job must be positive")
	}
	if c.Limits.MaxBreaksPerResource <= 0 {
		return fmt.Errorf("limits.max_breaks_per_resource must be positive")
	}
	return nil
}
