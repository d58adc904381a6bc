package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.solvice.io", cfg.Solver.BaseURL)
	assert.Equal(t, "openai", cfg.Agent.Provider)
	assert.Equal(t, "gpt-4.1-mini", cfg.Agent.Model)
	assert.Equal(t, 250, cfg.Limits.MaxJobs)
	assert.Equal(t, "@hourly", cfg.Store.EvictSchedule)
	require.NoError(t, cfg.Validate())
}

func TestSolverConfig_Timeout(t *testing.T) {
	assert.Equal(t, 60*time.Second, SolverConfig{}.Timeout())
	assert.Equal(t, 30*time.Second, SolverConfig{TimeoutSeconds: 30}.Timeout())
}

func TestStoreConfig_MaxAge(t *testing.T) {
	assert.Equal(t, 24*time.Hour, StoreConfig{}.MaxAge())
	assert.Equal(t, 48*time.Hour, StoreConfig{MaxAgeHours: 48}.MaxAge())
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "absent.json"))

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server, cfg.Server)
	assert.Equal(t, DefaultConfig().Limits, cfg.Limits)
}

func TestLoader_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleetmind.json")
	content := `{
		"server": {"host": "0.0.0.0", "port": 9090},
		"limits": {"max_jobs": 100},
		"agent": {"provider": "anthropic", "model": "claude-sonnet-4-20250514"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Limits.MaxJobs)
	assert.Equal(t, "anthropic", cfg.Agent.Provider)
	// Untouched sections keep their defaults.
	assert.Equal(t, 30, cfg.Limits.MaxResources)
	assert.Equal(t, "https://api.solvice.io", cfg.Solver.BaseURL)
}

func TestLoader_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleetmind.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	_, err := NewLoader(path).Load()
	assert.Error(t, err)
}

func TestLoader_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("FLEETMIND_SOLVER_API_KEY", "solver-secret")
	t.Setenv("FLEETMIND_AGENT_API_KEY", "agent-secret")

	cfg, err := NewLoader(filepath.Join(t.TempDir(), "absent.json")).Load()
	require.NoError(t, err)
	assert.Equal(t, "solver-secret", cfg.Solver.APIKey)
	assert.Equal(t, "agent-secret", cfg.Agent.APIKey)
}

func TestLoader_DefaultPath(t *testing.T) {
	path, err := NewLoader("").Path()
	require.NoError(t, err)
	assert.Contains(t, path, filepath.Join(".fleetmind", "fleetmind.json"))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"empty solver url", func(c *Config) { c.Solver.BaseURL = "" }, "solver base URL"},
		{"bad provider", func(c *Config) { c.Agent.Provider = "cohere" }, "unsupported agent provider"},
		{"empty model", func(c *Config) { c.Agent.Model = "" }, "agent model"},
		{"zero max jobs", func(c *Config) { c.Limits.MaxJobs = 0 }, "max_jobs"},
		{"zero max resources", func(c *Config) { c.Limits.MaxResources = 0 }, "max_resources"},
		{"zero time windows", func(c *Config) { c.Limits.MaxTimeWindowsPerJob = 0 }, "max_time_windows_per_job"},
		{"zero breaks", func(c *Config) { c.Limits.MaxBreaksPerResource = 0 }, "max_breaks_per_resource"},
		{"bad cron", func(c *Config) { c.Store.EvictSchedule = "not a schedule" }, "invalid eviction schedule"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate_AcceptsCronForms(t *testing.T) {
	for _, schedule := range []string{"@hourly", "@every 30m", "0 * * * *", ""} {
		cfg := DefaultConfig()
		cfg.Store.EvictSchedule = schedule
		assert.NoError(t, cfg.Validate(), "schedule %q", schedule)
	}
}
