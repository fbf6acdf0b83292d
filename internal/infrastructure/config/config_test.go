package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	assert.Empty(t, cfg.Shell.Program)
	assert.False(t, cfg.Shell.UsePTY)
	assert.Equal(t, 256, cfg.Shell.QueueSize)
	assert.Equal(t, uint32(3), cfg.Shell.SpawnFailures)
	assert.Equal(t, 30*time.Second, cfg.Shell.SpawnCooldown)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.Metrics.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Server, cfg.Server)
	assert.Equal(t, def.Logging, cfg.Logging)
	assert.Equal(t, def.RateLimit, cfg.RateLimit)
	assert.Equal(t, def.Shell.QueueSize, cfg.Shell.QueueSize)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                 "9000",
		"HOST":                 "localhost",
		"SHELL_PROGRAM":        "/bin/zsh",
		"SHELL_ARGS":           "-i,-l",
		"SHELL_WORKDIR":        "/tmp",
		"SHELL_PTY":            "true",
		"SHELL_QUEUE_SIZE":     "16",
		"SHELL_SPAWN_FAILURES": "5",
		"SHELL_SPAWN_COOLDOWN": "2s",
		"LOG_LEVEL":            "debug",
		"LOG_DEV":              "true",
		"RATE_LIMIT_ENABLED":   "false",
		"METRICS_ENABLED":      "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "/bin/zsh", cfg.Shell.Program)
	assert.Equal(t, []string{"-i", "-l"}, cfg.Shell.Args)
	assert.Equal(t, "/tmp", cfg.Shell.WorkingDir)
	assert.True(t, cfg.Shell.UsePTY)
	assert.Equal(t, 16, cfg.Shell.QueueSize)
	assert.Equal(t, uint32(5), cfg.Shell.SpawnFailures)
	assert.Equal(t, 2*time.Second, cfg.Shell.SpawnCooldown)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero queue", map[string]string{"SHELL_QUEUE_SIZE": "0"}},
		{"zero spawn failures", map[string]string{"SHELL_SPAWN_FAILURES": "0"}},
		{"bad duration", map[string]string{"SHELL_SPAWN_COOLDOWN": "soon"}},
		{"zero rps", map[string]string{"RATE_LIMIT_RPS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
