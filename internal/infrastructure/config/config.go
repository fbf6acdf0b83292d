package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Shell     ShellConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server configuration.
// The channel is host-local, so the default bind address is loopback.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8000"`
	Host        string   `envconfig:"HOST" default:"127.0.0.1"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost,http://127.0.0.1"`
}

// ShellConfig holds shell bridge configuration.
type ShellConfig struct {
	Program       string        `envconfig:"SHELL_PROGRAM"`
	Args          []string      `envconfig:"SHELL_ARGS"`
	WorkingDir    string        `envconfig:"SHELL_WORKDIR"`
	UsePTY        bool          `envconfig:"SHELL_PTY" default:"false"`
	QueueSize     int           `envconfig:"SHELL_QUEUE_SIZE" default:"256"`
	SpawnFailures uint32        `envconfig:"SHELL_SPAWN_FAILURES" default:"3"`
	SpawnCooldown time.Duration `envconfig:"SHELL_SPAWN_COOLDOWN" default:"30s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the bridge cannot run with.
func (c *Config) Validate() error {
	if c.Shell.QueueSize <= 0 {
		return fmt.Errorf("SHELL_QUEUE_SIZE must be positive, got %d", c.Shell.QueueSize)
	}
	if c.Shell.SpawnFailures == 0 {
		return fmt.Errorf("SHELL_SPAWN_FAILURES must be positive")
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive when rate limiting is enabled")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "127.0.0.1",
			CORSOrigins: []string{"http://localhost", "http://127.0.0.1"},
		},
		Shell: ShellConfig{
			QueueSize:     256,
			SpawnFailures: 3,
			SpawnCooldown: 30 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
