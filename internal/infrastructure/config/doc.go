// Package config provides 12-factor configuration for the host bridge.
//
// Configuration is loaded from environment variables with defaults suited to
// a single-user desktop host. CLI flags in cmd/server override the server
// address and log mode.
//
// Configuration Sections:
//   - Server: bind address (loopback by default) and allowed CORS origins
//   - Shell: program, arguments, working directory, PTY mode, input queue
//     size and spawn failure tolerance
//   - Logging: level and output format
//   - RateLimit: per-IP rate limiting of the HTTP surface
//   - Metrics: Prometheus endpoint toggle
//
// Environment Variables:
//   - PORT, HOST, CORS_ORIGINS
//   - SHELL_PROGRAM, SHELL_ARGS, SHELL_WORKDIR, SHELL_PTY, SHELL_QUEUE_SIZE,
//     SHELL_SPAWN_FAILURES, SHELL_SPAWN_COOLDOWN
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - METRICS_ENABLED
package config
