// Package logging provides structured logging using uber/zap.
//
// Two modes are offered:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components take a *zap.Logger and tag themselves with Component so shell
// and file operations can be told apart in a single log stream.
//
// Example Usage:
//
//	logger, err := logging.New(logging.DefaultConfig())
//	log := logging.Component(logger.Logger, "terminal")
//	log.Info("shell started", zap.Int("pid", pid))
package logging
