// Package main is the entry point for the host bridge.
//
// The bridge exposes local file operations and a single interactive shell
// to a UI layer over a loopback message channel.
//
// Architecture:
//
//	UI ⇄ /ipc (WebSocket) ⇄ Router → File service
//	                              → Shell bridge → shell process
//
// The server provides:
//   - WebSocket message channel at /ipc
//   - REST mirror under /files and /terminal
//   - Prometheus metrics at /metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults bind to loopback
//
// Usage:
//
//	# Default shell over pipes
//	./server -port 8000
//
//	# Shell under a pseudo-terminal, debug logging
//	./server -pty -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown, the shell is killed
package main
