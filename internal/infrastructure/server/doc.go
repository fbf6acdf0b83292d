// Package server wires the host bridge together.
//
// This package owns every long-lived component:
//   - HTTP routing with Gin framework
//   - Middleware stack (recovery, tracing, metrics, CORS, rate limiting)
//   - File service and shell bridge
//   - Message channel router and WebSocket endpoint
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Initialize logger (production or development)
//  3. Create file service and shell bridge
//  4. Setup HTTP routes and middleware
//  5. Start HTTP server
//  6. Graceful shutdown on signal, killing the shell
//
// Example Usage:
//
//	cfg, err := config.Load()
//	srv, err := server.NewServer(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
