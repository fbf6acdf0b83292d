// Package middleware provides the HTTP middleware shared by the REST mirror
// and the message channel endpoint.
//
// Middleware stack includes:
//   - CORS: only local front ends (configured origins plus any loopback origin)
//   - RateLimit: per-IP token bucket rate limiting with idle client cleanup
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins)))
//	router.Use(middleware.RateLimit(middleware.RateLimitConfig{
//	    RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
//	    Burst:             cfg.RateLimit.Burst,
//	}))
package middleware
