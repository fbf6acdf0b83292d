/*
Package monitoring provides Prometheus metrics for the host bridge.

# Overview

Each Metrics value owns a private registry, so several servers (for example in
tests) can coexist in one process without duplicate registration panics.

# Tracked

- HTTP requests (count, latency) by route template
- File operations (count by status, latency) and listing entries skipped
- Shell state, spawn attempts, output chunks and bytes per stream, listeners
- Attached surfaces and channel messages by direction

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "rename")
	err := doRename()
	timer.Stop(err)

All recording methods are nil-safe so components can run without metrics.
*/
package monitoring
