// Package http provides the REST mirror of the message channel.
//
// Every request/response channel has an equivalent POST endpoint taking the
// same JSON shapes, which is convenient for scripts and tests. Streaming shell
// output is only available over the message channel.
//
// Endpoints:
//   - Health: / and /health
//   - Files: /files/write, /files/read, /files/delete, /files/rename, /files/list
//   - Terminal: /terminal/input, /terminal/status, /terminal/resize
//
// Failures return the usual {success:false, error, code} envelope with a status
// matching the code: 404 not_found, 409 already_exists, 403 permission_denied,
// 400 invalid_request, 503 process_unavailable, 500 io_error.
//
// Example Usage:
//
//	handlers := http.NewHandlers(files, bridge, metrics)
//	router.POST("/files/list", handlers.ListFiles)
package http
