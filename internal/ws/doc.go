// Package ws serves the message channel over WebSocket.
//
// Each connection is one front-end surface. On connect the surface is
// attached to every shell event kind, so it receives all output, error and
// exit events until it detaches or disconnects. Disconnecting detaches all of
// its listeners.
//
// Frames are JSON objects {id, channel, payload, error, code}; see package ipc
// for the channel list. File operation frames are handled concurrently;
// terminal frames are handled in arrival order on the read loop. All writes go
// through a single writer goroutine per connection.
//
// Example Usage:
//
//	handler := ws.NewHandler(router, logger, metrics, middleware.IsLoopbackOrigin)
//	engine.GET("/ipc", handler.HandleConnection)
package ws
