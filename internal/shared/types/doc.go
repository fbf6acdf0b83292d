// Package types provides shared data structures for the host bridge.
//
// Types defined here cross the boundary between the privileged host and the
// front end, so their JSON shapes are part of the message channel contract.
//
// Core Types:
//   - OperationResult: Uniform envelope for every non-streaming response
//   - ListResult: Directory listing envelope ({success, files?, error?})
//   - FileEntry: One child of a listed directory
//   - WriteRequest, RenameRequest: File operation payloads
//
// Errors:
//   - ErrorKind: Error taxonomy surfaced across the boundary
//   - Classify: Maps a Go error chain to its ErrorKind
//
// Example Usage:
//
//	if err := svc.Write(ctx, req); err != nil {
//	    return types.Fail(err)
//	}
//	return types.OK(nil)
package types
