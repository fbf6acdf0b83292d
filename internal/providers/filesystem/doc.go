// Package filesystem implements the host's file operation service.
//
// The service is stateless: each call opens what it needs, performs one
// operation and releases it. Paths are used verbatim; there is no jailing to a
// root because the caller is the single local user's own front end.
//
// Operations:
//   - Write: create or truncate a file with the given content
//   - Read: return a file's content as text
//   - Delete: remove a file
//   - Rename: move a file without ever overwriting the destination
//   - List: describe every child of a directory
//
// Failures are returned as wrapped errors; the types package classifies them
// into the error kinds surfaced to the front end.
//
// List is deliberately partial-failure tolerant: an entry that disappears (or
// otherwise cannot be stat'ed) between enumeration and stat is omitted rather
// than failing the whole listing.
//
// Rename prefers an atomic no-replace primitive (renameat2 RENAME_NOREPLACE
// on Linux) and falls back to probing the destination before moving where the
// platform or filesystem does not offer one.
//
// Example Usage:
//
//	svc := filesystem.NewService(logger, metrics)
//	entries, err := svc.List(ctx, "/home/me/projects")
package filesystem
