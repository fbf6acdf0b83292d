package types

import (
	"errors"
	"io/fs"
)

// ErrorKind classifies failures surfaced to the front end
type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindAlreadyExists      ErrorKind = "already_exists"
	KindPermissionDenied   ErrorKind = "permission_denied"
	KindIO                 ErrorKind = "io_error"
	KindProcessUnavailable ErrorKind = "process_unavailable"
	KindInvalidRequest     ErrorKind = "invalid_request"
)

var (
	ErrNotFound           = errors.New("no such file or directory")
	ErrAlreadyExists      = errors.New("destination already exists")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrProcessUnavailable = errors.New("shell process unavailable")
	ErrInvalidRequest     = errors.New("invalid request")
)

// Classify maps an error chain to its ErrorKind.
// Anything that is not a recognised sentinel or fs error is KindIO.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, fs.ErrExist):
		return KindAlreadyExists
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied
	case errors.Is(err, ErrProcessUnavailable):
		return KindProcessUnavailable
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	default:
		return KindIO
	}
}

// Sentinel returns the sentinel error for kind, or nil for KindIO and
// unknown kinds. It lets a peer rebuild an error that errors.Is recognises.
func Sentinel(kind ErrorKind) error {
	switch kind {
	case KindNotFound:
		return ErrNotFound
	case KindAlreadyExists:
		return ErrAlreadyExists
	case KindPermissionDenied:
		return ErrPermissionDenied
	case KindProcessUnavailable:
		return ErrProcessUnavailable
	case KindInvalidRequest:
		return ErrInvalidRequest
	default:
		return nil
	}
}
