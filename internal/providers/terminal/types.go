package terminal

import (
	"errors"
	"time"

	"github.com/asc2563/regression-thing/internal/shared/types"
)

var (
	// ErrBridgeClosed is returned by Submit after Close
	ErrBridgeClosed = errors.New("shell bridge is closed")
	// ErrQueueFull is returned when input arrives faster than the shell accepts it
	ErrQueueFull = errors.New("shell input queue is full")
	// ErrResizeUnsupported is returned by Resize in pipe mode
	ErrResizeUnsupported = errors.New("resize requires PTY mode")
	// ErrProcessUnavailable is returned while shell spawning is suspended
	ErrProcessUnavailable = types.ErrProcessUnavailable
)

// State is the lifecycle state of the shell session
type State string

const (
	StateUnstarted  State = "unstarted"
	StateRunning    State = "running"
	StateTerminated State = "terminated"
)

// Gauge returns the numeric value exported as bridge_shell_state
func (s State) Gauge() int {
	switch s {
	case StateRunning:
		return 1
	case StateTerminated:
		return 2
	default:
		return 0
	}
}

// EventKind identifies which stream an event belongs to
type EventKind string

const (
	KindOutput EventKind = "output"
	KindError  EventKind = "error"
	KindExit   EventKind = "exit"
)

// Kinds lists every event kind a surface can listen to
var Kinds = []EventKind{KindOutput, KindError, KindExit}

// Event is a chunk of shell output, or notice of the shell exiting
type Event struct {
	Kind       EventKind   `json:"kind"`
	Data       string      `json:"data,omitempty"`
	Exit       *ExitStatus `json:"exit,omitempty"`
	Generation uint64      `json:"generation"`
}

// ExitStatus describes how a shell process ended
type ExitStatus struct {
	Generation uint64 `json:"generation"`
	ExitCode   int    `json:"exitCode"`
	Error      string `json:"error,omitempty"`
}

// SessionInfo is a read-only snapshot of the shell session
type SessionInfo struct {
	ID         string     `json:"id,omitempty"`
	Shell      string     `json:"shell"`
	PID        int        `json:"pid,omitempty"`
	State      State      `json:"state"`
	PTY        bool       `json:"pty"`
	Cols       int        `json:"cols,omitempty"`
	Rows       int        `json:"rows,omitempty"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	ExitedAt   *time.Time `json:"exitedAt,omitempty"`
	ExitCode   *int       `json:"exitCode,omitempty"`
	Generation uint64     `json:"generation"`
}
