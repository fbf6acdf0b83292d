package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/asc2563/regression-thing/internal/shared/types"
)

// Channel names
const (
	ChannelWriteFile      = "write-file"
	ChannelReadFile       = "read-file"
	ChannelDeleteFile     = "delete-file"
	ChannelDeleteComplete = "delete-file-complete"
	ChannelRenameFile     = "rename-file"
	ChannelListFiles      = "list-files"

	ChannelTerminalInput     = "terminal-input"
	ChannelTerminalOutput    = "terminal-output"
	ChannelTerminalError     = "terminal-error"
	ChannelTerminalExit      = "terminal-exit"
	ChannelTerminalOutputOn  = "terminal-output-on"
	ChannelTerminalErrorOn   = "terminal-error-on"
	ChannelTerminalOutputOff = "terminal-output-off"
	ChannelTerminalErrorOff  = "terminal-error-off"
	ChannelTerminalStatus    = "terminal-status"
	ChannelTerminalResize    = "terminal-resize"

	ChannelPing  = "ping"
	ChannelPong  = "pong"
	ChannelError = "error"
)

// Frame is one message on the channel
type Frame struct {
	ID      string          `json:"id,omitempty"`
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    types.ErrorKind `json:"code,omitempty"`
}

// ResizeRequest is the payload of terminal-resize
type ResizeRequest struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// NewFrame builds a frame with payload encoded as JSON
func NewFrame(id, channel string, payload interface{}) (Frame, error) {
	f := Frame{ID: id, Channel: channel}
	if payload == nil {
		return f, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return f, fmt.Errorf("encode %s payload: %w", channel, err)
	}
	f.Payload = data
	return f, nil
}

// ErrorFrame builds a reply carrying only an error
func ErrorFrame(id, channel string, err error) Frame {
	return Frame{
		ID:      id,
		Channel: channel,
		Error:   err.Error(),
		Code:    types.Classify(err),
	}
}

// Decode unmarshals the frame's payload into v
func (f Frame) Decode(v interface{}) error {
	if len(f.Payload) == 0 {
		return fmt.Errorf("%w: %s: missing payload", types.ErrInvalidRequest, f.Channel)
	}
	if err := json.Unmarshal(f.Payload, v); err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrInvalidRequest, f.Channel, err)
	}
	return nil
}

// Err rebuilds the error carried by a frame, or nil
func (f Frame) Err() error {
	if f.Error == "" {
		return nil
	}
	return &RemoteError{Message: f.Error, Code: f.Code}
}

// RemoteError is a failure reported by the other end of the channel
type RemoteError struct {
	Message string
	Code    types.ErrorKind
}

func (e *RemoteError) Error() string { return e.Message }

// Unwrap exposes the matching sentinel so errors.Is works across the channel
func (e *RemoteError) Unwrap() error { return types.Sentinel(e.Code) }

// Concurrent reports whether frames on channel may be handled off the read
// loop. Terminal channels stay on it so input order is preserved.
func Concurrent(channel string) bool {
	switch channel {
	case ChannelWriteFile, ChannelReadFile, ChannelDeleteFile, ChannelRenameFile, ChannelListFiles:
		return true
	default:
		return false
	}
}
