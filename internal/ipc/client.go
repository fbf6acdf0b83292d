package ipc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/asc2563/regression-thing/internal/providers/terminal"
	"github.com/asc2563/regression-thing/internal/shared/id"
	"github.com/asc2563/regression-thing/internal/shared/types"
	"github.com/gorilla/websocket"
)

// ErrClientClosed is returned for calls made after the connection ended
var ErrClientClosed = errors.New("ipc client closed")

const writeWait = 10 * time.Second

// Client is the front end's side of the channel
type Client struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	mu       sync.Mutex
	pending  map[string]chan Frame
	onOutput []func(string)
	onError  []func(string)
	onExit   []func(terminal.ExitStatus)

	done    chan struct{}
	readErr error
}

// Dial connects to the host's channel endpoint, e.g. ws://127.0.0.1:8000/ipc
func Dial(ctx context.Context, url string, header http.Header) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &Client{
		conn:    conn,
		pending: make(map[string]chan Frame),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Done is closed when the connection ends
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close closes the connection
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}

// WriteFile creates or overwrites a file
func (c *Client) WriteFile(ctx context.Context, path, content string) (types.OperationResult, error) {
	var res types.OperationResult
	err := c.invoke(ctx, ChannelWriteFile, types.WriteRequest{Path: path, Content: content}, &res)
	return res, err
}

// ReadFile returns a file's content; a failed read is returned as an error
func (c *Client) ReadFile(ctx context.Context, path string) (string, error) {
	var content string
	err := c.invoke(ctx, ChannelReadFile, path, &content)
	return content, err
}

// DeleteFile removes a file and waits for the completion event
func (c *Client) DeleteFile(ctx context.Context, path string) (types.OperationResult, error) {
	var res types.OperationResult
	err := c.invoke(ctx, ChannelDeleteFile, path, &res)
	return res, err
}

// RenameFile moves a file without overwriting the destination
func (c *Client) RenameFile(ctx context.Context, oldPath, newPath string) (types.OperationResult, error) {
	var res types.OperationResult
	err := c.invoke(ctx, ChannelRenameFile, types.RenameRequest{OldPath: oldPath, NewPath: newPath}, &res)
	return res, err
}

// ListFiles describes the children of a directory
func (c *Client) ListFiles(ctx context.Context, dir string) (types.ListResult, error) {
	var res types.ListResult
	err := c.invoke(ctx, ChannelListFiles, dir, &res)
	return res, err
}

// TerminalStatus returns the shell session snapshot
func (c *Client) TerminalStatus(ctx context.Context) (terminal.SessionInfo, error) {
	var info terminal.SessionInfo
	err := c.invoke(ctx, ChannelTerminalStatus, nil, &info)
	return info, err
}

// ResizeTerminal changes the terminal size (PTY mode only)
func (c *Client) ResizeTerminal(ctx context.Context, cols, rows int) (types.OperationResult, error) {
	var res types.OperationResult
	err := c.invoke(ctx, ChannelTerminalResize, ResizeRequest{Cols: cols, Rows: rows}, &res)
	return res, err
}

// Ping round-trips an empty frame
func (c *Client) Ping(ctx context.Context) error {
	return c.invoke(ctx, ChannelPing, nil, nil)
}

// SendTerminalInput submits one line to the shell without waiting
func (c *Client) SendTerminalInput(text string) error {
	frame, err := NewFrame("", ChannelTerminalInput, text)
	if err != nil {
		return err
	}
	return c.write(frame)
}

// OnTerminalOutput registers fn for shell output chunks
func (c *Client) OnTerminalOutput(fn func(string)) error {
	c.mu.Lock()
	c.onOutput = append(c.onOutput, fn)
	c.mu.Unlock()
	return c.write(Frame{Channel: ChannelTerminalOutputOn})
}

// OnTerminalError registers fn for shell error chunks
func (c *Client) OnTerminalError(fn func(string)) error {
	c.mu.Lock()
	c.onError = append(c.onError, fn)
	c.mu.Unlock()
	return c.write(Frame{Channel: ChannelTerminalErrorOn})
}

// OnTerminalExit registers fn for shell exit notices
func (c *Client) OnTerminalExit(fn func(terminal.ExitStatus)) {
	c.mu.Lock()
	c.onExit = append(c.onExit, fn)
	c.mu.Unlock()
}

// OffTerminalOutput drops every output handler and stops output delivery
func (c *Client) OffTerminalOutput() error {
	c.mu.Lock()
	c.onOutput = nil
	c.mu.Unlock()
	return c.write(Frame{Channel: ChannelTerminalOutputOff})
}

// OffTerminalError drops every error handler and stops error delivery
func (c *Client) OffTerminalError() error {
	c.mu.Lock()
	c.onError = nil
	c.mu.Unlock()
	return c.write(Frame{Channel: ChannelTerminalErrorOff})
}

// invoke sends a request and decodes the reply into out
func (c *Client) invoke(ctx context.Context, channel string, payload, out interface{}) error {
	frame, err := NewFrame(id.NewRequestID().String(), channel, payload)
	if err != nil {
		return err
	}

	replies := make(chan Frame, 1)
	c.mu.Lock()
	c.pending[frame.ID] = replies
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, frame.ID)
		c.mu.Unlock()
	}()

	if err := c.write(frame); err != nil {
		return err
	}

	select {
	case reply := <-replies:
		if err := reply.Err(); err != nil {
			return err
		}
		if out == nil || len(reply.Payload) == 0 {
			return nil
		}
		return reply.Decode(out)
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return c.closedErr()
	}
}

func (c *Client) write(f Frame) error {
	select {
	case <-c.done:
		return c.closedErr()
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(f)
}

func (c *Client) readLoop() {
	defer close(c.done)

	for {
		var f Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()
			return
		}
		c.dispatch(f)
	}
}

func (c *Client) dispatch(f Frame) {
	c.mu.Lock()
	if f.ID != "" {
		if replies, ok := c.pending[f.ID]; ok {
			delete(c.pending, f.ID)
			c.mu.Unlock()
			replies <- f
			return
		}
	}
	output := c.onOutput
	errs := c.onError
	exits := c.onExit
	c.mu.Unlock()

	switch f.Channel {
	case ChannelTerminalOutput, ChannelTerminalError:
		var chunk string
		if f.Decode(&chunk) != nil {
			return
		}
		handlers := output
		if f.Channel == ChannelTerminalError {
			handlers = errs
		}
		for _, fn := range handlers {
			fn(chunk)
		}
	case ChannelTerminalExit:
		var status terminal.ExitStatus
		if f.Decode(&status) != nil {
			return
		}
		for _, fn := range exits {
			fn(status)
		}
	}
}

func (c *Client) closedErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil && !websocket.IsCloseError(c.readErr, websocket.CloseNormalClosure) {
		return fmt.Errorf("%w: %v", ErrClientClosed, c.readErr)
	}
	return ErrClientClosed
}
