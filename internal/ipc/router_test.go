package ipc

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/asc2563/regression-thing/internal/providers/filesystem"
	"github.com/asc2563/regression-thing/internal/providers/terminal"
	"github.com/asc2563/regression-thing/internal/shared/id"
	"github.com/asc2563/regression-thing/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSurface struct {
	id     id.SurfaceID
	mu     sync.Mutex
	frames []Frame
	closed bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{id: id.NewSurfaceID()}
}

func (s *fakeSurface) ID() id.SurfaceID { return s.id }

func (s *fakeSurface) Send(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSurfaceClosed
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *fakeSurface) take() []Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.frames
	s.frames = nil
	return out
}

type fakeShell struct {
	reg       *terminal.Registry
	mu        sync.Mutex
	inputs    []string
	submitErr error
	resizeErr error
}

func (f *fakeShell) Submit(input string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.inputs = append(f.inputs, input)
	return nil
}

func (f *fakeShell) Status() terminal.SessionInfo {
	return terminal.SessionInfo{Shell: "/bin/sh", State: terminal.StateUnstarted}
}

func (f *fakeShell) Resize(cols, rows int) error { return f.resizeErr }

func (f *fakeShell) Listeners() *terminal.Registry { return f.reg }

func newTestRouter() (*Router, *fakeShell) {
	shell := &fakeShell{reg: terminal.NewRegistry(nil)}
	files := filesystem.NewService(zap.NewNop(), nil)
	return NewRouter(files, shell, nil, zap.NewNop(), nil), shell
}

func request(t *testing.T, channel string, payload interface{}) Frame {
	t.Helper()
	f, err := NewFrame(id.NewRequestID().String(), channel, payload)
	require.NoError(t, err)
	return f
}

func single(t *testing.T, s *fakeSurface) Frame {
	t.Helper()
	frames := s.take()
	require.Len(t, frames, 1)
	return frames[0]
}

func TestRouterFileRoundTrip(t *testing.T) {
	router, _ := newTestRouter()
	s := newFakeSurface()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "a.txt")

	req := request(t, ChannelWriteFile, types.WriteRequest{Path: path, Content: "hi"})
	router.Handle(ctx, s, req)

	reply := single(t, s)
	assert.Equal(t, req.ID, reply.ID)
	assert.Equal(t, ChannelWriteFile, reply.Channel)
	assert.JSONEq(t, `{"success":true}`, string(reply.Payload))

	req = request(t, ChannelReadFile, path)
	router.Handle(ctx, s, req)

	reply = single(t, s)
	var content string
	require.NoError(t, reply.Decode(&content))
	assert.Equal(t, "hi", content)
}

func TestRouterReadFailureSetsFrameError(t *testing.T) {
	router, _ := newTestRouter()
	s := newFakeSurface()

	router.Handle(context.Background(), s, request(t, ChannelReadFile, filepath.Join(t.TempDir(), "missing")))

	reply := single(t, s)
	assert.NotEmpty(t, reply.Error)
	assert.Equal(t, types.KindNotFound, reply.Code)
	assert.Empty(t, reply.Payload)
	assert.ErrorIs(t, reply.Err(), types.ErrNotFound)
}

func TestRouterDeleteRepliesOnCompletionChannel(t *testing.T) {
	router, _ := newTestRouter()
	s := newFakeSurface()
	path := filepath.Join(t.TempDir(), "gone.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	req := request(t, ChannelDeleteFile, path)
	router.Handle(context.Background(), s, req)

	reply := single(t, s)
	assert.Equal(t, ChannelDeleteComplete, reply.Channel)
	assert.Equal(t, req.ID, reply.ID)
	assert.JSONEq(t, `{"success":true}`, string(reply.Payload))

	router.Handle(context.Background(), s, request(t, ChannelDeleteFile, path))
	var res types.OperationResult
	require.NoError(t, single(t, s).Decode(&res))
	assert.False(t, res.Success)
	assert.Equal(t, types.KindNotFound, res.Code)
}

func TestRouterRenameCollision(t *testing.T) {
	router, _ := newTestRouter()
	s := newFakeSurface()
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a"), filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("A"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("B"), 0o644))

	router.Handle(context.Background(), s, request(t, ChannelRenameFile, types.RenameRequest{OldPath: a, NewPath: b}))

	var res types.OperationResult
	require.NoError(t, single(t, s).Decode(&res))
	assert.False(t, res.Success)
	assert.Equal(t, types.KindAlreadyExists, res.Code)
	assert.Contains(t, res.Error, "destination already exists")
}

func TestRouterList(t *testing.T) {
	router, _ := newTestRouter()
	s := newFakeSurface()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.md"), []byte("#"), 0o644))

	router.Handle(context.Background(), s, request(t, ChannelListFiles, dir))
	var res types.ListResult
	require.NoError(t, single(t, s).Decode(&res))
	assert.True(t, res.Success)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "x.md", res.Files[0].Name)
	assert.Equal(t, ".md", res.Files[0].Extension)

	router.Handle(context.Background(), s, request(t, ChannelListFiles, filepath.Join(dir, "nope")))
	require.NoError(t, single(t, s).Decode(&res))
	assert.False(t, res.Success)
	assert.Equal(t, types.KindNotFound, res.Code)
}

func TestRouterMalformedPayload(t *testing.T) {
	router, _ := newTestRouter()
	s := newFakeSurface()

	router.Handle(context.Background(), s, Frame{ID: "1", Channel: ChannelWriteFile, Payload: []byte(`"not an object"`)})

	var res types.OperationResult
	require.NoError(t, single(t, s).Decode(&res))
	assert.False(t, res.Success)
	assert.Equal(t, types.KindInvalidRequest, res.Code)
}

func TestRouterTerminalInput(t *testing.T) {
	router, shell := newTestRouter()
	s := newFakeSurface()

	router.Handle(context.Background(), s, request(t, ChannelTerminalInput, "echo 1"))
	router.Handle(context.Background(), s, request(t, ChannelTerminalInput, "echo 2"))

	assert.Empty(t, s.take(), "input gets no reply")
	assert.Equal(t, []string{"echo 1", "echo 2"}, shell.inputs)

	shell.submitErr = terminal.ErrQueueFull
	router.Handle(context.Background(), s, request(t, ChannelTerminalInput, "echo 3"))

	reply := single(t, s)
	assert.Equal(t, ChannelTerminalError, reply.Channel)
	assert.Empty(t, reply.ID)
	var msg string
	require.NoError(t, reply.Decode(&msg))
	assert.Equal(t, terminal.ErrQueueFull.Error(), msg)
}

func TestRouterAttachAndDetach(t *testing.T) {
	router, shell := newTestRouter()
	a, b := newFakeSurface(), newFakeSurface()
	router.Attach(a)
	router.Attach(b)

	shell.reg.Publish(terminal.Event{Kind: terminal.KindOutput, Data: "one"})
	assert.Len(t, a.take(), 1)
	assert.Len(t, b.take(), 1)

	router.Handle(context.Background(), a, Frame{Channel: ChannelTerminalOutputOff})
	router.Handle(context.Background(), a, Frame{Channel: ChannelTerminalOutputOff})
	shell.reg.Publish(terminal.Event{Kind: terminal.KindOutput, Data: "two"})
	shell.reg.Publish(terminal.Event{Kind: terminal.KindError, Data: "bad"})

	framesA := a.take()
	require.Len(t, framesA, 1)
	assert.Equal(t, ChannelTerminalError, framesA[0].Channel)
	assert.Len(t, b.take(), 2)

	// Re-attaching twice must not duplicate delivery
	router.Handle(context.Background(), a, Frame{Channel: ChannelTerminalOutputOn})
	router.Handle(context.Background(), a, Frame{Channel: ChannelTerminalOutputOn})
	shell.reg.Publish(terminal.Event{Kind: terminal.KindOutput, Data: "three"})
	assert.Len(t, a.take(), 1)

	router.Detach(a)
	shell.reg.Publish(terminal.Event{Kind: terminal.KindExit, Exit: &terminal.ExitStatus{Generation: 1}})
	assert.Empty(t, a.take())

	exit := single(t, b)
	assert.Equal(t, ChannelTerminalExit, exit.Channel)
	assert.JSONEq(t, `{"generation":1,"exitCode":0}`, string(exit.Payload))
}

func TestRouterStatusResizePing(t *testing.T) {
	router, shell := newTestRouter()
	s := newFakeSurface()

	router.Handle(context.Background(), s, request(t, ChannelTerminalStatus, nil))
	var info terminal.SessionInfo
	require.NoError(t, single(t, s).Decode(&info))
	assert.Equal(t, terminal.StateUnstarted, info.State)

	shell.resizeErr = terminal.ErrResizeUnsupported
	router.Handle(context.Background(), s, request(t, ChannelTerminalResize, ResizeRequest{Cols: 80, Rows: 24}))
	var res types.OperationResult
	require.NoError(t, single(t, s).Decode(&res))
	assert.False(t, res.Success)
	assert.Equal(t, terminal.ErrResizeUnsupported.Error(), res.Error)

	req := request(t, ChannelPing, nil)
	router.Handle(context.Background(), s, req)
	pong := single(t, s)
	assert.Equal(t, ChannelPong, pong.Channel)
	assert.Equal(t, req.ID, pong.ID)
}

func TestRouterUnknownChannel(t *testing.T) {
	router, _ := newTestRouter()
	s := newFakeSurface()

	router.Handle(context.Background(), s, Frame{ID: "7", Channel: "format-disk"})

	reply := single(t, s)
	assert.Equal(t, ChannelError, reply.Channel)
	assert.Equal(t, "7", reply.ID)
	assert.Equal(t, types.KindInvalidRequest, reply.Code)
	assert.Contains(t, reply.Error, "format-disk")
}

func TestConcurrentChannels(t *testing.T) {
	assert.True(t, Concurrent(ChannelListFiles))
	assert.True(t, Concurrent(ChannelReadFile))
	assert.False(t, Concurrent(ChannelTerminalInput))
	assert.False(t, Concurrent(ChannelTerminalOutputOff))
}
