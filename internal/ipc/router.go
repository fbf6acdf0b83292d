package ipc

import (
	"context"
	"errors"
	"fmt"

	"github.com/asc2563/regression-thing/internal/infrastructure/logging"
	"github.com/asc2563/regression-thing/internal/infrastructure/monitoring"
	"github.com/asc2563/regression-thing/internal/infrastructure/tracing"
	"github.com/asc2563/regression-thing/internal/providers/terminal"
	"github.com/asc2563/regression-thing/internal/shared/id"
	"github.com/asc2563/regression-thing/internal/shared/types"
	"go.uber.org/zap"
)

// ErrSurfaceClosed is returned by Surface.Send once the surface is gone
var ErrSurfaceClosed = errors.New("surface closed")

// Surface is one connected front end
type Surface interface {
	ID() id.SurfaceID
	// Send queues a frame for delivery, blocking until queued or closed
	Send(Frame) error
}

// Files is the file operation service used by the router
type Files interface {
	Write(ctx context.Context, req types.WriteRequest) error
	Read(ctx context.Context, path string) (string, error)
	Delete(ctx context.Context, path string) error
	Rename(ctx context.Context, req types.RenameRequest) error
	List(ctx context.Context, dir string) ([]types.FileEntry, error)
}

// Shell is the shell bridge used by the router
type Shell interface {
	Submit(input string) error
	Status() terminal.SessionInfo
	Resize(cols, rows int) error
	Listeners() *terminal.Registry
}

// Router dispatches inbound frames to the host services
type Router struct {
	files   Files
	shell   Shell
	tracer  *tracing.Tracer
	log     *zap.Logger
	metrics *monitoring.Metrics
}

// NewRouter creates a router; tracer and metrics may be nil
func NewRouter(files Files, shell Shell, tracer *tracing.Tracer, logger *zap.Logger, metrics *monitoring.Metrics) *Router {
	return &Router{
		files:   files,
		shell:   shell,
		tracer:  tracer,
		log:     logging.Component(logger, "ipc"),
		metrics: metrics,
	}
}

// Attach subscribes a new surface to every shell event kind
func (r *Router) Attach(s Surface) {
	for _, kind := range terminal.Kinds {
		r.listen(s, kind)
	}
}

// Detach removes all of a surface's listeners
func (r *Router) Detach(s Surface) {
	r.shell.Listeners().DetachOwner(s.ID())
}

// listen attaches s to kind unless it already is
func (r *Router) listen(s Surface, kind terminal.EventKind) {
	reg := r.shell.Listeners()
	if reg.Has(s.ID(), kind) {
		return
	}
	reg.Subscribe(s.ID(), kind, func(ev terminal.Event) {
		frame, err := EventFrame(ev)
		if err != nil {
			r.log.Error("Error encoding shell event", zap.Error(err))
			return
		}
		if err := s.Send(frame); err != nil && !errors.Is(err, ErrSurfaceClosed) {
			r.log.Warn("Error delivering shell event",
				zap.String("surface_id", s.ID().String()),
				zap.Error(err),
			)
		}
	})
}

// EventFrame converts a shell event into its channel frame
func EventFrame(ev terminal.Event) (Frame, error) {
	switch ev.Kind {
	case terminal.KindOutput:
		return NewFrame("", ChannelTerminalOutput, ev.Data)
	case terminal.KindError:
		return NewFrame("", ChannelTerminalError, ev.Data)
	case terminal.KindExit:
		return NewFrame("", ChannelTerminalExit, ev.Exit)
	default:
		return Frame{}, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

// Handle processes one inbound frame and sends any reply to s
func (r *Router) Handle(ctx context.Context, s Surface, f Frame) {
	r.metrics.RecordMessage("in", f.Channel)

	var span *tracing.Span
	if r.tracer != nil {
		span, ctx = r.tracer.StartSpan(ctx, f.Channel)
		span.SetTag("surface_id", s.ID().String())
		defer func() {
			span.Finish()
			r.tracer.Submit(span)
		}()
	}

	reply, err := r.dispatch(ctx, s, f)
	if err != nil && span != nil {
		span.SetError(err)
	}
	if reply == nil {
		return
	}

	if err := s.Send(*reply); err != nil && !errors.Is(err, ErrSurfaceClosed) {
		r.log.Warn("Error sending reply",
			zap.String("channel", reply.Channel),
			zap.String("surface_id", s.ID().String()),
			zap.Error(err),
		)
	}
}

// dispatch returns the reply frame (nil for none) and the operation's error
func (r *Router) dispatch(ctx context.Context, s Surface, f Frame) (*Frame, error) {
	switch f.Channel {
	case ChannelWriteFile:
		var req types.WriteRequest
		err := f.Decode(&req)
		if err == nil {
			err = r.files.Write(ctx, req)
		}
		return r.result(f.ID, f.Channel, err)

	case ChannelReadFile:
		var path string
		err := f.Decode(&path)
		if err != nil {
			return r.failure(f.ID, f.Channel, err)
		}
		content, err := r.files.Read(ctx, path)
		if err != nil {
			return r.failure(f.ID, f.Channel, err)
		}
		return r.reply(f.ID, f.Channel, content, nil)

	case ChannelDeleteFile:
		var path string
		err := f.Decode(&path)
		if err == nil {
			err = r.files.Delete(ctx, path)
		}
		return r.result(f.ID, ChannelDeleteComplete, err)

	case ChannelRenameFile:
		var req types.RenameRequest
		err := f.Decode(&req)
		if err == nil {
			err = r.files.Rename(ctx, req)
		}
		return r.result(f.ID, f.Channel, err)

	case ChannelListFiles:
		var dir string
		err := f.Decode(&dir)
		var files []types.FileEntry
		if err == nil {
			files, err = r.files.List(ctx, dir)
		}
		if err != nil {
			return r.reply(f.ID, f.Channel, types.ListFail(err), err)
		}
		return r.reply(f.ID, f.Channel, types.ListOK(files), nil)

	case ChannelTerminalInput:
		var input string
		err := f.Decode(&input)
		if err == nil {
			err = r.shell.Submit(input)
		}
		if err != nil {
			// No reply channel exists for input; the surface hears about it
			// the same way it hears about shell failures
			frame, ferr := NewFrame("", ChannelTerminalError, err.Error())
			if ferr != nil {
				return nil, ferr
			}
			return &frame, err
		}
		return nil, nil

	case ChannelTerminalOutputOn:
		r.listen(s, terminal.KindOutput)
		return nil, nil
	case ChannelTerminalErrorOn:
		r.listen(s, terminal.KindError)
		return nil, nil
	case ChannelTerminalOutputOff:
		r.shell.Listeners().Detach(s.ID(), terminal.KindOutput)
		return nil, nil
	case ChannelTerminalErrorOff:
		r.shell.Listeners().Detach(s.ID(), terminal.KindError)
		return nil, nil

	case ChannelTerminalStatus:
		return r.reply(f.ID, f.Channel, r.shell.Status(), nil)

	case ChannelTerminalResize:
		var req ResizeRequest
		err := f.Decode(&req)
		if err == nil {
			err = r.shell.Resize(req.Cols, req.Rows)
		}
		return r.result(f.ID, f.Channel, err)

	case ChannelPing:
		return r.reply(f.ID, ChannelPong, nil, nil)

	default:
		err := fmt.Errorf("%w: unknown channel %q", types.ErrInvalidRequest, f.Channel)
		frame := ErrorFrame(f.ID, ChannelError, err)
		return &frame, err
	}
}

// result replies with an OperationResult envelope
func (r *Router) result(reqID, channel string, err error) (*Frame, error) {
	if err != nil {
		r.log.Debug("Operation failed", zap.String("channel", channel), zap.Error(err))
		return r.reply(reqID, channel, types.Fail(err), err)
	}
	return r.reply(reqID, channel, types.OK(nil), nil)
}

// failure replies with the error set on the frame itself
func (r *Router) failure(reqID, channel string, err error) (*Frame, error) {
	r.log.Debug("Operation failed", zap.String("channel", channel), zap.Error(err))
	frame := ErrorFrame(reqID, channel, err)
	return &frame, err
}

func (r *Router) reply(reqID, channel string, payload interface{}, opErr error) (*Frame, error) {
	frame, err := NewFrame(reqID, channel, payload)
	if err != nil {
		return r.failure(reqID, channel, err)
	}
	return &frame, opErr
}
