package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/asc2563/regression-thing/internal/infrastructure/config"
	"github.com/asc2563/regression-thing/internal/infrastructure/logging"
	"github.com/asc2563/regression-thing/internal/infrastructure/monitoring"
	"github.com/asc2563/regression-thing/internal/infrastructure/resilience"
	"github.com/asc2563/regression-thing/internal/shared/types"
	"github.com/creack/pty"
	"go.uber.org/zap"
)

const (
	defaultCols = 80
	defaultRows = 24
)

// Bridge owns the single shell process and fans its output out to listeners
type Bridge struct {
	cfg      config.ShellConfig
	log      *zap.Logger
	metrics  *monitoring.Metrics
	registry *Registry
	breaker  *resilience.Breaker

	inputs    chan string
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	mu         sync.RWMutex
	closed     bool
	state      State
	current    *session
	generation uint64
	cols, rows int
	last       SessionInfo
}

// NewBridge creates a bridge and starts its input actor.
// No process is spawned until the first Submit.
func NewBridge(cfg config.ShellConfig, logger *zap.Logger, metrics *monitoring.Metrics) *Bridge {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}

	log := logging.Component(logger, "terminal")
	b := &Bridge{
		cfg:      cfg,
		log:      log,
		metrics:  metrics,
		registry: NewRegistry(metrics),
		inputs:   make(chan string, cfg.QueueSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		state:    StateUnstarted,
		cols:     defaultCols,
		rows:     defaultRows,
	}

	b.breaker = resilience.New("shell-spawn", resilience.Settings{
		Threshold: cfg.SpawnFailures,
		Cooldown:  cfg.SpawnCooldown,
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn("Spawn breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})

	metrics.SetShellState(StateUnstarted.Gauge())
	go b.run()
	return b
}

// Listeners returns the registry that receives shell events
func (b *Bridge) Listeners() *Registry {
	return b.registry
}

// Submit queues one line of input for the shell. It never blocks: the line is
// written (with a trailing newline) by the bridge's actor, spawning the shell
// first if none is running. Failures after queueing surface as error events.
func (b *Bridge) Submit(input string) error {
	b.mu.RLock()
	closed, state := b.closed, b.state
	b.mu.RUnlock()

	if closed {
		b.metrics.RecordInput("rejected")
		return ErrBridgeClosed
	}
	if state != StateRunning && b.breaker.State() == resilience.StateOpen {
		b.metrics.RecordInput("rejected")
		return fmt.Errorf("%w: shell failed to start %d times in a row", ErrProcessUnavailable, b.cfg.SpawnFailures)
	}

	select {
	case b.inputs <- input:
		b.metrics.RecordInput("queued")
		return nil
	default:
		b.metrics.RecordInput("dropped")
		return ErrQueueFull
	}
}

// Status returns a snapshot of the current (or most recent) session
func (b *Bridge) Status() SessionInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()

	info := b.last
	info.State = b.state
	info.Generation = b.generation
	info.PTY = b.cfg.UsePTY
	if b.cfg.UsePTY {
		info.Cols, info.Rows = b.cols, b.rows
	}
	if info.Shell == "" {
		info.Shell, _ = b.command()
	}
	return info
}

// Resize changes the terminal dimensions. The size is remembered and applied
// to later sessions too.
func (b *Bridge) Resize(cols, rows int) error {
	if !b.cfg.UsePTY {
		return ErrResizeUnsupported
	}
	if cols <= 0 || rows <= 0 || cols > 0xffff || rows > 0xffff {
		return fmt.Errorf("%w: invalid terminal size %dx%d", types.ErrInvalidRequest, cols, rows)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.cols, b.rows = cols, rows
	if b.current == nil || b.current.ptmx == nil {
		return nil
	}
	return pty.Setsize(b.current.ptmx, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
}

// Close stops accepting input, kills the shell and drops every listener once
// the exit event is out. It is meant for host shutdown only.
func (b *Bridge) Close(ctx context.Context) error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
		close(b.done)
	})

	// The actor may be blocked writing to a busy shell until it dies
	first := b.killCurrent()

	select {
	case <-b.stopped:
	case <-ctx.Done():
		return ctx.Err()
	}

	// A spawn that raced the close is caught here
	for _, s := range []*session{first, b.killCurrent()} {
		if s == nil {
			continue
		}
		select {
		case <-s.exited:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for _, kind := range Kinds {
		b.registry.DetachAll(kind)
	}
	return nil
}

// killCurrent kills the current session, if any, and returns it
func (b *Bridge) killCurrent() *session {
	b.mu.RLock()
	s := b.current
	b.mu.RUnlock()

	if s != nil {
		s.kill()
	}
	return s
}

// run is the actor: the only goroutine that spawns or writes stdin
func (b *Bridge) run() {
	defer close(b.stopped)

	for {
		select {
		case <-b.done:
			return
		case input := <-b.inputs:
			b.deliver(input)
		}
	}
}

// deliver writes input to the current shell. If the shell turns out to have
// exited already, the input goes to a freshly spawned one instead.
func (b *Bridge) deliver(input string) {
	for retried := false; ; retried = true {
		s, err := b.ensureSession()
		if errors.Is(err, ErrBridgeClosed) {
			return
		}
		if err != nil {
			b.log.Warn("Dropping shell input", zap.Error(err))
			b.publishError(nil, err.Error())
			return
		}

		_, err = io.WriteString(s.stdin, input+"\n")
		if err == nil {
			return
		}

		exited := s.awaitReap(reapGrace)
		b.detach(s)
		s.kill()

		if exited && !retried {
			b.log.Debug("Shell exited before input arrived, respawning",
				zap.Uint64("generation", s.generation),
			)
			continue
		}

		b.log.Error("Error writing to shell", zap.Uint64("generation", s.generation), zap.Error(err))
		b.publishError(s, fmt.Sprintf("failed to write to shell: %v", err))
		return
	}
}

// ensureSession returns the running session, spawning one if needed
func (b *Bridge) ensureSession() (*session, error) {
	b.mu.RLock()
	s, closed := b.current, b.closed
	b.mu.RUnlock()
	if closed {
		return nil, ErrBridgeClosed
	}
	if s != nil {
		return s, nil
	}

	err := b.breaker.Run(func() error {
		var spawnErr error
		s, spawnErr = b.spawn()
		return spawnErr
	})
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return nil, fmt.Errorf("%w: shell failed to start %d times in a row", ErrProcessUnavailable, b.cfg.SpawnFailures)
	case err != nil:
		b.metrics.RecordSpawn("error")
		b.log.Warn("Shell spawn failed",
			zap.String("breaker", b.breaker.Name()),
			zap.Uint32("consecutive_failures", b.breaker.Failures()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to start shell: %w", err)
	}

	b.metrics.RecordSpawn("success")
	return s, nil
}

// detach forgets s if it is still the current session
func (b *Bridge) detach(s *session) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current != s {
		return
	}
	b.current = nil
	b.state = StateTerminated
	b.metrics.SetShellState(StateTerminated.Gauge())
}

func (b *Bridge) publishError(s *session, msg string) {
	var generation uint64
	if s != nil {
		generation = s.generation
	} else {
		b.mu.RLock()
		generation = b.generation
		b.mu.RUnlock()
	}

	b.metrics.RecordChunk(string(KindError), len(msg))
	b.registry.Publish(Event{Kind: KindError, Data: msg, Generation: generation})
}

func timePtr(t time.Time) *time.Time { return &t }
