package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/asc2563/regression-thing/internal/shared/id"
	"github.com/creack/pty"
	"go.uber.org/zap"
)

const (
	chunkSize = 4096
	// drainTimeout bounds how long output is read after the shell exits,
	// since background jobs may keep the pipes open
	drainTimeout = 2 * time.Second
	// reapGrace is how long a failed stdin write waits to learn whether the
	// shell had already exited
	reapGrace = 250 * time.Millisecond
)

// session is one spawned shell process
type session struct {
	id         id.SessionID
	generation uint64
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	ptmx       *os.File
	outputs    []*os.File
	startedAt  time.Time

	// reaped closes once Wait returns, exited once the exit event is out
	reaped chan struct{}
	exited chan struct{}

	closeMu sync.Mutex
	closed  bool
}

func (s *session) closeInput() {
	if s.stdin != nil && s.ptmx == nil {
		s.stdin.Close()
	}
}

// closeOutputs unblocks any reader still attached to the process
func (s *session) closeOutputs() {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for _, f := range s.outputs {
		f.Close()
	}
}

func (s *session) kill() {
	if s.cmd.Process != nil {
		killProcess(s.cmd.Process)
	}
	s.closeInput()
	if s.ptmx != nil {
		// The terminal is both stdin and output; closing it unblocks a writer
		s.closeOutputs()
	}
}

// awaitReap reports whether the process is reaped within d
func (s *session) awaitReap(d time.Duration) bool {
	select {
	case <-s.reaped:
		return true
	case <-time.After(d):
		return false
	}
}

// command resolves the shell program and arguments
func (b *Bridge) command() (string, []string) {
	program, args := b.cfg.Program, b.cfg.Args
	if program != "" {
		return program, args
	}

	if runtime.GOOS == "windows" {
		if args == nil {
			args = []string{"-NoLogo"}
		}
		return "powershell.exe", args
	}

	if shell := os.Getenv("SHELL"); shell != "" {
		return shell, args
	}
	return "/bin/sh", args
}

func (b *Bridge) workingDir() string {
	if b.cfg.WorkingDir != "" {
		return b.cfg.WorkingDir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return ""
}

// spawn starts a new shell process and its reader and monitor goroutines
func (b *Bridge) spawn() (*session, error) {
	program, args := b.command()

	cmd := exec.Command(program, args...)
	cmd.Dir = b.workingDir()
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	configureProcess(cmd, b.cfg.UsePTY)

	s := &session{
		id:     id.NewSessionID(),
		cmd:    cmd,
		reaped: make(chan struct{}),
		exited: make(chan struct{}),
	}

	var streams map[*os.File]EventKind
	var err error
	if b.cfg.UsePTY {
		streams, err = b.startPTY(s)
	} else {
		streams, err = startPipes(s)
	}
	if err != nil {
		return nil, err
	}
	s.startedAt = time.Now()

	b.mu.Lock()
	b.generation++
	s.generation = b.generation
	b.current = s
	b.state = StateRunning
	b.last = SessionInfo{
		ID:        s.id.String(),
		Shell:     program,
		PID:       cmd.Process.Pid,
		StartedAt: timePtr(s.startedAt),
	}
	b.mu.Unlock()

	b.metrics.SetShellState(StateRunning.Gauge())
	b.log.Info("Shell started",
		zap.String("session_id", s.id.String()),
		zap.String("shell", program),
		zap.Int("pid", cmd.Process.Pid),
		zap.Uint64("generation", s.generation),
		zap.Bool("pty", b.cfg.UsePTY),
	)

	var readers sync.WaitGroup
	for f, kind := range streams {
		readers.Add(1)
		go b.pump(s, f, kind, &readers)
	}
	go b.monitor(s, &readers)

	return s, nil
}

func (b *Bridge) startPTY(s *session) (map[*os.File]EventKind, error) {
	b.mu.RLock()
	size := &pty.Winsize{Rows: uint16(b.rows), Cols: uint16(b.cols)}
	b.mu.RUnlock()

	ptmx, err := pty.StartWithSize(s.cmd, size)
	if err != nil {
		return nil, fmt.Errorf("failed to start PTY: %w", err)
	}

	s.ptmx = ptmx
	s.stdin = ptmx
	s.outputs = []*os.File{ptmx}
	return map[*os.File]EventKind{ptmx: KindOutput}, nil
}

// startPipes uses os.Pipe rather than Cmd.StdoutPipe so the process can be
// reaped independently of the readers
func startPipes(s *session) (map[*os.File]EventKind, error) {
	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return nil, err
	}

	outR, outW, err := os.Pipe()
	if err != nil {
		stdin.Close()
		return nil, err
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		stdin.Close()
		outR.Close()
		outW.Close()
		return nil, err
	}

	s.cmd.Stdout = outW
	s.cmd.Stderr = errW
	startErr := s.cmd.Start()

	// The child holds its own copies of the write ends
	outW.Close()
	errW.Close()

	if startErr != nil {
		outR.Close()
		errR.Close()
		return nil, startErr
	}

	s.stdin = stdin
	s.outputs = []*os.File{outR, errR}
	return map[*os.File]EventKind{outR: KindOutput, errR: KindError}, nil
}

// pump publishes every chunk read from r, never splitting a UTF-8 sequence
func (b *Bridge) pump(s *session, r io.Reader, kind EventKind, wg *sync.WaitGroup) {
	defer wg.Done()

	buf := make([]byte, chunkSize)
	var pending []byte
	for {
		n, err := r.Read(buf)
		if n > 0 {
			data := append(pending, buf[:n]...)
			complete, rest := splitUTF8(data)
			pending = append([]byte(nil), rest...)
			if len(complete) > 0 {
				b.emit(s, kind, complete)
			}
		}
		if err != nil {
			if len(pending) > 0 {
				b.emit(s, kind, pending)
			}
			if !isClosedStream(err) {
				b.log.Debug("Shell stream closed", zap.String("stream", string(kind)), zap.Error(err))
			}
			return
		}
	}
}

func (b *Bridge) emit(s *session, kind EventKind, data []byte) {
	b.metrics.RecordChunk(string(kind), len(data))
	b.registry.Publish(Event{Kind: kind, Data: string(data), Generation: s.generation})
}

// monitor reaps the process, waits for its output and publishes the exit.
// The session stops being current as soon as the process is gone, so input
// arriving while output drains starts a new shell.
func (b *Bridge) monitor(s *session, readers *sync.WaitGroup) {
	defer close(s.exited)

	waitErr := s.cmd.Wait()

	code := -1
	if s.cmd.ProcessState != nil {
		code = s.cmd.ProcessState.ExitCode()
	}
	exitedAt := time.Now()

	b.mu.Lock()
	if b.current == s {
		b.current = nil
		b.state = StateTerminated
	}
	if b.last.ID == s.id.String() {
		b.last.ExitedAt = timePtr(exitedAt)
		b.last.ExitCode = &code
	}
	b.mu.Unlock()
	b.metrics.SetShellState(b.Status().State.Gauge())
	close(s.reaped)

	drained := make(chan struct{})
	go func() {
		readers.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(drainTimeout):
		s.closeOutputs()
		<-drained
	}
	s.closeOutputs()
	s.closeInput()

	status := &ExitStatus{Generation: s.generation, ExitCode: code}
	if waitErr != nil {
		status.Error = waitErr.Error()
	}

	b.log.Info("Shell exited",
		zap.String("session_id", s.id.String()),
		zap.Uint64("generation", s.generation),
		zap.Int("exit_code", code),
		zap.Duration("uptime", exitedAt.Sub(s.startedAt)),
	)
	b.registry.Publish(Event{Kind: KindExit, Exit: status, Generation: s.generation})
}

// splitUTF8 separates a trailing incomplete UTF-8 sequence from data
func splitUTF8(data []byte) (complete, rest []byte) {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		c := data[len(data)-i]
		if c < utf8.RuneSelf {
			break
		}
		if utf8.RuneStart(c) {
			if !utf8.FullRune(data[len(data)-i:]) {
				return data[:len(data)-i], data[len(data)-i:]
			}
			break
		}
	}
	return data, nil
}

// isClosedStream reports the errors that mean a stream simply ended.
// Linux PTYs report EIO once the child side is gone.
func isClosedStream(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) || errors.Is(err, syscall.EIO)
}
