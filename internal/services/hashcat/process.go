package hashcat

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"lovelyhashcat/internal/logging"
	"lovelyhashcat/internal/services"
)

const (
	// DefaultStartTimeout bounds how long Start waits for the child to launch.
	DefaultStartTimeout = 3 * time.Second
	// DefaultKillGrace is the window between the graceful signal and a forced kill.
	DefaultKillGrace = 2 * time.Second

	readChunkSize = 32 * 1024
)

// State is the observable lifecycle of a supervised process.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateExited
	StateCrashed
	StateFailedToStart
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateRunning:
		return "Running"
	case StateExited:
		return "Exited"
	case StateCrashed:
		return "Crashed"
	case StateFailedToStart:
		return "FailedToStart"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ExitStatus distinguishes a normal exit from termination by signal.
type ExitStatus string

const (
	ExitNormal  ExitStatus = "Exited"
	ExitCrashed ExitStatus = "Crashed"
)

// ExitResult describes how a supervised process ended.
type ExitResult struct {
	Code      int        `json:"code"`
	Status    ExitStatus `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	StoppedAt time.Time  `json:"stopped_at"`
	// Err carries wait or read failures; a non-zero exit code alone is not an error.
	Err error `json:"-"`
}

// Stream identifies which pipe a chunk arrived on.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// ChunkHandler receives decoded output. Each chunk ends on a line boundary
// except possibly the final flush at EOF.
type ChunkHandler func(stream Stream, chunk string)

// Supervisor launches and tracks hashcat child processes.
type Supervisor struct {
	startTimeout time.Duration
	killGrace    time.Duration
	logger       *slog.Logger
}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithStartTimeout overrides the launch confirmation window.
func WithStartTimeout(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		if d > 0 {
			s.startTimeout = d
		}
	}
}

// WithKillGrace overrides the graceful termination window.
func WithKillGrace(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		if d > 0 {
			s.killGrace = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) SupervisorOption {
	return func(s *Supervisor) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSupervisor constructs a supervisor with reference timings.
func NewSupervisor(opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		startTimeout: DefaultStartTimeout,
		killGrace:    DefaultKillGrace,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process is a handle to one spawned child. It is owned by the component that
// started it.
type Process struct {
	cmd       *exec.Cmd
	killGrace time.Duration
	logger    *slog.Logger

	mu        sync.Mutex
	state     State
	stopping  bool
	killTimer *time.Timer
	result    ExitResult

	done chan struct{}
}

// Start spawns cmd and returns once the child is confirmed running. Output is
// delivered asynchronously to onChunk from the reader goroutines.
func (s *Supervisor) Start(command Command, onChunk ChunkHandler) (*Process, error) {
	if err := validateExecutable(command.Binary); err != nil {
		return nil, err
	}

	cmd := exec.Command(command.Binary, command.Args...) //nolint:gosec
	cmd.Dir = command.WorkDir
	configureProcAttr(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrSpawnFailure, "hashcat", "start", "stdout pipe", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrSpawnFailure, "hashcat", "start", "stderr pipe", err)
	}

	p := &Process{
		cmd:       cmd,
		killGrace: s.killGrace,
		logger:    s.logger,
		state:     StateNotStarted,
		done:      make(chan struct{}),
	}

	started := make(chan error, 1)
	go func() {
		started <- cmd.Start()
	}()

	select {
	case err := <-started:
		if err != nil {
			p.setState(StateFailedToStart)
			return nil, services.Wrap(services.ErrSpawnFailure, "hashcat", "start", command.Binary, err)
		}
	case <-time.After(s.startTimeout):
		p.setState(StateFailedToStart)
		go func() {
			if err := <-started; err == nil {
				_ = forceKill(cmd.Process)
				_ = cmd.Wait()
			}
		}()
		return nil, services.Wrap(services.ErrProcessTimeout, "hashcat", "start", fmt.Sprintf("process did not start within %s", s.startTimeout), nil)
	}

	p.mu.Lock()
	p.state = StateRunning
	p.result.StartedAt = time.Now()
	p.mu.Unlock()

	s.logger.Debug("hashcat process started",
		logging.Int("pid", cmd.Process.Pid),
		logging.String("dir", command.WorkDir),
		logging.String(logging.FieldEventType, "process_started"),
	)

	go p.supervise(stdout, stderr, onChunk)
	return p, nil
}

func (p *Process) supervise(stdout, stderr io.Reader, onChunk ChunkHandler) {
	var wg sync.WaitGroup
	var readErr error
	var once sync.Once

	read := func(r io.Reader, stream Stream) {
		defer wg.Done()
		if err := pumpChunks(r, func(chunk string) {
			if onChunk != nil {
				onChunk(stream, chunk)
			}
		}); err != nil {
			once.Do(func() {
				readErr = err
			})
		}
	}

	wg.Add(2)
	go read(stdout, Stdout)
	go read(stderr, Stderr)
	wg.Wait()

	waitErr := p.cmd.Wait()

	p.mu.Lock()
	if p.killTimer != nil {
		p.killTimer.Stop()
		p.killTimer = nil
	}
	p.result.StoppedAt = time.Now()
	p.result.Code, p.result.Status = classifyExit(p.cmd.ProcessState)
	if p.result.Status == ExitCrashed {
		p.state = StateCrashed
	} else {
		p.state = StateExited
	}
	var exitErr *exec.ExitError
	switch {
	case waitErr != nil && !errors.As(waitErr, &exitErr):
		p.result.Err = services.Wrap(services.ErrProcessCrashed, "hashcat", "wait", "", waitErr)
	case readErr != nil:
		p.result.Err = services.Wrap(services.ErrIO, "hashcat", "read output", "", readErr)
	case p.result.Status == ExitCrashed && !p.stopping:
		p.result.Err = services.Wrap(services.ErrProcessCrashed, "hashcat", "wait", "terminated by signal", nil)
	}
	p.mu.Unlock()

	close(p.done)
}

// pumpChunks reads r and forwards text ending on line boundaries. A partial
// trailing line is held until more data or EOF arrives.
func pumpChunks(r io.Reader, forward func(string)) error {
	buf := make([]byte, readChunkSize)
	var pending []byte
	for {
		n, err := r.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			if idx := lastLineBreak(pending); idx >= 0 {
				forward(string(pending[:idx+1]))
				pending = append(pending[:0], pending[idx+1:]...)
			}
		}
		if err != nil {
			if len(pending) > 0 {
				forward(string(pending))
			}
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

func lastLineBreak(b []byte) int {
	return bytes.LastIndexAny(b, "\r\n")
}

func classifyExit(state *os.ProcessState) (int, ExitStatus) {
	if state == nil {
		return -1, ExitCrashed
	}
	code := state.ExitCode()
	if code < 0 {
		return code, ExitCrashed
	}
	return code, ExitNormal
}

// Stop asks the process to terminate gracefully and force-kills it if it is
// still running after the grace window. Stopping an exited process is a no-op
// and reports false.
func (p *Process) Stop() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateRunning || p.stopping {
		return false
	}
	p.stopping = true
	if err := terminate(p.cmd.Process); err != nil {
		p.logger.Debug("graceful terminate failed; killing", logging.Error(err))
		_ = forceKill(p.cmd.Process)
		return true
	}
	p.killTimer = time.AfterFunc(p.killGrace, p.killIfRunning)
	return true
}

func (p *Process) killIfRunning() {
	p.mu.Lock()
	running := p.state == StateRunning
	p.mu.Unlock()
	if !running {
		return
	}
	p.logger.Info("hashcat did not exit within grace window; killing",
		logging.Duration("grace", p.killGrace),
		logging.String(logging.FieldEventType, "process_force_kill"),
	)
	_ = forceKill(p.cmd.Process)
}

// Wait blocks until the process exits and its output has been drained.
func (p *Process) Wait() ExitResult {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Done is closed once the process has exited and output is drained.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// State returns the current lifecycle state.
func (p *Process) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Stopping reports whether Stop has been requested.
func (p *Process) Stopping() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopping
}

// PID returns the child process identifier.
func (p *Process) PID() int {
	if p == nil || p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *Process) setState(state State) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}
