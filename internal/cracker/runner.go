package cracker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"lovelyhashcat/internal/config"
	"lovelyhashcat/internal/events"
	"lovelyhashcat/internal/fileutil"
	"lovelyhashcat/internal/logging"
	"lovelyhashcat/internal/services"
	"lovelyhashcat/internal/services/hashcat"
	"lovelyhashcat/internal/session"
	"lovelyhashcat/internal/textutil"
)

// ErrSessionActive is returned by Start while another session is live.
var ErrSessionActive = fmt.Errorf("%w: a cracking session is already active", services.ErrValidation)

// SessionInfo describes a session at launch for recorders.
type SessionInfo struct {
	ID          string
	AttackMode  hashcat.AttackMode
	HashMode    *int
	HashFile    string
	PotfilePath string
	SessionName string
	Command     string
	StartedAt   time.Time
}

// Recorder persists session launches. Results and exits reach it through the
// event hub.
type Recorder interface {
	BeginSession(ctx context.Context, info SessionInfo) error
}

// Runner drives at most one hashcat session at a time and publishes everything
// it observes to the hub.
type Runner struct {
	opts       Options
	hub        *events.Hub
	logger     *slog.Logger
	recorder   Recorder
	supervisor *hashcat.Supervisor

	mu      sync.Mutex
	current *run
}

type run struct {
	sess *session.Session
	lock *flock.Flock
	done chan struct{}
}

// Option customizes a Runner.
type Option func(*Runner)

// WithRecorder attaches a session recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// NewRunner constructs a runner. A nil hub gets a private one and a nil logger
// discards output.
func NewRunner(opts Options, hub *events.Hub, logger *slog.Logger, options ...Option) *Runner {
	if hub == nil {
		hub = events.NewHub(0)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	opts = opts.withDefaults()
	r := &Runner{
		opts:   opts,
		hub:    hub,
		logger: logging.NewComponentLogger(logger, "hashcat-runner"),
	}
	for _, option := range options {
		option(r)
	}
	r.supervisor = hashcat.NewSupervisor(
		hashcat.WithStartTimeout(opts.StartTimeout),
		hashcat.WithKillGrace(opts.KillGrace),
		hashcat.WithLogger(r.logger),
	)
	return r
}

// Start launches a cracking session for req and returns once the child is
// running. Output handling continues in the background until the exit
// sequence completes; use Wait to block on it.
func (r *Runner) Start(ctx context.Context, req hashcat.CrackRequest) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil && r.current.sess.State().Active() {
		return nil, ErrSessionActive
	}

	builder, err := r.builder()
	if err != nil {
		r.publishError("", err)
		return nil, err
	}
	req, err = r.applyDefaults(req, builder)
	if err != nil {
		r.publishError("", err)
		return nil, err
	}

	tempFile, err := r.materializeHashes(&req)
	if err != nil {
		r.publishError("", err)
		return nil, err
	}

	cmd, err := builder.Crack(req)
	if err != nil {
		r.discardTemp(tempFile)
		r.publishError("", err)
		return nil, err
	}

	sess := session.New(req, req.HashFile, tempFile, cmd.PotfilePath)
	logger := logging.WithContext(services.WithSessionID(ctx, sess.ID()), r.logger)
	r.transition(sess, session.StateStarting)

	lock, err := r.acquireLock(cmd.PotfilePath)
	if err != nil {
		r.abortStart(sess, err)
		return nil, err
	}

	proc, err := r.supervisor.Start(cmd, newOutputHandler(r, sess, logger).handle)
	if err != nil {
		r.releaseLock(lock)
		r.abortStart(sess, err)
		return nil, err
	}
	sess.AttachProcess(proc)
	r.transition(sess, session.StateRunning)

	logger.Info("hashcat session started",
		logging.String(logging.FieldEventType, "session_started"),
		logging.Int(logging.FieldPID, proc.PID()),
		logging.String("attack_mode", req.AttackMode.String()),
		logging.String("hash_file", req.HashFile),
		logging.String("potfile", cmd.PotfilePath),
	)

	if r.recorder != nil {
		info := SessionInfo{
			ID:          sess.ID(),
			AttackMode:  req.AttackMode,
			HashMode:    req.HashMode,
			HashFile:    req.HashFile,
			PotfilePath: cmd.PotfilePath,
			SessionName: req.SessionName,
			Command:     cmd.String(),
			StartedAt:   sess.CreatedAt(),
		}
		if err := r.recorder.BeginSession(ctx, info); err != nil {
			logging.WarnWithContext(logger, "failed to record session", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check history_db path permissions"),
			)
		}
	}

	current := &run{sess: sess, lock: lock, done: make(chan struct{})}
	r.current = current
	go r.awaitExit(current, proc, logger)
	return sess, nil
}

// Stop requests a graceful stop of the running session. It reports false,
// without error, when there is nothing to stop, including a child that has
// already exited while its exit sequence is still running.
func (r *Runner) Stop() bool {
	r.mu.Lock()
	current := r.current
	r.mu.Unlock()
	if current == nil {
		return false
	}
	sess := current.sess
	proc := sess.Process()
	if proc == nil || proc.State() != hashcat.StateRunning || proc.Stopping() {
		return false
	}
	if _, err := sess.Transition(session.StateStopping); err != nil {
		return false
	}
	r.publishState(sess)
	r.logger.Info("stopping hashcat session",
		logging.String(logging.FieldSessionID, sess.ID()),
		logging.String(logging.FieldEventType, "session_stopping"),
	)
	return sess.Process().Stop()
}

// Wait blocks until the current session finishes its exit sequence or ctx
// ends. With no session it returns immediately with ok false.
func (r *Runner) Wait(ctx context.Context) (hashcat.ExitResult, bool, error) {
	r.mu.Lock()
	current := r.current
	r.mu.Unlock()
	if current == nil {
		return hashcat.ExitResult{}, false, nil
	}
	select {
	case <-current.done:
		res, ok := current.sess.Exit()
		return res, ok, nil
	case <-ctx.Done():
		return hashcat.ExitResult{}, false, ctx.Err()
	}
}

// Shutdown stops any live session and waits for it to finish.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.Stop()
	_, _, err := r.Wait(ctx)
	return err
}

// Current returns the most recent session, nil before the first start.
func (r *Runner) Current() *session.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	return r.current.sess
}

// PID returns the child pid of the live session, 0 when none.
func (r *Runner) PID() int {
	sess := r.Current()
	if sess == nil || !sess.State().Active() {
		return 0
	}
	return sess.Process().PID()
}

// applyDefaults fills unset request fields from the runner options and
// resolves every path against the caller's working directory. hashcat itself
// runs from its install directory.
func (r *Runner) applyDefaults(req hashcat.CrackRequest, builder *hashcat.Builder) (hashcat.CrackRequest, error) {
	if strings.TrimSpace(req.PotfilePath) == "" {
		req.PotfilePath = r.opts.PotfilePath
		if req.PotfilePath == "" {
			req.PotfilePath = builder.DefaultPotfile()
		}
	}
	if req.StatusTimer == 0 && r.opts.StatusTimer > 0 {
		req.Status = true
		req.StatusTimer = r.opts.StatusTimer
	}
	if req.HWMonTempAbort == nil && r.opts.HWMonTempAbort > 0 {
		req.HWMonTempAbort = hashcat.IntPtr(r.opts.HWMonTempAbort)
	}

	var err error
	for _, field := range []*string{&req.HashFile, &req.RuleFile, &req.OutputFile, &req.PotfilePath} {
		if *field, err = absPath(*field); err != nil {
			return req, err
		}
	}
	wordlists := make([]string, len(req.Wordlists))
	for i, wordlist := range req.Wordlists {
		if wordlists[i], err = absPath(wordlist); err != nil {
			return req, err
		}
	}
	req.Wordlists = wordlists
	return req, nil
}

// absPath expands ~ and makes value absolute. Blank values stay blank.
func absPath(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return value, nil
	}
	resolved, err := config.ExpandPath(value)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "hashcat-runner", "resolve path", value, err)
	}
	return resolved, nil
}

// materializeHashes writes raw hash text to a session-owned temp file.
func (r *Runner) materializeHashes(req *hashcat.CrackRequest) (string, error) {
	if strings.TrimSpace(req.HashFile) != "" {
		if _, err := os.Stat(req.HashFile); err != nil {
			return "", services.Wrap(services.ErrValidation, "hashcat-runner", "start", fmt.Sprintf("hash file %s is not readable", req.HashFile), err)
		}
		return "", nil
	}
	if strings.TrimSpace(req.HashText) == "" {
		return "", services.Wrap(services.ErrValidation, "hashcat-runner", "start", "hash file or hash text required", nil)
	}
	path, err := fileutil.WriteTempHashFile(r.opts.WorkDir, req.HashText)
	if err != nil {
		return "", services.Wrap(services.ErrIO, "hashcat-runner", "start", "write temp hash file", err)
	}
	req.HashFile = path
	return path, nil
}

func (r *Runner) discardTemp(path string) {
	if path == "" {
		return
	}
	if err := fileutil.RemoveIfExists(path); err != nil {
		r.logger.Warn("failed to remove temp hash file",
			logging.String("path", path),
			logging.Error(err),
		)
	}
}

func (r *Runner) acquireLock(potfilePath string) (*flock.Flock, error) {
	dir := r.opts.LockDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, "hashcat-runner", "lock", "create lock directory", err)
	}
	lockPath := filepath.Join(dir, textutil.SanitizeToken(potfilePath)+".lock")
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "hashcat-runner", "lock", "acquire potfile lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "hashcat-runner", "lock",
			fmt.Sprintf("potfile %s is in use by another session", potfilePath), nil)
	}
	return lock, nil
}

func (r *Runner) releaseLock(lock *flock.Flock) {
	if lock == nil {
		return
	}
	if err := lock.Unlock(); err != nil {
		r.logger.Warn("failed to release potfile lock",
			logging.String("lock", lock.Path()),
			logging.Error(err),
		)
	}
}

// abortStart returns a session that never reached Running to Idle and drops
// its artifacts.
func (r *Runner) abortStart(sess *session.Session, err error) {
	sess.Scheduler().Close()
	r.transition(sess, session.StateIdle)
	if cleanupErr := sess.Cleanup(); cleanupErr != nil {
		r.logger.Warn("failed to clean up aborted session", logging.Error(cleanupErr))
	}
	r.publishError(sess.ID(), err)
	r.logger.Error("hashcat session failed to start",
		logging.String(logging.FieldSessionID, sess.ID()),
		logging.String(logging.FieldEventType, "session_start_failed"),
		logging.String(logging.FieldErrorKind, services.Kind(err)),
		logging.Error(err),
	)
}

// awaitExit runs the exit sequence: cancel scheduled work, reconcile once
// more, mark the session exited, publish the exit, then remove temp files and
// release the lock. Cleanup never precedes the final reconcile.
func (r *Runner) awaitExit(current *run, proc *hashcat.Process, logger *slog.Logger) {
	defer close(current.done)
	sess := current.sess

	res := proc.Wait()
	sess.Scheduler().Close()
	sess.SetExit(res)

	r.reconcile(sess, "exit", logger)

	r.transition(sess, session.StateExited)
	r.hub.Publish(events.Event{
		Kind:      events.KindProcessFinished,
		SessionID: sess.ID(),
		Exit: &events.Exit{
			Code:      res.Code,
			Status:    string(res.Status),
			StartedAt: res.StartedAt,
			StoppedAt: res.StoppedAt,
		},
	})
	if res.Err != nil {
		r.publishError(sess.ID(), res.Err)
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "session_finished"),
		logging.Int("exit_code", res.Code),
		logging.String("exit_status", string(res.Status)),
		logging.Duration("elapsed", res.StoppedAt.Sub(res.StartedAt)),
		logging.Int("cracked", sess.Processed().Len()),
	}
	if res.Status == hashcat.ExitCrashed && !proc.Stopping() {
		logging.WarnWithContext(logger, "hashcat process crashed", "session_crashed", attrs...)
	} else {
		logger.Info("hashcat session finished", logging.Args(attrs...)...)
	}

	if err := sess.Cleanup(); err != nil {
		wrapped := services.Wrap(services.ErrIO, "hashcat-runner", "cleanup", "remove temp hash file", err)
		r.publishError(sess.ID(), wrapped)
		logging.WarnWithContext(logger, "failed to clean up session", "session_cleanup_failed", logging.Error(err))
	}
	r.releaseLock(current.lock)
}

// reconcile runs one pass and publishes every newly found pair.
func (r *Runner) reconcile(sess *session.Session, trigger string, logger *slog.Logger) {
	outcome, err := sess.Reconcile()
	if err != nil {
		r.publishError(sess.ID(), err)
		logging.WarnWithContext(logger, "reconciliation pass failed", "reconcile_failed",
			logging.String("trigger", trigger),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no results from this pass"),
		)
		return
	}
	if outcome.Notice != "" {
		r.hub.Publish(events.Event{Kind: events.KindNotice, SessionID: sess.ID(), Line: outcome.Notice})
		logger.Debug("reconciliation notice",
			logging.String("trigger", trigger),
			logging.String("notice", outcome.Notice),
		)
	}
	for _, entry := range outcome.Found {
		r.hub.Publish(events.Event{
			Kind:      events.KindPasswordFound,
			SessionID: sess.ID(),
			Hash:      entry.Hash,
			Password:  entry.Password,
			Source:    events.SourcePotfile,
		})
	}
	if len(outcome.Found) > 0 {
		logger.Info("passwords recovered from potfile",
			logging.String(logging.FieldEventType, "passwords_found"),
			logging.String("trigger", trigger),
			logging.Int("count", len(outcome.Found)),
			logging.Int("targets", outcome.TargetCount),
		)
	}
}

func (r *Runner) transition(sess *session.Session, next session.State) {
	if _, err := sess.Transition(next); err != nil {
		r.logger.Debug("session transition rejected",
			logging.String(logging.FieldSessionID, sess.ID()),
			logging.Error(err),
		)
		return
	}
	r.publishState(sess)
}

func (r *Runner) publishState(sess *session.Session) {
	r.hub.Publish(events.Event{
		Kind:      events.KindState,
		SessionID: sess.ID(),
		State:     sess.State().String(),
	})
}

func (r *Runner) publishError(sessionID string, err error) {
	if err == nil {
		return
	}
	r.hub.Publish(events.Event{
		Kind:      events.KindError,
		SessionID: sessionID,
		Error:     err.Error(),
		ErrorKind: services.Kind(err),
	})
}
