package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"lovelyhashcat/internal/fileutil"
	"lovelyhashcat/internal/potfile"
	"lovelyhashcat/internal/services/hashcat"
)

// Session aggregates the state of one cracking run: its request, the
// effective hash and potfile paths, the processed-hash set, and the debounce
// guards consulted by the output handler. A Session is never reused.
type Session struct {
	id          string
	request     hashcat.CrackRequest
	hashFile    string
	tempFile    string
	potfilePath string
	createdAt   time.Time

	processed *potfile.ProcessedSet
	scheduler *Scheduler

	mu              sync.Mutex
	state           State
	recheckArmed    bool
	lastAutoShow    time.Time
	process         *hashcat.Process
	exit            *hashcat.ExitResult
	reconcilePasses int

	reconcileMu sync.Mutex
}

// New creates an idle session. tempFile names a hash file owned by the session
// (created from raw text) that Cleanup removes; pass "" when the caller owns it.
func New(req hashcat.CrackRequest, hashFile, tempFile, potfilePath string) *Session {
	return &Session{
		id:          uuid.NewString(),
		request:     req,
		hashFile:    hashFile,
		tempFile:    tempFile,
		potfilePath: potfilePath,
		createdAt:   time.Now().UTC(),
		processed:   potfile.NewProcessedSet(),
		scheduler:   NewScheduler(),
		state:       StateIdle,
	}
}

func (s *Session) ID() string { return s.id }
func (s *Session) Request() hashcat.CrackRequest { return s.request }
func (s *Session) HashFile() string { return s.hashFile }
func (s *Session) TempFile() string { return s.tempFile }
func (s *Session) PotfilePath() string { return s.potfilePath }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) Processed() *potfile.ProcessedSet { return s.processed }
func (s *Session) Scheduler() *Scheduler { return s.scheduler }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transition moves the session to next, rejecting illegal moves.
func (s *Session) Transition(next State) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state
	if !CanTransition(prev, next) {
		return prev, transitionError(prev, next)
	}
	s.state = next
	return prev, nil
}

// AttachProcess records the supervised child.
func (s *Session) AttachProcess(p *hashcat.Process) {
	s.mu.Lock()
	s.process = p
	s.mu.Unlock()
}

// Process returns the supervised child, nil before launch.
func (s *Session) Process() *hashcat.Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.process
}

// SetExit records how the child ended.
func (s *Session) SetExit(res hashcat.ExitResult) {
	s.mu.Lock()
	s.exit = &res
	s.mu.Unlock()
}

// Exit returns the recorded exit result, if any.
func (s *Session) Exit() (hashcat.ExitResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exit == nil {
		return hashcat.ExitResult{}, false
	}
	return *s.exit, true
}

// ArmRecheck reports true only the first time it is called for the session.
func (s *Session) ArmRecheck() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recheckArmed {
		return false
	}
	s.recheckArmed = true
	return true
}

// AllowAutoShow reports whether an auto-show pass may run at now, given the
// minimum interval between passes, and records now when it may.
func (s *Session) AllowAutoShow(now time.Time, interval time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.lastAutoShow.IsZero() && now.Sub(s.lastAutoShow) < interval {
		return false
	}
	s.lastAutoShow = now
	return true
}

// Reconcile runs one reconciliation pass. Passes are serialized per session so
// the processed set is never mutated concurrently.
func (s *Session) Reconcile() (potfile.Outcome, error) {
	s.reconcileMu.Lock()
	defer s.reconcileMu.Unlock()

	s.mu.Lock()
	s.reconcilePasses++
	s.mu.Unlock()

	return potfile.Reconcile(s.hashFile, s.potfilePath, s.processed)
}

// ReconcilePasses returns how many passes have run.
func (s *Session) ReconcilePasses() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconcilePasses
}

// MarkReported records hash as emitted and reports whether it is new.
func (s *Session) MarkReported(hash string) bool {
	return s.processed.Add(hash)
}

// Cleanup removes the session-owned temp hash file.
func (s *Session) Cleanup() error {
	if s.tempFile == "" {
		return nil
	}
	if err := fileutil.RemoveIfExists(s.tempFile); err != nil {
		return fmt.Errorf("remove temp hash file: %w", err)
	}
	return nil
}
