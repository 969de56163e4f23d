package session

import (
	"sync"
	"time"
)

// Scheduler runs delayed actions for one session. Close cancels pending
// actions and waits for running ones, so no action outlives the session.
type Scheduler struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	closed  bool
	nextID  uint64
	tasks   map[uint64]*task
	pending map[string]uint64
}

type task struct {
	key   string
	timer *time.Timer
}

// NewScheduler returns an open scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		tasks:   make(map[uint64]*task),
		pending: make(map[string]uint64),
	}
}

// After runs fn once after d. It returns false when the scheduler is closed.
func (s *Scheduler) After(d time.Duration, fn func()) bool {
	return s.schedule("", d, fn)
}

// Debounce schedules fn under key unless an action with the same key is
// already pending. It returns false when nothing was scheduled.
func (s *Scheduler) Debounce(key string, d time.Duration, fn func()) bool {
	return s.schedule(key, d, fn)
}

// Pending returns the number of actions that have not started yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Closed reports whether Close has been called.
func (s *Scheduler) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Scheduler) schedule(key string, d time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if key != "" {
		if _, busy := s.pending[key]; busy {
			return false
		}
	}
	s.nextID++
	id := s.nextID
	t := &task{key: key}
	s.tasks[id] = t
	if key != "" {
		s.pending[key] = id
	}
	s.wg.Add(1)
	t.timer = time.AfterFunc(d, func() { s.run(id, fn) })
	return true
}

func (s *Scheduler) run(id uint64, fn func()) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		// Close already cancelled and accounted for this task.
		s.mu.Unlock()
		return
	}
	delete(s.tasks, id)
	if t.key != "" {
		delete(s.pending, t.key)
	}
	s.mu.Unlock()

	defer s.wg.Done()
	fn()
}

// Close cancels every pending action and blocks until running actions return.
// It must not be called from inside a scheduled action.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		for id, t := range s.tasks {
			t.timer.Stop()
			delete(s.tasks, id)
			s.wg.Done()
		}
		clear(s.pending)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
