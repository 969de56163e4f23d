package session_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lovelyhashcat/internal/services"
	"lovelyhashcat/internal/services/hashcat"
	"lovelyhashcat/internal/session"
)

func TestTransitionsFollowLifecycle(t *testing.T) {
	s := session.New(hashcat.CrackRequest{}, "h.txt", "", "")
	if s.State() != session.StateIdle {
		t.Fatalf("expected idle, got %s", s.State())
	}
	for _, next := range []session.State{session.StateStarting, session.StateRunning, session.StateStopping, session.StateExited} {
		if _, err := s.Transition(next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}
	if _, err := s.Transition(session.StateStarting); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("exited must be terminal, got %v", err)
	}
}

func TestStartingCanFallBackToIdle(t *testing.T) {
	s := session.New(hashcat.CrackRequest{}, "h.txt", "", "")
	if _, err := s.Transition(session.StateStarting); err != nil {
		t.Fatal(err)
	}
	prev, err := s.Transition(session.StateIdle)
	if err != nil || prev != session.StateStarting {
		t.Fatalf("expected starting -> idle, got prev=%s err=%v", prev, err)
	}
	if _, err := s.Transition(session.StateExited); err == nil {
		t.Fatal("idle -> exited must be rejected")
	}
}

func TestStateActive(t *testing.T) {
	cases := map[session.State]bool{
		session.StateIdle:     false,
		session.StateStarting: true,
		session.StateRunning:  true,
		session.StateStopping: true,
		session.StateExited:   false,
	}
	for state, want := range cases {
		if state.Active() != want {
			t.Fatalf("%s.Active() = %v", state, !want)
		}
	}
}

func TestNewSessionsDoNotShareGuards(t *testing.T) {
	a := session.New(hashcat.CrackRequest{}, "h.txt", "", "")
	b := session.New(hashcat.CrackRequest{}, "h.txt", "", "")
	if a.ID() == b.ID() || a.ID() == "" {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID(), b.ID())
	}
	if !a.ArmRecheck() || a.ArmRecheck() {
		t.Fatal("ArmRecheck must be one-shot")
	}
	if !b.ArmRecheck() {
		t.Fatal("new session must start with a fresh recheck guard")
	}
	a.MarkReported("hash")
	if b.Processed().Has("hash") {
		t.Fatal("processed set leaked between sessions")
	}
}

func TestAllowAutoShowDebounces(t *testing.T) {
	s := session.New(hashcat.CrackRequest{}, "h.txt", "", "")
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	if !s.AllowAutoShow(now, 5*time.Second) {
		t.Fatal("first auto-show should be allowed")
	}
	if s.AllowAutoShow(now.Add(4*time.Second), 5*time.Second) {
		t.Fatal("auto-show within interval should be suppressed")
	}
	if !s.AllowAutoShow(now.Add(5*time.Second), 5*time.Second) {
		t.Fatal("auto-show after interval should be allowed")
	}
}

func TestReconcileUsesSessionProcessedSet(t *testing.T) {
	dir := t.TempDir()
	hashFile := filepath.Join(dir, "hashes.txt")
	pot := filepath.Join(dir, "hashcat.potfile")
	if err := os.WriteFile(hashFile, []byte("aaa\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pot, []byte("aaa:one\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := session.New(hashcat.CrackRequest{}, hashFile, "", pot)

	var wg sync.WaitGroup
	var found atomic.Int32
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := s.Reconcile()
			if err != nil {
				t.Errorf("Reconcile: %v", err)
				return
			}
			found.Add(int32(len(out.Found)))
		}()
	}
	wg.Wait()
	if found.Load() != 1 {
		t.Fatalf("expected exactly one emission across passes, got %d", found.Load())
	}
	if s.ReconcilePasses() != 8 {
		t.Fatalf("expected 8 passes, got %d", s.ReconcilePasses())
	}
}

func TestCleanupRemovesOwnedTempFile(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "hashcat_temp_1.hash")
	if err := os.WriteFile(tmp, []byte("aaa\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	s := session.New(hashcat.CrackRequest{}, tmp, tmp, "")
	if err := s.Cleanup(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(tmp); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected temp file removed, got %v", err)
	}
	if err := s.Cleanup(); err != nil {
		t.Fatalf("second cleanup should be a no-op: %v", err)
	}

	kept := filepath.Join(t.TempDir(), "user.hash")
	if err := os.WriteFile(kept, []byte("aaa\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := session.New(hashcat.CrackRequest{}, kept, "", "").Cleanup(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(kept); err != nil {
		t.Fatalf("caller-owned hash file must survive cleanup: %v", err)
	}
}

func TestExitRecorded(t *testing.T) {
	s := session.New(hashcat.CrackRequest{}, "h.txt", "", "")
	if _, ok := s.Exit(); ok {
		t.Fatal("expected no exit before SetExit")
	}
	s.SetExit(hashcat.ExitResult{Code: 1, Status: hashcat.ExitNormal})
	res, ok := s.Exit()
	if !ok || res.Code != 1 {
		t.Fatalf("unexpected exit %+v", res)
	}
}
