package browser

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeLauncher stands in for a real browser launch: it hands back a
// cancellable context wired to stop/done channels the way launchBrowser does,
// and keeps the latest cancel around so tests can simulate the browser dying.
type fakeLauncher struct {
	mu       sync.Mutex
	launches int
	cancel   context.CancelFunc
}

func (f *fakeLauncher) launch(ctx context.Context, execPath string) (*launchHandle, error) {
	bctx, cancel := context.WithCancel(context.Background())
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-stop
		cancel()
	}()

	f.mu.Lock()
	f.launches++
	f.cancel = cancel
	f.mu.Unlock()
	return &launchHandle{ctx: bctx, stop: stop, done: done}, nil
}

func (f *fakeLauncher) launchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.launches
}

func (f *fakeLauncher) killBrowser() {
	f.mu.Lock()
	cancel := f.cancel
	f.mu.Unlock()
	cancel()
}

func newTestSession(f *fakeLauncher) *Session {
	s := NewSession(Config{})
	s.launchFn = f.launch
	return s
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached within deadline")
}

func TestEnsureIdempotent(t *testing.T) {
	f := &fakeLauncher{}
	s := newTestSession(f)
	defer s.Close()

	if err := s.Ensure(context.Background(), ""); err != nil {
		t.Fatalf("first Ensure failed: %v", err)
	}
	if err := s.Ensure(context.Background(), ""); err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}

	if f.launchCount() != 1 {
		t.Errorf("expected 1 launch, got %d", f.launchCount())
	}
	if !s.Active() {
		t.Error("expected session to be active")
	}
	if s.CurrentURL() != "about:blank" {
		t.Errorf("expected about:blank after launch, got %q", s.CurrentURL())
	}
}

func TestCloseIdempotent(t *testing.T) {
	f := &fakeLauncher{}
	s := newTestSession(f)

	// Closing a never-started session is a no-op.
	if err := s.Close(); err != nil {
		t.Fatalf("close on fresh session failed: %v", err)
	}

	if err := s.Ensure(context.Background(), ""); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
	if s.Active() {
		t.Error("expected session to be inactive after close")
	}
	if s.CurrentURL() != "" {
		t.Errorf("expected empty URL after close, got %q", s.CurrentURL())
	}
}

func TestCloseClearsRefs(t *testing.T) {
	f := &fakeLauncher{}
	s := newTestSession(f)

	if err := s.Ensure(context.Background(), ""); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	s.mu.Lock()
	s.refs.assign("#stale")
	s.mu.Unlock()

	s.Close()

	_, err := s.ResolveRef("e1")
	var notFound *RefNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected RefNotFoundError after close, got %v", err)
	}
}

func TestRelaunchAfterClose(t *testing.T) {
	f := &fakeLauncher{}
	s := newTestSession(f)
	defer s.Close()

	if err := s.Ensure(context.Background(), ""); err != nil {
		t.Fatalf("first Ensure failed: %v", err)
	}
	s.Close()
	if err := s.Ensure(context.Background(), ""); err != nil {
		t.Fatalf("Ensure after close failed: %v", err)
	}

	if f.launchCount() != 2 {
		t.Errorf("expected 2 launches, got %d", f.launchCount())
	}
	if !s.Active() {
		t.Error("expected session to be active after relaunch")
	}
}

func TestLaunchFailureLeavesSessionAbsent(t *testing.T) {
	s := NewSession(Config{})
	launchErr := errors.New("chrome exploded")
	s.launchFn = func(ctx context.Context, execPath string) (*launchHandle, error) {
		return nil, launchErr
	}

	err := s.Ensure(context.Background(), "")
	if !errors.Is(err, launchErr) {
		t.Fatalf("expected launch error, got %v", err)
	}
	if s.Active() {
		t.Error("expected session to remain absent after launch failure")
	}
}

func TestEvictIfIdle(t *testing.T) {
	f := &fakeLauncher{}
	s := newTestSession(f)
	defer s.Close()

	if err := s.Ensure(context.Background(), ""); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	if s.evictIfIdle(time.Now()) {
		t.Fatal("fresh session should not be evicted")
	}
	if !s.Active() {
		t.Fatal("session closed too early")
	}

	past := time.Now().Add(defaultIdleTimeout + time.Second)
	if !s.evictIfIdle(past) {
		t.Fatal("idle session should be evicted")
	}
	if s.Active() {
		t.Error("expected session to be inactive after eviction")
	}

	// Already evicted: further ticks are no-ops.
	if s.evictIfIdle(past) {
		t.Error("eviction should happen at most once")
	}
}

func TestActivityDefersEviction(t *testing.T) {
	f := &fakeLauncher{}
	s := newTestSession(f)
	defer s.Close()

	if err := s.Ensure(context.Background(), ""); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	almostIdle := time.Now().Add(defaultIdleTimeout - time.Second)
	s.touch()
	if s.evictIfIdle(almostIdle) {
		t.Error("touched session should survive a tick inside the idle window")
	}
}

func TestUnexpectedTerminationResetsSession(t *testing.T) {
	f := &fakeLauncher{}
	s := newTestSession(f)

	if err := s.Ensure(context.Background(), ""); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	f.killBrowser()

	waitFor(t, func() bool { return !s.Active() })

	// The next Ensure relaunches transparently.
	if err := s.Ensure(context.Background(), ""); err != nil {
		t.Fatalf("Ensure after termination failed: %v", err)
	}
	defer s.Close()
	if f.launchCount() != 2 {
		t.Errorf("expected relaunch after termination, got %d launches", f.launchCount())
	}
}

func TestAwaitDoneBounded(t *testing.T) {
	closed := make(chan struct{})
	close(closed)
	start := time.Now()
	awaitDone(closed, time.Second)
	if time.Since(start) > 500*time.Millisecond {
		t.Error("awaitDone should return immediately on a closed channel")
	}

	stuck := make(chan struct{})
	start = time.Now()
	awaitDone(stuck, 50*time.Millisecond)
	if time.Since(start) < 50*time.Millisecond {
		t.Error("awaitDone returned before the timeout on a stuck channel")
	}
}

func TestControllerRequiresActiveSession(t *testing.T) {
	s := NewSession(Config{})
	if _, err := s.controller(); err == nil {
		t.Error("expected error from controller on inactive session")
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.LaunchTimeout != 30*time.Second {
		t.Errorf("expected 30s launch timeout, got %v", cfg.LaunchTimeout)
	}
	if cfg.IdleTimeout != 300*time.Second {
		t.Errorf("expected 300s idle timeout, got %v", cfg.IdleTimeout)
	}
	if cfg.EvictInterval != 30*time.Second {
		t.Errorf("expected 30s evict interval, got %v", cfg.EvictInterval)
	}

	custom := Config{IdleTimeout: time.Minute}.withDefaults()
	if custom.IdleTimeout != time.Minute {
		t.Errorf("expected explicit idle timeout to survive, got %v", custom.IdleTimeout)
	}
}
