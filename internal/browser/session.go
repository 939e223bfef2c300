package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Config holds the session tunables. Zero values fall back to the defaults.
type Config struct {
	ExecPath      string        // Browser executable override ("" = chromedp's default lookup)
	Headless      bool          // Run the browser headlessly
	LaunchTimeout time.Duration // Max wait for a live controller handle (default 30s)
	ReadyTimeout  time.Duration // Max wait for readyState "complete" after navigation (default 15s)
	IdleTimeout   time.Duration // Inactivity window before eviction (default 300s)
	EvictInterval time.Duration // Eviction timer granularity (default 30s)
	ArtifactDir   string        // Where screenshots are written (default os.TempDir())
}

const (
	defaultLaunchTimeout = 30 * time.Second
	defaultReadyTimeout  = 15 * time.Second
	defaultIdleTimeout   = 300 * time.Second
	defaultEvictInterval = 30 * time.Second
)

func (c Config) withDefaults() Config {
	if c.LaunchTimeout == 0 {
		c.LaunchTimeout = defaultLaunchTimeout
	}
	if c.ReadyTimeout == 0 {
		c.ReadyTimeout = defaultReadyTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = defaultIdleTimeout
	}
	if c.EvictInterval == 0 {
		c.EvictInterval = defaultEvictInterval
	}
	return c
}

// Session owns the single browser automation context for the process. It is
// constructed with NewSession and injected into whatever dispatches calls to
// it; at most one should exist per process.
//
// The session has no internal action queue: one logical caller drives it at a
// time, and concurrent actions interleave at the granularity of individual
// browser round-trips. Callers serialize their own calls.
type Session struct {
	cfg Config
	log *slog.Logger

	mu           sync.Mutex // guards the lifecycle fields below
	active       bool
	browserCtx   context.Context
	stop         chan struct{} // released by Close; keeps the launch goroutine alive
	done         chan struct{} // closed once the launch goroutine has torn down
	profileDir   string
	currentURL   string
	createdAt    time.Time
	lastActivity time.Time
	evictStop    chan struct{}
	gen          int // launch generation; lets stale watchers detect a relaunch

	refs  *refTable
	boxes []refBox // ref bounding boxes from the current snapshot

	// launchFn is swapped out in tests to avoid spawning a real browser.
	launchFn func(ctx context.Context, execPath string) (*launchHandle, error)
}

// launchHandle is what the launch goroutine hands back through the one-shot
// channel: a live controller context plus the signals that keep it alive.
type launchHandle struct {
	ctx        context.Context
	stop       chan struct{}
	done       chan struct{}
	profileDir string
}

type launchOutcome struct {
	ctx context.Context
	err error
}

// NewSession creates an unstarted session. The browser launches lazily on the
// first call that needs it.
func NewSession(cfg Config) *Session {
	s := &Session{
		cfg:  cfg.withDefaults(),
		log:  slog.Default(),
		refs: newRefTable(),
	}
	s.launchFn = s.launchBrowser
	return s
}

// Ensure lazily launches the browser session. It is idempotent: when the
// session is already live it only touches the activity clock. On launch
// timeout or failure everything is torn down before the error propagates, so
// the session is never left half-initialized.
func (s *Session) Ensure(ctx context.Context, execPath string) error {
	s.mu.Lock()
	if s.active {
		s.lastActivity = time.Now()
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if execPath == "" {
		execPath = s.cfg.ExecPath
	}
	handle, err := s.launchFn(ctx, execPath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.active = true
	s.browserCtx = handle.ctx
	s.stop = handle.stop
	s.done = handle.done
	s.profileDir = handle.profileDir
	s.currentURL = "about:blank"
	now := time.Now()
	s.createdAt = now
	s.lastActivity = now
	s.gen++
	gen := s.gen
	s.evictStop = make(chan struct{})
	evictStop := s.evictStop
	s.mu.Unlock()

	go s.watchTermination(handle.ctx, gen)
	go s.evictLoop(evictStop)
	return nil
}

// launchBrowser spawns the goroutine that owns the allocator and browser
// contexts for the whole session. The goroutine warms the context, hands the
// live handle back over a one-shot channel, then blocks on the stop channel
// so the handle stays valid until Close releases it.
func (s *Session) launchBrowser(ctx context.Context, execPath string) (*launchHandle, error) {
	profileDir, err := os.MkdirTemp("", "browser-cli-profile-")
	if err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}

	handoff := make(chan launchOutcome, 1)
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", s.cfg.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserDataDir(profileDir),
		)
		if execPath != "" {
			opts = append(opts, chromedp.ExecPath(execPath))
		}

		allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
		browserCtx, browserCancel := chromedp.NewContext(allocCtx)
		defer allocCancel()
		defer browserCancel()

		// Warm the context so the handle handed back is live.
		if err := chromedp.Run(browserCtx, chromedp.Navigate("about:blank")); err != nil {
			handoff <- launchOutcome{err: err}
			return
		}

		handoff <- launchOutcome{ctx: browserCtx}
		<-stop
	}()

	select {
	case out := <-handoff:
		if out.err != nil {
			close(stop)
			<-done
			os.RemoveAll(profileDir)
			return nil, fmt.Errorf("browser launch failed: %w", out.err)
		}
		return &launchHandle{ctx: out.ctx, stop: stop, done: done, profileDir: profileDir}, nil
	case <-ctx.Done():
		close(stop)
		awaitDone(done, teardownWait)
		os.RemoveAll(profileDir)
		return nil, ctx.Err()
	case <-time.After(s.cfg.LaunchTimeout):
		close(stop)
		awaitDone(done, teardownWait)
		os.RemoveAll(profileDir)
		return nil, ErrLaunchTimeout
	}
}

// watchTermination resets the session when the browser dies underneath us, so
// the next call transparently relaunches instead of operating on a dead
// handle. Detected asynchronously; logged, never propagated to a caller.
func (s *Session) watchTermination(browserCtx context.Context, gen int) {
	<-browserCtx.Done()

	s.mu.Lock()
	stale := !s.active || s.gen != gen
	s.mu.Unlock()
	if stale {
		return
	}

	s.log.Warn("browser session terminated unexpectedly, resetting", "gen", gen)
	s.Close()
}

// evictLoop runs the idle-eviction timer as a background tick. It never
// blocks shutdown and exits when the session closes or evicts.
func (s *Session) evictLoop(stop chan struct{}) {
	ticker := time.NewTicker(s.cfg.EvictInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if s.evictIfIdle(now) {
				return
			}
		}
	}
}

// evictIfIdle closes the session when the inactivity window has elapsed.
// Split from the ticker loop so the decision is testable with a fixed clock.
func (s *Session) evictIfIdle(now time.Time) bool {
	s.mu.Lock()
	idle := s.active && now.Sub(s.lastActivity) > s.cfg.IdleTimeout
	since := now.Sub(s.lastActivity)
	s.mu.Unlock()
	if !idle {
		return false
	}

	s.log.Info("closing idle browser session", "idle", since)
	s.Close()
	return true
}

// Close tears the session down and resets every field to the absent baseline:
// it releases the stop channel so the launch goroutine can exit, waits
// briefly for teardown, removes the temporary profile directory, and clears
// the ref table. Idempotent: closing twice, or closing a never-started
// session, is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = false
	stop := s.stop
	done := s.done
	profileDir := s.profileDir
	evictStop := s.evictStop
	s.browserCtx = nil
	s.stop = nil
	s.done = nil
	s.profileDir = ""
	s.currentURL = ""
	s.evictStop = nil
	s.boxes = nil
	s.refs.reset()
	s.mu.Unlock()

	if evictStop != nil {
		close(evictStop)
	}
	close(stop)
	awaitDone(done, teardownWait)
	if profileDir != "" {
		os.RemoveAll(profileDir)
	}
	return nil
}

// teardownWait bounds how long a closing path waits for the launch goroutine
// before giving up on it.
const teardownWait = 5 * time.Second

// awaitDone waits for the teardown signal with an upper bound. The browser
// must have released the profile directory before it is removed, but a wedged
// browser cannot be allowed to block the caller forever.
func awaitDone(done <-chan struct{}, timeout time.Duration) {
	select {
	case <-done:
	case <-time.After(timeout):
	}
}

// Active reports whether a live session exists.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// CurrentURL returns the URL of the most recent navigation, or "" when no
// session is live.
func (s *Session) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentURL
}

// ResolveRef returns the locator behind a ref from the current snapshot.
func (s *Session) ResolveRef(ref string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs.resolve(ref)
}

// controller returns the live browser context for issuing actions.
func (s *Session) controller() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return nil, fmt.Errorf("no active browser session")
	}
	return s.browserCtx, nil
}

// touch resets the inactivity clock; every successful operation calls it.
func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}
