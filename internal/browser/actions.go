package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// ClickOptions configures Click.
type ClickOptions struct {
	Button      string // "left" (default), "right", "middle"
	DoubleClick bool
}

// TypeOptions configures Type.
type TypeOptions struct {
	Submit bool // press Enter after typing
	Slowly bool // throttle input to one character at a time
}

// ScreenshotOptions configures Screenshot.
type ScreenshotOptions struct {
	Filename string // written under Config.ArtifactDir; synthesized from the clock if empty
	FullPage bool   // capture the full scrollable page instead of the viewport
	Annotate bool   // draw ref labels from the current snapshot onto the image
}

// slowTypeDelay is the per-character pause used by TypeOptions.Slowly.
const slowTypeDelay = 75 * time.Millisecond

// readyPollInterval is how often the readiness predicate is re-evaluated
// after navigation.
const readyPollInterval = 500 * time.Millisecond

// Navigate loads the URL and waits, best effort, for the document to reach
// readyState "complete". The ready wait gives up after Config.ReadyTimeout
// without failing the call: some pages never settle, and that is tolerated by
// design.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.Ensure(ctx, ""); err != nil {
		return err
	}
	bctx, err := s.controller()
	if err != nil {
		return err
	}

	if err := chromedp.Run(bctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	s.awaitReady(bctx)

	s.mu.Lock()
	s.currentURL = url
	s.lastActivity = time.Now()
	s.mu.Unlock()
	return nil
}

// awaitReady polls the remote readiness predicate until it reports complete
// or the deadline passes.
func (s *Session) awaitReady(bctx context.Context) {
	deadline := time.Now().Add(s.cfg.ReadyTimeout)
	for time.Now().Before(deadline) {
		var ready bool
		if err := chromedp.Run(bctx, chromedp.Evaluate(readyStateScript, &ready)); err == nil && ready {
			return
		}
		time.Sleep(readyPollInterval)
	}
}

// Snapshot builds a fresh accessibility outline of the current page and
// replaces the ref table. Refs issued by earlier snapshots are invalid once
// it returns.
func (s *Session) Snapshot(ctx context.Context) (string, error) {
	if err := s.Ensure(ctx, ""); err != nil {
		return "", err
	}
	bctx, err := s.controller()
	if err != nil {
		return "", err
	}

	var root *Node
	var info PageInfo
	err = chromedp.Run(bctx,
		chromedp.Evaluate(snapshotScript, &root),
		chromedp.Title(&info.Title),
		chromedp.Location(&info.URL),
	)
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}

	s.mu.Lock()
	text, boxes := formatSnapshot(root, info, s.refs)
	s.boxes = boxes
	s.currentURL = info.URL
	s.lastActivity = time.Now()
	s.mu.Unlock()
	return text, nil
}

// Click clicks the element behind ref: single left click by default, right or
// middle via Button, double via DoubleClick.
func (s *Session) Click(ctx context.Context, ref string, opts ClickOptions) error {
	if err := s.Ensure(ctx, ""); err != nil {
		return err
	}
	loc, err := s.ResolveRef(ref)
	if err != nil {
		return err
	}
	bctx, err := s.controller()
	if err != nil {
		return err
	}

	var action chromedp.Action
	switch {
	case opts.DoubleClick:
		action = chromedp.DoubleClick(loc, chromedp.ByQuery)
	case opts.Button == "right" || opts.Button == "middle":
		action = clickWithButton(loc, opts.Button)
	default:
		action = chromedp.Click(loc, chromedp.ByQuery)
	}
	if err := chromedp.Run(bctx, action); err != nil {
		return fmt.Errorf("click %s (%s): %w", ref, loc, err)
	}
	s.touch()
	return nil
}

// clickWithButton dispatches a non-left click through the raw mouse path;
// chromedp's Click helper only issues left clicks.
func clickWithButton(loc, button string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var nodes []*cdp.Node
		if err := chromedp.Nodes(loc, &nodes, chromedp.ByQuery).Do(ctx); err != nil {
			return err
		}
		if len(nodes) == 0 {
			return fmt.Errorf("no element found for locator %q", loc)
		}
		return chromedp.MouseClickNode(nodes[0], chromedp.Button(button)).Do(ctx)
	})
}

// Type replaces the field's content with text. Slowly throttles input to one
// character per keystroke interval; Submit presses Enter afterwards.
func (s *Session) Type(ctx context.Context, ref, text string, opts TypeOptions) error {
	if err := s.Ensure(ctx, ""); err != nil {
		return err
	}
	loc, err := s.ResolveRef(ref)
	if err != nil {
		return err
	}
	bctx, err := s.controller()
	if err != nil {
		return err
	}

	actions := []chromedp.Action{
		chromedp.Focus(loc, chromedp.ByQuery),
		chromedp.Clear(loc, chromedp.ByQuery),
	}
	if opts.Slowly {
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			for _, r := range text {
				if err := chromedp.SendKeys(loc, string(r), chromedp.ByQuery).Do(ctx); err != nil {
					return err
				}
				time.Sleep(slowTypeDelay)
			}
			return nil
		}))
	} else {
		actions = append(actions, chromedp.SendKeys(loc, text, chromedp.ByQuery))
	}
	if opts.Submit {
		actions = append(actions, chromedp.SendKeys(loc, kb.Enter, chromedp.ByQuery))
	}

	if err := chromedp.Run(bctx, actions...); err != nil {
		return fmt.Errorf("type into %s (%s): %w", ref, loc, err)
	}
	s.touch()
	return nil
}

// PressKey sends a key event to whatever currently has focus. Session scoped,
// not ref scoped.
func (s *Session) PressKey(ctx context.Context, key string) error {
	if err := s.Ensure(ctx, ""); err != nil {
		return err
	}
	bctx, err := s.controller()
	if err != nil {
		return err
	}

	code, err := keyCode(key)
	if err != nil {
		return err
	}
	if err := chromedp.Run(bctx, chromedp.KeyEvent(code)); err != nil {
		return fmt.Errorf("press %s: %w", key, err)
	}
	s.touch()
	return nil
}

// SelectOption selects one or more options under the ref'd control by their
// visible text. Multi-select is modeled as repeated single selections.
func (s *Session) SelectOption(ctx context.Context, ref string, values []string) error {
	if err := s.Ensure(ctx, ""); err != nil {
		return err
	}
	loc, err := s.ResolveRef(ref)
	if err != nil {
		return err
	}
	bctx, err := s.controller()
	if err != nil {
		return err
	}

	for _, value := range values {
		expr := bindElementCall(selectOptionScript, loc, value)
		var ok bool
		if err := chromedp.Run(bctx, chromedp.Evaluate(expr, &ok)); err != nil {
			return fmt.Errorf("select option %q on %s: %w", value, ref, err)
		}
		if !ok {
			return fmt.Errorf("no option with text %q under %s (%s)", value, ref, loc)
		}
	}
	s.touch()
	return nil
}

// Evaluate runs caller-supplied code in the page and returns the serializable
// result. The code must be a function expression; with a ref it is invoked
// with the live element resolved from the ref's locator at evaluation time,
// not at ref-creation time.
func (s *Session) Evaluate(ctx context.Context, code, ref string) (json.RawMessage, error) {
	if err := s.Ensure(ctx, ""); err != nil {
		return nil, err
	}

	var expr string
	if ref != "" {
		loc, err := s.ResolveRef(ref)
		if err != nil {
			return nil, err
		}
		expr = bindElementCall(code, loc)
	} else {
		expr = callExpr(code)
	}

	bctx, err := s.controller()
	if err != nil {
		return nil, err
	}

	var result json.RawMessage
	if err := chromedp.Run(bctx, chromedp.Evaluate(coerceNull(expr), &result, awaitPromise)); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	s.touch()
	return result, nil
}

// Screenshot captures the viewport (or the full scrollable page) as a PNG and
// returns the absolute path of the written artifact.
func (s *Session) Screenshot(ctx context.Context, opts ScreenshotOptions) (string, error) {
	if err := s.Ensure(ctx, ""); err != nil {
		return "", err
	}
	bctx, err := s.controller()
	if err != nil {
		return "", err
	}

	var buf []byte
	var action chromedp.Action
	if opts.FullPage {
		// Quality below 100 switches chromedp's capture to JPEG; the
		// artifact name and MIME type promise PNG.
		action = chromedp.FullScreenshot(&buf, 100)
	} else {
		action = chromedp.CaptureScreenshot(&buf)
	}
	if err := chromedp.Run(bctx, action); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}

	if opts.Annotate {
		// Best effort: an unannotated screenshot beats a failed one.
		if annotated, err := s.annotateScreenshot(buf); err == nil {
			buf = annotated
		}
	}

	name := opts.Filename
	if name == "" {
		name = defaultScreenshotName(time.Now())
	}
	dir := s.cfg.ArtifactDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	s.touch()
	return abs, nil
}

// awaitPromise makes Evaluate resolve promises before serializing, so async
// function expressions return their settled value.
func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// defaultScreenshotName synthesizes an artifact filename from the clock.
func defaultScreenshotName(t time.Time) string {
	return fmt.Sprintf("screenshot-%s.png", t.Format("20060102-150405"))
}
