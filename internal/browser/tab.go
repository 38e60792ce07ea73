package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const (
	// DefaultNavTimeout bounds a full page navigation.
	DefaultNavTimeout = 30 * time.Second
	// DefaultWaitTimeout bounds a single element-visibility wait.
	DefaultWaitTimeout = 10 * time.Second
)

// Tab wraps one browser tab. All operations run against the tab's own
// context, which descends from the session context, so cancelling the run
// unwinds every in-flight operation.
type Tab struct {
	ctx     context.Context
	cancel  context.CancelFunc
	verbose bool
}

// Context exposes the tab's chromedp context for components that drive the
// protocol directly (popup attachment, download events).
func (t *Tab) Context() context.Context {
	return t.ctx
}

// Close closes the tab.
func (t *Tab) Close() {
	t.cancel()
}

// Navigate loads a URL and waits for the document body to be ready.
func (t *Tab) Navigate(url string) error {
	ctx, cancel := context.WithTimeout(t.ctx, DefaultNavTimeout)
	defer cancel()
	if err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// HTML returns the tab's current serialized content.
func (t *Tab) HTML() (string, error) {
	ctx, cancel := context.WithTimeout(t.ctx, DefaultWaitTimeout)
	defer cancel()
	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

// WaitVisible blocks until the selector matches a visible element, bounded
// by the given timeout.
func (t *Tab) WaitVisible(sel string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(t.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.WaitVisible(sel)); err != nil {
		return fmt.Errorf("failed waiting for %q: %w", sel, err)
	}
	return nil
}

// Click activates the first visible element matching the selector.
func (t *Tab) Click(sel string) error {
	ctx, cancel := context.WithTimeout(t.ctx, DefaultWaitTimeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.Click(sel, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("failed to click %q: %w", sel, err)
	}
	return nil
}

// SetValue sets a form field's value.
func (t *Tab) SetValue(sel, value string) error {
	ctx, cancel := context.WithTimeout(t.ctx, DefaultWaitTimeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.SetValue(sel, value)); err != nil {
		return fmt.Errorf("failed to set %q: %w", sel, err)
	}
	return nil
}

// Visible reports whether the selector currently matches a visible element,
// without waiting for one to appear.
func (t *Tab) Visible(jsExpr string) (bool, error) {
	ctx, cancel := context.WithTimeout(t.ctx, DefaultWaitTimeout)
	defer cancel()
	var visible bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(jsExpr, &visible)); err != nil {
		return false, fmt.Errorf("failed to evaluate visibility: %w", err)
	}
	return visible, nil
}

// ClickAndWaitLoad clicks an element that triggers a full navigation and
// waits for the resulting page's load event. The listener is registered
// before the click so a fast navigation cannot slip past it.
func (t *Tab) ClickAndWaitLoad(sel string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(t.ctx, timeout)
	defer cancel()

	loaded := make(chan struct{})
	lctx, lcancel := context.WithCancel(ctx)
	defer lcancel()
	chromedp.ListenTarget(lctx, func(ev interface{}) {
		if _, ok := ev.(*page.EventLoadEventFired); ok {
			lcancel()
			close(loaded)
		}
	})

	if err := chromedp.Run(ctx, chromedp.Click(sel, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("failed to click %q: %w", sel, err)
	}

	select {
	case <-loaded:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for page load after clicking %q: %w", sel, ctx.Err())
	}
}

// EnableDownloads instructs the browser to save downloads into dir without
// prompting, named by GUID, and to emit download progress events.
func (t *Tab) EnableDownloads(dir string) error {
	ctx, cancel := context.WithTimeout(t.ctx, DefaultWaitTimeout)
	defer cancel()
	return chromedp.Run(ctx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllowAndName).
			WithDownloadPath(dir).
			WithEventsEnabled(true),
	)
}
