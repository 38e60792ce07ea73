package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nathanj/recorder-agent/internal/browser"
	"github.com/nathanj/recorder-agent/internal/capture"
	"github.com/nathanj/recorder-agent/internal/walk"
)

// Tab is the subset of tab operations the orchestrator drives. The concrete
// implementation lives in the browser package; the indirection keeps the
// orchestrator testable without a running browser.
type Tab interface {
	Navigate(url string) error
	WaitVisible(sel string, timeout time.Duration) error
	SetValue(sel, value string) error
	Click(sel string) error
	ClickAndWaitLoad(sel string, timeout time.Duration) error
	HTML() (string, error)
	Close()
}

// Session opens isolated tabs within the single browser session owned by the
// run. Each document gets a fresh tab so popup and download state cannot leak
// between documents.
type Session interface {
	NewTab() (Tab, error)
}

// Capturer retrieves the scanned PDF for one document. It returns the
// published reference, or "" when capture failed; it never returns an error
// because a missing PDF is not fatal to the document.
type Capturer interface {
	Capture(ctx context.Context, tab Tab, entryNumber, recordingDate string) string
}

// NewBrowserSession adapts a chromedp-backed session to the orchestrator.
func NewBrowserSession(s *browser.Session) Session {
	return browserSession{s: s}
}

type browserSession struct {
	s *browser.Session
}

func (b browserSession) NewTab() (Tab, error) {
	tab, err := b.s.NewTab()
	if err != nil {
		return nil, err
	}
	return tab, nil
}

// NewBrowserCapturer adapts the popup/download capture flow to the
// orchestrator's tab abstraction.
func NewBrowserCapturer(c *capture.Capturer) Capturer {
	return browserCapturer{c: c}
}

type browserCapturer struct {
	c *capture.Capturer
}

func (b browserCapturer) Capture(ctx context.Context, tab Tab, entryNumber, recordingDate string) string {
	bt, ok := tab.(*browser.Tab)
	if !ok {
		log.Printf("[CAPTURE] %s: cannot capture through tab type %T", entryNumber, tab)
		return ""
	}
	return b.c.Capture(ctx, bt, entryNumber, recordingDate)
}

// defaultResultsPage wraps the post-submit tab for pagination.
func defaultResultsPage(tab Tab) (walk.Page, error) {
	bt, ok := tab.(*browser.Tab)
	if !ok {
		return nil, fmt.Errorf("results traversal requires a browser tab, got %T", tab)
	}
	return browser.NewResultsPage(bt), nil
}
