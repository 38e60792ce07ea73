// Package browser owns the headless browser session for a run and hands out
// isolated tabs. One session drives the whole acquisition; every document is
// processed in its own tab so popup and download state never leaks between
// documents.
package browser

import (
	"context"
	"fmt"
	"log"

	"github.com/chromedp/chromedp"
)

// Options configures the browser session.
type Options struct {
	Headless    bool
	DownloadDir string
	Verbose     bool
}

// Session is the exclusively-owned browser instance for one run.
type Session struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	downloadDir   string
	verbose       bool
}

// NewSession starts a headless browser. The returned session must be closed
// by the caller; closing it tears down every tab created from it.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	if opts.Verbose {
		log.Printf("[BROWSER] Starting browser session (headless=%t)", opts.Headless)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Allocate the browser process now so startup failures surface here
	// rather than on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Session{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		downloadDir:   opts.DownloadDir,
		verbose:       opts.Verbose,
	}, nil
}

// NewTab opens a fresh tab in the session's browser. The caller must Close
// the tab when done with it.
func (s *Session) NewTab() (*Tab, error) {
	ctx, cancel := chromedp.NewContext(s.browserCtx)
	tab := &Tab{ctx: ctx, cancel: cancel, verbose: s.verbose}
	if s.downloadDir != "" {
		if err := tab.EnableDownloads(s.downloadDir); err != nil {
			tab.Close()
			return nil, fmt.Errorf("failed to enable downloads: %w", err)
		}
	}
	return tab, nil
}

// DownloadDir returns the directory the browser saves downloads into.
func (s *Session) DownloadDir() string {
	return s.downloadDir
}

// Close shuts the browser down.
func (s *Session) Close() {
	if s.verbose {
		log.Printf("[BROWSER] Closing browser session")
	}
	s.browserCancel()
	s.allocCancel()
}
