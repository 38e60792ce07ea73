// Package capture retrieves the PDF for a recorded document by driving the
// site's document-image-viewer popup and racing the browser's download event
// against a timeout.
package capture

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	cdbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/nathanj/recorder-agent/internal/browser"
	"github.com/nathanj/recorder-agent/internal/storage"
)

const (
	// ViewerControlSelector is the control on the detail page that opens
	// the document-image-viewer popup.
	ViewerControlSelector = "#viewDocumentImage"
	// popupImageSelector matches the first rendered document image inside
	// the popup. Its visibility signals that the viewer's client-side
	// bindings are active.
	popupImageSelector = "#documentImageContainer img"
	// menuControlSelector opens the viewer's export menu.
	menuControlSelector = "#exportMenuButton"
	// downloadPdfSelector is the primary download control; the fallback
	// matches it by text when the id is absent.
	downloadPdfSelector = "#downloadPdf"
	downloadPdfFallback = `//a[normalize-space(text())='Download PDF'] | //button[normalize-space(text())='Download PDF']`
)

const (
	// DefaultPopupTimeout bounds the wait for the viewer popup to open.
	DefaultPopupTimeout = 45 * time.Second
	// DefaultImageTimeout bounds the wait for the popup's first document
	// image to render.
	DefaultImageTimeout = 60 * time.Second
	// DefaultDownloadTimeout bounds the race between the download-complete
	// event and giving up.
	DefaultDownloadTimeout = 60 * time.Second

	// The viewer wires its menu handlers asynchronously after the first
	// image renders; there is no readiness signal beyond waiting it out.
	viewerSettleDelay = 2 * time.Second
	menuSettleDelay   = 1 * time.Second
	controlWait       = 5 * time.Second
)

// Options configures a Capturer.
type Options struct {
	// Store republishes captured PDFs; nil skips republishing and the
	// local artifact path becomes the reference.
	Store storage.Store
	// DownloadDir is where the browser drops completed downloads,
	// GUID-named.
	DownloadDir string
	// ArtifactDir is the root of the local year/month artifact tree.
	ArtifactDir string

	PopupTimeout    time.Duration
	ImageTimeout    time.Duration
	DownloadTimeout time.Duration
	Verbose         bool
}

// Capturer runs the popup/download flow for one document at a time.
type Capturer struct {
	store           storage.Store
	downloadDir     string
	artifactDir     string
	popupTimeout    time.Duration
	imageTimeout    time.Duration
	downloadTimeout time.Duration
	verbose         bool
}

// NewCapturer applies defaults for any unset timeout.
func NewCapturer(opts Options) *Capturer {
	if opts.PopupTimeout <= 0 {
		opts.PopupTimeout = DefaultPopupTimeout
	}
	if opts.ImageTimeout <= 0 {
		opts.ImageTimeout = DefaultImageTimeout
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = DefaultDownloadTimeout
	}
	return &Capturer{
		store:           opts.Store,
		downloadDir:     opts.DownloadDir,
		artifactDir:     opts.ArtifactDir,
		popupTimeout:    opts.PopupTimeout,
		imageTimeout:    opts.ImageTimeout,
		downloadTimeout: opts.DownloadTimeout,
		verbose:         opts.Verbose,
	}
}

// Capture attempts the full popup/download flow on a detail-page tab and
// returns the published PDF reference, or "" when the capture fails for any
// reason. Failures are logged, never propagated: a missing PDF is a
// per-document condition and must not stop the run.
func (c *Capturer) Capture(ctx context.Context, tab *browser.Tab, entryNumber, recordingDate string) string {
	ref, state, err := c.run(ctx, tab, entryNumber, recordingDate)
	if err != nil {
		log.Printf("[CAPTURE] %s: gave up in state %s: %v", entryNumber, state, err)
		return ""
	}
	if c.verbose {
		log.Printf("[CAPTURE] %s: %s -> %s", entryNumber, state, ref)
	}
	return ref
}

func (c *Capturer) run(ctx context.Context, tab *browser.Tab, entryNumber, recordingDate string) (string, State, error) {
	state := StateIdle
	_ = state
	tabCtx := tab.Context()

	chromedpCtx := chromedp.FromContext(tabCtx)
	if chromedpCtx == nil || chromedpCtx.Target == nil {
		return "", StateFailed, fmt.Errorf("tab has no attached target")
	}
	openerID := chromedpCtx.Target.TargetID

	// One outstanding download expectation per attempt: both pages feed the
	// same buffered channel and the select below is the single point where
	// the first completion or the timeout wins.
	downloadDone := make(chan string, 1)

	listenCtx, stopListening := context.WithCancel(tabCtx)
	defer stopListening()
	listenForDownloads(listenCtx, downloadDone, entryNumber, c.verbose)

	// The popup expectation must exist before the click that spawns it.
	popupCh := chromedp.WaitNewTarget(tabCtx, func(info *target.Info) bool {
		return info.Type == "page" && info.OpenerID == openerID
	})

	state = StateAwaitingPopup
	if err := tab.Click(ViewerControlSelector); err != nil {
		return "", StateFailed, fmt.Errorf("failed to open document viewer: %w", err)
	}

	var popupID target.ID
	select {
	case popupID = <-popupCh:
	case <-time.After(c.popupTimeout):
		return "", StateTimedOut, fmt.Errorf("viewer popup did not open within %s", c.popupTimeout)
	case <-tabCtx.Done():
		return "", StateFailed, tabCtx.Err()
	}

	popupCtx, cancelPopup := chromedp.NewContext(tabCtx, chromedp.WithTargetID(popupID))
	defer func() {
		// Close the popup on every exit path; a leftover viewer window
		// confuses the next document's popup expectation.
		if err := chromedp.Cancel(popupCtx); err != nil && c.verbose {
			log.Printf("[CAPTURE] %s: popup close: %v", entryNumber, err)
		}
		cancelPopup()
	}()

	// Attach to the popup, route its downloads like the opener's, and
	// listen on its session too: Chrome emits the download events on
	// whichever session initiated the fetch.
	if c.downloadDir != "" {
		if err := chromedp.Run(popupCtx,
			cdbrowser.SetDownloadBehavior(cdbrowser.SetDownloadBehaviorBehaviorAllowAndName).
				WithDownloadPath(c.downloadDir).
				WithEventsEnabled(true),
		); err != nil {
			return "", StateFailed, fmt.Errorf("failed to prepare popup for downloads: %w", err)
		}
	}
	popupListenCtx, stopPopupListening := context.WithCancel(popupCtx)
	defer stopPopupListening()
	listenForDownloads(popupListenCtx, downloadDone, entryNumber, c.verbose)

	if err := waitVisible(popupCtx, popupImageSelector, c.imageTimeout); err != nil {
		return "", StateTimedOut, fmt.Errorf("document image never rendered: %w", err)
	}
	state = StatePopupLoaded
	if err := chromedp.Run(popupCtx, chromedp.Sleep(viewerSettleDelay)); err != nil {
		return "", StateFailed, err
	}

	if err := click(popupCtx, menuControlSelector, controlWait); err != nil {
		return "", StateFailed, fmt.Errorf("failed to open export menu: %w", err)
	}
	state = StateMenuOpened
	if err := chromedp.Run(popupCtx, chromedp.Sleep(menuSettleDelay)); err != nil {
		return "", StateFailed, err
	}

	downloadSel := downloadPdfSelector
	if err := waitVisible(popupCtx, downloadSel, controlWait); err != nil {
		downloadSel = downloadPdfFallback
		if err := waitVisible(popupCtx, downloadSel, controlWait); err != nil {
			return "", StateFailed, fmt.Errorf("no download control found: %w", err)
		}
	}

	state = StateAwaitingDownload
	// A download click aborts the navigation it would have caused, which
	// chromedp reports as net::ERR_ABORTED. The download itself proceeds.
	if err := click(popupCtx, downloadSel, controlWait); err != nil && !strings.Contains(err.Error(), "net::ERR_ABORTED") {
		return "", StateFailed, fmt.Errorf("failed to click download control: %w", err)
	}

	select {
	case guid := <-downloadDone:
		ref, err := c.persist(ctx, entryNumber, recordingDate, guid)
		if err != nil {
			return "", StateFailed, err
		}
		return ref, StateSaved, nil
	case <-time.After(c.downloadTimeout):
		return "", StateTimedOut, fmt.Errorf("download did not complete within %s", c.downloadTimeout)
	case <-popupCtx.Done():
		return "", StateFailed, popupCtx.Err()
	}
}

// listenForDownloads forwards the first download completion seen on a page's
// session to done. The send is non-blocking so a second event can never hang
// the event loop.
func listenForDownloads(ctx context.Context, done chan<- string, entryNumber string, verbose bool) {
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *cdbrowser.EventDownloadWillBegin:
			if verbose {
				log.Printf("[CAPTURE] %s: download starting (%s)", entryNumber, e.SuggestedFilename)
			}
		case *cdbrowser.EventDownloadProgress:
			if e.State == cdbrowser.DownloadProgressStateCompleted {
				select {
				case done <- e.GUID:
				default:
				}
			}
		}
	})
}

// persist moves the GUID-named download into the year/month artifact tree
// and republishes the bytes through the store. A store failure downgrades to
// a warning; the local artifact path then serves as the reference.
func (c *Capturer) persist(ctx context.Context, entryNumber, recordingDate, guid string) (string, error) {
	src := filepath.Join(c.downloadDir, guid)
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read downloaded file: %w", err)
	}

	dst := filepath.Join(c.artifactDir, artifactRelPath(entryNumber, recordingDate))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save artifact: %w", err)
	}
	_ = os.Remove(src)

	if c.verbose {
		log.Printf("[CAPTURE] %s: saved %d bytes to %s", entryNumber, len(data), dst)
	}

	if c.store == nil {
		return dst, nil
	}
	key := storage.SanitizeKey(entryNumber + ".pdf")
	ref, err := c.store.Put(ctx, key, data, "application/pdf")
	if err != nil {
		log.Printf("[CAPTURE] Warning: failed to republish %s: %v", entryNumber, err)
		return dst, nil
	}
	return ref, nil
}

func waitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return chromedp.Run(wctx, chromedp.WaitVisible(sel))
}

func click(ctx context.Context, sel string, timeout time.Duration) error {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return chromedp.Run(cctx, chromedp.Click(sel, chromedp.NodeVisible))
}
