// Package pipeline provides the high-level orchestration for the document acquisition run.
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nathanj/recorder-agent/internal/browser"
	"github.com/nathanj/recorder-agent/internal/checkpoint"
	"github.com/nathanj/recorder-agent/internal/extract"
	"github.com/nathanj/recorder-agent/internal/observability"
	"github.com/nathanj/recorder-agent/internal/records"
	"github.com/nathanj/recorder-agent/internal/schemas"
	"github.com/nathanj/recorder-agent/internal/sink"
	"github.com/nathanj/recorder-agent/internal/walk"
)

// Selectors for the recorder site's search page.
const (
	recordingSearchSelector = "#recordingDateSearch"
	startDateSelector       = "#startDate"
	endDateSelector         = "#endDate"
	searchButtonSelector    = "#searchButton"
)

const (
	// DefaultSearchAttempts and DefaultSearchRetryDelay govern retry of the
	// initial search submission.
	DefaultSearchAttempts   = 3
	DefaultSearchRetryDelay = 5 * time.Second

	formWaitTimeout   = 10 * time.Second
	searchLoadTimeout = 30 * time.Second
	detailWaitTimeout = 10 * time.Second
)

// ProgressEvent represents a progress update during pipeline execution.
// RunID is set once the run has been registered in the database.
type ProgressEvent struct {
	RunID    string `json:"run_id,omitempty"`
	Message  string `json:"message"`
	Terminal bool   `json:"terminal,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RetryPolicy controls how often the initial search submission is attempted
// before the run aborts. Zero values take the defaults.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

func (r RetryPolicy) withDefaults() RetryPolicy {
	if r.Attempts <= 0 {
		r.Attempts = DefaultSearchAttempts
	}
	if r.Delay <= 0 {
		r.Delay = DefaultSearchRetryDelay
	}
	return r
}

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	StartDate string // inclusive, MM/DD/YYYY (ISO accepted)
	EndDate   string
	BaseURL   string

	Session    Session
	Capturer   Capturer
	Sink       sink.RecordSink
	Checkpoint *checkpoint.Manager

	Retry       RetryPolicy
	DatabaseURL string
	Verbose     bool
	OnProgress  ProgressCallback

	// newResultsPage is replaced in tests to walk canned pages without a
	// live browser.
	newResultsPage func(Tab) (walk.Page, error)
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, runID uuid.UUID, message string, terminal bool) {
	if opts.OnProgress == nil {
		return
	}
	ev := ProgressEvent{Message: message, Terminal: terminal}
	if runID != uuid.Nil {
		ev.RunID = runID.String()
	}
	opts.OnProgress(ev)
}

// RunPipeline drives one acquisition run end to end: search submission,
// results traversal, then the strictly sequential per-document loop. Errors
// for a single document are logged and skipped; a lost browser session or a
// failed search submission aborts the run.
func RunPipeline(ctx context.Context, opts RunOptions) (retErr error) {
	if opts.Session == nil {
		return fmt.Errorf("browser session is required")
	}
	if opts.Sink == nil {
		return fmt.Errorf("record sink is required")
	}
	if opts.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}

	// Initialize observability printer for verbose output
	printer := observability.NewPrinter(os.Stdout)

	newResultsPage := opts.newResultsPage
	if newResultsPage == nil {
		newResultsPage = defaultResultsPage
	}

	// Initialize database connection if configured
	var database *sink.DB
	var runID uuid.UUID
	if opts.DatabaseURL != "" {
		var err error
		database, err = sink.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
		} else {
			defer database.Close()
			if opts.Verbose {
				fmt.Printf("[VERBOSE] Connected to database\n")
			}
		}
	}

	var emitted, failed int

	// Step 1: Resolve the effective search range
	fmt.Printf("Step 1/4: Determining search range...\n")
	start := records.NormalizeDate(opts.StartDate)
	end := records.NormalizeDate(opts.EndDate)
	if opts.Checkpoint != nil {
		if resume, ok := opts.Checkpoint.ResumeStart(ctx); ok {
			start = resume.Format(records.SiteDateLayout)
			fmt.Printf("Resuming from checkpoint: effective start date is %s\n", start)
		}
	}
	emitProgress(&opts, runID, fmt.Sprintf("Acquiring documents recorded %s - %s", start, end), false)

	if database != nil {
		var err error
		runID, err = database.CreateRun(ctx, start, end)
		if err != nil {
			fmt.Printf("Warning: Failed to create database run: %v\n", err)
		} else if opts.Verbose {
			fmt.Printf("[VERBOSE] Created database run: %s\n", runID)
		}
	}
	defer func() {
		if database == nil || runID == uuid.Nil {
			return
		}
		status := sink.RunStatusCompleted
		if retErr != nil {
			status = sink.RunStatusFailed
		}
		_ = database.CompleteRun(ctx, runID, status, emitted)
	}()

	out := opts.Sink
	if database != nil && runID != uuid.Nil {
		out = sink.Multi{opts.Sink, sink.NewDBSink(database, runID)}
	}

	// Step 2: Submit the recording-date search, retrying on failure
	fmt.Printf("Step 2/4: Submitting recording-date search (%s - %s)...\n", start, end)
	searchTab, err := opts.Session.NewTab()
	if err != nil {
		return fmt.Errorf("failed to open search page: %w", err)
	}
	defer searchTab.Close()

	retry := opts.Retry.withDefaults()
	var searchErr error
	for attempt := 1; attempt <= retry.Attempts; attempt++ {
		if attempt > 1 {
			fmt.Printf("Retrying search submission in %s (attempt %d/%d)...\n", retry.Delay, attempt, retry.Attempts)
			select {
			case <-time.After(retry.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		searchErr = submitSearch(searchTab, opts.BaseURL, start, end)
		if searchErr == nil {
			break
		}
		fmt.Printf("Warning: search submission attempt %d/%d failed: %v\n", attempt, retry.Attempts, searchErr)
	}
	if searchErr != nil {
		emitProgress(&opts, runID, "Run aborted: search submission failed", true)
		return fmt.Errorf("search submission failed after %d attempts: %w", retry.Attempts, searchErr)
	}

	// Step 3: Walk the paginated results
	fmt.Printf("Step 3/4: Collecting detail links from results...\n")
	resultsPage, err := newResultsPage(searchTab)
	if err != nil {
		return err
	}
	links, err := walk.Collect(ctx, resultsPage, opts.Verbose)
	if err != nil {
		emitProgress(&opts, runID, "Run aborted: results traversal failed", true)
		return fmt.Errorf("results traversal failed: %w", err)
	}
	if len(links) == 0 {
		fmt.Printf("Search returned no documents; nothing to acquire.\n")
		emitProgress(&opts, runID, "Run complete: no documents in range", true)
		return nil
	}
	fmt.Printf("Found %d document(s) to process\n", len(links))
	if opts.Verbose {
		printer.PrintDetailLinks(links)
	}

	// Step 4: Process each document on its own tab
	fmt.Printf("Step 4/4: Processing documents...\n")
	for i, link := range links {
		if err := ctx.Err(); err != nil {
			emitProgress(&opts, runID, "Run aborted: canceled", true)
			return err
		}

		target := resolveLink(base, link)
		fmt.Printf("Document %d/%d: %s\n", i+1, len(links), target)
		emitProgress(&opts, runID, fmt.Sprintf("Processing document %d of %d", i+1, len(links)), false)

		doc, err := processDocument(ctx, &opts, target)
		if err != nil {
			if browser.IsClosedErr(err) {
				emitProgress(&opts, runID, "Run aborted: browser session lost", true)
				return fmt.Errorf("browser session lost while processing %s: %w", target, err)
			}
			fmt.Printf("Warning: skipping document %s: %v\n", target, err)
			failed++
			continue
		}

		if err := schemas.ValidateDocument(doc); err != nil {
			fmt.Printf("Warning: record %s failed schema validation: %v\n", doc.EntryNumber, err)
		}

		if err := out.Push(ctx, doc); err != nil {
			fmt.Printf("Warning: failed to emit record %s: %v\n", doc.EntryNumber, err)
			failed++
			continue
		}
		emitted++

		if opts.Checkpoint != nil {
			opts.Checkpoint.Record(ctx, doc.RecordingDate)
		}
		if opts.Verbose {
			printer.PrintDocument(doc)
		}
	}

	if failed > 0 {
		fmt.Printf("⚠️ Run complete with failures: %d record(s) emitted, %d document(s) skipped.\n", emitted, failed)
	} else {
		fmt.Printf("✅ Run complete: %d record(s) emitted.\n", emitted)
	}
	if opts.Verbose {
		sum := observability.RunSummary{
			StartDate: start,
			EndDate:   end,
			Found:     len(links),
			Emitted:   emitted,
			Failed:    failed,
		}
		if opts.Checkpoint != nil {
			if last, ok := opts.Checkpoint.Last(); ok {
				sum.Checkpoint = last.Format(records.ISODateLayout)
			}
		}
		printer.PrintRunSummary(sum)
	}
	emitProgress(&opts, runID, fmt.Sprintf("Run complete: %d records emitted, %d failures", emitted, failed), true)
	return nil
}

// submitSearch performs one full submission attempt: load the search page,
// open the recording-date form, fill the range and submit.
func submitSearch(tab Tab, baseURL, start, end string) error {
	if err := tab.Navigate(baseURL); err != nil {
		return err
	}
	if err := tab.Click(recordingSearchSelector); err != nil {
		return fmt.Errorf("failed to open recording-date search: %w", err)
	}
	if err := tab.WaitVisible(startDateSelector, formWaitTimeout); err != nil {
		return fmt.Errorf("search form did not appear: %w", err)
	}
	if err := tab.SetValue(startDateSelector, start); err != nil {
		return err
	}
	if err := tab.SetValue(endDateSelector, end); err != nil {
		return err
	}
	if err := tab.ClickAndWaitLoad(searchButtonSelector, searchLoadTimeout); err != nil {
		return fmt.Errorf("search results did not load: %w", err)
	}
	return nil
}

// processDocument opens an isolated tab, extracts the record and captures its
// PDF. Any error returned covers exactly one document; the caller decides
// whether it is fatal.
func processDocument(ctx context.Context, opts *RunOptions, target string) (*records.Document, error) {
	tab, err := opts.Session.NewTab()
	if err != nil {
		return nil, fmt.Errorf("failed to open document page: %w", err)
	}
	defer tab.Close()

	if err := tab.Navigate(target); err != nil {
		return nil, err
	}
	if err := tab.WaitVisible(extract.DetailTableSelector, detailWaitTimeout); err != nil {
		return nil, fmt.Errorf("detail table did not appear: %w", err)
	}
	html, err := tab.HTML()
	if err != nil {
		return nil, err
	}

	doc, err := extract.Document(html)
	if err != nil {
		return nil, err
	}

	doc.DetailURL = target
	if opts.Capturer != nil {
		doc.PdfURL = opts.Capturer.Capture(ctx, tab, doc.EntryNumber, doc.RecordingDate)
	}
	doc.AcquiredAt = time.Now().UTC()
	return doc, nil
}

// resolveLink joins a collected detail link to the base URL. Absolute links
// pass through; anything unparseable is returned as-is and left for the
// navigation to reject.
func resolveLink(base *url.URL, link string) string {
	ref, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return link
	}
	if ref.IsAbs() {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
