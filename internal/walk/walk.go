package walk

import (
	"context"
	"fmt"
)

// MaxPagesLimit is the hard maximum number of result pages to walk before
// pagination is declared stuck
const MaxPagesLimit = 1000

// Page is the walker's view of a live results page. Implementations wrap a
// browser tab; tests substitute a fake.
type Page interface {
	// HTML returns the current serialized page content.
	HTML(ctx context.Context) (string, error)
	// WaitRows blocks until at least one result row is visible, bounded by
	// the implementation's own timeout.
	WaitRows(ctx context.Context) error
	// NextPage activates the pagination control and waits for the following
	// page to finish loading. It reports false when no control is visible,
	// which is the normal end of pagination.
	NextPage(ctx context.Context) (bool, error)
}

// Collect walks every results page and returns all detail links, preserving
// row order within a page and page order across pages. A page that reports
// zero results yields an empty slice and no error. Collect is not resumable
// mid-walk; re-invoke it against a fresh results page.
func Collect(ctx context.Context, page Page, verbose bool) ([]string, error) {
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, &WalkError{
			Message: "failed to read initial results page",
			Cause:   err,
		}
	}
	if IsNoResults(html) {
		if verbose {
			fmt.Printf("[VERBOSE] Search returned no results\n")
		}
		return []string{}, nil
	}

	links := make([]string, 0)
	for pageNum := 1; ; pageNum++ {
		if pageNum > MaxPagesLimit {
			return nil, &WalkError{
				Message: fmt.Sprintf("pagination did not terminate after %d pages", MaxPagesLimit),
			}
		}

		if err := page.WaitRows(ctx); err != nil {
			return nil, &WalkError{
				Message: fmt.Sprintf("no result rows appeared on page %d", pageNum),
				Cause:   err,
			}
		}

		html, err := page.HTML(ctx)
		if err != nil {
			return nil, &WalkError{
				Message: fmt.Sprintf("failed to read results page %d", pageNum),
				Cause:   err,
			}
		}
		pageLinks, err := DetailLinks(html)
		if err != nil {
			return nil, err
		}
		links = append(links, pageLinks...)

		if verbose {
			fmt.Printf("[VERBOSE] Results page %d: %d links (%d total)\n", pageNum, len(pageLinks), len(links))
		}

		more, err := page.NextPage(ctx)
		if err != nil {
			return nil, &WalkError{
				Message: fmt.Sprintf("failed to advance past results page %d", pageNum),
				Cause:   err,
			}
		}
		if !more {
			break
		}
	}

	return links, nil
}
