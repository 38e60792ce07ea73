package browser

import (
	"context"
	"time"

	"github.com/nathanj/recorder-agent/internal/walk"
)

// RowWaitTimeout bounds the wait for result rows to appear on a page.
const RowWaitTimeout = 10 * time.Second

// nextLinkXPath matches the pagination control by its exact text.
const nextLinkXPath = `//a[normalize-space(text())='Next']`

// nextVisibleJS reports whether a visible exact-text "Next" link exists.
// The control disappears (or is hidden) on the final results page.
const nextVisibleJS = `(() => {
	const link = Array.from(document.querySelectorAll('a')).find(a => a.textContent.trim() === 'Next');
	if (!link) return false;
	const style = window.getComputedStyle(link);
	return style.display !== 'none' && style.visibility !== 'hidden' && link.offsetParent !== null;
})()`

// ResultsPage adapts a tab showing search results to the walker's page
// interface.
type ResultsPage struct {
	tab *Tab
}

// NewResultsPage wraps a tab that has already navigated to a results page.
func NewResultsPage(tab *Tab) *ResultsPage {
	return &ResultsPage{tab: tab}
}

// HTML returns the current page content.
func (p *ResultsPage) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.tab.HTML()
}

// WaitRows blocks until at least one result row is visible.
func (p *ResultsPage) WaitRows(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.tab.WaitVisible(walk.ResultRowSelector, RowWaitTimeout)
}

// NextPage advances to the next results page. It reports false when no
// visible "Next" control remains, which ends pagination.
func (p *ResultsPage) NextPage(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	visible, err := p.tab.Visible(nextVisibleJS)
	if err != nil {
		return false, err
	}
	if !visible {
		return false, nil
	}
	if err := p.tab.ClickAndWaitLoad(nextLinkXPath, DefaultNavTimeout); err != nil {
		return false, err
	}
	return true, nil
}
