package walk

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// ResultRowSelector matches the data rows of the search results table.
	ResultRowSelector = "table#searchResults tr.resultRow"
	// ResultsHeaderSelector matches the header element above the results
	// table, which carries the zero-results message when the search is empty.
	ResultsHeaderSelector = "#searchResultsHeader"
	// NextLinkText is the exact text of the pagination control.
	NextLinkText = "Next"

	// noResultsMarker appears in the results header when a search matched
	// nothing.
	noResultsMarker = "returned no results"
)

// IsNoResults reports whether a results page announces the empty result set.
// An unparseable page or a missing header reads as "has results"; the row
// wait downstream is the backstop for genuinely broken pages.
func IsNoResults(htmlContent string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return false
	}
	header := doc.Find(ResultsHeaderSelector).First()
	if header.Length() == 0 {
		return false
	}
	return strings.Contains(strings.ToLower(header.Text()), noResultsMarker)
}

// DetailLinks returns the first anchor href of each result row, in row order.
// Rows without an anchor contribute nothing. Hrefs are returned exactly as
// written in the markup; duplicates are preserved.
func DetailLinks(htmlContent string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &WalkError{
			Message: "failed to parse results page",
			Cause:   err,
		}
	}

	links := make([]string, 0)
	doc.Find(ResultRowSelector).Each(func(_ int, row *goquery.Selection) {
		href, exists := row.Find("a[href]").First().Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			return
		}
		links = append(links, strings.TrimSpace(href))
	})
	return links, nil
}
