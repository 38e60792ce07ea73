package walk

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePage serves a canned sequence of result pages.
type fakePage struct {
	pages   []string
	idx     int
	waitErr error
	nextErr error
}

func (p *fakePage) HTML(_ context.Context) (string, error) {
	return p.pages[p.idx], nil
}

func (p *fakePage) WaitRows(_ context.Context) error {
	return p.waitErr
}

func (p *fakePage) NextPage(_ context.Context) (bool, error) {
	if p.nextErr != nil {
		return false, p.nextErr
	}
	if p.idx+1 < len(p.pages) {
		p.idx++
		return true, nil
	}
	return false, nil
}

func resultsPage(hrefs ...string) string {
	var b strings.Builder
	b.WriteString(`<table id="searchResults"><tr><th>Entry</th><th>Recorded</th></tr>`)
	for _, h := range hrefs {
		b.WriteString(`<tr class="resultRow"><td><a href="` + h + `">View</a></td><td>03/10/2024</td></tr>`)
	}
	b.WriteString(`</table>`)
	return b.String()
}

const noResultsPage = `<div id="searchResultsHeader">Your search returned no results.</div>`

func TestCollect_SinglePage(t *testing.T) {
	page := &fakePage{pages: []string{resultsPage("/doc?id=1", "/doc?id=2")}}

	links, err := Collect(context.Background(), page, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"/doc?id=1", "/doc?id=2"}, links)
}

func TestCollect_MultiplePagesPreservesOrder(t *testing.T) {
	page := &fakePage{pages: []string{
		resultsPage("/doc?id=1", "/doc?id=2"),
		resultsPage("/doc?id=3", "/doc?id=4"),
		resultsPage("/doc?id=5"),
	}}

	links, err := Collect(context.Background(), page, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"/doc?id=1", "/doc?id=2", "/doc?id=3", "/doc?id=4", "/doc?id=5"}, links)
}

func TestCollect_NoResultsIsCleanAndEmpty(t *testing.T) {
	page := &fakePage{pages: []string{noResultsPage}}

	links, err := Collect(context.Background(), page, false)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestCollect_RowWaitFailureIsHardError(t *testing.T) {
	page := &fakePage{
		pages:   []string{resultsPage("/doc?id=1")},
		waitErr: errors.New("timed out waiting for rows"),
	}

	_, err := Collect(context.Background(), page, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no result rows appeared on page 1")
}

func TestCollect_NextPageFailure(t *testing.T) {
	page := &fakePage{
		pages:   []string{resultsPage("/doc?id=1"), resultsPage("/doc?id=2")},
		nextErr: errors.New("navigation aborted"),
	}

	_, err := Collect(context.Background(), page, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to advance past results page 1")
}

func TestDetailLinks_PreservesDuplicates(t *testing.T) {
	links, err := DetailLinks(resultsPage("/doc?id=1", "/doc?id=1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/doc?id=1", "/doc?id=1"}, links)
}

func TestDetailLinks_SkipsRowsWithoutAnchors(t *testing.T) {
	html := `<table id="searchResults">
		<tr class="resultRow"><td><a href="/doc?id=1">View</a></td></tr>
		<tr class="resultRow"><td>no link here</td></tr>
		<tr class="resultRow"><td><a href="/doc?id=2">View</a></td></tr>
	</table>`

	links, err := DetailLinks(html)
	require.NoError(t, err)
	assert.Equal(t, []string{"/doc?id=1", "/doc?id=2"}, links)
}

func TestDetailLinks_TakesFirstAnchorPerRow(t *testing.T) {
	html := `<table id="searchResults">
		<tr class="resultRow"><td><a href="/doc?id=1">View</a> <a href="/img?id=1">Image</a></td></tr>
	</table>`

	links, err := DetailLinks(html)
	require.NoError(t, err)
	assert.Equal(t, []string{"/doc?id=1"}, links)
}

func TestIsNoResults(t *testing.T) {
	assert.True(t, IsNoResults(noResultsPage))
	assert.True(t, IsNoResults(`<div id="searchResultsHeader">Search Returned No Results</div>`))
	assert.False(t, IsNoResults(resultsPage("/doc?id=1")))
	assert.False(t, IsNoResults(`<div id="searchResultsHeader">2 documents found</div>`))
}
