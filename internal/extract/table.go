package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// The extractor never walks markup directly when deciding field values; it
// works over this pre-parsed model of the detail table so the label lookup
// rules stay independent of the traversal API.

// cell is one table cell: its text (with <br> runs preserved as newlines)
// and the texts of any anchors inside it, in DOM order.
type cell struct {
	text    string
	anchors []string
}

// tableModel is the detail table as rows of cells.
type tableModel struct {
	rows [][]cell
}

var brTag = regexp.MustCompile(`(?i)<br\s*/?>`)

// parseTable builds the model from a selection rooted at the detail table.
func parseTable(table *goquery.Selection) *tableModel {
	model := &tableModel{}
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []cell
		tr.Find("td, th").Each(func(_ int, td *goquery.Selection) {
			c := cell{text: td.Text()}
			td.Find("a").Each(func(_ int, a *goquery.Selection) {
				if t := strings.TrimSpace(a.Text()); t != "" {
					c.anchors = append(c.anchors, t)
				}
			})
			row = append(row, c)
		})
		if len(row) > 0 {
			model.rows = append(model.rows, row)
		}
	})
	return model
}

// valueCellForLabel finds the first cell (document order) whose text contains
// the label as a literal substring and returns its adjacent sibling cell.
// When no sibling follows, the label cell itself is returned so callers can
// apply the same-cell fallback.
func (m *tableModel) valueCellForLabel(label string) (cell, bool) {
	for _, row := range m.rows {
		for i, c := range row {
			if !strings.Contains(c.text, label) {
				continue
			}
			if i+1 < len(row) {
				return row[i+1], true
			}
			return c, true
		}
	}
	return cell{}, false
}

// findValueForLabel returns the scalar value for a label. The adjacent
// sibling cell's text wins; when the sibling is absent or blank, the label
// cell's own text after the first colon is used (some source rows inline the
// value next to the label).
func (m *tableModel) findValueForLabel(label string) (string, bool) {
	for _, row := range m.rows {
		for i, c := range row {
			if !strings.Contains(c.text, label) {
				continue
			}
			if i+1 < len(row) {
				if v := collapseWhitespace(row[i+1].text); v != "" {
					return v, true
				}
			}
			if v := afterColon(c.text); v != "" {
				return v, true
			}
			return "", true
		}
	}
	return "", false
}

// afterColon strips everything up to and including the first colon.
func afterColon(s string) string {
	if i := strings.Index(s, ":"); i >= 0 {
		return collapseWhitespace(s[i+1:])
	}
	return ""
}

// collapseWhitespace trims and folds runs of whitespace to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
