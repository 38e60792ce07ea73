// Package extract parses a recorded-document detail page into a structured
// record. It operates on raw HTML only and performs no navigation, so it can
// be tested against fixture pages without a browser.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nathanj/recorder-agent/internal/records"
)

// DetailTableSelector locates the document detail table on the page. The
// orchestrator waits for it before handing the rendered page to Document.
const DetailTableSelector = "table#documentDetail"

// disclaimerMarker flags boilerplate lines inside the legal description that
// are not part of the description itself.
const disclaimerMarker = "NOT FOR LEGAL DOCUMENTS"

// Field labels as they appear on the detail page. Lookup is by literal
// substring, so the colon variants also match rows that omit the colon.
const (
	labelEntryNumber    = "Entry #:"
	labelEntryNumberAlt = "Entry #"
	labelRecordingDate  = "Recorded:"
	labelBook           = "Book:"
	labelPage           = "Page:"
	labelInstrumentDate = "Instrument Date:"
	labelConsideration  = "Consideration:"
	labelKind           = "Kind:"
	labelMailingAddress = "Mailing Address:"
	labelTaxAddress     = "Tax Address:"
	labelLegal          = "Legal Description:"
	labelGrantors       = "Grantor:"
	labelGrantees       = "Grantee:"
	labelSerialNumbers  = "Serial #:"
	labelTieEntries     = "Tie Entry #:"
	labelReleases       = "Releases:"
)

// Document extracts a structured record from the HTML of a detail page. Every
// field except the entry number is optional; missing fields come back as zero
// values. An error is returned only when the page has no detail table or no
// entry number, since such a page cannot identify a document at all.
func Document(html string) (*records.Document, error) {
	// Preserve line structure: goquery's Text() drops <br> tags outright,
	// and multi-line fields (legal descriptions, addresses) depend on them.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(brTag.ReplaceAllString(html, "\n")))
	if err != nil {
		return nil, fmt.Errorf("failed to parse detail page: %w", err)
	}

	table := doc.Find(DetailTableSelector).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no document detail table found")
	}
	model := parseTable(table)

	entry, ok := model.findValueForLabel(labelEntryNumber)
	if !ok || entry == "" {
		entry, ok = model.findValueForLabel(labelEntryNumberAlt)
	}
	if !ok || entry == "" {
		return nil, fmt.Errorf("detail page has no entry number")
	}

	rec := &records.Document{EntryNumber: entry}

	if v, ok := model.findValueForLabel(labelRecordingDate); ok {
		rec.RecordingDate = records.NormalizeDate(v)
	}
	if v, ok := model.findValueForLabel(labelBook); ok {
		rec.Book = v
	}
	if v, ok := model.findValueForLabel(labelPage); ok {
		rec.Page = v
	}
	if v, ok := model.findValueForLabel(labelInstrumentDate); ok {
		rec.InstrumentDate = records.NormalizeDate(v)
	}
	if v, ok := model.findValueForLabel(labelConsideration); ok {
		rec.Consideration = v
	}
	if v, ok := model.findValueForLabel(labelKind); ok {
		rec.Kind = v
	}
	if v, ok := model.findValueForLabel(labelMailingAddress); ok {
		rec.MailingAddress = v
	}
	if v, ok := model.findValueForLabel(labelTaxAddress); ok {
		rec.TaxAddress = v
	}

	rec.Legal = legalDescription(model)
	rec.Grantors = listField(model, labelGrantors)
	rec.Grantees = listField(model, labelGrantees)
	rec.SerialNumbers = listField(model, labelSerialNumbers)
	rec.TieEntries = listField(model, labelTieEntries)
	rec.Releases = listField(model, labelReleases)

	return rec, nil
}

// listField extracts a multi-valued field. Anchor texts inside the value cell
// take priority (the site renders cross-references and party names as links);
// otherwise the cell text is split on commas and line breaks.
func listField(m *tableModel, label string) []string {
	c, ok := m.valueCellForLabel(label)
	if !ok {
		return nil
	}
	if len(c.anchors) > 0 {
		out := make([]string, 0, len(c.anchors))
		for _, a := range c.anchors {
			if v := collapseWhitespace(a); v != "" {
				out = append(out, v)
			}
		}
		return out
	}
	text := c.text
	if i := strings.Index(text, label); i >= 0 {
		text = afterColonRaw(text[i+len(label):])
	}
	var out []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	}) {
		if v := collapseWhitespace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// afterColonRaw drops a leading colon without collapsing interior newlines,
// which listField still needs as separators.
func afterColonRaw(s string) string {
	s = strings.TrimLeft(s, " \t")
	if strings.HasPrefix(s, ":") {
		s = s[1:]
	}
	return s
}

// legalDescription returns the legal description as cleaned lines: the site
// disclaimer is dropped wherever it appears, each surviving line has its
// whitespace collapsed, and blank lines are removed.
func legalDescription(m *tableModel) []string {
	c, ok := m.valueCellForLabel(labelLegal)
	if !ok {
		return nil
	}
	text := c.text
	if i := strings.Index(text, labelLegal); i >= 0 {
		text = text[i+len(labelLegal):]
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(strings.ToUpper(line), disclaimerMarker) {
			continue
		}
		if v := collapseWhitespace(line); v != "" {
			out = append(out, v)
		}
	}
	return out
}
