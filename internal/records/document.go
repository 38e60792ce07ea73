// Package records provides type definitions for the land-record documents
// acquired from the county recorder site.
package records

import "time"

// Document is the unit of output for one recorded instrument. Scalar fields
// default to "" and list fields to nil when the source page omits them; only
// an empty EntryNumber makes the record invalid for emission.
type Document struct {
	EntryNumber    string   `json:"entry_number"`
	RecordingDate  string   `json:"recording_date"` // MM/DD/YYYY as shown on the detail page
	Book           string   `json:"book"`
	Page           string   `json:"page"`
	InstrumentDate string   `json:"instrument_date"`
	Consideration  string   `json:"consideration"`
	Kind           string   `json:"kind"`
	MailingAddress string   `json:"mailing_address"`
	TaxAddress     string   `json:"tax_address"`
	Legal          []string `json:"legal"` // normalized legal-description lines
	Grantors       []string `json:"grantors"`
	Grantees       []string `json:"grantees"`
	SerialNumbers  []string `json:"serial_numbers"`
	TieEntries     []string `json:"tie_entries"`
	Releases       []string `json:"releases"`

	// PdfURL is the storage reference for the captured scan, empty when
	// capture failed or no image was available.
	PdfURL string `json:"pdf_url"`

	// Provenance.
	DetailURL  string    `json:"detail_url,omitempty"`
	AcquiredAt time.Time `json:"acquired_at,omitempty"`
}

// Valid reports whether the record carries the one field that identifies it.
func (d *Document) Valid() bool {
	return d != nil && d.EntryNumber != ""
}
