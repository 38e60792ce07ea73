package records

// The grouped representation splits one document into the five normalized
// sub-tables used by the batch/date-grouped export: one header row plus name,
// legal, parcel and cross-reference rows keyed by entry number.

// RoleGrantor and RoleGrantee tag NameRow entries.
const (
	RoleGrantor = "grantor"
	RoleGrantee = "grantee"
)

// XrefTie and XrefRelease tag XrefRow entries.
const (
	XrefTie     = "tie"
	XrefRelease = "release"
)

// HeaderRow carries the scalar fields of one document.
type HeaderRow struct {
	EntryNumber    string `json:"entry_number"`
	RecordingDate  string `json:"recording_date"`
	Book           string `json:"book"`
	Page           string `json:"page"`
	InstrumentDate string `json:"instrument_date"`
	Consideration  string `json:"consideration"`
	Kind           string `json:"kind"`
	MailingAddress string `json:"mailing_address"`
	TaxAddress     string `json:"tax_address"`
	PdfURL         string `json:"pdf_url"`
}

// NameRow is one grantor or grantee of a document.
type NameRow struct {
	EntryNumber string `json:"entry_number"`
	Role        string `json:"role"`
	Name        string `json:"name"`
}

// LegalRow is one normalized legal-description line, ordered by Seq.
type LegalRow struct {
	EntryNumber string `json:"entry_number"`
	Seq         int    `json:"seq"`
	Text        string `json:"text"`
}

// ParcelRow is one serial/parcel number reference.
type ParcelRow struct {
	EntryNumber string `json:"entry_number"`
	Serial      string `json:"serial"`
}

// XrefRow is one tie-entry or release reference to another document.
type XrefRow struct {
	EntryNumber string `json:"entry_number"`
	Kind        string `json:"kind"`
	Reference   string `json:"reference"`
}

// Grouped is the five-table split of a single document.
type Grouped struct {
	Header  HeaderRow   `json:"header"`
	Names   []NameRow   `json:"names"`
	Legals  []LegalRow  `json:"legals"`
	Parcels []ParcelRow `json:"parcels"`
	Xrefs   []XrefRow   `json:"xrefs"`
}

// Group splits a document into its sub-table rows. Row order follows the
// source document's field order.
func Group(d *Document) Grouped {
	g := Grouped{
		Header: HeaderRow{
			EntryNumber:    d.EntryNumber,
			RecordingDate:  d.RecordingDate,
			Book:           d.Book,
			Page:           d.Page,
			InstrumentDate: d.InstrumentDate,
			Consideration:  d.Consideration,
			Kind:           d.Kind,
			MailingAddress: d.MailingAddress,
			TaxAddress:     d.TaxAddress,
			PdfURL:         d.PdfURL,
		},
	}
	for _, n := range d.Grantors {
		g.Names = append(g.Names, NameRow{EntryNumber: d.EntryNumber, Role: RoleGrantor, Name: n})
	}
	for _, n := range d.Grantees {
		g.Names = append(g.Names, NameRow{EntryNumber: d.EntryNumber, Role: RoleGrantee, Name: n})
	}
	for i, line := range d.Legal {
		g.Legals = append(g.Legals, LegalRow{EntryNumber: d.EntryNumber, Seq: i + 1, Text: line})
	}
	for _, s := range d.SerialNumbers {
		g.Parcels = append(g.Parcels, ParcelRow{EntryNumber: d.EntryNumber, Serial: s})
	}
	for _, ref := range d.TieEntries {
		g.Xrefs = append(g.Xrefs, XrefRow{EntryNumber: d.EntryNumber, Kind: XrefTie, Reference: ref})
	}
	for _, ref := range d.Releases {
		g.Xrefs = append(g.Xrefs, XrefRow{EntryNumber: d.EntryNumber, Kind: XrefRelease, Reference: ref})
	}
	return g
}
