package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentValid_RequiresEntryNumber(t *testing.T) {
	assert.False(t, (&Document{}).Valid())
	assert.False(t, (*Document)(nil).Valid())
	assert.True(t, (&Document{EntryNumber: "117394:2024"}).Valid())
}

func TestGroup_SplitsIntoSubTables(t *testing.T) {
	doc := &Document{
		EntryNumber:   "117394:2024",
		RecordingDate: "03/10/2024",
		Kind:          "WARRANTY DEED",
		Grantors:      []string{"DOE, JOHN", "DOE, JANE"},
		Grantees:      []string{"SMITH, ALICE"},
		Legal:         []string{"LOT 4, PLAT A", "BIG CITY SUBDIVISION"},
		SerialNumbers: []string{"46:123:0004"},
		TieEntries:    []string{"117390:2024"},
		Releases:      []string{"98211:2019", "98212:2019"},
		PdfURL:        "http://store.local/pdfs/117394_2024.pdf",
	}

	g := Group(doc)

	assert.Equal(t, "117394:2024", g.Header.EntryNumber)
	assert.Equal(t, "WARRANTY DEED", g.Header.Kind)
	assert.Equal(t, "http://store.local/pdfs/117394_2024.pdf", g.Header.PdfURL)

	assert.Len(t, g.Names, 3)
	assert.Equal(t, RoleGrantor, g.Names[0].Role)
	assert.Equal(t, "DOE, JOHN", g.Names[0].Name)
	assert.Equal(t, RoleGrantee, g.Names[2].Role)

	assert.Len(t, g.Legals, 2)
	assert.Equal(t, 1, g.Legals[0].Seq)
	assert.Equal(t, 2, g.Legals[1].Seq)

	assert.Len(t, g.Parcels, 1)
	assert.Equal(t, "46:123:0004", g.Parcels[0].Serial)

	assert.Len(t, g.Xrefs, 3)
	assert.Equal(t, XrefTie, g.Xrefs[0].Kind)
	assert.Equal(t, XrefRelease, g.Xrefs[1].Kind)
	assert.Equal(t, "98212:2019", g.Xrefs[2].Reference)
}

func TestGroup_EmptyListsYieldNoRows(t *testing.T) {
	g := Group(&Document{EntryNumber: "1:2024"})
	assert.Empty(t, g.Names)
	assert.Empty(t, g.Legals)
	assert.Empty(t, g.Parcels)
	assert.Empty(t, g.Xrefs)
}
