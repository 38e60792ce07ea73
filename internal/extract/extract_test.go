package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullDetailPage = `<html><body>
<h2>Recorded Document Detail</h2>
<table id="documentDetail">
  <tr><td>Entry #:</td><td>123456:2024</td></tr>
  <tr><td>Recorded:</td><td>03/10/2024</td></tr>
  <tr><td>Book:</td><td>11042</td></tr>
  <tr><td>Page:</td><td>5521</td></tr>
  <tr><td>Instrument Date:</td><td>03/08/2024</td></tr>
  <tr><td>Consideration:</td><td>$450,000.00</td></tr>
  <tr><td>Kind:</td><td>WARRANTY DEED</td></tr>
  <tr><td>Mailing Address:</td><td>742 EVERGREEN TER, SPRINGFIELD UT 84000</td></tr>
  <tr><td>Tax Address:</td><td>PO BOX 910, SPRINGFIELD UT 84000</td></tr>
  <tr><td>Legal Description:</td><td>LOT 7, BLOCK 2, SUNSET HEIGHTS SUBDIVISION<br>*** NOT FOR LEGAL DOCUMENTS - INDEX INFORMATION ONLY ***<br>   SEC 14 T2S R1E   SLB&amp;M</td></tr>
  <tr><td>Grantor:</td><td><a href="/name?id=1">SMITH, JOHN A</a><br><a href="/name?id=2">SMITH, JANE B</a></td></tr>
  <tr><td>Grantee:</td><td><a href="/name?id=3">JONES, ROBERT</a></td></tr>
  <tr><td>Serial #:</td><td>12-345-0001, 12-345-0002</td></tr>
  <tr><td>Tie Entry #:</td><td><a href="/doc?id=9">123400:2024</a></td></tr>
  <tr><td>Releases:</td><td><a href="/doc?id=8">98765:2019</a>, <a href="/doc?id=7">98766:2019</a></td></tr>
</table>
</body></html>`

func TestDocument_FullDetailPage(t *testing.T) {
	doc, err := Document(fullDetailPage)
	require.NoError(t, err)

	assert.Equal(t, "123456:2024", doc.EntryNumber)
	assert.Equal(t, "03/10/2024", doc.RecordingDate)
	assert.Equal(t, "11042", doc.Book)
	assert.Equal(t, "5521", doc.Page)
	assert.Equal(t, "03/08/2024", doc.InstrumentDate)
	assert.Equal(t, "$450,000.00", doc.Consideration)
	assert.Equal(t, "WARRANTY DEED", doc.Kind)
	assert.Equal(t, "742 EVERGREEN TER, SPRINGFIELD UT 84000", doc.MailingAddress)
	assert.Equal(t, "PO BOX 910, SPRINGFIELD UT 84000", doc.TaxAddress)

	assert.Equal(t, []string{
		"LOT 7, BLOCK 2, SUNSET HEIGHTS SUBDIVISION",
		"SEC 14 T2S R1E SLB&M",
	}, doc.Legal)

	assert.Equal(t, []string{"SMITH, JOHN A", "SMITH, JANE B"}, doc.Grantors)
	assert.Equal(t, []string{"JONES, ROBERT"}, doc.Grantees)
	assert.Equal(t, []string{"12-345-0001", "12-345-0002"}, doc.SerialNumbers)
	assert.Equal(t, []string{"123400:2024"}, doc.TieEntries)
	assert.Equal(t, []string{"98765:2019", "98766:2019"}, doc.Releases)
}

func TestDocument_EntryNumberOnly(t *testing.T) {
	html := `<table id="documentDetail"><tr><td>Entry #:</td><td>998877</td></tr></table>`

	doc, err := Document(html)
	require.NoError(t, err)

	assert.Equal(t, "998877", doc.EntryNumber)
	assert.True(t, doc.Valid())
	assert.Empty(t, doc.RecordingDate)
	assert.Empty(t, doc.Kind)
	assert.Empty(t, doc.Legal)
	assert.Empty(t, doc.Grantors)
	assert.Empty(t, doc.Grantees)
	assert.Empty(t, doc.SerialNumbers)
	assert.Empty(t, doc.TieEntries)
	assert.Empty(t, doc.Releases)
}

func TestDocument_AltEntryLabel(t *testing.T) {
	html := `<table id="documentDetail"><tr><td>Entry #</td><td>445566</td></tr></table>`

	doc, err := Document(html)
	require.NoError(t, err)
	assert.Equal(t, "445566", doc.EntryNumber)
}

func TestDocument_InlineValueAfterColon(t *testing.T) {
	html := `<table id="documentDetail">
		<tr><td>Entry #: 31337</td></tr>
		<tr><td>Kind: TRUST DEED</td></tr>
	</table>`

	doc, err := Document(html)
	require.NoError(t, err)
	assert.Equal(t, "31337", doc.EntryNumber)
	assert.Equal(t, "TRUST DEED", doc.Kind)
}

func TestDocument_NormalizesISODates(t *testing.T) {
	html := `<table id="documentDetail">
		<tr><td>Entry #:</td><td>1</td></tr>
		<tr><td>Recorded:</td><td>2024-03-10</td></tr>
		<tr><td>Instrument Date:</td><td>2024-03-08</td></tr>
	</table>`

	doc, err := Document(html)
	require.NoError(t, err)
	assert.Equal(t, "03/10/2024", doc.RecordingDate)
	assert.Equal(t, "03/08/2024", doc.InstrumentDate)
}

func TestDocument_ListFallsBackToTextSplit(t *testing.T) {
	html := `<table id="documentDetail">
		<tr><td>Entry #:</td><td>1</td></tr>
		<tr><td>Tie Entry #:</td><td>123400:2024<br>123401:2024, 123402:2024</td></tr>
	</table>`

	doc, err := Document(html)
	require.NoError(t, err)
	assert.Equal(t, []string{"123400:2024", "123401:2024", "123402:2024"}, doc.TieEntries)
}

func TestDocument_NoDetailTable(t *testing.T) {
	_, err := Document(`<html><body><p>Session expired.</p></body></html>`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no document detail table")
}

func TestDocument_MissingEntryNumber(t *testing.T) {
	html := `<table id="documentDetail"><tr><td>Kind:</td><td>DEED</td></tr></table>`

	_, err := Document(html)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry number")
}

func TestDocument_DisclaimerStrippedCaseInsensitively(t *testing.T) {
	html := `<table id="documentDetail">
		<tr><td>Entry #:</td><td>1</td></tr>
		<tr><td>Legal Description:</td><td>PARCEL A<br>not for legal documents<br>PARCEL B</td></tr>
	</table>`

	doc, err := Document(html)
	require.NoError(t, err)
	assert.Equal(t, []string{"PARCEL A", "PARCEL B"}, doc.Legal)
}
