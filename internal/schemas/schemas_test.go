package schemas

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathanj/recorder-agent/internal/records"
)

func TestValidateDocument_FullRecord(t *testing.T) {
	doc := &records.Document{
		EntryNumber:    "123456:2024",
		RecordingDate:  "03/10/2024",
		Book:           "11042",
		Page:           "5521",
		InstrumentDate: "03/08/2024",
		Consideration:  "$450,000.00",
		Kind:           "WARRANTY DEED",
		MailingAddress: "742 EVERGREEN TER",
		TaxAddress:     "PO BOX 910",
		Legal:          []string{"LOT 7, BLOCK 2"},
		Grantors:       []string{"SMITH, JOHN A"},
		Grantees:       []string{"JONES, ROBERT"},
		SerialNumbers:  []string{"12-345-0001"},
		TieEntries:     []string{"123400:2024"},
		Releases:       []string{"98765:2019"},
		PdfURL:         "http://storage.local/pdfs/123456_2024.pdf",
		DetailURL:      "https://records.example.gov/doc?id=1",
		AcquiredAt:     time.Now().UTC(),
	}

	assert.NoError(t, ValidateDocument(doc))
}

func TestValidateDocument_MinimalRecord(t *testing.T) {
	doc := &records.Document{EntryNumber: "998877"}
	assert.NoError(t, ValidateDocument(doc))
}

func TestValidateDocument_EmptyEntryNumber(t *testing.T) {
	err := ValidateDocument(&records.Document{})
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.NotEmpty(t, ve.Errors)
	assert.Equal(t, "entry_number", ve.Errors[0].Field)
}

func TestValidateJSONString_InvalidSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 42}`, `{}`)
	require.Error(t, err)

	var se *SchemaLoadError
	assert.True(t, errors.As(err, &se))
}

func TestValidateJSONString_ReportsFieldPaths(t *testing.T) {
	schema := `{
		"type": "object",
		"properties": {
			"book": {"type": "string"}
		}
	}`

	err := ValidateJSONString(schema, `{"book": 7}`)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Errors, 1)
	assert.Equal(t, "book", ve.Errors[0].Field)
	assert.Contains(t, err.Error(), "validation failed")
}
