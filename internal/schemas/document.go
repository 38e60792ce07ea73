package schemas

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/nathanj/recorder-agent/internal/records"
)

//go:embed document_record.schema.json
var documentRecordSchema string

// ValidateDocument checks an assembled record against the document-record
// schema. The identifier gate lives in Document.Valid; this catches shape
// regressions in what the extractor produced.
func ValidateDocument(doc *records.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document %q: %w", doc.EntryNumber, err)
	}

	schemaLoader := gojsonschema.NewStringLoader(documentRecordSchema)
	documentLoader := gojsonschema.NewBytesLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "document_record.schema.json",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	return resultError(result)
}
