package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nathanj/recorder-agent/internal/records"
)

// JSONL appends each record as one JSON line to a file. Opening in append
// mode lets a resumed run continue the same file.
type JSONL struct {
	path  string
	file  *os.File
	enc   *json.Encoder
	count int
}

// NewJSONL opens (or creates) the output file, creating parent directories
// as needed.
func NewJSONL(path string) (*JSONL, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &JSONL{path: path, file: file, enc: json.NewEncoder(file)}, nil
}

// Push appends one record.
func (s *JSONL) Push(_ context.Context, doc *records.Document) error {
	if err := s.enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to append record %s to %s: %w", doc.EntryNumber, s.path, err)
	}
	s.count++
	return nil
}

// Count reports how many records this sink has appended.
func (s *JSONL) Count() int {
	return s.count
}

// Close flushes and closes the file.
func (s *JSONL) Close(_ context.Context) error {
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", s.path, err)
	}
	return nil
}
