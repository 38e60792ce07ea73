package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/nathanj/recorder-agent/internal/records"
)

// GroupedSink streams records straight into the date-grouped CSV layout that
// Exporter produces in batch mode. Each push appends the record's rows to the
// five sub-table files of its recording-date directory and returns only once
// the rows are on disk, so a checkpoint written after a push never points past
// data that only lived in memory. Close zips each date directory when
// requested.
type GroupedSink struct {
	outDir  string
	zip     bool
	verbose bool
	dirs    map[string]bool
	count   int
}

// NewGroupedSink creates the output directory and returns a sink writing
// under it.
func NewGroupedSink(outDir string, zipGroups, verbose bool) (*GroupedSink, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s: %w", outDir, err)
	}
	return &GroupedSink{
		outDir:  outDir,
		zip:     zipGroups,
		verbose: verbose,
		dirs:    make(map[string]bool),
	}, nil
}

// Push appends one record's sub-table rows to its date directory.
func (s *GroupedSink) Push(_ context.Context, doc *records.Document) error {
	dir := filepath.Join(s.outDir, dateDir(doc.RecordingDate))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}

	grouped := records.Group(doc)
	h := grouped.Header

	var names, legal, parcels, xrefs [][]string
	for _, n := range grouped.Names {
		names = append(names, []string{n.EntryNumber, n.Role, n.Name})
	}
	for _, l := range grouped.Legals {
		legal = append(legal, []string{l.EntryNumber, strconv.Itoa(l.Seq), l.Text})
	}
	for _, p := range grouped.Parcels {
		parcels = append(parcels, []string{p.EntryNumber, p.Serial})
	}
	for _, x := range grouped.Xrefs {
		xrefs = append(xrefs, []string{x.EntryNumber, x.Kind, x.Reference})
	}

	tables := []struct {
		file   string
		header []string
		rows   [][]string
	}{
		{HeaderFile,
			[]string{"entry_number", "recording_date", "book", "page", "instrument_date", "consideration", "kind", "mailing_address", "tax_address", "pdf_url"},
			[][]string{{h.EntryNumber, h.RecordingDate, h.Book, h.Page, h.InstrumentDate, h.Consideration, h.Kind, h.MailingAddress, h.TaxAddress, h.PdfURL}}},
		{NamesFile, []string{"entry_number", "role", "name"}, names},
		{LegalFile, []string{"entry_number", "seq", "text"}, legal},
		{ParcelsFile, []string{"entry_number", "serial"}, parcels},
		{XrefsFile, []string{"entry_number", "kind", "reference"}, xrefs},
	}
	for _, tb := range tables {
		if err := appendCSV(filepath.Join(dir, tb.file), tb.header, tb.rows); err != nil {
			return fmt.Errorf("failed to append record %s: %w", doc.EntryNumber, err)
		}
	}

	s.dirs[dir] = true
	s.count++
	return nil
}

// Count reports how many records this sink has written.
func (s *GroupedSink) Count() int {
	return s.count
}

// Close zips each date directory written during this run, if zipping was
// requested. The directories themselves are kept.
func (s *GroupedSink) Close(_ context.Context) error {
	if !s.zip {
		return nil
	}
	dirs := make([]string, 0, len(s.dirs))
	for dir := range s.dirs {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	for _, dir := range dirs {
		zipPath := dir + ".zip"
		if err := ZipDir(dir, zipPath); err != nil {
			return err
		}
		if s.verbose {
			fmt.Printf("[VERBOSE] Zipped %s\n", zipPath)
		}
	}
	return nil
}

// appendCSV appends rows to path, writing the header first when the file is
// new or empty. Append mode keeps the files valid across resumed runs.
func appendCSV(path string, header []string, rows [][]string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
