// Package export renders acquired records into the five normalized CSV
// sub-tables (header, names, legal, parcels, xrefs), grouped by recording
// date. This is the batch-mode alternative to the streaming record sinks:
// one directory per date, five files per directory.
package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nathanj/recorder-agent/internal/records"
)

// maxRecordLine bounds one JSONL record; legal descriptions can run long.
const maxRecordLine = 1024 * 1024

// dateGroupWorkers bounds how many date groups are written concurrently.
const dateGroupWorkers = 4

// Exporter writes date-grouped CSV exports under OutDir.
type Exporter struct {
	OutDir  string
	Verbose bool
}

// ReadJSONL loads the records the acquisition pipeline appended to a JSONL
// file. A malformed line fails the whole read; exports should not silently
// drop records.
func ReadJSONL(path string) ([]records.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var docs []records.Document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordLine)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var doc records.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse record on line %d of %s: %w", line, path, err)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return docs, nil
}

// Export writes one directory per distinct recording date, each holding the
// five sub-table CSVs for that date's documents. Date groups are written
// concurrently. The returned directory list is sorted.
func (e *Exporter) Export(ctx context.Context, docs []records.Document) ([]string, error) {
	byDate := make(map[string][]records.Document)
	for _, doc := range docs {
		key := dateDir(doc.RecordingDate)
		byDate[key] = append(byDate[key], doc)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(dateGroupWorkers)

	var mu sync.Mutex
	dirs := make([]string, 0, len(byDate))

	for date, group := range byDate {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			dir := filepath.Join(e.OutDir, date)
			if err := writeGroupCSVs(dir, group); err != nil {
				return err
			}
			mu.Lock()
			dirs = append(dirs, dir)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

// dateDir converts a recording date to its export directory name. Dates come
// out ISO so directories sort chronologically; unparseable dates share a
// single fallback directory.
func dateDir(recordingDate string) string {
	d, err := records.ParseSiteDate(recordingDate)
	if err != nil {
		return "unknown"
	}
	return d.Format(records.ISODateLayout)
}

// Sub-table file names within each date directory.
const (
	HeaderFile  = "header.csv"
	NamesFile   = "names.csv"
	LegalFile   = "legal.csv"
	ParcelsFile = "parcels.csv"
	XrefsFile   = "xrefs.csv"
)

func writeGroupCSVs(dir string, docs []records.Document) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}

	var header, names, legal, parcels, xrefs [][]string
	header = append(header, []string{"entry_number", "recording_date", "book", "page", "instrument_date", "consideration", "kind", "mailing_address", "tax_address", "pdf_url"})
	names = append(names, []string{"entry_number", "role", "name"})
	legal = append(legal, []string{"entry_number", "seq", "text"})
	parcels = append(parcels, []string{"entry_number", "serial"})
	xrefs = append(xrefs, []string{"entry_number", "kind", "reference"})

	for i := range docs {
		grouped := records.Group(&docs[i])
		h := grouped.Header
		header = append(header, []string{h.EntryNumber, h.RecordingDate, h.Book, h.Page, h.InstrumentDate, h.Consideration, h.Kind, h.MailingAddress, h.TaxAddress, h.PdfURL})
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
	}

	files := map[string][][]string{
		HeaderFile:  header,
		NamesFile:   names,
		LegalFile:   legal,
		ParcelsFile: parcels,
		XrefsFile:   xrefs,
	}
	for name, rows := range files {
		if err := writeCSV(filepath.Join(dir, name), rows); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
