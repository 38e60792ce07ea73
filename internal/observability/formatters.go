// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/nathanj/recorder-agent/internal/records"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDocument outputs a human-readable summary of one acquired record.
func (p *Printer) PrintDocument(doc *records.Document) {
	if doc == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Entry:    %s\n", doc.EntryNumber))
	sb.WriteString(fmt.Sprintf("Recorded: %s\n", doc.RecordingDate))
	if doc.Kind != "" {
		sb.WriteString(fmt.Sprintf("Kind:     %s\n", doc.Kind))
	}
	if doc.Book != "" || doc.Page != "" {
		sb.WriteString(fmt.Sprintf("Book/Pg:  %s / %s\n", doc.Book, doc.Page))
	}
	if doc.Consideration != "" {
		sb.WriteString(fmt.Sprintf("Amount:   %s\n", doc.Consideration))
	}
	sb.WriteString("\n")

	if len(doc.Grantors) > 0 {
		sb.WriteString("Grantors:\n")
		count := min(len(doc.Grantors), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", doc.Grantors[i]))
		}
		if len(doc.Grantors) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(doc.Grantors)-maxItemsToShow))
		}
	}

	if len(doc.Grantees) > 0 {
		sb.WriteString("Grantees:\n")
		count := min(len(doc.Grantees), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", doc.Grantees[i]))
		}
		if len(doc.Grantees) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(doc.Grantees)-maxItemsToShow))
		}
	}

	if len(doc.SerialNumbers) > 0 {
		serials := strings.Join(doc.SerialNumbers, ", ")
		if len(serials) > 40 {
			serials = serials[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("Serials:  %s\n", serials))
	}
	if len(doc.Legal) > 0 {
		sb.WriteString(fmt.Sprintf("Legal:    %d line(s)\n", len(doc.Legal)))
	}

	if doc.PdfURL != "" {
		sb.WriteString(fmt.Sprintf("PDF:      %s\n", doc.PdfURL))
	} else {
		sb.WriteString("PDF:      (not captured)\n")
	}

	p.printBox("DOCUMENT RECORD", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDetailLinks outputs the first few collected detail links.
func (p *Printer) PrintDetailLinks(links []string) {
	if len(links) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Collected %d detail links:\n\n", len(links)))

	count := min(len(links), maxItemsToShow)
	for i := 0; i < count; i++ {
		link := links[i]
		if len(link) > 50 {
			link = link[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, link))
	}

	if len(links) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more links", len(links)-maxItemsToShow))
	}

	p.printBox("DETAIL LINKS", sb.String())
}

// RunSummary carries the counters reported once at the end of a run.
type RunSummary struct {
	StartDate  string
	EndDate    string
	Found      int
	Emitted    int
	Failed     int
	Checkpoint string
}

// PrintRunSummary outputs the final counters for an acquisition run.
func (p *Printer) PrintRunSummary(sum RunSummary) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Range:      %s - %s\n", sum.StartDate, sum.EndDate))
	sb.WriteString(fmt.Sprintf("Found:      %d document(s)\n", sum.Found))
	sb.WriteString(fmt.Sprintf("Emitted:    %d record(s)\n", sum.Emitted))
	if sum.Failed > 0 {
		sb.WriteString(fmt.Sprintf("Failed:     %d document(s)\n", sum.Failed))
	}
	if sum.Checkpoint != "" {
		sb.WriteString(fmt.Sprintf("Checkpoint: %s\n", sum.Checkpoint))
	}

	p.printBox("RUN SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}
