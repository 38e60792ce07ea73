package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nathanj/recorder-agent/internal/export"
	"github.com/nathanj/recorder-agent/internal/records"
	"github.com/nathanj/recorder-agent/internal/sink"
)

var exportCommand = &cobra.Command{
	Use:   "export",
	Short: "Re-emit acquired records as date-grouped CSV sub-tables",
	Long: `Reads previously acquired records and writes one directory per recording
date, each holding the five sub-table CSVs (header, names, legal, parcels,
xrefs).

Records come from a JSONL file (--input) or from PostgreSQL (--db-url or the
DATABASE_URL env var).`,
	RunE: runExportCmd,
}

var (
	exportInput       string
	exportDatabaseURL string
	exportDate        string
	exportKind        string
	exportLimit       int
	exportOutDir      string
	exportZip         bool
	exportVerbose     bool
)

func init() {
	exportCommand.Flags().StringVarP(&exportInput, "input", "i", "", "Records JSONL file to export from")
	exportCommand.Flags().StringVar(&exportDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	exportCommand.Flags().StringVar(&exportDate, "date", "", "Only export records with this recording date (MM/DD/YYYY or YYYY-MM-DD)")
	exportCommand.Flags().StringVar(&exportKind, "kind", "", "Only export records of this document kind")
	exportCommand.Flags().IntVar(&exportLimit, "limit", 100, "Maximum records to pull from the database")
	exportCommand.Flags().StringVarP(&exportOutDir, "out", "o", "export", "Output directory for the date-grouped CSVs")
	exportCommand.Flags().BoolVar(&exportZip, "zip", false, "Zip each date directory after writing")
	exportCommand.Flags().BoolVarP(&exportVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(exportCommand)
}

func runExportCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	docs, err := loadExportRecords(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Printf("No records to export.\n")
		return nil
	}

	exporter := &export.Exporter{OutDir: exportOutDir, Verbose: exportVerbose}
	dirs, err := exporter.Export(ctx, docs)
	if err != nil {
		return err
	}

	if exportZip {
		for _, dir := range dirs {
			if err := export.ZipDir(dir, dir+".zip"); err != nil {
				return err
			}
			if exportVerbose {
				_, _ = fmt.Fprintf(os.Stdout, "Zipped %s.zip\n", dir)
			}
		}
	}

	fmt.Printf("Exported %d record(s) into %d date group(s) under %s\n", len(docs), len(dirs), exportOutDir)
	return nil
}

// loadExportRecords pulls the export set from the JSONL file when --input is
// given, otherwise from the database.
func loadExportRecords(ctx context.Context) ([]records.Document, error) {
	if exportInput != "" {
		return export.ReadJSONL(exportInput)
	}

	dbURL := exportDatabaseURL
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return nil, fmt.Errorf("either --input or a database URL (--db-url or DATABASE_URL) is required")
	}

	database, err := sink.Connect(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	return database.ListDocuments(ctx, sink.DocumentFilters{
		RecordingDate: records.NormalizeDate(exportDate),
		Kind:          exportKind,
		Limit:         exportLimit,
	})
}
