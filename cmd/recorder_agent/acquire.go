package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nathanj/recorder-agent/internal/browser"
	"github.com/nathanj/recorder-agent/internal/capture"
	"github.com/nathanj/recorder-agent/internal/checkpoint"
	"github.com/nathanj/recorder-agent/internal/config"
	"github.com/nathanj/recorder-agent/internal/export"
	"github.com/nathanj/recorder-agent/internal/pipeline"
	"github.com/nathanj/recorder-agent/internal/sink"
	"github.com/nathanj/recorder-agent/internal/status"
	"github.com/nathanj/recorder-agent/internal/storage"
)

var acquireCommand = &cobra.Command{
	Use:   "acquire",
	Short: "Run the document acquisition pipeline end-to-end",
	Long: `Orchestrates the full acquisition: recording-date search -> results traversal -> per-document field extraction -> PDF capture -> record emission.

Configuration can be loaded from a JSON or YAML file using --config. Command-line arguments override config file values.`,
	RunE: runAcquireCmd,
}

var (
	acquireConfigPath    string
	acquireStartDate     string
	acquireEndDate       string
	acquireBaseURL       string
	acquireOutputFile    string
	acquireArtifactDir   string
	acquireDownloadDir   string
	acquireDatabaseURL   string
	acquireStatusWebhook string
	acquireGrouped       bool
	acquireZipGroups     bool
	acquireShowBrowser   bool
	acquireVerbose       bool
)

func init() {
	// Config file flag (processed first)
	acquireCommand.Flags().StringVar(&acquireConfigPath, "config", "", "Path to config file (values can be overridden by other flags)")

	acquireCommand.Flags().StringVarP(&acquireStartDate, "start", "s", "", "Recording-date range start (MM/DD/YYYY or YYYY-MM-DD)")
	acquireCommand.Flags().StringVarP(&acquireEndDate, "end", "e", "", "Recording-date range end (MM/DD/YYYY or YYYY-MM-DD)")
	acquireCommand.Flags().StringVar(&acquireBaseURL, "base-url", "", "Recorder site base URL")
	acquireCommand.Flags().StringVarP(&acquireOutputFile, "output", "o", "", "Records JSONL output path")
	acquireCommand.Flags().StringVar(&acquireArtifactDir, "artifact-dir", "", "Root directory for captured PDFs")
	acquireCommand.Flags().StringVar(&acquireDownloadDir, "download-dir", "", "Browser download staging directory")
	acquireCommand.Flags().BoolVar(&acquireGrouped, "grouped", false, "Write date-grouped CSV sub-tables under <artifact-dir>/export instead of JSONL")
	acquireCommand.Flags().BoolVar(&acquireZipGroups, "zip", false, "Zip each date group on completion (only with --grouped)")
	acquireCommand.Flags().BoolVar(&acquireShowBrowser, "show-browser", false, "Run with a visible browser window (debugging)")
	acquireCommand.Flags().BoolVarP(&acquireVerbose, "verbose", "v", false, "Print detailed debug information")

	// Database URL for record persistence and the run ledger
	acquireCommand.Flags().StringVar(&acquireDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	// Webhook for progress reporting
	acquireCommand.Flags().StringVar(&acquireStatusWebhook, "status-webhook", "", "Progress webhook URL (optional, defaults to STATUS_URL env var)")

	rootCmd.AddCommand(acquireCommand)
}

func runAcquireCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if acquireConfigPath != "" {
		loadedCfg, err := config.LoadConfig(acquireConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Validate loaded config
		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if acquireVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", acquireConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("start") {
		cfg.StartDate = acquireStartDate
	}
	if cmd.Flags().Changed("end") {
		cfg.EndDate = acquireEndDate
	}
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = acquireBaseURL
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputFile = acquireOutputFile
	}
	if cmd.Flags().Changed("artifact-dir") {
		cfg.ArtifactDir = acquireArtifactDir
	}
	if cmd.Flags().Changed("download-dir") {
		cfg.DownloadDir = acquireDownloadDir
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = acquireDatabaseURL
	}
	if cmd.Flags().Changed("status-webhook") {
		cfg.StatusWebhook = acquireStatusWebhook
	}
	if cmd.Flags().Changed("show-browser") {
		cfg.ShowBrowser = acquireShowBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = acquireVerbose
	}

	// Step 3: Apply defaults for unset values
	defaults := config.Config{
		OutputFile:  "documents.jsonl",
		ArtifactDir: "artifacts",
	}
	cfg = cfg.MergeWithDefaults(defaults)

	// Step 4: Validate required fields
	if cfg.BaseURL == "" {
		return fmt.Errorf("--base-url is required (via flag or config)")
	}
	if cfg.StartDate == "" || cfg.EndDate == "" {
		return fmt.Errorf("--start and --end are required (via flag or config)")
	}

	// Step 5: Environment fallbacks for service credentials
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.StatusWebhook == "" {
		cfg.StatusWebhook = os.Getenv("STATUS_URL")
	}
	if cfg.Storage != nil {
		if cfg.Storage.AccessKey == "" {
			cfg.Storage.AccessKey = os.Getenv("MINIO_ACCESS_KEY")
		}
		if cfg.Storage.SecretKey == "" {
			cfg.Storage.SecretKey = os.Getenv("MINIO_SECRET_KEY")
		}
	}

	// Step 6: Wire the artifact store and checkpoint manager
	var store storage.Store
	if cfg.Storage != nil {
		minioStore, err := storage.NewMinioStore(ctx, *cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to object store: %w", err)
		}
		store = minioStore
	} else {
		dirStore, err := storage.NewDirStore(filepath.Join(cfg.ArtifactDir, "store"))
		if err != nil {
			return err
		}
		store = dirStore
	}
	ckpt := checkpoint.NewManager(store)

	// Step 7: Record sink (JSONL by default, grouped CSVs with --grouped)
	var recordSink sink.RecordSink
	var emittedCount func() int
	var outLabel string
	if acquireGrouped {
		exportDir := filepath.Join(cfg.ArtifactDir, "export")
		grouped, err := export.NewGroupedSink(exportDir, acquireZipGroups, cfg.Verbose)
		if err != nil {
			return err
		}
		recordSink = grouped
		emittedCount = grouped.Count
		outLabel = exportDir
	} else {
		jsonl, err := sink.NewJSONL(cfg.OutputFile)
		if err != nil {
			return err
		}
		recordSink = jsonl
		emittedCount = jsonl.Count
		outLabel = cfg.OutputFile
	}

	// Step 8: Browser session and PDF capturer
	downloadDir := cfg.DownloadDir
	if downloadDir == "" {
		downloadDir = filepath.Join(cfg.ArtifactDir, ".downloads")
	}
	if err := os.MkdirAll(downloadDir, 0755); err != nil {
		return fmt.Errorf("failed to create download directory %s: %w", downloadDir, err)
	}

	session, err := browser.NewSession(ctx, browser.Options{
		Headless:    !cfg.ShowBrowser,
		DownloadDir: downloadDir,
		Verbose:     cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer session.Close()

	capturer := capture.NewCapturer(capture.Options{
		Store:       store,
		DownloadDir: downloadDir,
		ArtifactDir: cfg.ArtifactDir,
		Verbose:     cfg.Verbose,
	})

	notifier := status.NewNotifier(cfg.StatusWebhook)

	opts := pipeline.RunOptions{
		StartDate:   cfg.StartDate,
		EndDate:     cfg.EndDate,
		BaseURL:     cfg.BaseURL,
		Session:     pipeline.NewBrowserSession(session),
		Capturer:    pipeline.NewBrowserCapturer(capturer),
		Sink:        recordSink,
		Checkpoint:  ckpt,
		DatabaseURL: cfg.DatabaseURL,
		Verbose:     cfg.Verbose,
		OnProgress: func(ev pipeline.ProgressEvent) {
			notifier.Post(ctx, status.Event{RunID: ev.RunID, Message: ev.Message, Terminal: ev.Terminal})
		},
	}

	runErr := pipeline.RunPipeline(ctx, opts)
	if closeErr := recordSink.Close(ctx); closeErr != nil && runErr == nil {
		runErr = closeErr
	}
	if runErr != nil {
		return runErr
	}

	fmt.Printf("Wrote %d record(s) to %s\n", emittedCount(), outLabel)
	return nil
}
