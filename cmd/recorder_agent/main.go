// Package main provides the entry point for the recorder agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "recorder_agent",
	Short: "County recorder document acquisition agent",
	Long:  "Recorder Agent drives a county recorder's public search site through a headless browser, extracts recorded land documents together with their instrument PDFs, and emits them to durable record sinks with checkpointed resumption.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
