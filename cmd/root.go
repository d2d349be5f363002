// Package cmd provides CLI commands for figmant.
//
// Commands:
//   - serve: HTTP API server exposing the RAG context endpoint
//   - seed: index the built-in UX knowledge corpus into PostgreSQL
//   - version: show build information
//
// Signal handling and graceful shutdown are implemented for all commands
// via context cancellation.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/figmant/figmant/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "figmant",
	Short: "Figmant - RAG context builder for UX design analysis",
	Long: `Figmant builds retrieval-augmented prompts for UX design analysis.

It retrieves relevant UX research from a PostgreSQL knowledge base
(vector, keyword, and category search) and composes an enhanced prompt
ready for a downstream vision model.

Run 'figmant serve' to start the HTTP API server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point for the figmant CLI application.
func Execute() error {
	// Initialize logger once at entry point
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(log.New(log.Config{
		Level: level,
		JSON:  os.Getenv("FIGMANT_LOG_JSON") != "",
	}))

	return rootCmd.Execute()
}
