package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/figmant/figmant/internal/app"
	"github.com/figmant/figmant/internal/config"
	"github.com/figmant/figmant/internal/knowledge"
)

var seedClear bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Index the built-in UX knowledge corpus",
	Long: `Seed embeds the built-in UX research corpus and upserts it into the
PostgreSQL knowledge base. Re-running is safe: entries have fixed IDs and
are updated in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedClear, "clear", false, "Remove all seed entries instead of indexing")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	seeder := knowledge.NewSeeder(a.Knowledge, logger)

	if seedClear {
		if err := seeder.ClearAll(ctx); err != nil {
			return fmt.Errorf("clearing seed entries: %w", err)
		}
		fmt.Println("Seed entries removed.")
		return nil
	}

	count, err := seeder.IndexAll(ctx)
	if err != nil {
		return fmt.Errorf("seeding knowledge base: %w", err)
	}

	fmt.Printf("Indexed %d knowledge entries.\n", count)
	return nil
}
