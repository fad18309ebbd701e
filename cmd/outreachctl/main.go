package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"outreach/internal/config"
	"outreach/internal/db"
)

var (
	verbose bool
	cfg     *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "outreachctl",
	Short:        "Operate the outreach back office",
	Long:         "outreachctl runs migrations, seeds campaigns and moves domains through cart, prospecting and the blacklist.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if verbose {
			cfg.LogLevel = "debug"
		}
		slog.SetDefault(cfg.NewLogger(os.Stderr))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(retireCmd)
	rootCmd.AddCommand(toggleProcessingCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(blacklistCmd)
}

func openDB(ctx context.Context) (*db.DB, error) {
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return database, nil
}
