package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"outreach/internal/ai"
	"outreach/internal/campaigns"
	"outreach/internal/config"
	"outreach/internal/lifecycle"
	"outreach/internal/listing"
	"outreach/internal/models"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		fmt.Println("Migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the campaigns listed in the YAML config that do not exist yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		yamlCfg, err := config.LoadYAMLConfig()
		if err != nil {
			return fmt.Errorf("loading config file: %w", err)
		}
		seeds := yamlCfg.CampaignInputs()
		if len(seeds) == 0 {
			fmt.Println("No campaigns configured")
			return nil
		}

		database, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		svc := campaigns.NewService(database, ai.New(ai.Config{}))
		created, err := svc.Seed(cmd.Context(), seeds)
		if err != nil {
			return err
		}
		fmt.Printf("Campaigns configured: %d\n", len(seeds))
		fmt.Printf("Campaigns created: %d\n", created)
		return nil
	},
}

var promoteSession string

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Move a session's cart into prospecting",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		svc := lifecycle.NewService(lifecycle.NewPostgresStore(database), cfg.ArchiveReason)
		result, err := svc.Promote(cmd.Context(), promoteSession)
		if err != nil {
			return err
		}

		fmt.Printf("Inserted: %d\n", result.Inserted)
		fmt.Printf("Skipped: %d\n", result.Skipped)
		for _, pc := range result.InsertedPerCampaign {
			fmt.Printf("  campaign %d: %d\n", pc.CampaignID, pc.Count)
		}
		return nil
	},
}

var retireProspects []string

var retireCmd = &cobra.Command{
	Use:     "retire",
	Short:   "Archive, blacklist and remove prospecting records",
	Example: "  outreachctl retire --prospect 12:example.com --prospect 13:other.org",
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := make([]models.RetireTarget, 0, len(retireProspects))
		for _, raw := range retireProspects {
			t, err := parseProspect(raw)
			if err != nil {
				return err
			}
			targets = append(targets, t)
		}

		database, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		yamlCfg, err := config.LoadYAMLConfig()
		if err != nil {
			return fmt.Errorf("loading config file: %w", err)
		}
		svc := lifecycle.NewService(lifecycle.NewPostgresStore(database), cfg.ResolveArchiveReason(yamlCfg))
		result, err := svc.Retire(cmd.Context(), targets)
		if err != nil {
			return err
		}

		if result.Message != "" {
			fmt.Println(result.Message)
		}
		fmt.Printf("Archived: %d\n", result.Archived)
		fmt.Printf("Blacklisted: %d\n", result.Blacklisted)
		fmt.Printf("Removed: %d\n", result.Removed)
		return nil
	},
}

var toggleProcessingCmd = &cobra.Command{
	Use:   "toggle-processing",
	Short: "Pause or resume prospect enrichment",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		state, err := listing.NewService(database, nil).ToggleProcessing(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(state.Message)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show prospecting counts by processing status",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		svc := listing.NewService(database, nil)
		stats, err := svc.Stats(cmd.Context())
		if err != nil {
			return err
		}
		state, err := svc.ProcessingState(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println("Prospecting:")
		fmt.Printf("  Total: %d\n", stats.Total)
		fmt.Printf("  Pending: %d\n", stats.Pending)
		fmt.Printf("  Processing: %d\n", stats.Processing)
		fmt.Printf("  Completed: %d\n", stats.Completed)
		fmt.Printf("  Failed: %d\n", stats.Failed)
		if state.Paused {
			fmt.Printf("\nEnrichment: %s\n", color.New(color.FgYellow).Sprint("paused"))
		} else {
			fmt.Printf("\nEnrichment: %s\n", color.New(color.FgGreen).Sprint("running"))
		}
		return nil
	},
}

func init() {
	promoteCmd.Flags().StringVar(&promoteSession, "session", "", "Session id owning the cart")
	_ = promoteCmd.MarkFlagRequired("session")

	retireCmd.Flags().StringArrayVar(&retireProspects, "prospect", nil, "Prospect to retire as id:domain (repeatable)")
}
