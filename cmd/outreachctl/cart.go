package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"outreach/internal/models"
	"outreach/internal/validation"
)

var (
	cartSession  string
	cartCampaign int64
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage staged domains",
}

var cartAddCmd = &cobra.Command{
	Use:   "add domain...",
	Short: "Stage domains in a session's cart, skipping blacklisted ones",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cartCampaign <= 0 {
			return errors.New("--campaign must be a positive campaign id")
		}
		if cartSession == "" {
			cartSession = uuid.NewString()
			fmt.Printf("Session: %s\n", cartSession)
		}

		database, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		if _, err := database.GetCampaign(cmd.Context(), cartCampaign); err != nil {
			return err
		}

		added, skipped := 0, 0
		for _, raw := range args {
			domain := validation.NormalizeDomain(raw)
			if domain == "" {
				fmt.Printf("  %s %s (invalid domain)\n", color.New(color.FgYellow).Sprint("skip"), raw)
				skipped++
				continue
			}

			blacklisted, err := database.IsBlacklisted(cmd.Context(), domain)
			if err != nil {
				return err
			}
			if blacklisted {
				fmt.Printf("  %s %s (blacklisted)\n", color.New(color.FgRed).Sprint("skip"), domain)
				skipped++
				continue
			}

			campaignID := cartCampaign
			ok, err := database.AddToCart(cmd.Context(), &models.CartEntry{
				SessionID:  cartSession,
				Domain:     domain,
				CampaignID: &campaignID,
			})
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("  %s %s (already in cart)\n", color.New(color.FgYellow).Sprint("skip"), domain)
				skipped++
				continue
			}
			fmt.Printf("  %s %s\n", color.New(color.FgGreen).Sprint("add"), domain)
			added++
		}

		fmt.Printf("Added: %d\n", added)
		fmt.Printf("Skipped: %d\n", skipped)
		return nil
	},
}

var blacklistCmd = &cobra.Command{
	Use:   "blacklist",
	Short: "Inspect the global blacklist",
}

var blacklistCheckCmd = &cobra.Command{
	Use:   "check domain...",
	Short: "Report whether domains are globally blacklisted",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		for _, raw := range args {
			domain := validation.NormalizeDomain(raw)
			if domain == "" {
				fmt.Printf("%s: %s\n", raw, color.New(color.FgYellow).Sprint("invalid domain"))
				continue
			}
			blacklisted, err := database.IsBlacklisted(cmd.Context(), domain)
			if err != nil {
				return err
			}
			if blacklisted {
				fmt.Printf("%s: %s\n", domain, color.New(color.FgRed).Sprint("blacklisted"))
			} else {
				fmt.Printf("%s: %s\n", domain, color.New(color.FgGreen).Sprint("clear"))
			}
		}
		return nil
	},
}

func init() {
	cartAddCmd.Flags().StringVar(&cartSession, "session", "", "Session id owning the cart (generated when empty)")
	cartAddCmd.Flags().Int64Var(&cartCampaign, "campaign", 0, "Campaign id the domains are staged for")
	_ = cartAddCmd.MarkFlagRequired("campaign")
	cartCmd.AddCommand(cartAddCmd)

	blacklistCmd.AddCommand(blacklistCheckCmd)
}
