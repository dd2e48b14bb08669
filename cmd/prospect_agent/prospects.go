package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/prospect-scout/internal/db"
	"github.com/jonathan/prospect-scout/internal/observability"
	"github.com/jonathan/prospect-scout/internal/types"
)

var prospectsCommand = &cobra.Command{
	Use:   "prospects",
	Short: "List the prospect queue in priority order",
	RunE:  runProspectsCmd,
}

var (
	prospectsTeam   string
	prospectsStatus string
	prospectsLimit  int
)

func init() {
	prospectsCommand.Flags().StringVar(&prospectsTeam, "team", "", "Team identifier (required)")
	prospectsCommand.Flags().StringVar(&prospectsStatus, "status", "", "Filter by status: active or reviewed")
	prospectsCommand.Flags().IntVar(&prospectsLimit, "limit", 25, "Maximum prospects to show")

	_ = prospectsCommand.MarkFlagRequired("team")

	rootCmd.AddCommand(prospectsCommand)
}

func runProspectsCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	prospects, err := database.ListProspects(ctx, db.ProspectFilters{
		TeamID: prospectsTeam,
		Status: types.ProspectStatus(prospectsStatus),
		Limit:  prospectsLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list prospects: %w", err)
	}

	if len(prospects) == 0 {
		fmt.Fprintln(os.Stdout, "No prospects found.")
		return nil
	}

	observability.NewPrinter(os.Stdout).PrintProspects(prospects)
	return nil
}
