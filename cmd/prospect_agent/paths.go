package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/prospect-scout/internal/graph"
	"github.com/jonathan/prospect-scout/internal/observability"
	"github.com/jonathan/prospect-scout/internal/paths"
)

var pathsCommand = &cobra.Command{
	Use:   "paths",
	Short: "Look up warm introduction paths for a company",
	Long: `Queries the relationship graph backend for people at the target company,
ranks the introduction paths by connector strength, and prints the company's
connection score.`,
	RunE: runPathsCmd,
}

var (
	pathsDomain      string
	pathsCompanyName string
)

func init() {
	pathsCommand.Flags().StringVarP(&pathsDomain, "domain", "d", "", "Company domain, e.g. companyx.com (required)")
	pathsCommand.Flags().StringVar(&pathsCompanyName, "name", "", "Company display name (improves graph search when set)")

	_ = pathsCommand.MarkFlagRequired("domain")

	rootCmd.AddCommand(pathsCommand)
}

func runPathsCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	baseURL := os.Getenv("GRAPH_BASE_URL")
	if baseURL == "" {
		return fmt.Errorf("GRAPH_BASE_URL environment variable is required")
	}

	client, err := graph.NewClient(graph.Config{
		BaseURL:     baseURL,
		APIKey:      os.Getenv("GRAPH_API_KEY"),
		MinInterval: 200 * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("failed to build graph client: %w", err)
	}

	searchTerm := paths.SearchTerm(pathsDomain, pathsCompanyName)
	records, err := client.QueryConnections(ctx, searchTerm, graph.DefaultQuerySize)
	if err != nil {
		return fmt.Errorf("graph lookup for %s failed: %w", pathsDomain, err)
	}

	ranked := paths.BuildPaths(records)
	conns := paths.Aggregate(pathsDomain, ranked)

	observability.NewPrinter(os.Stdout).PrintPaths(&conns)
	return nil
}
