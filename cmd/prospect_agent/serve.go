package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/prospect-scout/internal/db"
	"github.com/jonathan/prospect-scout/internal/engine"
	"github.com/jonathan/prospect-scout/internal/graph"
	"github.com/jonathan/prospect-scout/internal/review"
	"github.com/jonathan/prospect-scout/internal/server"
)

var (
	servePort      int
	serveTeam      string
	serveRulesPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for scan runs, discovery triage, and prospect review.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveTeam, "team", "", "Default team identifier (defaults to TEAM env var)")
	serveCmd.Flags().StringVar(&serveRulesPath, "rules", "", "Path to keyword rules JSON file (defaults to built-in table)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Get database URL from environment
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	teamID := serveTeam
	if teamID == "" {
		teamID = os.Getenv("TEAM")
	}
	if teamID == "" {
		return fmt.Errorf("TEAM environment variable or --team flag is required")
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	table, err := loadRules(serveRulesPath)
	if err != nil {
		database.Close()
		return err
	}

	// Graph backend is optional; without it connection scoring is a no-op.
	var backend graph.Backend
	if baseURL := os.Getenv("GRAPH_BASE_URL"); baseURL != "" {
		client, err := graph.NewClient(graph.Config{
			BaseURL:     baseURL,
			APIKey:      os.Getenv("GRAPH_API_KEY"),
			MinInterval: graphDelayFromEnv(),
		})
		if err != nil {
			database.Close()
			return fmt.Errorf("failed to build graph client: %w", err)
		}
		backend = client
	}

	eng := engine.New(database, engine.Options{
		Rules:  table,
		Graph:  backend,
		TeamID: teamID,
	})

	srv, err := server.New(server.Config{
		Port:   servePort,
		DB:     database,
		Engine: eng,
		Review: review.NewService(database, teamID),
		TeamID: teamID,
	})
	if err != nil {
		database.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// graphDelayFromEnv reads GRAPH_DELAY_MS, defaulting to 200ms.
func graphDelayFromEnv() time.Duration {
	raw := os.Getenv("GRAPH_DELAY_MS")
	if raw == "" {
		return 200 * time.Millisecond
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}
