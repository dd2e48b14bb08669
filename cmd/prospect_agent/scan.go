package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/prospect-scout/internal/config"
	"github.com/jonathan/prospect-scout/internal/db"
	"github.com/jonathan/prospect-scout/internal/engine"
	"github.com/jonathan/prospect-scout/internal/graph"
	"github.com/jonathan/prospect-scout/internal/observability"
	"github.com/jonathan/prospect-scout/internal/rules"
	"github.com/jonathan/prospect-scout/internal/scoring"
	"github.com/jonathan/prospect-scout/internal/sources"
	"github.com/jonathan/prospect-scout/internal/types"
)

var scanCommand = &cobra.Command{
	Use:   "scan",
	Short: "Scan a page for buying signals and record discoveries",
	Long: `Fetches one page, extracts its main text, matches it against the keyword
rule table, resolves company domains from the matched text, and records
discoveries. Discoveries scoring at or above the auto-promote threshold become
prospects immediately.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runScanCmd,
}

var (
	scanConfigPath  string
	scanURL         string
	scanKind        string
	scanRulesPath   string
	scanTeam        string
	scanThreshold   int
	scanFanOut      int
	scanUseBrowser  bool
	scanVerbose     bool
	scanDatabaseURL string
	scanScorePaths  bool
)

func init() {
	// Config file flag (processed first)
	scanCommand.Flags().StringVar(&scanConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	scanCommand.Flags().StringVarP(&scanURL, "url", "u", "", "Page URL to scan")
	scanCommand.Flags().StringVarP(&scanKind, "kind", "k", "news", "Source kind: news or forum")
	scanCommand.Flags().StringVar(&scanRulesPath, "rules", "", "Path to keyword rules JSON file (defaults to built-in table)")
	scanCommand.Flags().StringVar(&scanTeam, "team", "", "Team identifier owning the prospects")
	scanCommand.Flags().IntVar(&scanThreshold, "auto-promote-threshold", 0, "Confidence score at or above which discoveries auto-promote")
	scanCommand.Flags().IntVar(&scanFanOut, "fan-out", 0, "Concurrent workers per scan")
	scanCommand.Flags().BoolVar(&scanUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	scanCommand.Flags().BoolVarP(&scanVerbose, "verbose", "v", false, "Print detailed debug information")
	scanCommand.Flags().StringVar(&scanDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	scanCommand.Flags().BoolVar(&scanScorePaths, "score-paths", false, "Score relationship paths for active prospects after the scan")

	rootCmd.AddCommand(scanCommand)
}

func runScanCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadScanConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.URL == "" {
		return fmt.Errorf("--url must be provided (via flag or config)")
	}
	if cfg.Team == "" {
		return fmt.Errorf("--team must be provided (via flag or config)")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	eng, err := buildEngine(database, cfg)
	if err != nil {
		return err
	}

	src, err := buildPageSource(cfg)
	if err != nil {
		return err
	}

	summary, scanErr := eng.Scan(ctx, src)

	printer := observability.NewPrinter(os.Stdout)
	if summary != nil {
		printer.PrintRunSummary(summary)
	}
	if scanErr != nil {
		return fmt.Errorf("scan failed: %w", scanErr)
	}

	if cfg.GraphBaseURL != "" && (scanScorePaths || summary.AutoPromoted > 0) {
		scored, failed, err := eng.ScoreConnections(ctx)
		if err != nil {
			return fmt.Errorf("connection scoring failed: %w", err)
		}
		if cfg.Verbose {
			fmt.Fprintf(os.Stdout, "Connection scoring: %d scored, %d failed\n", scored, failed)
		}
	}

	return nil
}

// loadScanConfig merges config file values, CLI overrides, and defaults.
func loadScanConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if scanConfigPath != "" {
		loadedCfg, err := config.LoadConfig(scanConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loadedCfg
		if scanVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", scanConfigPath)
		}
	}

	// CLI args take priority, but only when explicitly set
	if cmd.Flags().Changed("url") {
		cfg.URL = scanURL
	}
	if cmd.Flags().Changed("kind") {
		cfg.Kind = scanKind
	}
	if cmd.Flags().Changed("rules") {
		cfg.RulesPath = scanRulesPath
	}
	if cmd.Flags().Changed("team") {
		cfg.Team = scanTeam
	}
	if cmd.Flags().Changed("auto-promote-threshold") {
		cfg.AutoPromoteThreshold = scanThreshold
	}
	if cmd.Flags().Changed("fan-out") {
		cfg.FanOut = scanFanOut
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = scanUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = scanVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = scanDatabaseURL
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		Kind:                 "news",
		AutoPromoteThreshold: scoring.DefaultAutoPromoteThreshold,
		FanOut:               engine.DefaultFanOut,
		GraphDelayMs:         200,
	})

	// An explicit --auto-promote-threshold 0 ("promote every signal") is a
	// valid setting; re-apply it so the zero-means-unset merge cannot eat it.
	if cmd.Flags().Changed("auto-promote-threshold") {
		cfg.AutoPromoteThreshold = scanThreshold
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	if cfg.GraphBaseURL == "" {
		cfg.GraphBaseURL = os.Getenv("GRAPH_BASE_URL")
	}
	if cfg.GraphAPIKey == "" {
		cfg.GraphAPIKey = os.Getenv("GRAPH_API_KEY")
	}

	return cfg, cfg.Validate()
}

// buildEngine wires the scan engine from configuration.
func buildEngine(database *db.DB, cfg config.Config) (*engine.Engine, error) {
	table, err := loadRules(cfg.RulesPath)
	if err != nil {
		return nil, err
	}

	var backend graph.Backend
	if cfg.GraphBaseURL != "" {
		client, err := graph.NewClient(graph.Config{
			BaseURL:     cfg.GraphBaseURL,
			APIKey:      cfg.GraphAPIKey,
			MinInterval: time.Duration(cfg.GraphDelayMs) * time.Millisecond,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build graph client: %w", err)
		}
		backend = client
	}

	return engine.New(database, engine.Options{
		Rules:   table,
		Graph:   backend,
		Policy:  &scoring.Policy{AutoPromoteThreshold: cfg.AutoPromoteThreshold},
		TeamID:  cfg.Team,
		FanOut:  cfg.FanOut,
		Verbose: cfg.Verbose,
	}), nil
}

// loadRules loads the rule table from a file, falling back to the built-in table.
func loadRules(path string) ([]types.KeywordRule, error) {
	if path == "" {
		return rules.Default(), nil
	}
	table, err := rules.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	return table, nil
}

// buildPageSource builds a URL-backed source from configuration.
func buildPageSource(cfg config.Config) (sources.TextSource, error) {
	var src *sources.PageSource
	switch cfg.Kind {
	case "", "news":
		src = sources.NewArticleSource(cfg.URL)
	case "forum":
		src = sources.NewForumSource(cfg.URL)
	default:
		return nil, fmt.Errorf("unknown source kind %q: must be news or forum", cfg.Kind)
	}
	src.UseBrowser = cfg.UseBrowser
	src.Verbose = cfg.Verbose
	return src, nil
}
