package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/prospect-scout/internal/config"
	"github.com/jonathan/prospect-scout/internal/db"
	"github.com/jonathan/prospect-scout/internal/observability"
	"github.com/jonathan/prospect-scout/internal/scoring"
	"github.com/jonathan/prospect-scout/internal/sources"
	"github.com/jonathan/prospect-scout/internal/types"
)

var importCommand = &cobra.Command{
	Use:   "import",
	Short: "Import candidate texts from a CSV file and scan them",
	Long: `Reads a CSV of candidate texts and runs them through the signal matching
pipeline as a single scan run. The CSV must have a "text" column; optional
columns are "source_ref" and "published_at" (RFC 3339).`,
	RunE: runImportCmd,
}

var (
	importFile        string
	importTeam        string
	importRulesPath   string
	importThreshold   int
	importVerbose     bool
	importDatabaseURL string
)

func init() {
	importCommand.Flags().StringVarP(&importFile, "file", "f", "", "Path to CSV file (required)")
	importCommand.Flags().StringVar(&importTeam, "team", "", "Team identifier owning the prospects (required)")
	importCommand.Flags().StringVar(&importRulesPath, "rules", "", "Path to keyword rules JSON file (defaults to built-in table)")
	importCommand.Flags().IntVar(&importThreshold, "auto-promote-threshold", scoring.DefaultAutoPromoteThreshold, "Confidence score at or above which discoveries auto-promote")
	importCommand.Flags().BoolVarP(&importVerbose, "verbose", "v", false, "Print detailed debug information")
	importCommand.Flags().StringVar(&importDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	_ = importCommand.MarkFlagRequired("file")
	_ = importCommand.MarkFlagRequired("team")

	rootCmd.AddCommand(importCommand)
}

func runImportCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	databaseURL := importDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	items, err := readCandidateCSV(importFile)
	if err != nil {
		return err
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	eng, err := buildEngine(database, config.Config{
		RulesPath:            importRulesPath,
		Team:                 importTeam,
		AutoPromoteThreshold: importThreshold,
		Verbose:              importVerbose,
	})
	if err != nil {
		return err
	}

	src := &sources.ListSource{
		SourceName: "import:" + filepath.Base(importFile),
		Items:      items,
	}

	summary, scanErr := eng.Scan(ctx, src)
	if summary != nil {
		observability.NewPrinter(os.Stdout).PrintRunSummary(summary)
	}
	if scanErr != nil {
		return fmt.Errorf("import scan failed: %w", scanErr)
	}
	return nil
}

// readCandidateCSV parses a CSV of candidate texts. The header must contain a
// "text" column; "source_ref" and "published_at" are optional.
func readCandidateCSV(path string) ([]types.CandidateText, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv has no data rows")
	}

	header := records[0]
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := colIdx["text"]; !ok {
		return nil, fmt.Errorf("csv is missing required column %q", "text")
	}

	var items []types.CandidateText
	for i, row := range records[1:] {
		text := strings.TrimSpace(getCol(row, colIdx, "text"))
		if text == "" {
			continue
		}

		item := types.CandidateText{
			SourceRef: strings.TrimSpace(getCol(row, colIdx, "source_ref")),
			RawText:   text,
		}
		if item.SourceRef == "" {
			item.SourceRef = fmt.Sprintf("row:%d", i+2)
		}
		if raw := strings.TrimSpace(getCol(row, colIdx, "published_at")); raw != "" {
			ts, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid published_at %q: %w", i+2, raw, err)
			}
			item.PublishedAt = &ts
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid candidate texts found in csv")
	}
	return items, nil
}

// getCol safely reads a column by name, returning "" when absent.
func getCol(row []string, colIdx map[string]int, col string) string {
	idx, ok := colIdx[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}
