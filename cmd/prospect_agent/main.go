// Package main provides the entry point for the prospect-scout CLI and API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prospect_agent",
	Short: "Sales prospecting intelligence engine",
	Long:  "Prospect-scout scans public text sources for buying signals, resolves company domains, scores relationship paths, and maintains a prioritized prospect queue via CLI or REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
