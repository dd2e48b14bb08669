// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/prospect-scout/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintMatchResult outputs the keyword hits and score for one candidate text.
func (p *Printer) PrintMatchResult(domain string, m *types.MatchResult) {
	if m == nil || !m.HasSignal() {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", domain))
	sb.WriteString(fmt.Sprintf("Score:    %d\n\n", m.Score))

	sb.WriteString("Matched phrases:\n")
	count := min(len(m.MatchedPhrases), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", m.MatchedPhrases[i]))
	}
	if len(m.MatchedPhrases) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(m.MatchedPhrases)-maxItemsToShow))
	}

	if len(m.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("\nTags: %s", strings.Join(m.Tags, ", ")))
	}

	p.printBox("SIGNAL MATCH", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunSummary outputs the counters for a completed scan run.
func (p *Printer) PrintRunSummary(summary *types.RunSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:   %s\n\n", summary.Source))
	sb.WriteString(fmt.Sprintf("Items scanned:       %d\n", summary.ItemsScanned))
	sb.WriteString(fmt.Sprintf("Discoveries created: %d\n", summary.DiscoveriesCreated))
	sb.WriteString(fmt.Sprintf("Duplicates skipped:  %d\n", summary.DuplicatesSkipped))
	sb.WriteString(fmt.Sprintf("Auto-promoted:       %d\n", summary.AutoPromoted))
	sb.WriteString(fmt.Sprintf("Errors:              %d", summary.Errors))

	if summary.CompletedAt != nil {
		sb.WriteString(fmt.Sprintf("\n\nDuration: %s", summary.CompletedAt.Sub(summary.StartedAt).Round(1e6)))
	}

	p.printBox("SCAN RUN SUMMARY", sb.String())
}

// PrintPaths outputs the ranked introduction paths for one company.
func (p *Printer) PrintPaths(conns *types.CompanyConnections) {
	if conns == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", conns.CompanyDomain))
	sb.WriteString(fmt.Sprintf("Score:    %.2f", conns.ConnectionScore))
	if conns.HasWarmIntro {
		sb.WriteString("  (warm intro available)")
	}
	sb.WriteString("\n")

	if len(conns.Paths) == 0 {
		sb.WriteString("\nNo known introduction paths.")
	} else {
		sb.WriteString("\n")
		count := min(len(conns.Paths), maxItemsToShow)
		for i := 0; i < count; i++ {
			path := conns.Paths[i]
			sb.WriteString(fmt.Sprintf("#%d  %s via %s (%.2f)\n", i+1, path.TargetPerson, path.Connector, path.Strength))
			if path.SharedContext != "" {
				sb.WriteString(fmt.Sprintf("    %s\n", path.SharedContext))
			}
		}
		if len(conns.Paths) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(conns.Paths)-maxItemsToShow))
		}
	}

	p.printBox("INTRODUCTION PATHS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProspects outputs a priority-ordered prospect list.
func (p *Printer) PrintProspects(prospects []types.Prospect) {
	if len(prospects) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total prospects: %d\n\n", len(prospects)))

	count := min(len(prospects), maxItemsToShow)
	for i := 0; i < count; i++ {
		pr := prospects[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, pr.CompanyDomain))
		sb.WriteString(fmt.Sprintf("    Priority: %.1f  Fit: %d  Connection: %.2f", pr.PriorityScore, pr.FitScore, pr.ConnectionScore))
		if pr.HasWarmIntro {
			sb.WriteString("  [warm]")
		}
		sb.WriteString("\n")
	}
	if len(prospects) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(prospects)-maxItemsToShow))
	}

	p.printBox("PROSPECT QUEUE", strings.TrimSuffix(sb.String(), "\n"))
}
