// Package paths implements the relationship path finder: it aggregates
// per-source connection-strength records into ranked introduction paths and
// a company-level connection score.
package paths

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jonathan/prospect-scout/internal/types"
)

// WarmIntroThreshold is the single-path strength at or above which an
// introduction is considered warm. The predicate is evaluated against the
// maximum path strength, never the average.
const WarmIntroThreshold = 0.7

// Company-level score blend: depth (average path strength on the 0-100
// scale) is weighted at 0.7, breadth contributes 5 points per distinct path
// capped at 30, so many weak paths cannot out-rank one strong path.
const (
	avgStrengthWeight = 0.7
	pointsPerPath     = 5
	breadthCap        = 30
)

// BuildPaths turns raw connection records for one target company into ranked
// introduction paths, one per target person.
//
// When a target person has records from several connectors, the connector
// with the strongest single record wins; the path strength is that record's
// strength (max, not average, across the connector-target pair) and the
// shared-context strings of all of that connector's records are concatenated.
func BuildPaths(records []types.ConnectionRecord) []types.ConnectionPath {
	if len(records) == 0 {
		return nil
	}

	// person -> connector -> records
	byPerson := make(map[string]map[string][]types.ConnectionRecord)
	titles := make(map[string]string)
	for _, rec := range records {
		if rec.TargetPerson == "" || rec.ConnectorName == "" {
			continue
		}
		if rec.Strength < 0 || rec.Strength > 1 {
			continue
		}
		byConnector, ok := byPerson[rec.TargetPerson]
		if !ok {
			byConnector = make(map[string][]types.ConnectionRecord)
			byPerson[rec.TargetPerson] = byConnector
		}
		byConnector[rec.ConnectorName] = append(byConnector[rec.ConnectorName], rec)
		if titles[rec.TargetPerson] == "" && rec.TargetTitle != "" {
			titles[rec.TargetPerson] = rec.TargetTitle
		}
	}

	var out []types.ConnectionPath
	for person, byConnector := range byPerson {
		bestConnector := ""
		bestStrength := -1.0
		for connector, recs := range byConnector {
			strength := maxStrength(recs)
			if strength > bestStrength || (strength == bestStrength && connector < bestConnector) {
				bestConnector = connector
				bestStrength = strength
			}
		}

		out = append(out, types.ConnectionPath{
			TargetPerson:  person,
			TargetTitle:   titles[person],
			Connector:     bestConnector,
			Strength:      bestStrength,
			SharedContext: joinContexts(byConnector[bestConnector]),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Strength != out[j].Strength {
			return out[i].Strength > out[j].Strength
		}
		return out[i].TargetPerson < out[j].TargetPerson
	})
	return out
}

// Aggregate computes the company-level connection score and warm-intro flag
// from a set of built paths.
func Aggregate(companyDomain string, connectionPaths []types.ConnectionPath) types.CompanyConnections {
	agg := types.CompanyConnections{
		CompanyDomain: companyDomain,
		Paths:         connectionPaths,
	}
	if len(connectionPaths) == 0 {
		return agg
	}

	sum := 0.0
	maxPath := 0.0
	for _, p := range connectionPaths {
		sum += p.Strength
		if p.Strength > maxPath {
			maxPath = p.Strength
		}
	}
	avg := sum / float64(len(connectionPaths))

	breadth := float64(len(connectionPaths) * pointsPerPath)
	if breadth > breadthCap {
		breadth = breadthCap
	}

	raw := math.Round(avg*100*avgStrengthWeight + breadth)
	if raw < 0 {
		raw = 0
	}
	if raw > 100 {
		raw = 100
	}

	agg.ConnectionScore = raw / 100
	agg.HasWarmIntro = maxPath >= WarmIntroThreshold
	return agg
}

func maxStrength(recs []types.ConnectionRecord) float64 {
	strongest := 0.0
	for _, r := range recs {
		if r.Strength > strongest {
			strongest = r.Strength
		}
	}
	return strongest
}

// joinContexts synthesizes one human-readable shared-context string from all
// of a connector's records for a target person.
func joinContexts(recs []types.ConnectionRecord) string {
	var parts []string
	seen := make(map[string]bool)
	for _, r := range recs {
		ctx := SharedContext(r)
		if ctx == "" || seen[ctx] {
			continue
		}
		seen[ctx] = true
		parts = append(parts, ctx)
	}
	return strings.Join(parts, "; ")
}

// SharedContext renders one connection record as a human-readable phrase.
func SharedContext(rec types.ConnectionRecord) string {
	switch rec.Origin {
	case types.OriginCoEmployment:
		if rec.Detail != "" {
			return fmt.Sprintf("worked together at %s", rec.Detail)
		}
		return "worked together"
	case types.OriginCoEducation:
		if rec.Detail != "" {
			return fmt.Sprintf("attended %s together", rec.Detail)
		}
		return "attended school together"
	case types.OriginCorrespondence:
		return "direct correspondence"
	case types.OriginCalendar:
		if rec.Detail != "" {
			return fmt.Sprintf("attended %s together", rec.Detail)
		}
		return "met through shared meetings"
	default:
		return rec.Detail
	}
}
