// Package scoring provides the confidence/auto-promotion policy and the
// priority ranker that fuses keyword-fit confidence with relationship strength.
package scoring

import (
	"fmt"

	"github.com/jonathan/prospect-scout/internal/types"
)

// DefaultAutoPromoteThreshold is the confidence score at or above which a
// Discovery is promoted to a Prospect without human review.
const DefaultAutoPromoteThreshold = 70

// Policy wraps matcher output with the auto-promotion decision.
type Policy struct {
	// AutoPromoteThreshold in [0,100]. Scores at or above it promote immediately.
	AutoPromoteThreshold int
}

// DefaultPolicy returns the standard promotion policy.
func DefaultPolicy() Policy {
	return Policy{AutoPromoteThreshold: DefaultAutoPromoteThreshold}
}

// Validate checks that the policy is usable.
func (p Policy) Validate() error {
	if p.AutoPromoteThreshold < 0 || p.AutoPromoteThreshold > 100 {
		return fmt.Errorf("auto-promote threshold %d out of range [0,100]", p.AutoPromoteThreshold)
	}
	return nil
}

// ShouldAutoPromote reports whether a match result clears the promotion bar.
// A result without signal never promotes, whatever the threshold.
func (p Policy) ShouldAutoPromote(m types.MatchResult) bool {
	return m.HasSignal() && m.Score >= p.AutoPromoteThreshold
}
