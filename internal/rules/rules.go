// Package rules provides the shared keyword rule table used by every scoring
// call site. The table is loaded once per run and injected into callers; it is
// never re-encoded per call site.
package rules

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/prospect-scout/internal/schemas"
	"github.com/jonathan/prospect-scout/internal/types"
)

// SchemaPath is the repo-relative path of the keyword rule table schema.
const SchemaPath = "schemas/keyword_rules.schema.json"

// ruleFile is the on-disk shape of a rule table.
type ruleFile struct {
	Version int                 `json:"version"`
	Rules   []types.KeywordRule `json:"rules"`
}

// LoadFile reads a keyword rule table from a JSON file, validating it against
// the rule table schema before decoding.
func LoadFile(path string) ([]types.KeywordRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	if schemaPath := schemas.ResolveSchemaPath(SchemaPath); schemaPath != "" {
		if err := schemas.ValidateJSON(schemaPath, path); err != nil {
			return nil, fmt.Errorf("rules file %s failed schema validation: %w", path, err)
		}
	}

	var file ruleFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	if err := Validate(file.Rules); err != nil {
		return nil, err
	}
	return file.Rules, nil
}

// Validate checks the structural invariants the schema cannot fully express.
func Validate(rs []types.KeywordRule) error {
	if len(rs) == 0 {
		return fmt.Errorf("rule table is empty")
	}
	seen := make(map[string]bool, len(rs))
	for i, r := range rs {
		if r.Phrase == "" {
			return fmt.Errorf("rule %d: phrase is empty", i)
		}
		if r.Weight < 1 || r.Weight > 5 {
			return fmt.Errorf("rule %q: weight %d out of range [1,5]", r.Phrase, r.Weight)
		}
		switch r.Category {
		case types.CategorySignal, types.CategoryRegulatory, types.CategoryCost, types.CategoryCompetitor:
		default:
			return fmt.Errorf("rule %q: unknown category %q", r.Phrase, r.Category)
		}
		if seen[r.Phrase] {
			return fmt.Errorf("rule %q: duplicate phrase", r.Phrase)
		}
		seen[r.Phrase] = true
	}
	return nil
}

// Default returns the built-in rule table for bot-and-abuse prospecting.
// Deployments with their own table should load it via LoadFile instead.
func Default() []types.KeywordRule {
	return []types.KeywordRule{
		// Strong incident signals
		{Phrase: "ticket scalping", Category: types.CategorySignal, Weight: 5, Tags: []string{"bot-mitigation", "ticketing"}},
		{Phrase: "bot attack", Category: types.CategorySignal, Weight: 5, Tags: []string{"bot-mitigation"}},
		{Phrase: "credential stuffing", Category: types.CategorySignal, Weight: 5, Tags: []string{"account-security"}},
		{Phrase: "account takeover", Category: types.CategorySignal, Weight: 5, Tags: []string{"account-security"}},
		{Phrase: "inventory hoarding", Category: types.CategorySignal, Weight: 4, Tags: []string{"bot-mitigation", "ecommerce"}},
		{Phrase: "sneaker bots", Category: types.CategorySignal, Weight: 4, Tags: []string{"bot-mitigation", "ecommerce"}},
		{Phrase: "scraper traffic", Category: types.CategorySignal, Weight: 3, Tags: []string{"scraping-protection"}},
		{Phrase: "web scraping", Category: types.CategorySignal, Weight: 3, Tags: []string{"scraping-protection"}},
		{Phrase: "fake account", Category: types.CategorySignal, Weight: 3, Tags: []string{"fraud-prevention"}},
		{Phrase: "carding attack", Category: types.CategorySignal, Weight: 4, Tags: []string{"fraud-prevention", "payments"}},
		{Phrase: "promo abuse", Category: types.CategorySignal, Weight: 3, Tags: []string{"fraud-prevention"}},
		{Phrase: "ddos", Category: types.CategorySignal, Weight: 2, Tags: []string{"bot-mitigation"}},

		// Cost and loss pressure
		{Phrase: "chargeback", Category: types.CategoryCost, Weight: 3, Tags: []string{"fraud-prevention", "payments"}},
		{Phrase: "fraud losses", Category: types.CategoryCost, Weight: 4, Tags: []string{"fraud-prevention"}},
		{Phrase: "infrastructure costs spiked", Category: types.CategoryCost, Weight: 2, Tags: []string{"bot-mitigation"}},

		// Regulatory pressure
		{Phrase: "better online ticket sales act", Category: types.CategoryRegulatory, Weight: 4, Tags: []string{"ticketing", "compliance"}},
		{Phrase: "kyc requirements", Category: types.CategoryRegulatory, Weight: 2, Tags: []string{"compliance"}},
		{Phrase: "consent decree", Category: types.CategoryRegulatory, Weight: 2, Tags: []string{"compliance"}},

		// Competitor displacement
		{Phrase: "recaptcha", Category: types.CategoryCompetitor, Weight: 2, Tags: []string{"bot-mitigation"}},
		{Phrase: "switched from cloudflare", Category: types.CategoryCompetitor, Weight: 3, Tags: []string{"bot-mitigation"}},
		{Phrase: "waf rules", Category: types.CategoryCompetitor, Weight: 1, Tags: []string{"bot-mitigation"}},
	}
}
