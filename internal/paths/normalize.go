package paths

import (
	"strings"
)

// legalSuffixes are trailing tokens stripped from company names before the
// name is used as a relationship-graph search term.
var legalSuffixes = map[string]bool{
	"inc":          true,
	"inc.":         true,
	"incorporated": true,
	"llc":          true,
	"llc.":         true,
	"ltd":          true,
	"ltd.":         true,
	"limited":      true,
	"corp":         true,
	"corp.":        true,
	"corporation":  true,
	"co":           true,
	"co.":          true,
	"company":      true,
	"gmbh":         true,
	"plc":          true,
	"sa":           true,
	"ag":           true,
	"holdings":     true,
	"group":        true,
}

// compoundOverrides collapses known multi-word names into the form the
// relationship source indexes them under.
var compoundOverrides = map[string]string{
	"live nation":      "livenation",
	"stub hub":         "stubhub",
	"ticket master":    "ticketmaster",
	"e bay":            "ebay",
	"master card":      "mastercard",
	"home depot":       "home depot", // indexed with the space, keep as-is
	"american express": "american express",
}

// SearchTerm normalizes a company identity into the free-text search term the
// relationship-graph backend indexes by. It prefers the company name with
// legal suffixes stripped and known compounds collapsed, and falls back to
// the raw cleaned domain stem. This is a best-effort heuristic: callers must
// treat zero results as "no known path", never as an error.
func SearchTerm(companyDomain, companyName string) string {
	name := strings.ToLower(strings.TrimSpace(companyName))
	if name != "" {
		name = stripLegalSuffixes(name)
		if override, ok := compoundOverrides[name]; ok {
			return override
		}
		if name != "" {
			return name
		}
	}
	return domainStem(companyDomain)
}

func stripLegalSuffixes(name string) string {
	name = strings.TrimRight(name, ",.")
	words := strings.Fields(strings.ReplaceAll(name, ",", " "))
	for len(words) > 1 && legalSuffixes[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// domainStem returns the label before the first dot: "companyx.com" -> "companyx".
func domainStem(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return ""
	}
	if i := strings.IndexByte(domain, '.'); i > 0 {
		return domain[:i]
	}
	return domain
}
