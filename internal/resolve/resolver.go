// Package resolve implements the entity resolver: it extracts a canonical
// company identity (a normalized domain) from a URL or free-text mention and
// filters out noise domains so downstream deduplication has a stable key.
package resolve

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// DefaultMaxCandidates bounds how many domains are extracted from one text
// blob, capping downstream fan-out.
const DefaultMaxCandidates = 3

// domainPattern matches domain mentions in free text against a permissive
// allowlist of common top-level domains.
var domainPattern = regexp.MustCompile(`(?i)\b([a-z0-9][a-z0-9-]*\.)+(com|net|org|io|co|ai|app|dev|gg|shop|store|tech|us|uk|ca|de|fr|au|nl|se|jp)\b`)

// defaultBlocklist contains domains that are never candidate companies: our
// own properties, generic platforms, and infrastructure vendors that show up
// constantly in signal text.
var defaultBlocklist = []string{
	"prospectscout.io",
	// platforms
	"google.com", "youtube.com", "facebook.com", "twitter.com", "x.com",
	"linkedin.com", "reddit.com", "ycombinator.com", "medium.com",
	"substack.com", "github.com", "wikipedia.org", "instagram.com",
	"tiktok.com", "apple.com", "bit.ly", "t.co", "imgur.com",
	// infrastructure vendors
	"cloudflare.com", "amazonaws.com", "akamai.com", "fastly.com",
	"godaddy.com", "wordpress.com", "shopify.com", "wix.com",
	"squarespace.com",
}

// Resolver normalizes URLs and mentions into canonical company domains.
type Resolver struct {
	blocked       map[string]bool
	maxCandidates int
}

// Options configures a Resolver.
type Options struct {
	// ExtraBlocklist adds deployment-specific domains to the default blocklist.
	ExtraBlocklist []string
	// MaxCandidates caps domains extracted per text blob. Zero means DefaultMaxCandidates.
	MaxCandidates int
}

// New creates a Resolver. A nil opts uses defaults.
func New(opts *Options) *Resolver {
	r := &Resolver{
		blocked:       make(map[string]bool, len(defaultBlocklist)),
		maxCandidates: DefaultMaxCandidates,
	}
	for _, d := range defaultBlocklist {
		r.blocked[d] = true
	}
	if opts != nil {
		for _, d := range opts.ExtraBlocklist {
			r.blocked[strings.ToLower(strings.TrimSpace(d))] = true
		}
		if opts.MaxCandidates > 0 {
			r.maxCandidates = opts.MaxCandidates
		}
	}
	return r
}

// FromURL resolves a URL into a normalized company domain. It returns ""
// when no acceptable domain can be resolved; callers must discard the signal
// in that case rather than fabricate a placeholder identity.
func (r *Resolver) FromURL(rawurl string) string {
	rawurl = strings.TrimSpace(rawurl)
	if rawurl == "" {
		return ""
	}
	if !strings.Contains(rawurl, "://") {
		rawurl = "https://" + rawurl
	}
	parsed, err := url.Parse(rawurl)
	if err != nil || parsed.Hostname() == "" {
		return ""
	}
	return r.normalize(parsed.Hostname())
}

// FromText extracts up to MaxCandidates accepted domains from a text blob,
// in order of appearance.
func (r *Resolver) FromText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	for _, raw := range domainPattern.FindAllString(text, -1) {
		domain := r.normalize(raw)
		if domain == "" || seen[domain] {
			continue
		}
		seen[domain] = true
		out = append(out, domain)
		if len(out) >= r.maxCandidates {
			break
		}
	}
	return out
}

// Primary returns the first accepted domain mentioned in the text, or "".
func (r *Resolver) Primary(text string) string {
	candidates := r.FromText(text)
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0]
}

// normalize lowercases a host, strips a leading www., reduces it to the
// registrable domain, and applies the shape check and blocklist. Returns ""
// when the host is rejected.
func (r *Resolver) normalize(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimSuffix(host, ".")
	host = strings.TrimPrefix(host, "www.")
	if host == "" || !strings.Contains(host, ".") {
		return ""
	}
	if net.ParseIP(host) != nil {
		return ""
	}

	if registrable, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		host = registrable
	}

	if r.blocked[host] {
		return ""
	}
	return host
}
