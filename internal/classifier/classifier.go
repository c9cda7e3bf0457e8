// Package classifier decides whether a candidate link points at a vehicle
// detail page. Classification is pure and deterministic: no I/O, just the
// URL and the inventory entry point it was found on.
package classifier

import (
	"net/url"
	"regexp"
	"strings"
)

// Result of classifying a candidate link.
type Result int

const (
	Rejected Result = iota
	ValidDetail
)

// Noise tokens that disqualify a URL outright. Checked against the path and
// query (not the host, so a dealer's own domain name never trips them), and
// always before any whitelist shape. Precision over recall: missing a real
// detail page is cheaper than admitting noise into the dataset.
var blacklistTokens = []string{
	"search", "inventory/search", "filter", "sort",
	"blog", "news", "article", "post",
	"about", "contact", "service", "parts",
	"financing", "trade", "appointment",
	"dealer", "location", "hours",
	"/new/", "/models/", "/certified-preowned-program",
	"promotion", "offer", "special",
	"type/", "brand/", "category/",
}

var (
	// /used/2021-Toyota-Camry-id1234567.html and the demo variants. The /new/
	// alternative never survives the blacklist above; it is kept so the shape
	// reads as the full site family.
	detailShapeRE = regexp.MustCompile(`/(?:used|new|demos?)/\d{4}-[A-Za-z]+-[A-Za-z]+-id\d+\.html?`)
	// /used-inventory/<make>/<model>/...-id123456 platform variant.
	inventoryShapeRE = regexp.MustCompile(`/(?:used|certified|new)-inventory/[^/]+/[^/]+/.*-id\d+`)
	idTokenRE        = regexp.MustCompile(`-id\d{7,}`)
	yearTokenRE      = regexp.MustCompile(`\d{4}`)
)

// Normalize strips the fragment and query string from a raw URL so that
// variants of the same detail page collapse to one key.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

// SameDomain reports whether candidate shares base's host (case-insensitive).
func SameDomain(base, candidate string) bool {
	return hostOf(base) != "" && hostOf(base) == hostOf(candidate)
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// Classify maps a candidate absolute URL to ValidDetail or Rejected given the
// inventory entry point it was discovered on.
func Classify(raw, inventoryURL string) Result {
	if raw == "" {
		return Rejected
	}
	if !SameDomain(inventoryURL, raw) {
		return Rejected
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return Rejected
	}
	u := strings.ToLower(parsed.Path)
	if parsed.RawQuery != "" {
		u += "?" + strings.ToLower(parsed.RawQuery)
	}

	for _, token := range blacklistTokens {
		if strings.Contains(u, token) {
			return Rejected
		}
	}

	if idTokenRE.MatchString(u) && detailShapeRE.MatchString(u) {
		return ValidDetail
	}
	if inventoryShapeRE.MatchString(u) {
		return ValidDetail
	}

	// Paginated-static platforms serve flat .htm detail pages; require a year
	// token so index pages do not slip through.
	if strings.HasSuffix(u, ".htm") && yearTokenRE.MatchString(u) && !strings.Contains(u, "search") {
		return ValidDetail
	}

	return Rejected
}
