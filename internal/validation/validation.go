package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// Caps on caller-supplied run limits. These protect the browser pool, not
// correctness; the discovery loop applies its own defaults below them.
const (
	MaxPagesCap    = 50
	MaxScrollsCap  = 100
	MaxLinksCap    = 10000
	MaxWorkersCap  = 8
	MaxEntryURLs   = 10
	maxEntryURLLen = 2048
)

// ValidateEntryURL validates that an inventory entry URL is absolute http(s)
// with a real host
func ValidateEntryURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("entry URL is required")
	}
	if len(raw) > maxEntryURLLen {
		return fmt.Errorf("entry URL exceeds %d characters", maxEntryURLLen)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("entry URL is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("entry URL must use http or https")
	}
	if u.Host == "" || !strings.Contains(u.Host, ".") {
		return fmt.Errorf("entry URL must include a full host name")
	}

	return nil
}

// ValidateEntryURLs validates the whole entry list for one run
func ValidateEntryURLs(urls []string) error {
	if len(urls) == 0 {
		return fmt.Errorf("at least one entry URL is required")
	}
	if len(urls) > MaxEntryURLs {
		return fmt.Errorf("at most %d entry URLs per run", MaxEntryURLs)
	}

	for _, raw := range urls {
		if err := ValidateEntryURL(raw); err != nil {
			return fmt.Errorf("%s: %v", raw, err)
		}
	}

	return nil
}

// ValidateRunLimits validates caller-supplied pagination/scroll/worker limits.
// Zero values are allowed and mean "use the default".
func ValidateRunLimits(maxPages, maxScrolls, maxLinks, workers int) error {
	if maxPages < 0 || maxPages > MaxPagesCap {
		return fmt.Errorf("max_pages must be between 0 and %d", MaxPagesCap)
	}
	if maxScrolls < 0 || maxScrolls > MaxScrollsCap {
		return fmt.Errorf("max_scrolls must be between 0 and %d", MaxScrollsCap)
	}
	if maxLinks < 0 || maxLinks > MaxLinksCap {
		return fmt.Errorf("max_links must be between 0 and %d", MaxLinksCap)
	}
	if workers < 0 || workers > MaxWorkersCap {
		return fmt.Errorf("workers must be between 0 and %d", MaxWorkersCap)
	}

	return nil
}
