// Package discovery turns an inventory entry URL into the ordered set of
// vehicle detail page URLs, driving the browser through the scroll and
// pagination strategy that fits the detected site family.
package discovery

import (
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"dealerscraper/internal/classifier"
)

// Platform identifies the site family an inventory page belongs to.
type Platform int

const (
	PlatformGeneric Platform = iota
	PlatformPaginatedStatic
	PlatformIDBased
)

func (p Platform) String() string {
	switch p {
	case PlatformPaginatedStatic:
		return "paginated-static"
	case PlatformIDBased:
		return "id-based"
	default:
		return "generic"
	}
}

// Session is the browser capability discovery consumes.
type Session interface {
	Navigate(url string) error
	HTML() (string, error)
	WaitForListings(timeout time.Duration)
	ScrollRoutine(maxScrolls int)
	ClickNextControl() bool
}

// Limits bound one discovery run.
type Limits struct {
	MaxPages   int
	MaxScrolls int
	MaxLinks   int
}

func (l Limits) withDefaults() Limits {
	if l.MaxPages == 0 {
		l.MaxPages = 10
	}
	if l.MaxScrolls == 0 {
		l.MaxScrolls = 15
	}
	if l.MaxLinks == 0 {
		l.MaxLinks = 2000
	}
	return l
}

// DetectPlatform samples anchors from rendered HTML to pick a discovery
// strategy: five or more .htm anchors means a paginated-static site, three or
// more -id anchors means an id-based platform, anything else is generic.
func DetectPlatform(html string) Platform {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return PlatformGeneric
	}
	if doc.Find("a[href*='.htm']").Length() >= 5 {
		return PlatformPaginatedStatic
	}
	if doc.Find("a[href*='-id']").Length() >= 3 {
		return PlatformIDBased
	}
	return PlatformGeneric
}

// CollectLinks extracts every accepted detail URL from the current DOM state.
// Relative hrefs are resolved against the inventory URL; the result is
// deduplicated and sorted.
func CollectLinks(html, inventoryURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	base, err := url.Parse(inventoryURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	rejected := 0

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" {
			return
		}

		if strings.HasPrefix(href, "/") {
			ref, err := url.Parse(href)
			if err != nil {
				return
			}
			href = base.ResolveReference(ref).String()
		} else if !strings.HasPrefix(href, "http") {
			return
		}

		href = classifier.Normalize(href)
		if classifier.Classify(href, inventoryURL) == classifier.ValidDetail {
			seen[href] = true
		} else if strings.Contains(href, "-id") || strings.Contains(href, "/used/") || strings.Contains(href, "/demos/") {
			rejected++
		}
	})

	out := make([]string, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	sort.Strings(out)

	log.Printf("✓ Found %d valid detail page links (%d near-miss links rejected)", len(out), rejected)
	return out
}

// Discover navigates to entryURL and returns the deduplicated, order-stable
// set of detail page URLs found across all pagination passes. An empty page
// is not an error; discovery simply contributes nothing for that pass.
func Discover(s Session, entryURL string, limits Limits) ([]string, error) {
	lim := limits.withDefaults()

	if err := s.Navigate(entryURL); err != nil {
		return nil, err
	}

	html, err := s.HTML()
	if err != nil {
		return nil, err
	}
	platform := DetectPlatform(html)
	log.Printf("✓ Detected platform: %s", platform)

	// ID-based platforms honor a page-size query parameter, which cuts the
	// number of pagination passes needed.
	if platform == PlatformIDBased {
		if boosted := withPageSizeParam(entryURL); boosted != entryURL {
			if err := s.Navigate(boosted); err != nil {
				log.Printf("⚠️  Could not reload with page-size parameter: %v", err)
			}
		}
	}

	var collected []string
	seen := make(map[string]bool)
	merge := func(links []string) {
		for _, u := range links {
			if !seen[u] {
				seen[u] = true
				collected = append(collected, u)
			}
		}
	}

	collectPass := func() {
		s.WaitForListings(10 * time.Second)
		s.ScrollRoutine(lim.MaxScrolls)
		html, err := s.HTML()
		if err != nil {
			log.Printf("⚠️  Could not read page DOM: %v", err)
			return
		}
		merge(CollectLinks(html, entryURL))
	}

	switch platform {
	case PlatformPaginatedStatic, PlatformIDBased:
		for p := 1; p <= lim.MaxPages; p++ {
			log.Printf("📄 Page %d/%d", p, lim.MaxPages)
			collectPass()
			log.Printf("✓ Total collected: %d links", len(collected))

			if len(collected) >= lim.MaxLinks {
				log.Printf("⚠️  Reached max link cap (%d)", lim.MaxLinks)
				break
			}
			if !s.ClickNextControl() {
				log.Println("✓ No more pages")
				break
			}
		}
	default:
		collectPass()
	}

	sort.Strings(collected)
	log.Printf("✅ Total detail links found: %d", len(collected))
	return collected, nil
}

func withPageSizeParam(entryURL string) string {
	if strings.Contains(entryURL, "?") {
		return entryURL + "&limit=99"
	}
	return entryURL + "?limit=99"
}
