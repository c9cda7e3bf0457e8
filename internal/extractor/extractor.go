// Package extractor turns a rendered detail page into a VehicleRecord using
// ordered per-field rule cascades: each field tries increasingly permissive
// patterns, the first match wins, and later rules never overwrite a field an
// earlier rule already set.
package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"dealerscraper/internal/models"
)

// Session is the browser capability extraction consumes.
type Session interface {
	Navigate(url string) error
	HTML() (string, error)
}

// Engine extracts VehicleRecords from live detail pages.
type Engine struct {
	session Session
}

func New(session Session) *Engine {
	return &Engine{session: session}
}

// Extract navigates to url and builds a record from the rendered page.
// Missing fields are never an error; only a navigation failure is.
func (e *Engine) Extract(url string) (*models.VehicleRecord, error) {
	if err := e.session.Navigate(url); err != nil {
		return nil, err
	}
	pageHTML, err := e.session.HTML()
	if err != nil {
		return nil, err
	}
	return FromHTML(pageHTML, url), nil
}

// FromHTML builds a record from a page's rendered HTML without touching the
// network. Exposed so the rule set can be exercised offline.
func FromHTML(pageHTML, pageURL string) *models.VehicleRecord {
	rec := &models.VehicleRecord{
		SourceURL:  pageURL,
		SourceSite: SiteLabel(pageURL),
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return rec
	}

	p := &page{doc: doc, url: pageURL, text: visibleText(doc)}
	runRules(p, rec)
	backfillStructuredData(p, rec)
	return rec
}

// page bundles the two views the rules match against: the visually rendered
// text (one trimmed text node per line) and the parsed document.
type page struct {
	doc  *goquery.Document
	url  string
	text string
}

// A stringRule produces a candidate value for one field, or "" when its
// pattern does not apply. An intRule works the same way with 0 as the miss
// value; every numeric candidate is range-checked before it is returned.
type (
	stringRule func(p *page) string
	intRule    func(p *page) int
)

func firstString(p *page, rules []stringRule) string {
	for _, r := range rules {
		if v := r(p); v != "" {
			return v
		}
	}
	return ""
}

func firstInt(p *page, rules []intRule) int {
	for _, r := range rules {
		if v := r(p); v != 0 {
			return v
		}
	}
	return 0
}

func runRules(p *page, rec *models.VehicleRecord) {
	rec.Condition = firstString(p, conditionRules)
	rec.VIN = firstString(p, vinRules)
	rec.StockNumber = firstString(p, stockRules)
	rec.Price = firstInt(p, priceRules)
	rec.WasPrice = firstInt(p, wasPriceRules)
	rec.MileageKM = firstInt(p, mileageRules)
	applyTitleFields(p, rec)
	rec.Transmission = firstString(p, transmissionRules)
	rec.Drivetrain = firstString(p, drivetrainRules)
	rec.BodyStyle = firstString(p, bodyStyleRules)
	rec.ExtColor = firstString(p, extColorRules)
	rec.IntColor = firstString(p, intColorRules)
	rec.Engine = firstString(p, engineRules)
	rec.Cylinders = firstString(p, cylinderRules)
	rec.FuelType = firstString(p, fuelTypeRules)
	rec.Doors = firstInt(p, doorRules)
	rec.Passengers = firstInt(p, passengerRules)
	rec.Certified = certifiedRE.MatchString(p.text)
	rec.ImageURL = firstString(p, imageRules)
	rec.CarfaxURL = firstString(p, carfaxRules)
}

var certifiedRE = regexp.MustCompile(`(?i)\bcertified\b`)

// visibleText walks every text node, skipping script/style subtrees, and
// joins the trimmed pieces with newlines so label/value pairs that live in
// sibling elements stay on adjacent lines.
func visibleText(doc *goquery.Document) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return strings.Join(parts, "\n")
}

// SiteLabel derives a human-readable dealer label from a URL's host.
func SiteLabel(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		if len(raw) > 30 {
			return raw[:30]
		}
		return raw
	}
	name := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	if name == "" {
		return u.Host
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

var wsRE = regexp.MustCompile(`\s+`)

func cleanText(s string) string {
	return strings.TrimSpace(wsRE.ReplaceAllString(s, " "))
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
