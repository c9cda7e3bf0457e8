package discovery

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
)

const entryURL = "https://dealer.example.com/used-vehicles/"

func anchors(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<a href="%s">link</a>`, h)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func TestDetectPlatform(t *testing.T) {
	cases := []struct {
		name string
		html string
		want Platform
	}{
		{
			"paginatedStatic",
			anchors("/a1.htm", "/a2.htm", "/a3.htm", "/a4.htm", "/a5.htm"),
			PlatformPaginatedStatic,
		},
		{
			"idBased",
			anchors("/used/2021-Toyota-Camry-id1234567.html", "/used/2020-Honda-Civic-id2234567.html", "/used/2019-Mazda-Three-id3234567.html"),
			PlatformIDBased,
		},
		{
			"generic",
			anchors("/about", "/contact"),
			PlatformGeneric,
		},
		{
			"htmBeatsID",
			anchors("/a1.htm", "/a2.htm", "/a3.htm", "/a4.htm", "/a5.htm",
				"/x-id1234567.html", "/y-id2234567.html", "/z-id3234567.html"),
			PlatformPaginatedStatic,
		},
		{"empty", "<html></html>", PlatformGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectPlatform(tc.html); got != tc.want {
				t.Fatalf("DetectPlatform = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCollectLinks(t *testing.T) {
	html := anchors(
		"/used/2021-Toyota-Camry-id1234567.html",                     // relative, valid
		"https://dealer.example.com/used/2020-Honda-Civic-id2234567.html", // absolute, valid
		"https://dealer.example.com/used/2020-Honda-Civic-id2234567.html?utm=x", // duplicate after normalize
		"https://other.example.org/used/2019-Mazda-Three-id3234567.html",  // off-domain
		"https://dealer.example.com/search?make=toyota",              // blacklisted
		"mailto:sales@dealer.example.com",                            // not http
		"/financing",                                                 // noise
	)

	got := CollectLinks(html, entryURL)
	want := []string{
		"https://dealer.example.com/used/2020-Honda-Civic-id2234567.html",
		"https://dealer.example.com/used/2021-Toyota-Camry-id1234567.html",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CollectLinks = %v, want %v", got, want)
	}
}

// fakeSession scripts a sequence of DOM states, one per pagination pass.
type fakeSession struct {
	pages     []string
	pos       int
	navigated []string
}

func (f *fakeSession) Navigate(url string) error {
	f.navigated = append(f.navigated, url)
	return nil
}

func (f *fakeSession) HTML() (string, error) {
	if f.pos >= len(f.pages) {
		return f.pages[len(f.pages)-1], nil
	}
	return f.pages[f.pos], nil
}

func (f *fakeSession) WaitForListings(time.Duration) {}
func (f *fakeSession) ScrollRoutine(int)             {}

func (f *fakeSession) ClickNextControl() bool {
	if f.pos+1 < len(f.pages) {
		f.pos++
		return true
	}
	return false
}

func TestDiscoverPaginates(t *testing.T) {
	page1 := anchors(
		"/a1.htm", "/a2.htm", "/a3.htm", "/a4.htm", "/a5.htm", // platform signal
		"/used/2021-Toyota-Camry-id1234567.html",
	)
	page2 := anchors(
		"/used/2021-Toyota-Camry-id1234567.html", // repeat from page 1
		"/used/2020-Honda-Civic-id2234567.html",
	)

	s := &fakeSession{pages: []string{page1, page2}}
	got, err := Discover(s, entryURL, Limits{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{
		"https://dealer.example.com/used/2020-Honda-Civic-id2234567.html",
		"https://dealer.example.com/used/2021-Toyota-Camry-id1234567.html",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Discover = %v, want %v", got, want)
	}
}

func TestDiscoverLinkCap(t *testing.T) {
	page := anchors(
		"/a1.htm", "/a2.htm", "/a3.htm", "/a4.htm", "/a5.htm",
		"/used/2021-Toyota-Camry-id1234567.html",
		"/used/2020-Honda-Civic-id2234567.html",
	)
	// Endless pagination; the cap has to stop the loop.
	s := &fakeSession{pages: []string{page, page, page, page, page, page}}

	got, err := Discover(s, entryURL, Limits{MaxLinks: 2})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d links, want 2", len(got))
	}
	if s.pos != 0 {
		t.Fatalf("pagination advanced %d times despite cap", s.pos)
	}
}

func TestDiscoverIDBasedAppendsPageSize(t *testing.T) {
	page := anchors(
		"/used/2021-Toyota-Camry-id1234567.html",
		"/used/2020-Honda-Civic-id2234567.html",
		"/used/2019-Mazda-Three-id3234567.html",
	)
	s := &fakeSession{pages: []string{page}}

	if _, err := Discover(s, entryURL, Limits{}); err != nil {
		t.Fatalf("Discover: %v", err)
	}
	found := false
	for _, u := range s.navigated {
		if strings.Contains(u, "limit=99") {
			found = true
		}
	}
	if !found {
		t.Fatalf("id-based discovery never requested the page-size boosted URL; navigated: %v", s.navigated)
	}
}

func TestDiscoverGenericSinglePass(t *testing.T) {
	page := anchors("/used/2021-Toyota-Camry-id1234567.html")
	s := &fakeSession{pages: []string{page, page}}

	got, err := Discover(s, entryURL, Limits{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d links, want 1", len(got))
	}
	if s.pos != 0 {
		t.Fatal("generic platform should not attempt pagination")
	}
}
