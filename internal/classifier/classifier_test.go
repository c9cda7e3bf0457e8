package classifier

import "testing"

const inventoryURL = "https://dealer.example.com/used-vehicles/"

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want Result
	}{
		{
			"usedDetailPage",
			"https://dealer.example.com/used/2021-Toyota-Camry-id1234567.html",
			ValidDetail,
		},
		{
			// The /new/ noise token wins even over a detail-shaped path.
			"newSectionDetailShapeStillRejected",
			"https://dealer.example.com/new/2024-Honda-Civic-id7654321.html",
			Rejected,
		},
		{
			"demoDetailPage",
			"https://dealer.example.com/demos/2023-Mazda-CX5-id9876543.htm",
			ValidDetail,
		},
		{
			"inventoryPlatformDetail",
			"https://dealer.example.com/used-inventory/toyota/camry/2021-toyota-camry-se-id123456",
			ValidDetail,
		},
		{
			"searchPage",
			"https://dealer.example.com/search?make=toyota",
			Rejected,
		},
		{
			"blacklistBeatsWhitelist",
			"https://dealer.example.com/search/used/2021-Toyota-Camry-id1234567.html",
			Rejected,
		},
		{
			"offDomain",
			"https://other.example.org/used/2021-Toyota-Camry-id1234567.html",
			Rejected,
		},
		{
			"shortID",
			"https://dealer.example.com/used/2021-Toyota-Camry-id123.html",
			Rejected,
		},
		{
			"bareNewSection",
			"https://dealer.example.com/new/",
			Rejected,
		},
		{
			"htmFallbackWithYear",
			"https://dealer.example.com/camry-2021-sedan.htm",
			ValidDetail,
		},
		{
			"htmFallbackNoYear",
			"https://dealer.example.com/camry-sedan.htm",
			Rejected,
		},
		{
			"blogPage",
			"https://dealer.example.com/blog/2021-year-in-review.htm",
			Rejected,
		},
		{
			"financing",
			"https://dealer.example.com/financing/2021-offers.htm",
			Rejected,
		},
		{
			"empty",
			"",
			Rejected,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.url, inventoryURL); got != tc.want {
				t.Fatalf("Classify(%q) = %v, want %v", tc.url, got, tc.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	u := "https://dealer.example.com/used/2021-Toyota-Camry-id1234567.html"
	first := Classify(u, inventoryURL)
	for i := 0; i < 10; i++ {
		if got := Classify(u, inventoryURL); got != first {
			t.Fatalf("classification changed between calls: %v then %v", first, got)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://a.com/x.html#gallery", "https://a.com/x.html"},
		{"https://a.com/x.html?utm=1", "https://a.com/x.html"},
		{"  https://a.com/x.html  ", "https://a.com/x.html"},
		{"https://a.com/x.html", "https://a.com/x.html"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSameDomain(t *testing.T) {
	if !SameDomain("https://Dealer.Example.com/a", "https://dealer.example.com/b") {
		t.Error("hosts differing only by case should match")
	}
	if SameDomain("https://dealer.example.com/a", "https://www.dealer.example.com/b") {
		t.Error("different hosts should not match")
	}
}
