package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dealerscraper/internal/models"
)

// Plausibility ranges. Candidates outside these are skipped, never stored.
const (
	minPrice   = 5000
	maxPrice   = 200000
	minMileage = 1
	maxMileage = 500000
)

func parseAmount(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

func priceInRange(n int) bool   { return n >= minPrice && n <= maxPrice }
func mileageInRange(n int) bool { return n >= minMileage && n <= maxMileage }

// ----- condition -----

var (
	conditionLabelREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:Vehicle\s*)?Condition\s*[:\s]*(New|Used|Certified|Pre-Owned|CPO)\b`),
		regexp.MustCompile(`(?i)\bStatus\s*[:\s]*(New|Used|Certified|Pre-Owned|CPO)\b`),
	}
	brandNewRE  = regexp.MustCompile(`(?i)\bBrand\s*New\b|\bNew\s*Vehicle\b`)
	cpoPhraseRE = regexp.MustCompile(`(?i)\bCertified\s*Pre-Owned\b|\bCPO\b`)
	usedPhraseRE = regexp.MustCompile(`(?i)\bPre-Owned\b|\bUsed\s*Vehicle\b`)
)

func mapConditionWord(w string) string {
	switch strings.ToLower(w) {
	case "cpo", "certified", "pre-owned":
		return models.ConditionCertified
	case "new":
		return models.ConditionNew
	case "used":
		return models.ConditionUsed
	}
	return ""
}

var conditionRules = []stringRule{
	// URL path segment is the strongest signal.
	func(p *page) string {
		u := strings.ToLower(p.url)
		switch {
		case strings.Contains(u, "/new-inventory/") || strings.Contains(u, "/new/"):
			return models.ConditionNew
		case strings.Contains(u, "/certified-inventory/") || strings.Contains(u, "/certified/"):
			return models.ConditionCertified
		case strings.Contains(u, "/used-inventory/") || strings.Contains(u, "/used/"):
			return models.ConditionUsed
		}
		return ""
	},
	func(p *page) string {
		for _, re := range conditionLabelREs {
			if m := re.FindStringSubmatch(p.text); m != nil {
				if c := mapConditionWord(m[1]); c != "" {
					return c
				}
			}
		}
		return ""
	},
	func(p *page) string {
		switch {
		case brandNewRE.MatchString(p.text):
			return models.ConditionNew
		case cpoPhraseRE.MatchString(p.text):
			return models.ConditionCertified
		case usedPhraseRE.MatchString(p.text):
			return models.ConditionUsed
		}
		return ""
	},
}

// ----- VIN -----

var (
	vinStrictRE  = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
	vinLabeledREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bVIN\s*#?\s*[:\s]*([A-HJ-NPR-Z0-9]{17})\b`),
		regexp.MustCompile(`(?i)\bVehicle\s*Identification[^\n]{0,20}[:\s]*([A-HJ-NPR-Z0-9]{17})\b`),
	}
	vinBareRE = regexp.MustCompile(`\b([A-HJ-NPR-Z0-9]{17})\b`)
)

// validVIN re-validates a candidate: exactly 17 characters from the VIN
// alphabet (no I, O, Q). Anything else is discarded, not stored.
func validVIN(s string) string {
	s = strings.ToUpper(s)
	if vinStrictRE.MatchString(s) {
		return s
	}
	return ""
}

var vinRules = []stringRule{
	func(p *page) string {
		for _, re := range vinLabeledREs {
			if m := re.FindStringSubmatch(p.text); m != nil {
				if v := validVIN(m[1]); v != "" {
					return v
				}
			}
		}
		return ""
	},
	// First bare 17-character token in document order.
	func(p *page) string {
		if m := vinBareRE.FindStringSubmatch(strings.ToUpper(p.text)); m != nil {
			return validVIN(m[1])
		}
		return ""
	},
}

// ----- stock number -----

var (
	stockLabelRE   = regexp.MustCompile(`(?i)\b(?:Inventory|Stock)\s*(?:Number)?\s*#?\s*[:\s]*([A-Za-z0-9\-]+)`)
	stockNumericRE = regexp.MustCompile(`(?i)(\d+[A-Z0-9\-]*)`)
	stockPrefixRE  = regexp.MustCompile(`(?i)^(stock|inventory|#|:|\s)+`)
)

var stockRules = []stringRule{
	func(p *page) string {
		m := stockLabelRE.FindStringSubmatch(p.text)
		if m == nil {
			return ""
		}
		val := m[1]
		if num := stockNumericRE.FindString(val); num != "" {
			val = num
		}
		val = strings.TrimSpace(stockPrefixRE.ReplaceAllString(val, ""))
		if len(val) >= 1 && len(val) <= 20 {
			return val
		}
		return ""
	},
}

// ----- price -----

var (
	pricePlainLabelRE    = regexp.MustCompile(`(?i)\bPrice\s*:\s*(\d{1,3}(?:,\d{3})+)(?:[^\d]|$)`)
	onePriceLabelRE      = regexp.MustCompile(`(?i)\bONE\s*PRICE\s*:\s*\$\s*(\d{1,3}(?:,\d{3})*)`)
	priceCurrencyLabelRE = regexp.MustCompile(`(?i)\bPrice\s*:\s*\$\s*(\d{1,3}(?:,\d{3})*)`)
	currencyAmountRE     = regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})*)`)
	thousandsAmountRE    = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+)`)
	currencyThousandsRE  = regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})+)`)
	wasPriceRE           = regexp.MustCompile(`(?i)\bWas\s*\$?\s*(\d[\d,]*)`)
)

func labelledAmount(re *regexp.Regexp, text string, ok func(int) bool) int {
	if m := re.FindStringSubmatch(text); m != nil {
		if v := parseAmount(m[1]); ok(v) {
			return v
		}
	}
	return 0
}

var priceRules = []intRule{
	// "Price: 156,859" with no currency symbol.
	func(p *page) int { return labelledAmount(pricePlainLabelRE, p.text, priceInRange) },
	// "ONE PRICE: $19,888".
	func(p *page) int { return labelledAmount(onePriceLabelRE, p.text, priceInRange) },
	// "Price: $19,888".
	func(p *page) int { return labelledAmount(priceCurrencyLabelRE, p.text, priceInRange) },
	// Any element whose class or id mentions price.
	func(p *page) int {
		found := 0
		p.doc.Find("[class*='price'], [class*='Price'], [id*='price']").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := sel.Text()
			if m := currencyAmountRE.FindStringSubmatch(text); m != nil {
				if v := parseAmount(m[1]); priceInRange(v) {
					found = v
					return false
				}
			}
			if m := thousandsAmountRE.FindStringSubmatch(text); m != nil {
				if v := parseAmount(m[1]); priceInRange(v) {
					found = v
					return false
				}
			}
			return true
		})
		return found
	},
	// Last resort: the largest currency-formatted number on the page. Sale
	// and rebate figures run smaller than the primary listed price.
	func(p *page) int {
		best := 0
		for _, m := range currencyThousandsRE.FindAllStringSubmatch(p.text, -1) {
			if v := parseAmount(m[1]); priceInRange(v) && v > best {
				best = v
			}
		}
		return best
	},
}

var wasPriceRules = []intRule{
	func(p *page) int { return labelledAmount(wasPriceRE, p.text, priceInRange) },
}

// ----- mileage -----

var (
	kilometersLabelRE = regexp.MustCompile(`(?i)\bKilometers?\b\s*[:\s]*(\d[\d,]*)\s*(?:km\b)?`)
	mileageLabelRE    = regexp.MustCompile(`(?i)\bMileage\b\s*[:\s]*(\d[\d,]*)\s*(?:km\b)?`)
	odometerLabelRE   = regexp.MustCompile(`(?i)\bOdometer\b\s*[:\s]*(\d[\d,]*)\s*(?:km\b)?`)
	kmValueRE         = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*)\s*km\b`)
	kmThousandsRE     = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})+)\s*km\b`)
)

var mileageRules = []intRule{
	func(p *page) int { return labelledAmount(kilometersLabelRE, p.text, mileageInRange) },
	func(p *page) int { return labelledAmount(mileageLabelRE, p.text, mileageInRange) },
	func(p *page) int { return labelledAmount(odometerLabelRE, p.text, mileageInRange) },
	func(p *page) int {
		found := 0
		p.doc.Find("[class*='mileage'], [class*='kilometer'], [class*='odometer']").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if m := kmValueRE.FindStringSubmatch(sel.Text()); m != nil {
				if v := parseAmount(m[1]); mileageInRange(v) {
					found = v
					return false
				}
			}
			return true
		})
		return found
	},
	// Last resort: the smallest km figure on the page. The odometer reading
	// is typically the smallest km-suffixed number; larger ones tend to be
	// warranty or lease distances.
	func(p *page) int {
		best := 0
		for _, m := range kmThousandsRE.FindAllStringSubmatch(p.text, -1) {
			if v := parseAmount(m[1]); mileageInRange(v) && (best == 0 || v < best) {
				best = v
			}
		}
		return best
	},
}

// ----- transmission -----

var (
	transmissionLabelRE = regexp.MustCompile(`(?i)\bTrans(?:mission)?\.?\s*[:\s]*([^\n]+)`)
	automaticRE         = regexp.MustCompile(`(?i)\bAutomatic\b`)
	manualRE            = regexp.MustCompile(`(?i)\bManual\b`)
	cvtRE               = regexp.MustCompile(`(?i)\bCVT\b`)
)

func normalizeTransmission(s string) string {
	switch {
	case automaticRE.MatchString(s):
		return models.TransmissionAutomatic
	case cvtRE.MatchString(s):
		return models.TransmissionCVT
	case manualRE.MatchString(s):
		return models.TransmissionManual
	}
	return ""
}

var transmissionRules = []stringRule{
	func(p *page) string {
		if m := transmissionLabelRE.FindStringSubmatch(p.text); m != nil {
			return normalizeTransmission(m[1])
		}
		return ""
	},
	func(p *page) string { return normalizeTransmission(p.text) },
}

// ----- drivetrain -----

var (
	drivetrainLabelRE = regexp.MustCompile(`(?i)\bDrive(?:train)?(?:\s*Type)?\s*[:\s]*([^\n]+)`)
	drivetrainMap     = []struct {
		re    *regexp.Regexp
		value string
	}{
		{regexp.MustCompile(`(?i)\b4x4\b`), models.Drivetrain4WD},
		{regexp.MustCompile(`(?i)\b4WD\b`), models.Drivetrain4WD},
		{regexp.MustCompile(`(?i)\bAll[\s\-]?Wheel[\s\-]?Drive\b`), models.DrivetrainAWD},
		{regexp.MustCompile(`(?i)\bAWD\b`), models.DrivetrainAWD},
		{regexp.MustCompile(`(?i)\bFront[\s\-]?Wheel[\s\-]?Drive\b`), models.DrivetrainFWD},
		{regexp.MustCompile(`(?i)\bFWD\b`), models.DrivetrainFWD},
		{regexp.MustCompile(`(?i)\bRear[\s\-]?Wheel[\s\-]?Drive\b`), models.DrivetrainRWD},
		{regexp.MustCompile(`(?i)\bRWD\b`), models.DrivetrainRWD},
	}
)

func normalizeDrivetrain(s string) string {
	for _, entry := range drivetrainMap {
		if entry.re.MatchString(s) {
			return entry.value
		}
	}
	return ""
}

var drivetrainRules = []stringRule{
	func(p *page) string {
		if m := drivetrainLabelRE.FindStringSubmatch(p.text); m != nil {
			return normalizeDrivetrain(m[1])
		}
		return ""
	},
	func(p *page) string { return normalizeDrivetrain(p.text) },
}

// ----- body style, colors, engine -----

// labelledText captures a free-text value after a label, rejecting values
// that are clearly something else (prices, bare numbers).
func labelledText(res []*regexp.Regexp, text string, max int, allowDigits bool) string {
	for _, re := range res {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		val := cleanText(m[1])
		if val == "" || strings.HasPrefix(val, "$") {
			continue
		}
		if !allowDigits && isAllDigits(val) {
			continue
		}
		return truncate(val, max)
	}
	return ""
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

var (
	bodyStyleLabelREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bBody\s*Style\s*[:\s]*([^\n]+)`),
		regexp.MustCompile(`(?i)\bBodystyle\s*[:\s]*([^\n]+)`),
		regexp.MustCompile(`(?i)\bBody\s*Type\s*[:\s]*([^\n]+)`),
		regexp.MustCompile(`(?i)\bStyle\s*[:\s]*([^\n]+)`),
	}
	extColorLabelREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bExt(?:erior)?\.?\s*Colou?r\s*[:\s]*([^\n]+)`),
		regexp.MustCompile(`(?i)\bExterior\s*[:\s]*([^\n]+)`),
		regexp.MustCompile(`(?i)\bColou?r\s*[:\s]*([^\n]+)`),
	}
	intColorLabelREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bInt(?:erior)?\.?\s*Colou?r\s*[:\s]*([^\n]+)`),
		regexp.MustCompile(`(?i)\bInterior\s*[:\s]*([^\n]+)`),
	}
	engineLabelREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bEngine\s*[:\s]*([^\n]+)`),
		regexp.MustCompile(`(?i)\bMotor\s*[:\s]*([^\n]+)`),
	}
	engineDisplacementRE = regexp.MustCompile(`(?i)\b(\d\.\d)\s*L\b`)
)

var bodyStyleRules = []stringRule{
	func(p *page) string { return labelledText(bodyStyleLabelREs, p.text, 50, false) },
}

var extColorRules = []stringRule{
	func(p *page) string { return labelledText(extColorLabelREs, p.text, 30, false) },
}

var intColorRules = []stringRule{
	func(p *page) string { return labelledText(intColorLabelREs, p.text, 30, true) },
}

var engineRules = []stringRule{
	func(p *page) string { return labelledText(engineLabelREs, p.text, 80, false) },
	func(p *page) string {
		if m := engineDisplacementRE.FindStringSubmatch(p.text); m != nil {
			return m[1] + "L"
		}
		return ""
	},
}

// ----- cylinders -----

var (
	cylinderLabelRE  = regexp.MustCompile(`(?i)\bCylinders?\s*[:\s]*([^\n]+)`)
	cylinderCountRE  = regexp.MustCompile(`(?i)\b(\d{1,2})\s*cylinder`)
	cylinderDesignRE = regexp.MustCompile(`\b([VIL]\d{1,2})\b`)
)

var cylinderRules = []stringRule{
	func(p *page) string {
		if m := cylinderLabelRE.FindStringSubmatch(p.text); m != nil {
			if val := cleanText(m[1]); val != "" && !strings.HasPrefix(val, "$") {
				return truncate(val, 50)
			}
		}
		return ""
	},
	func(p *page) string {
		if m := cylinderCountRE.FindStringSubmatch(p.text); m != nil {
			return m[1]
		}
		return ""
	},
	func(p *page) string { return cylinderDesignRE.FindString(p.text) },
}

// ----- fuel type -----

var (
	fuelLabelRE = regexp.MustCompile(`(?i)\bFuel\s*(?:Type)?\s*[:\s]*([^\n]+)`)
	dieselRE    = regexp.MustCompile(`(?i)\bDiesel\b`)
	electricRE  = regexp.MustCompile(`(?i)\bElectric\b`)
	hybridRE    = regexp.MustCompile(`(?i)\bHybrid\b`)
	gasolineRE  = regexp.MustCompile(`(?i)\bGasoline\b|\bGas\b|\bPetrol\b`)
)

var fuelTypeRules = []stringRule{
	func(p *page) string {
		if m := fuelLabelRE.FindStringSubmatch(p.text); m != nil {
			if val := cleanText(m[1]); val != "" && !strings.HasPrefix(val, "$") {
				return truncate(val, 30)
			}
		}
		return ""
	},
	func(p *page) string {
		switch {
		case dieselRE.MatchString(p.text):
			return "Diesel"
		case electricRE.MatchString(p.text):
			return "Electric"
		case hybridRE.MatchString(p.text):
			return "Hybrid"
		case gasolineRE.MatchString(p.text):
			return "Gasoline"
		}
		return ""
	},
}

// ----- doors and passengers -----

var (
	doorsLabelRE      = regexp.MustCompile(`(?i)\bDoors?\s*[:\s]*(\d{1,2})\b`)
	doorsSuffixRE     = regexp.MustCompile(`(?i)\b(\d)\s*doors?\b`)
	passengerLabelREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bPassengers?\s*[:\s]*(\d{1,2})\b`),
		regexp.MustCompile(`(?i)\bSeating\s*(?:Capacity)?\s*[:\s]*(\d{1,2})\b`),
		regexp.MustCompile(`(?i)\b(\d{1,2})\s*passengers?\b`),
	}
)

func doorsInRange(n int) bool      { return n >= 2 && n <= 6 }
func passengersInRange(n int) bool { return n >= 2 && n <= 15 }

var doorRules = []intRule{
	func(p *page) int { return labelledAmount(doorsLabelRE, p.text, doorsInRange) },
	func(p *page) int { return labelledAmount(doorsSuffixRE, p.text, doorsInRange) },
}

var passengerRules = []intRule{
	func(p *page) int {
		for _, re := range passengerLabelREs {
			if v := labelledAmount(re, p.text, passengersInRange); v != 0 {
				return v
			}
		}
		return 0
	},
}

// ----- image and carfax links -----

var inventoryImageRE = regexp.MustCompile(`(?i)inventory.*\.(?:jpe?g|png|webp)`)

var imageRules = []stringRule{
	func(p *page) string {
		found := ""
		p.doc.Find("img[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			src, _ := sel.Attr("src")
			if inventoryImageRE.MatchString(src) {
				found = src
				return false
			}
			return true
		})
		return found
	},
	func(p *page) string {
		content, _ := p.doc.Find("meta[property='og:image']").Attr("content")
		return content
	},
}

var carfaxRules = []stringRule{
	func(p *page) string {
		found := ""
		p.doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			href, _ := sel.Attr("href")
			if strings.Contains(strings.ToLower(href), "carfax") {
				found = href
				return false
			}
			return true
		})
		return found
	},
	func(p *page) string {
		found := ""
		p.doc.Find("iframe[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			src, _ := sel.Attr("src")
			if strings.Contains(strings.ToLower(src), "carfax") {
				found = src
				return false
			}
			return true
		})
		return found
	},
	// A carfax badge image inside a link: walk up to the enclosing anchor.
	func(p *page) string {
		found := ""
		p.doc.Find("img[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			src, _ := sel.Attr("src")
			if !strings.Contains(strings.ToLower(src), "carfax") {
				return true
			}
			if href, ok := sel.Closest("a").Attr("href"); ok && href != "" {
				found = href
				return false
			}
			return true
		})
		return found
	},
}
