package extractor

import (
	"regexp"
	"strings"

	"dealerscraper/internal/models"
)

var (
	yearTokenRE = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

	// Makes that anchor the "YEAR Make Model Trim" heading pattern.
	knownMakeTitleRE = regexp.MustCompile(`(?i)\b(\d{4})\s+` +
		`(GMC|Chevrolet|Buick|Ford|Toyota|Honda|Nissan|BMW|Mazda|Volkswagen|Kia|Ram|Dodge|Lincoln|Jeep|Cadillac|` +
		`Hyundai|Subaru|Audi|Mercedes|Lexus|Acura|Chrysler|Tesla|Mitsubishi|Infiniti|Volvo|Porsche|Mini|Fiat|` +
		`Genesis|Rivian|Harley-Davidson|Airstream|Thor)\s+` +
		`([^\n$]{3,60})`)
)

// applyTitleFields fills year/make/model/trim from the page title or first
// heading. It only ever sets fields that are still empty.
func applyTitleFields(p *page, rec *models.VehicleRecord) {
	title := cleanText(p.doc.Find("title").First().Text())
	if title == "" {
		title = cleanText(p.doc.Find("h1, h2").First().Text())
	}

	if rec.Year == "" && title != "" {
		rec.Year = yearTokenRE.FindString(title)
	}

	// Strongest signal: a known make right after a year anywhere on the page.
	if m := knownMakeTitleRE.FindStringSubmatch(p.text); m != nil {
		if rec.Year == "" {
			rec.Year = m[1]
		}
		if rec.Make == "" {
			rec.Make = m[2]
		}
		if rec.Model == "" && rec.Trim == "" {
			rec.Model, rec.Trim = splitModelTrim(m[3])
		}
		return
	}

	// Fallback: tokenize the title tail after the year.
	if rec.Year == "" || title == "" {
		return
	}
	_, tail, ok := strings.Cut(title, rec.Year)
	if !ok {
		return
	}
	parts := strings.Fields(strings.Trim(tail, " -|"))
	if len(parts) >= 1 && rec.Make == "" {
		rec.Make = parts[0]
	}
	if len(parts) >= 2 && rec.Model == "" {
		rec.Model = parts[1]
	}
	if len(parts) >= 3 && rec.Trim == "" {
		rec.Trim = truncate(strings.Join(parts[2:], " "), 80)
	}
}

// splitModelTrim separates "Model, Trim" or "Model Trim..." text. When the
// token after the model starts with a digit it is folded into the model
// ("Sierra 1500 Denali" -> model "Sierra 1500", trim "Denali"); models whose
// own name is numeric ("330i") stay heuristic and may misplace a trim token.
func splitModelTrim(modelTrim string) (model, trim string) {
	modelTrim = strings.TrimRight(cleanText(modelTrim), ". ")
	if before, after, ok := strings.Cut(modelTrim, ","); ok {
		return strings.TrimSpace(before), truncate(strings.TrimSpace(after), 80)
	}

	words := strings.Fields(modelTrim)
	switch {
	case len(words) == 0:
		return "", ""
	case len(words) >= 2 && words[1][0] >= '0' && words[1][0] <= '9':
		model = words[0] + " " + words[1]
		trim = strings.Join(words[2:], " ")
	default:
		model = words[0]
		trim = strings.Join(words[1:], " ")
	}
	return model, truncate(trim, 80)
}
