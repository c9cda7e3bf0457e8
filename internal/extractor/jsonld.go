package extractor

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dealerscraper/internal/models"
)

// backfillStructuredData fills fields that are still empty from an embedded
// JSON-LD block of type Vehicle, Car or Product. It never overwrites a field
// the text rules already populated.
func backfillStructuredData(p *page, rec *models.VehicleRecord) {
	p.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		obj := decodeLDObject(sel.Text())
		if obj == nil {
			return
		}
		t, _ := obj["@type"].(string)
		if t != "Vehicle" && t != "Car" && t != "Product" {
			return
		}

		setIfEmpty(&rec.ExtColor, obj, "color")
		setIfEmpty(&rec.FuelType, obj, "fuelType")
		setIfEmpty(&rec.BodyStyle, obj, "bodyType")
		if rec.Doors == 0 {
			if n := intField(obj, "numberOfDoors"); doorsInRange(n) {
				rec.Doors = n
			}
		}
		if rec.Passengers == 0 {
			if n := intField(obj, "vehicleSeatingCapacity"); passengersInRange(n) {
				rec.Passengers = n
			}
		}
		if rec.Transmission == "" {
			rec.Transmission = normalizeTransmission(stringField(obj, "vehicleTransmission"))
		}
		if rec.Drivetrain == "" {
			rec.Drivetrain = normalizeDrivetrain(stringField(obj, "driveWheelConfiguration"))
		}
		if rec.Condition == "" {
			cond := stringField(obj, "itemCondition")
			switch {
			case strings.Contains(cond, "New"):
				rec.Condition = models.ConditionNew
			case strings.Contains(cond, "Used"):
				rec.Condition = models.ConditionUsed
			}
		}
	})
}

// decodeLDObject parses a JSON-LD payload, unwrapping a top-level array to
// its first object. Malformed blocks are ignored.
func decodeLDObject(raw string) map[string]any {
	var node any
	if err := json.Unmarshal([]byte(raw), &node); err != nil {
		return nil
	}
	switch v := node.(type) {
	case map[string]any:
		return v
	case []any:
		if len(v) > 0 {
			if obj, ok := v[0].(map[string]any); ok {
				return obj
			}
		}
	}
	return nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

func setIfEmpty(dst *string, obj map[string]any, key string) {
	if *dst == "" {
		*dst = stringField(obj, key)
	}
}

func intField(obj map[string]any, key string) int {
	switch v := obj[key].(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	}
	return 0
}
