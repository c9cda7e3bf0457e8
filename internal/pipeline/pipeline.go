// Package pipeline runs the post-extraction cleanup filters. Filter order
// matters: identity first so junk pages never consume a VIN or URL slot,
// then VIN dedup, then URL dedup, then the useful-data floor.
package pipeline

import (
	"log"
	"strings"

	"dealerscraper/internal/models"
)

// Finalize returns the cleaned dataset. Input order is preserved and the
// first occurrence always wins a dedup contest.
func Finalize(raw []*models.VehicleRecord) []*models.VehicleRecord {
	out := filterIdentity(raw)
	out = dedupVIN(out)
	out = dedupURL(out)
	out = filterUsefulData(out)
	return out
}

func filterIdentity(in []*models.VehicleRecord) []*models.VehicleRecord {
	out := make([]*models.VehicleRecord, 0, len(in))
	for _, rec := range in {
		if rec.HasIdentity() {
			out = append(out, rec)
		}
	}
	log.Printf("🧹 Identity filter: %d -> %d", len(in), len(out))
	return out
}

// dedupVIN drops later records that repeat an earlier VIN, comparing
// case-insensitively without touching the records. Records without a VIN are
// exempt; URL dedup handles those.
func dedupVIN(in []*models.VehicleRecord) []*models.VehicleRecord {
	seen := make(map[string]bool, len(in))
	out := make([]*models.VehicleRecord, 0, len(in))
	for _, rec := range in {
		key := strings.ToUpper(rec.VIN)
		if key != "" {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, rec)
	}
	log.Printf("🧹 VIN dedup: %d -> %d", len(in), len(out))
	return out
}

func dedupURL(in []*models.VehicleRecord) []*models.VehicleRecord {
	seen := make(map[string]bool, len(in))
	out := make([]*models.VehicleRecord, 0, len(in))
	for _, rec := range in {
		if rec.SourceURL != "" {
			if seen[rec.SourceURL] {
				continue
			}
			seen[rec.SourceURL] = true
		}
		out = append(out, rec)
	}
	log.Printf("🧹 URL dedup: %d -> %d", len(in), len(out))
	return out
}

func filterUsefulData(in []*models.VehicleRecord) []*models.VehicleRecord {
	out := make([]*models.VehicleRecord, 0, len(in))
	for _, rec := range in {
		if rec.HasUsefulData() {
			out = append(out, rec)
		}
	}
	log.Printf("🧹 Useful-data filter: %d -> %d", len(in), len(out))
	return out
}
