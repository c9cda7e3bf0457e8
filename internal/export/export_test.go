package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"dealerscraper/internal/models"
)

func sample() []*models.VehicleRecord {
	return []*models.VehicleRecord{
		{
			SourceURL: "https://d.example.com/a.html",
			VIN:       "1HGCM82633A004352",
			Year:      "2021",
			Make:      "Toyota",
			Model:     "Camry",
			Price:     26859,
			MileageKM: 3139,
			Certified: true,
		},
		{
			SourceURL: "https://d.example.com/b.html",
			Year:      "2020",
			Make:      "Honda",
			Price:     18995,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample()); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}

	header := rows[0]
	want := models.FieldNames()
	if len(header) != len(want) {
		t.Fatalf("header has %d columns, want %d", len(header), len(want))
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}

	first := rows[1]
	if first[cols["vin"]] != "1HGCM82633A004352" {
		t.Errorf("vin cell = %q", first[cols["vin"]])
	}
	if first[cols["price"]] != "26859" {
		t.Errorf("price cell = %q", first[cols["price"]])
	}
	if first[cols["certified"]] != "Yes" {
		t.Errorf("certified cell = %q", first[cols["certified"]])
	}

	second := rows[2]
	if second[cols["mileage_km"]] != "" {
		t.Errorf("zero mileage should be an empty cell, got %q", second[cols["mileage_km"]])
	}
	if second[cols["certified"]] != "" {
		t.Errorf("false certified should be an empty cell, got %q", second[cols["certified"]])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sample()); err != nil {
		t.Fatal(err)
	}

	var back []models.VehicleRecord
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 {
		t.Fatalf("got %d records", len(back))
	}
	if back[0].VIN != "1HGCM82633A004352" || back[1].Make != "Honda" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
	if !strings.Contains(buf.String(), `"source_url"`) {
		t.Error("expected snake_case field names in output")
	}
}

func TestWriteJSONNilDataset(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Fatalf("nil dataset serialized as %q, want []", got)
	}
}
