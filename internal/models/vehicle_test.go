package models

import "testing"

func TestHasIdentity(t *testing.T) {
	cases := []struct {
		name string
		rec  VehicleRecord
		want bool
	}{
		{"fullVIN", VehicleRecord{VIN: "1HGCM82633A004352"}, true},
		{"shortVIN", VehicleRecord{VIN: "1HGCM82633A"}, false},
		{"yearAndMake", VehicleRecord{Year: "2021", Make: "Toyota"}, true},
		{"yearOnly", VehicleRecord{Year: "2021"}, false},
		{"makeOnly", VehicleRecord{Make: "Toyota"}, false},
		{"empty", VehicleRecord{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rec.HasIdentity(); got != tc.want {
				t.Fatalf("HasIdentity() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHasUsefulData(t *testing.T) {
	cases := []struct {
		name string
		rec  VehicleRecord
		want bool
	}{
		{"vin", VehicleRecord{VIN: "1HGCM82633A004352"}, true},
		{"price", VehicleRecord{Price: 19888}, true},
		{"mileage", VehicleRecord{MileageKM: 3139}, true},
		{"yearMakeOnly", VehicleRecord{Year: "2021", Make: "Toyota"}, false},
		{"empty", VehicleRecord{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rec.HasUsefulData(); got != tc.want {
				t.Fatalf("HasUsefulData() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCSVRowMatchesFieldNames(t *testing.T) {
	rec := VehicleRecord{
		SourceURL: "https://dealer.example.com/used/2021-Toyota-Camry-id1234567.html",
		VIN:       "1HGCM82633A004352",
		Price:     19888,
		Certified: true,
	}

	names := FieldNames()
	row := rec.CSVRow()
	if len(names) != len(row) {
		t.Fatalf("FieldNames has %d columns, CSVRow has %d", len(names), len(row))
	}

	cols := make(map[string]string, len(names))
	for i, name := range names {
		cols[name] = row[i]
	}

	if cols["source_url"] != rec.SourceURL {
		t.Errorf("source_url column = %q", cols["source_url"])
	}
	if cols["price"] != "19888" {
		t.Errorf("price column = %q, want 19888", cols["price"])
	}
	if cols["was_price"] != "" {
		t.Errorf("zero was_price should render empty, got %q", cols["was_price"])
	}
	if cols["certified"] != "Yes" {
		t.Errorf("certified column = %q, want Yes", cols["certified"])
	}
}
