package pipeline

import (
	"testing"

	"dealerscraper/internal/models"
)

func rec(url, vin string, price int) *models.VehicleRecord {
	return &models.VehicleRecord{
		SourceURL: url,
		VIN:       vin,
		Year:      "2021",
		Make:      "Toyota",
		Price:     price,
	}
}

func urls(recs []*models.VehicleRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.SourceURL
	}
	return out
}

func TestFinalizeDropsRecordsWithoutIdentity(t *testing.T) {
	in := []*models.VehicleRecord{
		rec("https://d.example.com/a.html", "", 10000),
		{SourceURL: "https://d.example.com/junk.html", Price: 10000}, // no year/make, no VIN
	}
	out := Finalize(in)
	if len(out) != 1 || out[0].SourceURL != "https://d.example.com/a.html" {
		t.Fatalf("got %v", urls(out))
	}
}

func TestFinalizeVINDedupFirstWins(t *testing.T) {
	in := []*models.VehicleRecord{
		rec("https://d.example.com/a.html", "1hgcm82633a004352", 10000),
		rec("https://d.example.com/b.html", "1HGCM82633A004352", 20000), // same VIN, different case
		rec("https://d.example.com/c.html", "", 15000),
		rec("https://d.example.com/d.html", "", 16000), // empty VINs never collide
	}
	out := Finalize(in)
	got := urls(out)
	want := []string{
		"https://d.example.com/a.html",
		"https://d.example.com/c.html",
		"https://d.example.com/d.html",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if out[0].Price != 10000 {
		t.Errorf("dedup kept the later record: price %d", out[0].Price)
	}
	if out[0].VIN != "1hgcm82633a004352" {
		t.Errorf("dedup mutated the surviving record's VIN: %q", out[0].VIN)
	}
}

func TestFinalizeURLDedupFirstWins(t *testing.T) {
	in := []*models.VehicleRecord{
		rec("https://d.example.com/a.html", "", 10000),
		rec("https://d.example.com/a.html", "", 20000),
	}
	out := Finalize(in)
	if len(out) != 1 {
		t.Fatalf("got %d records, want 1", len(out))
	}
	if out[0].Price != 10000 {
		t.Errorf("dedup kept the later record: price %d", out[0].Price)
	}
}

func TestFinalizeDropsRecordsWithoutUsefulData(t *testing.T) {
	bare := &models.VehicleRecord{
		SourceURL: "https://d.example.com/bare.html",
		Year:      "2021",
		Make:      "Toyota",
	}
	in := []*models.VehicleRecord{
		bare,
		rec("https://d.example.com/priced.html", "", 10000),
		{SourceURL: "https://d.example.com/mileage.html", Year: "2020", Make: "Honda", MileageKM: 50000},
	}
	out := Finalize(in)
	if len(out) != 2 {
		t.Fatalf("got %v", urls(out))
	}
	for _, r := range out {
		if r.SourceURL == bare.SourceURL {
			t.Fatal("record with identity but no VIN/price/mileage survived")
		}
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	in := []*models.VehicleRecord{
		rec("https://d.example.com/a.html", "1HGCM82633A004352", 10000),
		rec("https://d.example.com/b.html", "", 15000),
	}
	once := Finalize(in)
	twice := Finalize(once)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed the dataset: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatal("second pass reordered the dataset")
		}
	}
}

func TestFinalizeEmptyInput(t *testing.T) {
	if out := Finalize(nil); len(out) != 0 {
		t.Fatalf("got %d records from nil input", len(out))
	}
}
