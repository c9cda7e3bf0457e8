// Package export serializes a finalized dataset to CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"dealerscraper/internal/models"
)

// WriteCSV writes the dataset with a header row in the stable column order.
func WriteCSV(w io.Writer, recs []*models.VehicleRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.FieldNames()); err != nil {
		return err
	}
	for _, rec := range recs {
		if err := cw.Write(rec.CSVRow()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the dataset as an indented JSON array. A nil slice still
// serializes as [] so consumers never see null.
func WriteJSON(w io.Writer, recs []*models.VehicleRecord) error {
	if recs == nil {
		recs = []*models.VehicleRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}
