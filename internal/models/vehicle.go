package models

import "strconv"

// Condition values for a listing.
const (
	ConditionNew       = "New"
	ConditionUsed      = "Used"
	ConditionCertified = "Certified Pre-Owned"
)

// Transmission values.
const (
	TransmissionAutomatic = "Automatic"
	TransmissionManual    = "Manual"
	TransmissionCVT       = "CVT"
)

// Drivetrain values.
const (
	DrivetrainAWD = "AWD"
	DrivetrainFWD = "FWD"
	DrivetrainRWD = "RWD"
	Drivetrain4WD = "4WD"
)

// VehicleRecord represents one scraped vehicle listing. Fields are populated
// by the extraction rules (first successful rule wins, empty means no rule
// matched) and the vin_* fields come from the decode service, kept separate
// from the scraped equivalents for cross-validation.
type VehicleRecord struct {
	SourceURL   string `json:"source_url"`
	SourceSite  string `json:"source_site,omitempty"`
	VIN         string `json:"vin,omitempty"`
	StockNumber string `json:"stock_number,omitempty"`
	Year        string `json:"year,omitempty"`
	Make        string `json:"make,omitempty"`
	Model       string `json:"model,omitempty"`
	Trim        string `json:"trim,omitempty"`
	Condition   string `json:"condition,omitempty"`

	Price     int `json:"price,omitempty"`
	WasPrice  int `json:"was_price,omitempty"`
	MileageKM int `json:"mileage_km,omitempty"`

	Transmission string `json:"transmission,omitempty"`
	Drivetrain   string `json:"drivetrain,omitempty"`
	BodyStyle    string `json:"body_style,omitempty"`
	ExtColor     string `json:"ext_color,omitempty"`
	IntColor     string `json:"int_color,omitempty"`
	Engine       string `json:"engine,omitempty"`
	Cylinders    string `json:"cylinders,omitempty"`
	FuelType     string `json:"fuel_type,omitempty"`
	Doors        int    `json:"doors,omitempty"`
	Passengers   int    `json:"passengers,omitempty"`
	Certified    bool   `json:"certified"`
	ImageURL     string `json:"image_url,omitempty"`
	CarfaxURL    string `json:"carfax_url,omitempty"`

	// Decoded from the VIN, never overwrites the scraped fields above.
	VINMake      string `json:"vin_make,omitempty"`
	VINModel     string `json:"vin_model,omitempty"`
	VINYear      string `json:"vin_year,omitempty"`
	VINTrim      string `json:"vin_trim,omitempty"`
	VINBodyStyle string `json:"vin_body_style,omitempty"`
}

// HasIdentity reports whether the record is identifiable: a full 17-character
// VIN, or both year and make.
func (v *VehicleRecord) HasIdentity() bool {
	return len(v.VIN) == 17 || (v.Year != "" && v.Make != "")
}

// HasUsefulData reports whether the record carries at least one of VIN, price
// or mileage.
func (v *VehicleRecord) HasUsefulData() bool {
	return v.VIN != "" || v.Price > 0 || v.MileageKM > 0
}

// FieldNames returns the stable export column order. It must stay in sync
// with CSVRow.
func FieldNames() []string {
	return []string{
		"source_url", "source_site", "vin", "stock_number",
		"year", "make", "model", "trim", "condition",
		"price", "was_price", "mileage_km",
		"transmission", "drivetrain", "body_style", "ext_color", "int_color",
		"engine", "cylinders", "fuel_type", "doors", "passengers",
		"certified", "image_url", "carfax_url",
		"vin_make", "vin_model", "vin_year", "vin_trim", "vin_body_style",
	}
}

// CSVRow renders the record in FieldNames order. Zero-valued numeric fields
// render as empty cells rather than 0.
func (v *VehicleRecord) CSVRow() []string {
	certified := ""
	if v.Certified {
		certified = "Yes"
	}
	return []string{
		v.SourceURL, v.SourceSite, v.VIN, v.StockNumber,
		v.Year, v.Make, v.Model, v.Trim, v.Condition,
		itoaOrEmpty(v.Price), itoaOrEmpty(v.WasPrice), itoaOrEmpty(v.MileageKM),
		v.Transmission, v.Drivetrain, v.BodyStyle, v.ExtColor, v.IntColor,
		v.Engine, v.Cylinders, v.FuelType, itoaOrEmpty(v.Doors), itoaOrEmpty(v.Passengers),
		certified, v.ImageURL, v.CarfaxURL,
		v.VINMake, v.VINModel, v.VINYear, v.VINTrim, v.VINBodyStyle,
	}
}

func itoaOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
