package entity

// ShiftRecord is one parsed line of the daily operations report. Records are
// short-lived: they exist between the line parser and the per-driver grouping.
type ShiftRecord struct {
	Driver   string
	Carrier  string
	Provider string
	Hours    float64
}

// DriverDayRow is the unit of review, costing and export: one driver, one
// upload. The json tags keep the field names the web layer has always
// exchanged, which come from the upstream report's vocabulary.
type DriverDayRow struct {
	DriverKey       string   `json:"ConductorKey"`
	Driver          string   `json:"Conductor"`
	Carrier         string   `json:"Transportista"`
	Provider        string   `json:"Proveedor"`
	Hours           float64  `json:"HorasReales"`
	Records         int      `json:"Registros"`
	Plate           string   `json:"Matricula"`
	Route           string   `json:"Ruta"`
	OverrideCost    bool     `json:"OverrideCoste"`
	ManualCost      *float64 `json:"CosteManual"`
	PlateFromMaster bool     `json:"MatriculaFromMaster"`
}

// DriverMasterEntry is one row of the driver master table: the last-known
// plate and route for a driver key.
type DriverMasterEntry struct {
	Driver string
	Plate  string
	Route  string
}
