package entity

// RateType distinguishes how a carrier bills its shifts.
type RateType string

const (
	RateHourly RateType = "hourly"
	RateDaily  RateType = "daily"
)

// RateEntry is one carrier's pay rates. Hourly carriers use the Hourly*
// fields, daily carriers the Daily* fields; the other pair stays zero.
type RateEntry struct {
	Type          RateType
	HourlyNormal  float64
	HourlyHoliday float64
	DailyNormal   float64
	DailyHoliday  float64
}

// CostMode tags how a row's payable amount was derived.
type CostMode string

const (
	CostModeManual       CostMode = "manual"
	CostModeSelfOperated CostMode = "self-operated"
	CostModeNoRate       CostMode = "no-rate-on-file"
	CostModeDaily        CostMode = "daily"
	CostModeHourly       CostMode = "hourly"
)

// CostBreakdown is the cost engine's result for one row.
type CostBreakdown struct {
	Quantity float64
	UnitRate float64
	Amount   float64
	Mode     CostMode
}
