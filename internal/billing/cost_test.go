package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pibejo/shift-billing/internal/entity"
)

var testRates = map[string]entity.RateEntry{
	"ARANDA":       {Type: entity.RateHourly, HourlyNormal: 25.0, HourlyHoliday: 30.0},
	"RUBEN CUESTA": {Type: entity.RateDaily, DailyNormal: 260.0, DailyHoliday: 275.0},
	"PIBEJO":       {Type: entity.RateHourly},
}

func TestComputeRowCostHourly(t *testing.T) {
	row := entity.DriverDayRow{Driver: "ANA LOPEZ", Provider: "ARANDA", Hours: 6}

	got := ComputeRowCost(row, false, testRates)
	assert.Equal(t, entity.CostModeHourly, got.Mode)
	assert.InDelta(t, 6, got.Quantity, 1e-9)
	assert.InDelta(t, 25.0, got.UnitRate, 1e-9)
	assert.InDelta(t, 150.0, got.Amount, 1e-9)

	holiday := ComputeRowCost(row, true, testRates)
	assert.InDelta(t, 30.0, holiday.UnitRate, 1e-9)
	assert.InDelta(t, 180.0, holiday.Amount, 1e-9)
}

func TestComputeRowCostDaily(t *testing.T) {
	// Daily carriers bill exactly one unit whatever the hours.
	row := entity.DriverDayRow{Driver: "RUBEN", Provider: "RUBEN CUESTA", Hours: 11.5}

	got := ComputeRowCost(row, false, testRates)
	assert.Equal(t, entity.CostModeDaily, got.Mode)
	assert.InDelta(t, 1, got.Quantity, 1e-9)
	assert.InDelta(t, 260.0, got.Amount, 1e-9)

	holiday := ComputeRowCost(row, true, testRates)
	assert.InDelta(t, 275.0, holiday.UnitRate, 1e-9)
	assert.InDelta(t, 275.0, holiday.Amount, 1e-9)
}

func TestComputeRowCostSelfOperated(t *testing.T) {
	row := entity.DriverDayRow{Driver: "JOSE", Provider: "Pibejo", Hours: 8}

	got := ComputeRowCost(row, false, testRates)
	assert.Equal(t, entity.CostModeSelfOperated, got.Mode)
	assert.Zero(t, got.Quantity)
	assert.Zero(t, got.UnitRate)
	assert.Zero(t, got.Amount)
}

func TestComputeRowCostNoRate(t *testing.T) {
	row := entity.DriverDayRow{Driver: "LUIS", Provider: "TRANSPORTES DESCONOCIDOS", Hours: 8}

	got := ComputeRowCost(row, false, testRates)
	assert.Equal(t, entity.CostModeNoRate, got.Mode)
	assert.Zero(t, got.Amount)
}

func TestComputeRowCostManualOverride(t *testing.T) {
	manual := 123.45
	row := entity.DriverDayRow{
		Driver:       "ANA LOPEZ",
		Provider:     "ARANDA",
		Hours:        6,
		OverrideCost: true,
		ManualCost:   &manual,
	}

	// The override outranks every other mode, self-operated included.
	got := ComputeRowCost(row, true, testRates)
	assert.Equal(t, entity.CostModeManual, got.Mode)
	assert.InDelta(t, 123.45, got.Amount, 1e-9)

	row.Provider = "PIBEJO"
	got = ComputeRowCost(row, false, testRates)
	assert.Equal(t, entity.CostModeManual, got.Mode)
	assert.InDelta(t, 123.45, got.Amount, 1e-9)
}

func TestComputeRowCostOverrideFlagWithoutValue(t *testing.T) {
	row := entity.DriverDayRow{Driver: "ANA", Provider: "ARANDA", Hours: 2, OverrideCost: true}
	got := ComputeRowCost(row, false, testRates)
	assert.Equal(t, entity.CostModeHourly, got.Mode)
	assert.InDelta(t, 50.0, got.Amount, 1e-9)
}

func TestIsSelfOperated(t *testing.T) {
	assert.True(t, IsSelfOperated("PIBEJO"))
	assert.True(t, IsSelfOperated("  pibejo "))
	assert.False(t, IsSelfOperated("PIBEJO LOGISTICA"))
	assert.False(t, IsSelfOperated("ARANDA"))
	assert.False(t, IsSelfOperated(""))
}
