// Package billing computes the payable cost of each driver day row against
// the carrier rate table.
package billing

import (
	"github.com/pibejo/shift-billing/internal/entity"
	"github.com/pibejo/shift-billing/internal/normalize"
)

// selfOperatedKey marks the operator's own fleet. In-house work never bills
// as a subcontractor cost.
const selfOperatedKey = "PIBEJO"

// IsSelfOperated reports whether a provider label names the in-house fleet.
func IsSelfOperated(provider string) bool {
	return normalize.NameKey(provider) == selfOperatedKey
}

// ComputeRowCost resolves one row's payable amount, in strict precedence:
// manual override, self-operated, no rate on file, daily rate, hourly rate.
// A missing rate is a visible zero-cost result, not an error, so one carrier
// with incomplete billing data never sinks the batch.
func ComputeRowCost(row entity.DriverDayRow, isHoliday bool, rates map[string]entity.RateEntry) entity.CostBreakdown {
	if row.OverrideCost && row.ManualCost != nil {
		return entity.CostBreakdown{Amount: *row.ManualCost, Mode: entity.CostModeManual}
	}

	provider := normalize.NameKey(row.Provider)
	if provider == selfOperatedKey {
		return entity.CostBreakdown{Mode: entity.CostModeSelfOperated}
	}

	rate, ok := rates[provider]
	if !ok {
		return entity.CostBreakdown{Mode: entity.CostModeNoRate}
	}

	if rate.Type == entity.RateDaily {
		unit := rate.DailyNormal
		if isHoliday {
			unit = rate.DailyHoliday
		}
		// One calendar day bills as exactly one unit, whatever the hours.
		return entity.CostBreakdown{Quantity: 1, UnitRate: unit, Amount: unit, Mode: entity.CostModeDaily}
	}

	unit := rate.HourlyNormal
	if isHoliday {
		unit = rate.HourlyHoliday
	}
	return entity.CostBreakdown{
		Quantity: row.Hours,
		UnitRate: unit,
		Amount:   row.Hours * unit,
		Mode:     entity.CostModeHourly,
	}
}
