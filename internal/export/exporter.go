// Package export renders finalized driver day rows into the billing
// template workbook and keeps the KPI ledger.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pibejo/shift-billing/internal/billing"
	"github.com/pibejo/shift-billing/internal/common"
	"github.com/pibejo/shift-billing/internal/entity"
	"github.com/pibejo/shift-billing/internal/normalize"
)

// Result carries the output location and the batch totals.
type Result struct {
	Path       string
	TotalHours float64
	TotalCost  float64
}

// Exporter writes rows into an operating unit's fixed-layout template.
type Exporter struct {
	logger *slog.Logger
}

func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// Export populates the unit's template with one row per DriverDayRow and
// saves it at the unit's output path. The template's first data row provides
// the cell styling for every generated row, so the billing system receives
// the formatting it expects without per-cell styling logic here.
func (e *Exporter) Export(_ context.Context, rows []entity.DriverDayRow, dateISO string, isHoliday bool, rates map[string]entity.RateEntry, unit common.OperatingUnit) (*Result, error) {
	start := time.Now()

	date, err := time.Parse("2006-01-02", dateISO)
	if err != nil {
		return nil, common.NewAppError("EXPORT_ERROR", "invalid export date "+dateISO, common.ErrInvalidInput)
	}

	f, err := excelize.OpenFile(unit.TemplatePath)
	if err != nil {
		return nil, common.WrapError(err, "opening template "+unit.TemplatePath)
	}
	defer func() { _ = f.Close() }()

	if idx, _ := f.GetSheetIndex(unit.SheetName); idx == -1 {
		return nil, common.NewAppError("TEMPLATE_STRUCTURE",
			fmt.Sprintf("template %s has no sheet %q", unit.TemplatePath, unit.SheetName),
			common.ErrTemplateStructure)
	}
	sheet := unit.SheetName

	existing, err := f.GetRows(sheet)
	if err != nil {
		return nil, common.WrapError(err, "reading template sheet")
	}
	maxCol := 0
	for _, row := range existing {
		if len(row) > maxCol {
			maxCol = len(row)
		}
	}
	if maxCol < unit.Columns.CostAmount {
		maxCol = unit.Columns.CostAmount
	}

	// Capture the first data row's styling before clearing anything.
	styles := make([]int, maxCol+1)
	if len(existing) >= 2 {
		for c := 1; c <= maxCol; c++ {
			ref, _ := excelize.CoordinatesToCellName(c, 2)
			styles[c], _ = f.GetCellStyle(sheet, ref)
		}
	}

	// Clear stale data rows from a previous run.
	for r := 2; r <= len(existing); r++ {
		for c := 1; c <= maxCol; c++ {
			ref, _ := excelize.CoordinatesToCellName(c, r)
			if err := f.SetCellValue(sheet, ref, nil); err != nil {
				return nil, common.WrapError(err, "clearing template row")
			}
		}
	}

	totalHours := 0.0
	totalCost := 0.0

	for i, row := range rows {
		r := 2 + i
		if len(existing) >= 2 {
			for c := 1; c <= maxCol; c++ {
				ref, _ := excelize.CoordinatesToCellName(c, r)
				_ = f.SetCellStyle(sheet, ref, ref, styles[c])
			}
		}

		route := row.Route
		cost := billing.ComputeRowCost(row, isHoliday, rates)
		cols := unit.Columns

		set := func(col int, v any) {
			if col <= 0 {
				return
			}
			ref, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, ref, v)
		}

		set(cols.ClientCode, unit.ClientCode)
		set(cols.Provider, normalize.NameKey(row.Provider))
		set(cols.ServiceDate, date)
		set(cols.Project, unit.Project)
		set(cols.Route, route)
		set(cols.DownloadDate, date)
		set(cols.WorkedHours, row.Hours)
		set(cols.ClientPrice, unit.RoutePrices[route])
		set(cols.DriverNote, "Chofer: "+row.Driver)
		set(cols.Plate, row.Plate)
		set(cols.Trailer, unit.TrailerRef)
		set(cols.CostQty, cost.Quantity)
		set(cols.CostUnit, cost.UnitRate)
		// Amount stays blank; the template's own formula owns that column.

		totalHours += row.Hours
		totalCost += cost.Amount
	}

	if err := f.SaveAs(unit.OutputPath); err != nil {
		return nil, common.WrapError(err, "saving export workbook")
	}

	e.logger.Info("export.xlsx.ok",
		"unit", unit.ID,
		"rows", len(rows),
		"total_hours", totalHours,
		"total_cost", totalCost,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Result{Path: unit.OutputPath, TotalHours: totalHours, TotalCost: totalCost}, nil
}
