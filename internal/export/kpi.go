package export

import (
	"encoding/csv"
	"log/slog"
	"math"
	"os"
	"strconv"

	"github.com/pibejo/shift-billing/internal/common"
	"github.com/pibejo/shift-billing/internal/entity"
)

var kpiHeader = []string{"date", "operating_unit", "holiday", "driver_count", "total_hours", "total_billed", "total_cost", "manual_cost_count"}

// KPILogger appends one summary line per export run to an append-only
// semicolon-delimited ledger.
type KPILogger struct {
	path   string
	logger *slog.Logger
}

func NewKPILogger(path string, logger *slog.Logger) *KPILogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &KPILogger{path: path, logger: logger}
}

// Append records one export run. Total billed is recomputed here as
// Σ(hours × route price): what the client is charged is a different number
// from what the carriers are paid, and the ledger keeps both.
func (k *KPILogger) Append(dateISO, unitID string, rows []entity.DriverDayRow, routePrices map[string]float64, isHoliday bool, totalHours, totalCost float64) error {
	totalBilled := 0.0
	manualCount := 0
	for _, r := range rows {
		totalBilled += r.Hours * routePrices[r.Route]
		if r.OverrideCost {
			manualCount++
		}
	}

	_, statErr := os.Stat(k.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(k.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return common.WrapError(err, "opening KPI ledger")
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	w.Comma = ';'
	if writeHeader {
		if err := w.Write(kpiHeader); err != nil {
			return err
		}
	}

	holiday := "0"
	if isHoliday {
		holiday = "1"
	}
	rec := []string{
		dateISO,
		unitID,
		holiday,
		strconv.Itoa(len(rows)),
		formatMoney(totalHours),
		formatMoney(totalBilled),
		formatMoney(totalCost),
		strconv.Itoa(manualCount),
	}
	if err := w.Write(rec); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return common.WrapError(err, "writing KPI ledger")
	}

	k.logger.Info("kpi.appended",
		"date", dateISO,
		"unit", unitID,
		"drivers", len(rows),
		"total_billed", round2(totalBilled),
		"total_cost", round2(totalCost),
		"manual", manualCount,
	)
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', -1, 64)
}
