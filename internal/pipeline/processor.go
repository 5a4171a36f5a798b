// Package pipeline coordinates the billing flow: report PDF in, reviewed
// rows out, then costing, export and master write-back.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/pibejo/shift-billing/internal/aggregate"
	"github.com/pibejo/shift-billing/internal/common"
	"github.com/pibejo/shift-billing/internal/entity"
	"github.com/pibejo/shift-billing/internal/export"
	"github.com/pibejo/shift-billing/internal/extraction"
	"github.com/pibejo/shift-billing/internal/history"
	"github.com/pibejo/shift-billing/internal/reconcile"
	"github.com/pibejo/shift-billing/internal/repository"
)

// Processor runs the two halves of the billing pipeline. Ingest produces
// rows for human review; Export takes the reviewed rows to the billing
// workbook and persists what was learned.
type Processor struct {
	Logger     *slog.Logger
	Parser     *extraction.Parser
	Reconciler *reconcile.Reconciler
	Rates      repository.RateRepository
	Exporter   *export.Exporter
	KPI        *export.KPILogger
	History    *history.Store
}

func NewProcessor(logger *slog.Logger, parser *extraction.Parser, rc *reconcile.Reconciler, rates repository.RateRepository, exporter *export.Exporter, kpi *export.KPILogger, hist *history.Store) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:     logger,
		Parser:     parser,
		Reconciler: rc,
		Rates:      rates,
		Exporter:   exporter,
		KPI:        kpi,
		History:    hist,
	}
}

// Ingest parses a report PDF into one row per driver, enriched from the
// master tables and ready for review or export.
func (p *Processor) Ingest(ctx context.Context, pdfData []byte, unit common.OperatingUnit) ([]entity.DriverDayRow, error) {
	records, err := p.Parser.ParseReport(pdfData)
	if err != nil {
		p.Logger.Error("pipeline.ingest.failed", "unit", unit.ID, "err", err)
		return nil, err
	}

	rows := aggregate.GroupByDriver(records)
	if err := p.Reconciler.Enrich(ctx, rows, unit.DefaultRoute); err != nil {
		p.Logger.Error("pipeline.enrich.failed", "unit", unit.ID, "err", err)
		return nil, err
	}

	p.Logger.Info("pipeline.ingest.ok", "unit", unit.ID, "records", len(records), "rows", len(rows))
	return rows, nil
}

// Export costs and writes the rows into the unit's billing workbook, then
// persists the master associations, appends the KPI line and records the
// run. There is no rollback: a failure partway leaves earlier writes in
// place, matching the single-writer back-office model.
func (p *Processor) Export(ctx context.Context, rows []entity.DriverDayRow, dateISO string, isHoliday bool, unit common.OperatingUnit) (*export.Result, error) {
	rates, err := p.Rates.All(ctx)
	if err != nil {
		return nil, err
	}

	res, err := p.Exporter.Export(ctx, rows, dateISO, isHoliday, rates, unit)
	if err != nil {
		p.Logger.Error("pipeline.export.failed", "unit", unit.ID, "err", err)
		return nil, err
	}

	if err := p.Reconciler.PersistDriverMaster(ctx, rows); err != nil {
		return nil, err
	}
	if err := p.Reconciler.PersistVehicleProvider(ctx, rows); err != nil {
		return nil, err
	}

	if err := p.KPI.Append(dateISO, unit.ID, rows, unit.RoutePrices, isHoliday, res.TotalHours, res.TotalCost); err != nil {
		return nil, err
	}

	if p.History != nil {
		manualCount := 0
		for _, r := range rows {
			if r.OverrideCost {
				manualCount++
			}
		}
		run := history.Run{
			Date:        dateISO,
			Unit:        unit.ID,
			Holiday:     isHoliday,
			DriverCount: len(rows),
			TotalHours:  res.TotalHours,
			TotalCost:   res.TotalCost,
			ManualCount: manualCount,
		}
		if err := p.History.RecordRun(ctx, run, rows); err != nil {
			// History is advisory; the export already succeeded.
			p.Logger.Warn("pipeline.history.failed", "unit", unit.ID, "err", err)
		}
	}

	p.Logger.Info("pipeline.export.ok",
		"unit", unit.ID,
		"date", dateISO,
		"rows", len(rows),
		"total_hours", res.TotalHours,
		"total_cost", res.TotalCost,
	)
	return res, nil
}
