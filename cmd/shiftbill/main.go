package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pibejo/shift-billing/internal/common"
	"github.com/pibejo/shift-billing/internal/entity"
	"github.com/pibejo/shift-billing/internal/export"
	"github.com/pibejo/shift-billing/internal/extraction"
	"github.com/pibejo/shift-billing/internal/history"
	"github.com/pibejo/shift-billing/internal/ingest"
	"github.com/pibejo/shift-billing/internal/pipeline"
	"github.com/pibejo/shift-billing/internal/reconcile"
	"github.com/pibejo/shift-billing/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		pdfPath  = flag.String("pdf", "", "operations report PDF to process")
		rowsPath = flag.String("rows", "", "reviewed rows JSON to export (instead of raw ingest output)")
		unitID   = flag.String("unit", "", "operating unit id (defaults to the configured default)")
		dateStr  = flag.String("date", "", "service date YYYY-MM-DD (defaults to today)")
		holiday  = flag.Bool("holiday", false, "bill the day at holiday rates")
		doExport = flag.Bool("export", false, "run the export after ingesting")
		watchDir = flag.String("watch", "", "watch a drop folder and process arriving PDFs")

		setRate     = flag.String("set-rate", "", "store rates for a carrier and exit")
		rateType    = flag.String("rate-type", "hourly", "rate type for -set-rate: hourly or daily")
		rateNormal  = flag.Float64("rate-normal", 0, "normal-day rate for -set-rate")
		rateHoliday = flag.Float64("rate-holiday", 0, "holiday rate for -set-rate")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig()
	if err != nil {
		printError("Error: loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid config: %v\n", err)
		os.Exit(1)
	}

	unit, err := cfg.Unit(*unitID)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	if *dateStr == "" {
		*dateStr = time.Now().Format("2006-01-02")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	drivers := repository.NewDriverMasterRepository(unit.DriverMasterPath, logger)
	vehicles := repository.NewVehicleMasterRepository(unit.VehicleMasterPath, logger)
	rates := repository.NewRateRepository(cfg.Paths.RateTable, logger)

	var hist *history.Store
	if cfg.Paths.HistoryDB != "" {
		hist, err = history.Open(cfg.Paths.HistoryDB, logger)
		if err != nil {
			logger.Warn("run history unavailable", "err", err)
			hist = nil
		} else {
			defer func() { _ = hist.Close() }()
		}
	}

	proc := pipeline.NewProcessor(
		logger,
		extraction.NewParser(logger),
		reconcile.NewReconciler(drivers, vehicles, logger),
		rates,
		export.NewExporter(logger),
		export.NewKPILogger(cfg.Paths.KPILedger, logger),
		hist,
	)

	switch {
	case *setRate != "":
		if err := storeRate(ctx, rates, *setRate, *rateType, *rateNormal, *rateHoliday); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
	case *watchDir != "":
		if err := watchAndProcess(ctx, proc, unit, *watchDir, cfg, logger); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
	case *rowsPath != "":
		if err := exportReviewedRows(ctx, proc, unit, *rowsPath, *dateStr, *holiday); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
	case *pdfPath != "":
		if err := processReport(ctx, proc, unit, *pdfPath, *dateStr, *holiday, *doExport); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
	default:
		printError("Error: one of -pdf, -rows, -watch or -set-rate is required\n")
		flag.Usage()
		os.Exit(1)
	}
}

// storeRate updates one carrier in the rate table.
func storeRate(ctx context.Context, rates repository.RateRepository, name, rateType string, normal, holiday float64) error {
	entry := entity.RateEntry{Type: entity.RateType(rateType)}
	if entry.Type == entity.RateDaily {
		entry.DailyNormal = normal
		entry.DailyHoliday = holiday
	} else {
		entry.HourlyNormal = normal
		entry.HourlyHoliday = holiday
	}
	if err := rates.Upsert(ctx, name, entry); err != nil {
		return err
	}
	fmt.Printf("stored %s rates for %s\n", rateType, name)
	return nil
}

// processReport ingests one PDF; with -export it also runs the full export.
// Without -export the enriched rows print as JSON for review and editing.
func processReport(ctx context.Context, proc *pipeline.Processor, unit common.OperatingUnit, pdfPath, dateISO string, holiday, doExport bool) error {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", pdfPath, err)
	}

	rows, err := proc.Ingest(ctx, data, unit)
	if err != nil {
		return err
	}

	if !doExport {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	res, err := proc.Export(ctx, rows, dateISO, holiday, unit)
	if err != nil {
		return err
	}
	fmt.Printf("exported %d rows to %s (hours=%.2f cost=%.2f)\n", len(rows), res.Path, res.TotalHours, res.TotalCost)
	return nil
}

// exportReviewedRows exports rows the operator edited after an earlier
// ingest run, read back from JSON.
func exportReviewedRows(ctx context.Context, proc *pipeline.Processor, unit common.OperatingUnit, rowsPath, dateISO string, holiday bool) error {
	data, err := os.ReadFile(rowsPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", rowsPath, err)
	}
	var rows []entity.DriverDayRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("parsing rows JSON: %w", err)
	}

	res, err := proc.Export(ctx, rows, dateISO, holiday, unit)
	if err != nil {
		return err
	}
	fmt.Printf("exported %d rows to %s (hours=%.2f cost=%.2f)\n", len(rows), res.Path, res.TotalHours, res.TotalCost)
	return nil
}

// watchAndProcess ingests and exports every PDF dropped into dir, billing
// each at its arrival date with normal rates.
func watchAndProcess(ctx context.Context, proc *pipeline.Processor, unit common.OperatingUnit, dir string, cfg *common.Config, logger *slog.Logger) error {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Root:        dir,
		InitialScan: false,
		Debounce:    cfg.Watch.Debounce,
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("watching for report PDFs", "dir", dir, "unit", unit.ID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if ok && err != nil {
				logger.Error("watch error", "err", err)
			}
		case path, ok := <-events:
			if !ok {
				return nil
			}
			if err := processReport(ctx, proc, unit, path, time.Now().Format("2006-01-02"), false, true); err != nil {
				logger.Error("processing dropped report failed", "path", path, "err", err)
			}
		}
	}
}
