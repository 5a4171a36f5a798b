package repository

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pibejo/shift-billing/internal/common"
	"github.com/pibejo/shift-billing/internal/entity"
	"github.com/pibejo/shift-billing/internal/normalize"
)

const masterSheet = "Sheet1"

// DriverMasterRepository is the driver -> plate/route lookup table. The
// backing store is a workbook the back office also edits by hand, read and
// rewritten whole; there is no locking (single-writer assumption).
type DriverMasterRepository interface {
	// All returns every entry keyed by normalized driver name.
	All(ctx context.Context) (map[string]entity.DriverMasterEntry, error)
	// Get looks up one entry by normalized driver name.
	Get(ctx context.Context, key string) (entity.DriverMasterEntry, bool, error)
	// Upsert merges partial entries by driver key: a non-empty plate or
	// route overwrites the stored field, empty fields are left alone.
	// Entries with an empty driver name are skipped silently.
	Upsert(ctx context.Context, entries []entity.DriverMasterEntry) error
}

type driverMasterRepository struct {
	path   string
	logger *slog.Logger
}

func NewDriverMasterRepository(path string, logger *slog.Logger) DriverMasterRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &driverMasterRepository{path: path, logger: logger}
}

func (r *driverMasterRepository) All(_ context.Context) (map[string]entity.DriverMasterEntry, error) {
	rows, err := readSheet(r.path)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return map[string]entity.DriverMasterEntry{}, nil
	}

	cols := headerIndex(rows[0])
	driverCol, ok := cols["driver"]
	if !ok {
		return map[string]entity.DriverMasterEntry{}, nil
	}
	plateCol, havePlate := cols["plate"]
	routeCol, haveRoute := cols["route"]

	out := map[string]entity.DriverMasterEntry{}
	for _, row := range rows[1:] {
		name := strings.TrimSpace(cell(row, driverCol))
		if name == "" {
			continue
		}
		e := entity.DriverMasterEntry{Driver: name}
		if havePlate {
			e.Plate = strings.TrimSpace(cell(row, plateCol))
		}
		if haveRoute {
			e.Route = strings.TrimSpace(cell(row, routeCol))
		}
		out[normalize.NameKey(name)] = e
	}
	return out, nil
}

func (r *driverMasterRepository) Get(ctx context.Context, key string) (entity.DriverMasterEntry, bool, error) {
	all, err := r.All(ctx)
	if err != nil {
		return entity.DriverMasterEntry{}, false, err
	}
	e, ok := all[key]
	return e, ok, nil
}

func (r *driverMasterRepository) Upsert(ctx context.Context, entries []entity.DriverMasterEntry) error {
	existing, err := r.All(ctx)
	if err != nil {
		return err
	}

	// Stable output order: existing entries by key, then new ones appended.
	var keys []string
	for k := range existing {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, e := range entries {
		name := strings.TrimSpace(e.Driver)
		if name == "" {
			continue
		}
		k := normalize.NameKey(name)
		cur, ok := existing[k]
		if !ok {
			cur = entity.DriverMasterEntry{Driver: name}
			keys = append(keys, k)
		}
		if p := strings.TrimSpace(e.Plate); p != "" {
			cur.Plate = p
		}
		if rt := strings.TrimSpace(e.Route); rt != "" {
			cur.Route = rt
		}
		existing[k] = cur
	}

	records := make([][]any, 0, len(keys)+1)
	records = append(records, []any{"Driver", "Plate", "Route"})
	for _, k := range keys {
		e := existing[k]
		records = append(records, []any{e.Driver, e.Plate, e.Route})
	}

	if err := writeSheet(r.path, records); err != nil {
		return common.WrapError(err, "writing driver master")
	}
	r.logger.Info("master.driver.saved", "path", r.path, "entries", len(keys))
	return nil
}

// readSheet opens a master workbook and returns its rows, or nil rows when
// the file does not exist or has no data sheet.
func readSheet(path string) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, common.WrapError(err, "opening workbook "+path)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, common.WrapError(err, "reading workbook "+path)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows, nil
}

// writeSheet rewrites a master workbook from scratch.
func writeSheet(path string, records [][]any) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, rec := range records {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(masterSheet, cellRef, &rec); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func headerIndex(header []string) map[string]int {
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
