// Package history keeps a rolling record of export runs in a local sqlite
// database so the back office can review what was billed and when.
package history

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pibejo/shift-billing/internal/common"
	"github.com/pibejo/shift-billing/internal/entity"
)

// retentionDays bounds how long runs are kept; the portal only ever shows
// the last month.
const retentionDays = 31

const schema = `
CREATE TABLE IF NOT EXISTS export_runs(
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	run_date TEXT NOT NULL,
	operating_unit TEXT NOT NULL,
	holiday INTEGER NOT NULL DEFAULT 0,
	driver_count INTEGER NOT NULL DEFAULT 0,
	total_hours REAL NOT NULL DEFAULT 0,
	total_cost REAL NOT NULL DEFAULT 0,
	manual_cost_count INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS export_run_rows(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	driver TEXT NOT NULL DEFAULT '',
	provider TEXT NOT NULL DEFAULT '',
	route TEXT NOT NULL DEFAULT '',
	plate TEXT NOT NULL DEFAULT '',
	hours REAL NOT NULL DEFAULT 0,
	FOREIGN KEY(run_id) REFERENCES export_runs(id) ON DELETE CASCADE
);
`

// Run is one recorded export.
type Run struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	Date        string
	Unit        string
	Holiday     bool
	DriverCount int
	TotalHours  float64
	TotalCost   float64
	ManualCount int
}

// Store is the sqlite-backed run history.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "opening history db")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "initializing history schema")
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores one export run with its rows and sweeps expired history.
func (s *Store) RecordRun(ctx context.Context, run Run, rows []entity.DriverDayRow) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "beginning history tx")
	}
	defer func() { _ = tx.Rollback() }()

	holiday := 0
	if run.Holiday {
		holiday = 1
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO export_runs(id, created_at, run_date, operating_unit, holiday, driver_count, total_hours, total_cost, manual_cost_count)
		 VALUES(?,?,?,?,?,?,?,?,?)`,
		run.ID.String(), run.CreatedAt.Format(time.RFC3339), run.Date, run.Unit,
		holiday, run.DriverCount, run.TotalHours, run.TotalCost, run.ManualCount)
	if err != nil {
		return common.WrapError(err, "inserting run")
	}

	for _, r := range rows {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO export_run_rows(run_id, driver, provider, route, plate, hours) VALUES(?,?,?,?,?,?)`,
			run.ID.String(), r.Driver, r.Provider, r.Route, r.Plate, r.Hours)
		if err != nil {
			return common.WrapError(err, "inserting run row")
		}
	}

	if err := tx.Commit(); err != nil {
		return common.WrapError(err, "committing history tx")
	}

	s.logger.Info("history.run.recorded", "run_id", run.ID.String(), "unit", run.Unit, "rows", len(rows))
	return s.Sweep(ctx)
}

// ListRuns returns up to limit runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, run_date, operating_unit, holiday, driver_count, total_hours, total_cost, manual_cost_count
		 FROM export_runs ORDER BY run_date DESC, created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, common.WrapError(err, "listing runs")
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var r Run
		var id, created string
		var holiday int
		if err := rows.Scan(&id, &created, &r.Date, &r.Unit, &holiday, &r.DriverCount, &r.TotalHours, &r.TotalCost, &r.ManualCount); err != nil {
			return nil, err
		}
		r.ID, _ = uuid.Parse(id)
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		r.Holiday = holiday != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// Sweep deletes runs older than the retention window.
func (s *Store) Sweep(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays).Format("2006-01-02")
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM export_run_rows WHERE run_id IN (SELECT id FROM export_runs WHERE run_date < ?)`, cutoff)
	if err != nil {
		return common.WrapError(err, "sweeping run rows")
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM export_runs WHERE run_date < ?`, cutoff); err != nil {
		return common.WrapError(err, "sweeping runs")
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.logger.Debug("history.sweep", "rows_deleted", n, "cutoff", cutoff)
	}
	return nil
}
