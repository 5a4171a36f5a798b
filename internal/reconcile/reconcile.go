// Package reconcile merges parsed driver rows with the persistent master
// tables: the driver master fills gaps, the vehicle master settles the
// provider, and both get written back after an export.
package reconcile

import (
	"context"
	"log/slog"

	"github.com/pibejo/shift-billing/internal/entity"
	"github.com/pibejo/shift-billing/internal/normalize"
	"github.com/pibejo/shift-billing/internal/repository"
)

// ApplyDriverMaster fills each row's plate and route from the driver master.
// Master data only fills gaps: a value the row already carries is never
// overwritten. Rows still without a route get defaultRoute.
func ApplyDriverMaster(rows []entity.DriverDayRow, master map[string]entity.DriverMasterEntry, defaultRoute string) {
	for i := range rows {
		r := &rows[i]
		key := r.DriverKey
		if key == "" {
			key = normalize.NameKey(r.Driver)
		}
		r.PlateFromMaster = false
		if e, ok := master[key]; ok {
			if r.Plate == "" && e.Plate != "" {
				r.Plate = e.Plate
				r.PlateFromMaster = true
			}
			if r.Route == "" && e.Route != "" {
				r.Route = e.Route
			}
		}
		if r.Route == "" {
			r.Route = defaultRoute
		}
	}
}

// ApplyVehicleProvider overwrites each row's provider with the carrier the
// vehicle master maps its plate to. Unlike the driver master this replaces
// an already-resolved provider: plate ownership beats the PDF-derived guess.
func ApplyVehicleProvider(rows []entity.DriverDayRow, vehicles map[string]string) {
	for i := range rows {
		plate := normalize.PlateKey(rows[i].Plate)
		if plate == "" {
			continue
		}
		if provider, ok := vehicles[plate]; ok {
			rows[i].Provider = provider
		}
	}
}

// Reconciler wires the merge steps to the master repositories.
type Reconciler struct {
	drivers  repository.DriverMasterRepository
	vehicles repository.VehicleMasterRepository
	logger   *slog.Logger
}

func NewReconciler(drivers repository.DriverMasterRepository, vehicles repository.VehicleMasterRepository, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{drivers: drivers, vehicles: vehicles, logger: logger}
}

// Enrich applies both master tables to freshly grouped rows.
func (rc *Reconciler) Enrich(ctx context.Context, rows []entity.DriverDayRow, defaultRoute string) error {
	master, err := rc.drivers.All(ctx)
	if err != nil {
		return err
	}
	ApplyDriverMaster(rows, master, defaultRoute)

	vehicles, err := rc.vehicles.All(ctx)
	if err != nil {
		return err
	}
	ApplyVehicleProvider(rows, vehicles)

	rc.logger.Info("reconcile.enrich.ok", "rows", len(rows), "drivers_on_file", len(master), "vehicles_on_file", len(vehicles))
	return nil
}

// PersistDriverMaster writes the rows' plate/route associations back to the
// driver master. Unlike the fill during enrichment, a non-empty incoming
// value overwrites whatever the master held. Rows without a driver name are
// skipped silently.
func (rc *Reconciler) PersistDriverMaster(ctx context.Context, rows []entity.DriverDayRow) error {
	entries := make([]entity.DriverMasterEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, entity.DriverMasterEntry{
			Driver: r.Driver,
			Plate:  r.Plate,
			Route:  r.Route,
		})
	}
	return rc.drivers.Upsert(ctx, entries)
}

// PersistVehicleProvider writes plate -> provider pairs back to the vehicle
// master, skipping rows where either side is empty.
func (rc *Reconciler) PersistVehicleProvider(ctx context.Context, rows []entity.DriverDayRow) error {
	pairs := map[string]string{}
	for _, r := range rows {
		if r.Plate == "" || r.Provider == "" {
			continue
		}
		pairs[r.Plate] = r.Provider
	}
	return rc.vehicles.Upsert(ctx, pairs)
}
