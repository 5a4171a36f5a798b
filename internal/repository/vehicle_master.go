package repository

import (
	"context"
	"log/slog"
	"sort"

	"github.com/pibejo/shift-billing/internal/common"
	"github.com/pibejo/shift-billing/internal/normalize"
)

// VehicleMasterRepository is the plate -> carrier lookup table. A plate-based
// provider assignment outranks the carrier guessed out of the PDF, so this
// table is the authority on who runs each vehicle.
type VehicleMasterRepository interface {
	// All returns the full mapping keyed by normalized plate.
	All(ctx context.Context) (map[string]string, error)
	// Get looks up the carrier for one normalized plate.
	Get(ctx context.Context, plateKey string) (string, bool, error)
	// Upsert stores plate -> provider pairs. Pairs with an empty plate or
	// provider are skipped silently.
	Upsert(ctx context.Context, pairs map[string]string) error
}

type vehicleMasterRepository struct {
	path   string
	logger *slog.Logger
}

func NewVehicleMasterRepository(path string, logger *slog.Logger) VehicleMasterRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &vehicleMasterRepository{path: path, logger: logger}
}

func (r *vehicleMasterRepository) All(_ context.Context) (map[string]string, error) {
	rows, err := readSheet(r.path)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return map[string]string{}, nil
	}

	cols := headerIndex(rows[0])
	plateCol, okPlate := cols["plate"]
	providerCol, okProvider := cols["provider"]
	if !okPlate || !okProvider {
		return map[string]string{}, nil
	}

	out := map[string]string{}
	for _, row := range rows[1:] {
		plate := normalize.PlateKey(cell(row, plateCol))
		if plate == "" {
			continue
		}
		out[plate] = normalize.NameKey(cell(row, providerCol))
	}
	return out, nil
}

func (r *vehicleMasterRepository) Get(ctx context.Context, plateKey string) (string, bool, error) {
	all, err := r.All(ctx)
	if err != nil {
		return "", false, err
	}
	p, ok := all[plateKey]
	return p, ok, nil
}

func (r *vehicleMasterRepository) Upsert(ctx context.Context, pairs map[string]string) error {
	existing, err := r.All(ctx)
	if err != nil {
		return err
	}

	for plate, provider := range pairs {
		p := normalize.PlateKey(plate)
		v := normalize.NameKey(provider)
		if p == "" || v == "" {
			continue
		}
		existing[p] = v
	}

	plates := make([]string, 0, len(existing))
	for p := range existing {
		plates = append(plates, p)
	}
	sort.Strings(plates)

	records := make([][]any, 0, len(plates)+1)
	records = append(records, []any{"Plate", "Provider"})
	for _, p := range plates {
		records = append(records, []any{p, existing[p]})
	}

	if err := writeSheet(r.path, records); err != nil {
		return common.WrapError(err, "writing vehicle master")
	}
	r.logger.Info("master.vehicle.saved", "path", r.path, "entries", len(plates))
	return nil
}
