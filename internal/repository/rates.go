package repository

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pibejo/shift-billing/internal/common"
	"github.com/pibejo/shift-billing/internal/entity"
	"github.com/pibejo/shift-billing/internal/normalize"
)

var rateHeader = []string{"name", "type", "rate_normal", "rate_holiday", "rate_daily_normal", "rate_daily_holiday"}

// defaultRates seeds carriers that predate the rate file. File entries
// override these.
var defaultRates = map[string]entity.RateEntry{
	"MARTIN SIMANCAS": {Type: entity.RateHourly, HourlyNormal: 25.0, HourlyHoliday: 30.0},
	"JUAN CALVO":      {Type: entity.RateHourly, HourlyNormal: 25.0, HourlyHoliday: 30.0},
	"ARANDA":          {Type: entity.RateHourly, HourlyNormal: 25.0, HourlyHoliday: 30.0},
	"CANELO":          {Type: entity.RateHourly, HourlyNormal: 25.0, HourlyHoliday: 30.0},
	"ANGEL MUNOZ":     {Type: entity.RateHourly, HourlyNormal: 22.5, HourlyHoliday: 28.0},
	"TRANSMAU":        {Type: entity.RateHourly, HourlyNormal: 25.0, HourlyHoliday: 30.0},
	"PIBEJO":          {Type: entity.RateHourly, HourlyNormal: 0.0, HourlyHoliday: 0.0},
	"CAMPOY":          {Type: entity.RateHourly, HourlyNormal: 25.0, HourlyHoliday: 30.0},
	"ALBERTO RAMAL":   {Type: entity.RateHourly, HourlyNormal: 25.0, HourlyHoliday: 30.0},
	"RUBEN CUESTA":    {Type: entity.RateDaily, DailyNormal: 260.0, DailyHoliday: 275.0},
}

// RateRepository is the carrier rate table: built-in defaults overlaid by a
// semicolon-delimited file the back office maintains.
type RateRepository interface {
	// All returns the effective table (defaults + file) keyed by normalized
	// carrier name.
	All(ctx context.Context) (map[string]entity.RateEntry, error)
	// Get looks up one carrier by normalized name.
	Get(ctx context.Context, key string) (entity.RateEntry, bool, error)
	// Upsert stores or replaces one carrier's rates in the file. Unknown
	// rate types are coerced to hourly.
	Upsert(ctx context.Context, name string, rate entity.RateEntry) error
}

type rateRepository struct {
	path   string
	logger *slog.Logger
}

func NewRateRepository(path string, logger *slog.Logger) RateRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &rateRepository{path: path, logger: logger}
}

func (r *rateRepository) All(_ context.Context) (map[string]entity.RateEntry, error) {
	out := make(map[string]entity.RateEntry, len(defaultRates))
	for k, v := range defaultRates {
		out[k] = v
	}
	fileRates, err := r.readFile()
	if err != nil {
		return nil, err
	}
	for k, v := range fileRates {
		out[k] = v
	}
	return out, nil
}

func (r *rateRepository) Get(ctx context.Context, key string) (entity.RateEntry, bool, error) {
	all, err := r.All(ctx)
	if err != nil {
		return entity.RateEntry{}, false, err
	}
	e, ok := all[key]
	return e, ok, nil
}

func (r *rateRepository) Upsert(_ context.Context, name string, rate entity.RateEntry) error {
	key := normalize.NameKey(name)
	if key == "" {
		return common.NewAppError("RATE_ERROR", "carrier name is empty", common.ErrInvalidInput)
	}
	if rate.Type != entity.RateDaily {
		rate.Type = entity.RateHourly
	}

	fileRates, err := r.readFile()
	if err != nil {
		return err
	}
	if fileRates == nil {
		fileRates = map[string]entity.RateEntry{}
	}
	fileRates[key] = rate

	keys := make([]string, 0, len(fileRates))
	for k := range fileRates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f, err := os.Create(r.path)
	if err != nil {
		return common.WrapError(err, "writing rate table")
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	w.Comma = ';'
	if err := w.Write(rateHeader); err != nil {
		return err
	}
	for _, k := range keys {
		e := fileRates[k]
		rec := []string{k, string(e.Type), "", "", "", ""}
		if e.Type == entity.RateDaily {
			rec[4] = formatRate(e.DailyNormal)
			rec[5] = formatRate(e.DailyHoliday)
		} else {
			rec[2] = formatRate(e.HourlyNormal)
			rec[3] = formatRate(e.HourlyHoliday)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return common.WrapError(err, "flushing rate table")
	}
	r.logger.Info("rates.saved", "path", r.path, "carrier", key, "type", rate.Type)
	return nil
}

// readFile loads the rate file into a map, or nil when the file is absent.
// Malformed rows are skipped, not fatal; the table is best-effort data.
func (r *rateRepository) readFile() (map[string]entity.RateEntry, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, common.WrapError(err, "opening rate table")
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, common.WrapError(err, "reading rate table")
	}
	if len(records) == 0 {
		return nil, nil
	}

	out := map[string]entity.RateEntry{}
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
			continue
		}
		if len(rec) < 2 {
			continue
		}
		key := normalize.NameKey(rec[0])
		if key == "" {
			continue
		}
		e := entity.RateEntry{Type: entity.RateHourly}
		if strings.EqualFold(strings.TrimSpace(rec[1]), string(entity.RateDaily)) {
			e.Type = entity.RateDaily
			e.DailyNormal = parseRate(rec, 4)
			e.DailyHoliday = parseRate(rec, 5)
		} else {
			e.HourlyNormal = parseRate(rec, 2)
			e.HourlyHoliday = parseRate(rec, 3)
		}
		out[key] = e
	}
	return out, nil
}

func parseRate(rec []string, i int) float64 {
	if i >= len(rec) {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
	if err != nil {
		return 0
	}
	return v
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
