package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pibejo/shift-billing/internal/common"
	"github.com/pibejo/shift-billing/internal/entity"
)

func TestRateRepositoryDefaults(t *testing.T) {
	r := NewRateRepository(filepath.Join(t.TempDir(), "rates.csv"), nil)
	ctx := context.Background()

	all, err := r.All(ctx)
	require.NoError(t, err)

	aranda, ok := all["ARANDA"]
	require.True(t, ok)
	assert.Equal(t, entity.RateHourly, aranda.Type)
	assert.InDelta(t, 25.0, aranda.HourlyNormal, 1e-9)
	assert.InDelta(t, 30.0, aranda.HourlyHoliday, 1e-9)

	cuesta, ok := all["RUBEN CUESTA"]
	require.True(t, ok)
	assert.Equal(t, entity.RateDaily, cuesta.Type)
	assert.InDelta(t, 260.0, cuesta.DailyNormal, 1e-9)
	assert.InDelta(t, 275.0, cuesta.DailyHoliday, 1e-9)

	_, ok = all["TRANSPORTES DESCONOCIDOS"]
	assert.False(t, ok)
}

func TestRateRepositoryUpsertOverridesDefault(t *testing.T) {
	r := NewRateRepository(filepath.Join(t.TempDir(), "rates.csv"), nil)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, "Aranda", entity.RateEntry{
		Type:          entity.RateHourly,
		HourlyNormal:  27.5,
		HourlyHoliday: 33.0,
	}))

	got, ok, err := r.Get(ctx, "ARANDA")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 27.5, got.HourlyNormal, 1e-9)
	assert.InDelta(t, 33.0, got.HourlyHoliday, 1e-9)
}

func TestRateRepositoryUpsertDailyRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.csv")
	r := NewRateRepository(path, nil)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, "NUEVO CARRIER", entity.RateEntry{
		Type:         entity.RateDaily,
		DailyNormal:  200,
		DailyHoliday: 220,
	}))

	// A fresh repository sees the same data through the file.
	r2 := NewRateRepository(path, nil)
	got, ok, err := r2.Get(ctx, "NUEVO CARRIER")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entity.RateDaily, got.Type)
	assert.InDelta(t, 200.0, got.DailyNormal, 1e-9)
	assert.InDelta(t, 220.0, got.DailyHoliday, 1e-9)
}

func TestRateRepositoryUpsertCoercesUnknownType(t *testing.T) {
	r := NewRateRepository(filepath.Join(t.TempDir(), "rates.csv"), nil)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, "OTRO", entity.RateEntry{Type: "weekly", HourlyNormal: 20}))

	got, ok, err := r.Get(ctx, "OTRO")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entity.RateHourly, got.Type)
	assert.InDelta(t, 20.0, got.HourlyNormal, 1e-9)
}

func TestRateRepositoryUpsertEmptyName(t *testing.T) {
	r := NewRateRepository(filepath.Join(t.TempDir(), "rates.csv"), nil)
	err := r.Upsert(context.Background(), "  ", entity.RateEntry{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestRateRepositorySkipsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.csv")
	data := "name;type;rate_normal;rate_holiday;rate_daily_normal;rate_daily_holiday\n" +
		"BUENO;hourly;21;26;;\n" +
		"SOLONOMBRE\n" +
		";hourly;10;12;;\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	r := NewRateRepository(path, nil)
	all, err := r.All(context.Background())
	require.NoError(t, err)

	got, ok := all["BUENO"]
	require.True(t, ok)
	assert.InDelta(t, 21.0, got.HourlyNormal, 1e-9)
	_, ok = all["SOLONOMBRE"]
	assert.False(t, ok)
}
