package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pibejo/shift-billing/internal/entity"
)

func TestDriverMasterMissingFile(t *testing.T) {
	r := NewDriverMasterRepository(filepath.Join(t.TempDir(), "drivers.xlsx"), nil)
	all, err := r.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDriverMasterUpsertRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drivers.xlsx")
	r := NewDriverMasterRepository(path, nil)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, []entity.DriverMasterEntry{
		{Driver: "Juan Pérez", Plate: "1234ABC", Route: "V429.1"},
		{Driver: "ANA LOPEZ", Plate: "5678XYZ"},
	}))

	all, err := r.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Lookups key on the normalized name, the stored display name keeps
	// its accents.
	e, ok, err := r.Get(ctx, "JUAN PEREZ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Juan Pérez", e.Driver)
	assert.Equal(t, "1234ABC", e.Plate)
	assert.Equal(t, "V429.1", e.Route)

	e, ok, err = r.Get(ctx, "ANA LOPEZ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "5678XYZ", e.Plate)
	assert.Empty(t, e.Route)
}

func TestDriverMasterUpsertMergesPartialFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drivers.xlsx")
	r := NewDriverMasterRepository(path, nil)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, []entity.DriverMasterEntry{
		{Driver: "JUAN PEREZ", Plate: "1234ABC", Route: "V429.1"},
	}))

	// A later upsert with only a route keeps the stored plate.
	require.NoError(t, r.Upsert(ctx, []entity.DriverMasterEntry{
		{Driver: "JUAN PEREZ", Route: "V429.2"},
	}))

	e, ok, err := r.Get(ctx, "JUAN PEREZ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1234ABC", e.Plate)
	assert.Equal(t, "V429.2", e.Route)
}

func TestDriverMasterUpsertSkipsEmptyNames(t *testing.T) {
	r := NewDriverMasterRepository(filepath.Join(t.TempDir(), "drivers.xlsx"), nil)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, []entity.DriverMasterEntry{
		{Driver: "  ", Plate: "1234ABC"},
		{Driver: "ANA LOPEZ", Plate: "5678XYZ"},
	}))

	all, err := r.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
