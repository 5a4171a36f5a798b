package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVehicleMasterMissingFile(t *testing.T) {
	r := NewVehicleMasterRepository(filepath.Join(t.TempDir(), "vehicles.xlsx"), nil)
	all, err := r.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestVehicleMasterUpsertRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicles.xlsx")
	r := NewVehicleMasterRepository(path, nil)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, map[string]string{
		"1234-abc": "Martin Simancas",
		"5678XYZ":  "CAMPOY",
	}))

	// Keys and values normalize on the way in.
	provider, ok, err := r.Get(ctx, "1234ABC")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "MARTIN SIMANCAS", provider)

	provider, ok, err = r.Get(ctx, "5678XYZ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "CAMPOY", provider)
}

func TestVehicleMasterUpsertOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicles.xlsx")
	r := NewVehicleMasterRepository(path, nil)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, map[string]string{"1234ABC": "CAMPOY"}))
	require.NoError(t, r.Upsert(ctx, map[string]string{"1234ABC": "ARANDA"}))

	provider, ok, err := r.Get(ctx, "1234ABC")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ARANDA", provider)

	all, err := r.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestVehicleMasterUpsertSkipsEmptyPairs(t *testing.T) {
	r := NewVehicleMasterRepository(filepath.Join(t.TempDir(), "vehicles.xlsx"), nil)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, map[string]string{
		"":        "CAMPOY",
		"1234ABC": "",
		"5678XYZ": "ARANDA",
	}))

	all, err := r.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
