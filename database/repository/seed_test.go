package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"wuauser/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedLocalStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	seed := `{
		"vets": [{"id": "vet-1", "name": "Dra. Ruiz", "clinicName": "Patitas",
		          "location": {"type": "Point", "coordinates": [-99.13, 19.43]}}],
		"services": [{"id": "svc-1", "vetId": "vet-1", "name": "Consulta", "price": 450, "duration": 30}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	data, err := LoadSeedFile(path)
	require.NoError(t, err)

	stores := NewLocalStores(database.NewMemoryKV())
	ctx := context.Background()
	require.NoError(t, stores.Seed(ctx, data))
	// Seeding twice must not duplicate anything.
	require.NoError(t, stores.Seed(ctx, data))

	vets, err := stores.Vets.List(ctx)
	require.NoError(t, err)
	require.Len(t, vets, 1)
	assert.Equal(t, "local", stores.Backend)

	services, err := stores.Services.ListByVet(ctx, "vet-1")
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, 450.0, services[0].Price)
}

func TestLoadSeedFile_Missing(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
