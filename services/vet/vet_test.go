package vet

import (
	"context"
	"testing"

	"wuauser/database"
	"wuauser/database/repository"
	"wuauser/models"
	"wuauser/services/appointment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seeded(t *testing.T) *DefaultVetService {
	t.Helper()
	ctx := context.Background()
	stores := repository.NewLocalStores(database.NewMemoryKV())
	require.NoError(t, stores.Seed(ctx, &repository.SeedData{
		Vets: []models.Vet{
			{ID: "roma", Name: "Dra. Roma", Location: models.NewGeoPoint(19.4170, -99.1617)},
			{ID: "zocalo", Name: "Dr. Centro", Location: models.NewGeoPoint(19.4326, -99.1332)},
			{ID: "puebla", Name: "Dr. Puebla", Location: models.NewGeoPoint(19.0414, -98.2063)},
			{ID: "nowhere", Name: "Sin ubicación"},
		},
		Services: []models.Service{
			{ID: "consulta", VetID: "zocalo", Name: "Consulta", Price: 400, Duration: 30},
			{ID: "vacuna", VetID: "zocalo", Name: "Vacuna", Price: 250, Duration: 15},
		},
	}))
	return NewVetService(stores.Vets, stores.Services, zap.NewNop())
}

func TestNearby(t *testing.T) {
	svc := seeded(t)
	ctx := context.Background()

	// Querying from the Zócalo.
	vets, err := svc.Nearby(ctx, 19.4326, -99.1332, 0)
	require.NoError(t, err)
	require.Len(t, vets, 2)
	assert.Equal(t, "zocalo", vets[0].ID)
	assert.Equal(t, "roma", vets[1].ID)
	assert.InDelta(t, 0, vets[0].DistanceKm, 0.001)
	assert.InDelta(t, 3.5, vets[1].DistanceKm, 0.3)

	vets, err = svc.Nearby(ctx, 19.4326, -99.1332, 200)
	require.NoError(t, err)
	require.Len(t, vets, 3)
	assert.Equal(t, "puebla", vets[2].ID)
}

func TestNearbyRejectsBadInput(t *testing.T) {
	svc := seeded(t)
	_, err := svc.Nearby(context.Background(), 91, 0, 5)
	assert.ErrorIs(t, err, appointment.ErrValidation)

	_, err = svc.Nearby(context.Background(), 19, -99, -1)
	assert.ErrorIs(t, err, appointment.ErrValidation)
}

func TestListServices(t *testing.T) {
	svc := seeded(t)
	services, err := svc.ListServices(context.Background(), "zocalo")
	require.NoError(t, err)
	assert.Len(t, services, 2)

	_, err = svc.ListServices(context.Background(), "ghost")
	assert.ErrorIs(t, err, appointment.ErrNotFound)
}
