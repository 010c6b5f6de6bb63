package catalogRepo

import (
	"context"

	"wuauser/models"
)

// VetRepository reads and seeds vet profiles.
type VetRepository interface {
	GetByID(ctx context.Context, id string) (*models.Vet, error)
	List(ctx context.Context) ([]models.Vet, error)
	Upsert(ctx context.Context, vet *models.Vet) error
	// Nearby returns the vets within radiusKm of (lat, lng), closest first. Vets without a
	// location never match.
	Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]models.NearbyVet, error)
}

// ServiceRepository reads and seeds the services vets offer.
type ServiceRepository interface {
	GetByID(ctx context.Context, id string) (*models.Service, error)
	ListByVet(ctx context.Context, vetID string) ([]models.Service, error)
	Upsert(ctx context.Context, svc *models.Service) error
}

// PetRepository persists owners' pets.
type PetRepository interface {
	Create(ctx context.Context, pet *models.Pet) error
	GetByID(ctx context.Context, id string) (*models.Pet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Pet, error)
	UpdatePhoto(ctx context.Context, id, photoURL string) (*models.Pet, error)
}
