package catalogRepo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"wuauser/database"
	"wuauser/models"
	"wuauser/utils"
)

// LocalVetRepo keeps vets in the local store.
type LocalVetRepo struct{ db *database.LocalDB }

func NewLocalVetRepo(db *database.LocalDB) *LocalVetRepo { return &LocalVetRepo{db: db} }

func (r *LocalVetRepo) GetByID(ctx context.Context, id string) (*models.Vet, error) {
	vets, err := database.View[models.Vet](ctx, r.db, database.KeyVets)
	if err != nil {
		return nil, err
	}
	for i := range vets {
		if vets[i].ID == id {
			return &vets[i], nil
		}
	}
	return nil, fmt.Errorf("vet %s: %w", id, database.ErrNotFound)
}

func (r *LocalVetRepo) List(ctx context.Context) ([]models.Vet, error) {
	vets, err := database.View[models.Vet](ctx, r.db, database.KeyVets)
	if vets == nil && err == nil {
		vets = []models.Vet{}
	}
	return vets, err
}

func (r *LocalVetRepo) Upsert(ctx context.Context, vet *models.Vet) error {
	return database.Mutate(ctx, r.db, database.KeyVets, func(vets []models.Vet) ([]models.Vet, error) {
		for i := range vets {
			if vets[i].ID == vet.ID {
				vets[i] = *vet
				return vets, nil
			}
		}
		return append(vets, *vet), nil
	})
}

// Nearby scans every vet and keeps those within the great-circle radius.
func (r *LocalVetRepo) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]models.NearbyVet, error) {
	vets, err := database.View[models.Vet](ctx, r.db, database.KeyVets)
	if err != nil {
		return nil, err
	}
	out := []models.NearbyVet{}
	for _, v := range vets {
		vLat, vLng, ok := v.Location.LatLng()
		if !ok {
			continue
		}
		if d := utils.HaversineKm(lat, lng, vLat, vLng); d <= radiusKm {
			out = append(out, models.NearbyVet{Vet: v, DistanceKm: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out, nil
}

// LocalServiceRepo keeps services in the local store.
type LocalServiceRepo struct{ db *database.LocalDB }

func NewLocalServiceRepo(db *database.LocalDB) *LocalServiceRepo { return &LocalServiceRepo{db: db} }

func (r *LocalServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	services, err := database.View[models.Service](ctx, r.db, database.KeyServices)
	if err != nil {
		return nil, err
	}
	for i := range services {
		if services[i].ID == id {
			return &services[i], nil
		}
	}
	return nil, fmt.Errorf("service %s: %w", id, database.ErrNotFound)
}

func (r *LocalServiceRepo) ListByVet(ctx context.Context, vetID string) ([]models.Service, error) {
	services, err := database.View[models.Service](ctx, r.db, database.KeyServices)
	if err != nil {
		return nil, err
	}
	out := []models.Service{}
	for _, s := range services {
		if s.VetID == vetID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *LocalServiceRepo) Upsert(ctx context.Context, svc *models.Service) error {
	return database.Mutate(ctx, r.db, database.KeyServices, func(services []models.Service) ([]models.Service, error) {
		for i := range services {
			if services[i].ID == svc.ID {
				services[i] = *svc
				return services, nil
			}
		}
		return append(services, *svc), nil
	})
}

// LocalPetRepo keeps pets in the local store.
type LocalPetRepo struct{ db *database.LocalDB }

func NewLocalPetRepo(db *database.LocalDB) *LocalPetRepo { return &LocalPetRepo{db: db} }

func (r *LocalPetRepo) Create(ctx context.Context, pet *models.Pet) error {
	return database.Mutate(ctx, r.db, database.KeyPets, func(pets []models.Pet) ([]models.Pet, error) {
		for _, p := range pets {
			if p.ID == pet.ID {
				return nil, fmt.Errorf("pet %s: %w", pet.ID, database.ErrDuplicate)
			}
		}
		return append(pets, *pet), nil
	})
}

func (r *LocalPetRepo) GetByID(ctx context.Context, id string) (*models.Pet, error) {
	pets, err := database.View[models.Pet](ctx, r.db, database.KeyPets)
	if err != nil {
		return nil, err
	}
	for i := range pets {
		if pets[i].ID == id {
			return &pets[i], nil
		}
	}
	return nil, fmt.Errorf("pet %s: %w", id, database.ErrNotFound)
}

func (r *LocalPetRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Pet, error) {
	pets, err := database.View[models.Pet](ctx, r.db, database.KeyPets)
	if err != nil {
		return nil, err
	}
	out := []models.Pet{}
	for _, p := range pets {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *LocalPetRepo) UpdatePhoto(ctx context.Context, id, photoURL string) (*models.Pet, error) {
	var updated models.Pet
	err := database.Mutate(ctx, r.db, database.KeyPets, func(pets []models.Pet) ([]models.Pet, error) {
		for i := range pets {
			if pets[i].ID == id {
				pets[i].PhotoURL = photoURL
				pets[i].UpdatedAt = time.Now().UTC()
				updated = pets[i]
				return pets, nil
			}
		}
		return nil, fmt.Errorf("pet %s: %w", id, database.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
