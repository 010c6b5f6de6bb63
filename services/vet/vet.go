package vet

import (
	"context"
	"errors"
	"fmt"

	"wuauser/database"
	"wuauser/database/repository"
	"wuauser/models"
	"wuauser/services/appointment"
	"wuauser/utils"

	"go.uber.org/zap"
)

// DefaultRadiusKm applies when a nearby search gives no radius.
const DefaultRadiusKm = 10.0

// VetService answers directory queries about vets and their services.
type VetService interface {
	Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]models.NearbyVet, error)
	ListServices(ctx context.Context, vetID string) ([]models.Service, error)
}

type DefaultVetService struct {
	vets     repository.VetRepository
	services repository.ServiceRepository
	logger   *zap.Logger
}

func NewVetService(vets repository.VetRepository, services repository.ServiceRepository, logger *zap.Logger) *DefaultVetService {
	return &DefaultVetService{vets: vets, services: services, logger: logger.Named("vet")}
}

// Nearby returns the vets within radiusKm of (lat, lng), closest first.
func (s *DefaultVetService) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]models.NearbyVet, error) {
	if !utils.ValidCoordinates(lat, lng) {
		return nil, &appointment.ValidationError{Field: "lat/lng", Message: "coordinates out of range"}
	}
	if radiusKm < 0 {
		return nil, &appointment.ValidationError{Field: "radiusKm", Message: "must not be negative"}
	}
	if radiusKm == 0 {
		radiusKm = DefaultRadiusKm
	}

	vets, err := s.vets.Nearby(ctx, lat, lng, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("failed to search vets near %.4f,%.4f: %w", lat, lng, err)
	}
	s.logger.Debug("Nearby search", zap.Float64("radiusKm", radiusKm), zap.Int("found", len(vets)))
	return vets, nil
}

func (s *DefaultVetService) ListServices(ctx context.Context, vetID string) ([]models.Service, error) {
	if _, err := s.vets.GetByID(ctx, vetID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: vet %s", appointment.ErrNotFound, vetID)
		}
		return nil, err
	}
	return s.services.ListByVet(ctx, vetID)
}
