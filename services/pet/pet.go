package pet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"wuauser/database"
	"wuauser/database/repository"
	"wuauser/models"
	"wuauser/services/appointment"
	"wuauser/services/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PetService manages owners' pets and their photos.
type PetService interface {
	Create(ctx context.Context, ownerID string, input models.PetInput) (*models.Pet, error)
	ListForOwner(ctx context.Context, ownerID string) ([]models.Pet, error)
	UploadPhoto(ctx context.Context, actor models.Actor, petID string, photo io.Reader) (*models.Pet, error)
}

// DefaultPetService is the production implementation.
type DefaultPetService struct {
	pets    repository.PetRepository
	storage storage.StorageService
	logger  *zap.Logger
}

// NewPetService wires the service. Without storage, photo uploads are unavailable.
func NewPetService(pets repository.PetRepository, store storage.StorageService, logger *zap.Logger) *DefaultPetService {
	return &DefaultPetService{pets: pets, storage: store, logger: logger.Named("pet")}
}

func (s *DefaultPetService) Create(ctx context.Context, ownerID string, input models.PetInput) (*models.Pet, error) {
	name := strings.TrimSpace(input.Name)
	species := strings.ToLower(strings.TrimSpace(input.Species))
	if ownerID == "" {
		return nil, &appointment.ValidationError{Field: "ownerId", Message: "is required"}
	}
	if name == "" {
		return nil, &appointment.ValidationError{Field: "name", Message: "is required"}
	}
	if species == "" {
		return nil, &appointment.ValidationError{Field: "species", Message: "is required"}
	}

	now := time.Now().UTC()
	pet := &models.Pet{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Species:   species,
		Breed:     strings.TrimSpace(input.Breed),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.pets.Create(ctx, pet); err != nil {
		return nil, err
	}
	s.logger.Info("Pet registered", zap.String("petId", pet.ID), zap.String("ownerId", ownerID))
	return pet, nil
}

func (s *DefaultPetService) ListForOwner(ctx context.Context, ownerID string) ([]models.Pet, error) {
	return s.pets.ListByOwner(ctx, ownerID)
}

// UploadPhoto stores a new photo for the pet. Only the pet's owner may do this.
func (s *DefaultPetService) UploadPhoto(ctx context.Context, actor models.Actor, petID string, photo io.Reader) (*models.Pet, error) {
	if s.storage == nil {
		return nil, errors.New("photo storage is not configured")
	}
	pet, err := s.pets.GetByID(ctx, petID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", appointment.ErrNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleOwner || pet.OwnerID != actor.ID {
		return nil, fmt.Errorf("%w: pet %s", appointment.ErrForbidden, petID)
	}

	url, err := s.storage.UploadPetPhoto(ctx, pet.ID, photo)
	if errors.Is(err, storage.ErrUnsupportedImage) {
		return nil, &appointment.ValidationError{Field: "file", Message: err.Error()}
	}
	if err != nil {
		return nil, err
	}
	return s.pets.UpdatePhoto(ctx, pet.ID, url)
}
