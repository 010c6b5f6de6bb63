package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"wuauser/models"
)

// SeedData is the reference data a fresh store can be loaded with.
type SeedData struct {
	Vets     []models.Vet     `json:"vets"`
	Services []models.Service `json:"services"`
}

// LoadSeedFile reads seed data from a JSON file.
func LoadSeedFile(path string) (*SeedData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("repository: read seed file: %w", err)
	}
	var data SeedData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("repository: decode seed file: %w", err)
	}
	return &data, nil
}

// Seed upserts vets and services.
func (s *Stores) Seed(ctx context.Context, data *SeedData) error {
	for i := range data.Vets {
		if err := s.Vets.Upsert(ctx, &data.Vets[i]); err != nil {
			return err
		}
	}
	for i := range data.Services {
		if err := s.Services.Upsert(ctx, &data.Services[i]); err != nil {
			return err
		}
	}
	return nil
}
