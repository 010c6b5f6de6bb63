package models

import "time"

// Pet belongs to an owner.
type Pet struct {
	ID        string    `bson:"id" json:"id"`
	OwnerID   string    `bson:"ownerId" json:"ownerId"`
	Name      string    `bson:"name" json:"name"`
	Species   string    `bson:"species" json:"species"`
	Breed     string    `bson:"breed,omitempty" json:"breed,omitempty"`
	PhotoURL  string    `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PetInput is the payload for registering a pet.
type PetInput struct {
	Name    string `json:"name" binding:"required"`
	Species string `json:"species" binding:"required"`
	Breed   string `json:"breed"`
}
