package models

// Service is a priced offering owned by a vet.
type Service struct {
	ID       string  `bson:"id" json:"id"`
	VetID    string  `bson:"vetId" json:"vetId"`
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`       // currency units
	Duration int     `bson:"duration" json:"duration"` // minutes
	Category string  `bson:"category" json:"category"`
}
