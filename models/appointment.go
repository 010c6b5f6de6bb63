package models

import "time"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Appointment is a booking of a vet's service for a pet.
type Appointment struct {
	ID          string            `bson:"id" json:"id"`
	VetID       string            `bson:"vetId" json:"vetId"`
	PetID       string            `bson:"petId" json:"petId"`
	OwnerID     string            `bson:"ownerId" json:"ownerId"`
	ServiceID   string            `bson:"serviceId" json:"serviceId"`
	Date        string            `bson:"date" json:"date"`         // "YYYY-MM-DD", clinic-local
	Time        string            `bson:"time" json:"time"`         // "HH:MM", 24-hour, clinic-local
	Duration    int               `bson:"duration" json:"duration"` // minutes
	Status      AppointmentStatus `bson:"status" json:"status"`
	Reason      string            `bson:"reason,omitempty" json:"reason,omitempty"`
	Notes       string            `bson:"notes,omitempty" json:"notes,omitempty"`
	IsUrgent    bool              `bson:"isUrgent" json:"isUrgent"`
	IsFirstTime bool              `bson:"isFirstTime" json:"isFirstTime"`
	CreatedAt   time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// AppointmentInput is the payload for creating an appointment.
type AppointmentInput struct {
	VetID       string `json:"vetId"`
	PetID       string `json:"petId"`
	OwnerID     string `json:"-"`
	ServiceID   string `json:"serviceId"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Duration    int    `json:"duration,omitempty"`
	Reason      string `json:"reason,omitempty"`
	IsUrgent    bool   `json:"isUrgent"`
	IsFirstTime bool   `json:"isFirstTime"`
}

// StatusUpdateRequest asks for a status transition.
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes,omitempty"`
}

// RescheduleRequest moves an appointment to a new date and time.
type RescheduleRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}
