package appointment

import (
	"context"
	"fmt"
	"time"

	"wuauser/models"
)

// Get returns the appointment if actor is its owner, its vet or the system.
func (s *DefaultAppointmentService) Get(ctx context.Context, actor models.Actor, id string) (*models.Appointment, error) {
	apt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if !canView(actor, apt) {
		return nil, fmt.Errorf("%w: appointment %s", ErrForbidden, id)
	}
	return apt, nil
}

func (s *DefaultAppointmentService) ListForOwner(ctx context.Context, ownerID string) ([]models.Appointment, error) {
	if ownerID == "" {
		return nil, invalid("ownerId", "is required")
	}
	apts, err := s.appointments.ListByOwner(ctx, ownerID)
	return apts, translate(err)
}

// ListForVet lists a vet's appointments, optionally limited to one date.
func (s *DefaultAppointmentService) ListForVet(ctx context.Context, vetID, date string) ([]models.Appointment, error) {
	if vetID == "" {
		return nil, invalid("vetId", "is required")
	}
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, invalid("date", "must be YYYY-MM-DD")
		}
	}
	apts, err := s.appointments.ListByVet(ctx, vetID, date)
	return apts, translate(err)
}

func canView(actor models.Actor, apt *models.Appointment) bool {
	switch actor.Role {
	case models.RoleSystem:
		return true
	case models.RoleOwner:
		return apt.OwnerID == actor.ID
	case models.RoleVet:
		return apt.VetID == actor.ID
	default:
		return false
	}
}
