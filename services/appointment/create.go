package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wuauser/models"
	"wuauser/services/scheduling"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Create books a pending appointment if the requested time is a free slot of the vet's day.
func (s *DefaultAppointmentService) Create(ctx context.Context, input models.AppointmentInput) (*models.Appointment, error) {
	if err := requireFields(map[string]string{
		"vetId":     input.VetID,
		"petId":     input.PetID,
		"ownerId":   input.OwnerID,
		"serviceId": input.ServiceID,
		"date":      input.Date,
		"time":      input.Time,
	}); err != nil {
		return nil, err
	}
	at, err := s.parseMoment(input.Date, input.Time)
	if err != nil {
		return nil, err
	}
	if !at.After(s.now()) {
		return nil, invalid("date", "appointment must be in the future")
	}

	pet, err := s.pets.GetByID(ctx, input.PetID)
	if err != nil {
		return nil, lookupError("petId", err)
	}
	if pet.OwnerID != input.OwnerID {
		return nil, fmt.Errorf("%w: pet %s does not belong to the caller", ErrForbidden, pet.ID)
	}
	vet, err := s.vets.GetByID(ctx, input.VetID)
	if err != nil {
		return nil, lookupError("vetId", err)
	}
	svc, err := s.services.GetByID(ctx, input.ServiceID)
	if err != nil {
		return nil, lookupError("serviceId", err)
	}
	if svc.VetID != vet.ID {
		return nil, invalid("serviceId", "service is not offered by this vet")
	}

	duration := input.Duration
	if duration == 0 {
		duration = svc.Duration
	}
	if duration <= 0 {
		return nil, invalid("duration", "must be positive")
	}

	slots, err := s.daySlots(ctx, vet, input.Date, duration, "")
	if err != nil {
		return nil, err
	}
	if !scheduling.IsSlotAvailable(slots, input.Time) {
		return nil, fmt.Errorf("%w: %s %s", ErrSlotUnavailable, input.Date, input.Time)
	}

	now := s.now().UTC()
	apt := &models.Appointment{
		ID:          uuid.NewString(),
		VetID:       vet.ID,
		PetID:       pet.ID,
		OwnerID:     input.OwnerID,
		ServiceID:   svc.ID,
		Date:        input.Date,
		Time:        input.Time,
		Duration:    duration,
		Status:      models.StatusPending,
		Reason:      strings.TrimSpace(input.Reason),
		IsUrgent:    input.IsUrgent,
		IsFirstTime: input.IsFirstTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.appointments.Create(ctx, apt); err != nil {
		return nil, translate(err)
	}
	if s.metrics != nil {
		s.metrics.AppointmentsCreatedTotal.Inc()
	}
	s.logger.Info("Appointment created",
		zap.String("appointmentId", apt.ID),
		zap.String("vetId", apt.VetID),
		zap.String("date", apt.Date),
		zap.String("time", apt.Time),
	)

	s.scheduleReminders(ctx, *apt)
	return apt, nil
}

func requireFields(fields map[string]string) error {
	// Fixed order keeps the reported field stable.
	for _, name := range []string{"vetId", "petId", "ownerId", "serviceId", "date", "time"} {
		if v, ok := fields[name]; ok && strings.TrimSpace(v) == "" {
			return invalid(name, "is required")
		}
	}
	return nil
}

// parseMoment validates a clinic-local date and time and returns the instant.
func (s *DefaultAppointmentService) parseMoment(date, clock string) (time.Time, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return time.Time{}, invalid("date", "must be YYYY-MM-DD")
	}
	if _, err := scheduling.ParseClock(clock); err != nil {
		return time.Time{}, invalid("time", "must be HH:MM")
	}
	at, err := scheduling.AppointmentMoment(date, clock, s.loc)
	if err != nil {
		return time.Time{}, invalid("date", err.Error())
	}
	return at, nil
}

// lookupError turns a missing reference into a validation error on field.
func lookupError(field string, err error) error {
	err = translate(err)
	if errors.Is(err, ErrNotFound) {
		return invalid(field, "does not exist")
	}
	return err
}
