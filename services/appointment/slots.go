package appointment

import (
	"context"
	"fmt"
	"time"

	"wuauser/models"
	"wuauser/services/scheduling"
)

// AvailableSlots lists the vet's slots on date for a service's duration or an explicit one.
func (s *DefaultAppointmentService) AvailableSlots(ctx context.Context, vetID, date, serviceID string, duration int) (*models.SlotsResponse, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, invalid("date", "must be YYYY-MM-DD")
	}
	vet, err := s.vets.GetByID(ctx, vetID)
	if err != nil {
		return nil, translate(err)
	}
	if serviceID != "" {
		svc, err := s.services.GetByID(ctx, serviceID)
		if err != nil {
			return nil, lookupError("serviceId", err)
		}
		if svc.VetID != vet.ID {
			return nil, invalid("serviceId", "service is not offered by this vet")
		}
		if duration == 0 {
			duration = svc.Duration
		}
	}
	if duration <= 0 {
		return nil, invalid("duration", "serviceId or a positive duration is required")
	}

	slots, err := s.daySlots(ctx, vet, date, duration, "")
	if err != nil {
		return nil, err
	}
	return &models.SlotsResponse{VetID: vet.ID, Date: date, Duration: duration, Slots: slots}, nil
}

// daySlots runs the slot generator over the vet's non-cancelled appointments on date,
// leaving out excludeID. Slots already in the past are unavailable.
func (s *DefaultAppointmentService) daySlots(ctx context.Context, vet *models.Vet, date string, duration int, excludeID string) ([]models.TimeSlot, error) {
	apts, err := s.appointments.ListByVet(ctx, vet.ID, date)
	if err != nil {
		return nil, translate(err)
	}
	bookings := make([]scheduling.Booking, 0, len(apts))
	for _, a := range apts {
		if a.Status == models.StatusCancelled || a.ID == excludeID {
			continue
		}
		bookings = append(bookings, scheduling.Booking{Start: a.Time, DurationMinutes: a.Duration})
	}

	opts := scheduling.SlotOptions{NotBefore: s.notBefore(date)}
	sched := vet.EffectiveSchedule()
	slots, err := scheduling.GenerateSlotsWithOptions(sched.DayStartHour, sched.DayEndHour, sched.SlotIntervalMinutes, bookings, duration, opts)
	if err != nil {
		return nil, fmt.Errorf("slots for vet %s on %s: %w", vet.ID, date, err)
	}
	return slots, nil
}

// notBefore is the first bookable minute of date in the clinic timezone.
func (s *DefaultAppointmentService) notBefore(date string) int {
	now := s.now().In(s.loc)
	today := now.Format("2006-01-02")
	switch {
	case date < today:
		return 24 * 60
	case date == today:
		return now.Hour()*60 + now.Minute() + 1
	default:
		return 0
	}
}
