package appointment

import (
	"context"
	"fmt"

	"wuauser/models"
	"wuauser/services/scheduling"
	"wuauser/utils"

	"go.uber.org/zap"
)

// ApplyTransition changes the appointment's status following the transition table.
// Owners may only cancel; owner and vet cancellations must respect the change window.
// Cancelling revokes pending reminders; a revoke failure is logged and does not undo the cancel.
func (s *DefaultAppointmentService) ApplyTransition(ctx context.Context, actor models.Actor, id string, target models.AppointmentStatus, notes string) (*models.Appointment, error) {
	if _, err := scheduling.ParseStatus(string(target)); err != nil {
		return nil, err
	}
	apt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if !canTransition(actor, apt, target) {
		return nil, fmt.Errorf("%w: %s may not set %s on appointment %s", ErrForbidden, actor.Role, target, id)
	}
	if err := scheduling.ValidateTransition(apt.Status, target); err != nil {
		s.countTransition(target, err)
		return nil, err
	}
	if target == models.StatusCancelled && !actor.IsSystem() &&
		!scheduling.CanCancelOrReschedule(*apt, s.now(), s.loc, s.window) {
		err := fmt.Errorf("%w: appointment %s starts within %s", ErrPolicyViolation, id, s.window)
		s.countTransition(target, err)
		return nil, err
	}

	updated, err := s.appointments.UpdateStatus(ctx, id, apt.Status, target, notes)
	s.countTransition(target, err)
	if err != nil {
		return nil, translate(err)
	}
	s.logger.Info("Appointment status changed",
		zap.String("appointmentId", id),
		zap.String("from", string(apt.Status)),
		zap.String("to", string(target)),
		zap.String("actor", string(actor.Role)),
	)

	if target == models.StatusCancelled {
		s.revokeReminders(ctx, id)
	}
	return updated, nil
}

// Reschedule moves an open appointment to another free slot of the same vet.
func (s *DefaultAppointmentService) Reschedule(ctx context.Context, actor models.Actor, id, date, clock string) (*models.Appointment, error) {
	apt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if actor.IsSystem() || !canView(actor, apt) {
		return nil, fmt.Errorf("%w: appointment %s", ErrForbidden, id)
	}
	if !scheduling.CanCancelOrReschedule(*apt, s.now(), s.loc, s.window) {
		return nil, fmt.Errorf("%w: appointment %s is %s or starts within %s", ErrPolicyViolation, id, apt.Status, s.window)
	}

	at, err := s.parseMoment(date, clock)
	if err != nil {
		return nil, err
	}
	if !at.After(s.now()) {
		return nil, invalid("date", "appointment must be in the future")
	}

	vet, err := s.vets.GetByID(ctx, apt.VetID)
	if err != nil {
		return nil, translate(err)
	}
	slots, err := s.daySlots(ctx, vet, date, apt.Duration, apt.ID)
	if err != nil {
		return nil, err
	}
	if !scheduling.IsSlotAvailable(slots, clock) {
		return nil, fmt.Errorf("%w: %s %s", ErrSlotUnavailable, date, clock)
	}

	updated, err := s.appointments.Reschedule(ctx, *apt, date, clock)
	if err != nil {
		return nil, translate(err)
	}
	s.logger.Info("Appointment rescheduled",
		zap.String("appointmentId", id),
		zap.String("from", apt.Date+" "+apt.Time),
		zap.String("to", date+" "+clock),
	)

	s.revokeReminders(ctx, id)
	s.scheduleReminders(ctx, *updated)
	return updated, nil
}

func canTransition(actor models.Actor, apt *models.Appointment, target models.AppointmentStatus) bool {
	switch actor.Role {
	case models.RoleSystem:
		return true
	case models.RoleVet:
		return apt.VetID == actor.ID
	case models.RoleOwner:
		return apt.OwnerID == actor.ID && target == models.StatusCancelled
	default:
		return false
	}
}

func (s *DefaultAppointmentService) scheduleReminders(ctx context.Context, apt models.Appointment) {
	if s.reminders == nil {
		return
	}
	if err := s.reminders.Schedule(ctx, apt); err != nil {
		s.logger.Warn("Failed to schedule reminders",
			zap.String("appointmentId", apt.ID),
			zap.Error(err),
		)
	}
}

func (s *DefaultAppointmentService) revokeReminders(ctx context.Context, id string) {
	if s.reminders == nil {
		return
	}
	if err := s.reminders.Revoke(ctx, id); err != nil {
		s.logger.Warn("Failed to revoke reminders",
			zap.String("appointmentId", id),
			zap.Error(err),
		)
	}
}

func (s *DefaultAppointmentService) countTransition(target models.AppointmentStatus, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.TransitionsTotal.WithLabelValues(string(target), utils.Outcome(err)).Inc()
}
