// Package scheduling holds the pure appointment rules: slot generation and the status state machine.
//
//	pending ──► confirmed ──► completed
//	   │            │
//	   └────────────┴──► cancelled
//
// cancelled and completed are terminal.
package scheduling

import (
	"fmt"
	"strings"
	"time"

	"wuauser/models"
)

var validTransitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCompleted, models.StatusCancelled},
	models.StatusCancelled: {},
	models.StatusCompleted: {},
}

// ParseStatus converts a raw string into a status, rejecting values outside the closed set.
func ParseStatus(s string) (models.AppointmentStatus, error) {
	st := models.AppointmentStatus(s)
	if _, ok := validTransitions[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

// CanTransition reports whether current may move to target.
func CanTransition(current, target models.AppointmentStatus) bool {
	for _, s := range validTransitions[current] {
		if s == target {
			return true
		}
	}
	return false
}

// ValidateTransition is CanTransition with typed errors for unknown statuses.
func ValidateTransition(current, target models.AppointmentStatus) error {
	if _, ok := validTransitions[current]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, current)
	}
	if _, ok := validTransitions[target]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, target)
	}
	if !CanTransition(current, target) {
		return fmt.Errorf("%w: %s -> %s (allowed: %s)", ErrIllegalTransition, current, target, describeTargets(current))
	}
	return nil
}

// AllowedTargets lists the statuses reachable from current.
func AllowedTargets(current models.AppointmentStatus) []models.AppointmentStatus {
	out := make([]models.AppointmentStatus, len(validTransitions[current]))
	copy(out, validTransitions[current])
	return out
}

func describeTargets(current models.AppointmentStatus) string {
	targets := AllowedTargets(current)
	if len(targets) == 0 {
		return "none, " + string(current) + " is terminal"
	}
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s models.AppointmentStatus) bool {
	allowed, ok := validTransitions[s]
	return ok && len(allowed) == 0
}

// DefaultChangeWindow is how far ahead of the appointment a cancel or reschedule must happen.
const DefaultChangeWindow = 2 * time.Hour

// CanCancelOrReschedule reports whether the appointment is still open and more than window away from now.
func CanCancelOrReschedule(apt models.Appointment, now time.Time, loc *time.Location, window time.Duration) bool {
	if !CanTransition(apt.Status, models.StatusCancelled) {
		return false
	}
	at, err := AppointmentMoment(apt.Date, apt.Time, loc)
	if err != nil {
		return false
	}
	return at.Sub(now) > window
}
