package scheduling

import (
	"fmt"

	"wuauser/models"
)

// Booking is an already-taken interval on the day being queried.
type Booking struct {
	Start           string // "HH:MM"
	DurationMinutes int
}

// SlotOptions tweaks slot generation.
type SlotOptions struct {
	// AllowOverrun emits candidates whose end passes the closing hour. Off by default.
	AllowOverrun bool
	// NotBefore marks candidates starting before this minute-of-day unavailable.
	// Zero disables the check.
	NotBefore int
}

type interval struct {
	start, end int
}

func (a interval) overlaps(b interval) bool {
	return a.start < b.end && b.start < a.end
}

// GenerateSlots enumerates start times every intervalMinutes from dayStartHour:00 up to, but not
// including, dayEndHour:00 and marks each one available unless
// [start, start+requestedDurationMinutes) overlaps an existing booking.
func GenerateSlots(dayStartHour, dayEndHour, intervalMinutes int, existing []Booking, requestedDurationMinutes int) ([]models.TimeSlot, error) {
	return GenerateSlotsWithOptions(dayStartHour, dayEndHour, intervalMinutes, existing, requestedDurationMinutes, SlotOptions{})
}

// GenerateSlotsWithOptions is GenerateSlots with explicit options.
func GenerateSlotsWithOptions(dayStartHour, dayEndHour, intervalMinutes int, existing []Booking, requestedDurationMinutes int, opts SlotOptions) ([]models.TimeSlot, error) {
	if dayStartHour < 0 || dayStartHour > 23 || dayEndHour <= dayStartHour || dayEndHour > 24 {
		return nil, fmt.Errorf("%w: day window %d-%d", ErrInvalidWindow, dayStartHour, dayEndHour)
	}
	if intervalMinutes <= 0 {
		return nil, fmt.Errorf("%w: interval %d", ErrInvalidWindow, intervalMinutes)
	}
	if requestedDurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration %d", ErrInvalidWindow, requestedDurationMinutes)
	}

	busy := make([]interval, 0, len(existing))
	for _, b := range existing {
		iv, err := bookingInterval(b)
		if err != nil {
			return nil, err
		}
		busy = append(busy, iv)
	}

	open := dayStartHour * 60
	closing := dayEndHour * 60

	slots := make([]models.TimeSlot, 0, (closing-open)/intervalMinutes+1)
	for start := open; start < closing; start += intervalMinutes {
		candidate := interval{start: start, end: start + requestedDurationMinutes}
		if candidate.end > closing && !opts.AllowOverrun {
			continue
		}
		available := candidate.end <= minutesPerDay && start >= opts.NotBefore
		for _, b := range busy {
			if !available {
				break
			}
			if candidate.overlaps(b) {
				available = false
			}
		}
		slots = append(slots, models.TimeSlot{Time: FormatClock(start), Available: available})
	}
	return slots, nil
}

// IsSlotAvailable reports whether clock appears as an available slot.
func IsSlotAvailable(slots []models.TimeSlot, clock string) bool {
	for _, s := range slots {
		if s.Time == clock {
			return s.Available
		}
	}
	return false
}

func bookingInterval(b Booking) (interval, error) {
	start, err := ParseClock(b.Start)
	if err != nil {
		return interval{}, err
	}
	if b.DurationMinutes <= 0 {
		return interval{}, fmt.Errorf("%w: booking at %s has duration %d", ErrInvalidWindow, b.Start, b.DurationMinutes)
	}
	end := start + b.DurationMinutes
	if end > minutesPerDay {
		return interval{}, fmt.Errorf("%w: %s + %dm", ErrCrossesMidnight, b.Start, b.DurationMinutes)
	}
	return interval{start: start, end: end}, nil
}
