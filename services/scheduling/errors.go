package scheduling

import "errors"

var (
	// ErrInvalidWindow is returned for a malformed day window, interval or duration.
	ErrInvalidWindow = errors.New("invalid scheduling window")
	// ErrInvalidTime is returned for a clock value that is not a valid "HH:MM".
	ErrInvalidTime = errors.New("invalid time of day")
	// ErrCrossesMidnight is returned for a booking whose end falls on the next day.
	ErrCrossesMidnight = errors.New("booking crosses midnight")
	// ErrUnknownStatus is returned for a status outside the closed set.
	ErrUnknownStatus = errors.New("unknown appointment status")
	// ErrIllegalTransition is returned when the transition table forbids a status change.
	ErrIllegalTransition = errors.New("illegal status transition")
)
