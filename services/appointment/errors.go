package appointment

import (
	"errors"
	"fmt"

	"wuauser/database"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrSlotUnavailable = errors.New("slot unavailable")
	ErrPolicyViolation = errors.New("too close to the appointment to change it")
	ErrConflict        = errors.New("appointment was modified concurrently")
	ErrForbidden       = errors.New("forbidden")
)

// ValidationError describes a bad input field. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// translate maps storage errors onto the service's error categories.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, err.Error())
	case errors.Is(err, database.ErrConflict):
		return fmt.Errorf("%w: %s", ErrConflict, err.Error())
	default:
		return err
	}
}
