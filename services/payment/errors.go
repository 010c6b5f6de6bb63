package payment

import "errors"

var (
	// ErrInvalidSignature means the webhook body could not be authenticated.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrInvalidEvent means an authenticated event lacks the data needed to process it.
	ErrInvalidEvent = errors.New("invalid webhook event")
	// ErrNotPayable means the appointment is not awaiting payment.
	ErrNotPayable = errors.New("appointment is not awaiting payment")
)
