package handlers

import (
	"net/http"
)

// HandlerBundle groups the endpoint handlers routes are registered with.
type HandlerBundle struct {
	Health       *HealthHandler
	Appointments *AppointmentHandler
	Vets         *VetHandler
	Payments     *PaymentHandler
	Pets         *PetHandler
	Metrics      http.Handler
}
