package appointmentRepo

import (
	"context"

	"wuauser/models"
)

// AppointmentRepository persists appointments. Lists are ordered by date then time.
// Missing records yield database.ErrNotFound; a lost compare-and-set yields database.ErrConflict.
type AppointmentRepository interface {
	Create(ctx context.Context, apt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Appointment, error)
	// ListByVet returns every appointment of the vet, or only those on date when it is non-empty.
	ListByVet(ctx context.Context, vetID, date string) ([]models.Appointment, error)
	// UpdateStatus moves the appointment from status "from" to "to" if it is still in "from".
	UpdateStatus(ctx context.Context, id string, from, to models.AppointmentStatus, notes string) (*models.Appointment, error)
	// Reschedule moves current to date/clock if its status, date and time are unchanged since it was read.
	Reschedule(ctx context.Context, current models.Appointment, date, clock string) (*models.Appointment, error)
}
