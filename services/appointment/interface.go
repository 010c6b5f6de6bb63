package appointment

import (
	"context"
	"time"

	"wuauser/database/repository"
	"wuauser/models"
	"wuauser/utils"

	"go.uber.org/zap"
)

// AppointmentService books and manages appointments.
type AppointmentService interface {
	Create(ctx context.Context, input models.AppointmentInput) (*models.Appointment, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Appointment, error)
	ListForOwner(ctx context.Context, ownerID string) ([]models.Appointment, error)
	ListForVet(ctx context.Context, vetID, date string) ([]models.Appointment, error)
	AvailableSlots(ctx context.Context, vetID, date, serviceID string, duration int) (*models.SlotsResponse, error)
	ApplyTransition(ctx context.Context, actor models.Actor, id string, target models.AppointmentStatus, notes string) (*models.Appointment, error)
	Reschedule(ctx context.Context, actor models.Actor, id, date, clock string) (*models.Appointment, error)
}

// ReminderScheduler queues and revokes the reminders of an appointment.
type ReminderScheduler interface {
	Schedule(ctx context.Context, apt models.Appointment) error
	Revoke(ctx context.Context, appointmentID string) error
}

// Options tune the clinic policy.
type Options struct {
	Location     *time.Location
	ChangeWindow time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// DefaultAppointmentService is the production implementation.
type DefaultAppointmentService struct {
	appointments repository.AppointmentRepository
	vets         repository.VetRepository
	services     repository.ServiceRepository
	pets         repository.PetRepository
	reminders    ReminderScheduler
	metrics      *utils.Metrics
	logger       *zap.Logger

	loc    *time.Location
	window time.Duration
	now    func() time.Time
}

// NewAppointmentService wires the service. metrics may be nil.
func NewAppointmentService(
	stores *repository.Stores,
	reminders ReminderScheduler,
	metrics *utils.Metrics,
	logger *zap.Logger,
	opts Options,
) *DefaultAppointmentService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.ChangeWindow <= 0 {
		opts.ChangeWindow = 2 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &DefaultAppointmentService{
		appointments: stores.Appointments,
		vets:         stores.Vets,
		services:     stores.Services,
		pets:         stores.Pets,
		reminders:    reminders,
		metrics:      metrics,
		logger:       logger.Named("appointment"),
		loc:          opts.Location,
		window:       opts.ChangeWindow,
		now:          opts.Now,
	}
}
