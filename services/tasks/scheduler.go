package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wuauser/models"
	"wuauser/services/scheduling"
	"wuauser/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is the part of *asynq.Client used here.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskDeleter is the part of *asynq.Inspector used here.
type TaskDeleter interface {
	DeleteTask(queue, id string) error
}

// ReminderScheduler queues one reminder per offset before each appointment.
type ReminderScheduler struct {
	client    Enqueuer
	inspector TaskDeleter
	queue     string
	offsets   []time.Duration
	loc       *time.Location
	now       func() time.Time
	metrics   *utils.Metrics
	logger    *zap.Logger
}

// ReminderSchedulerOptions configure a ReminderScheduler.
type ReminderSchedulerOptions struct {
	Queue    string
	Offsets  []time.Duration
	Location *time.Location
	Now      func() time.Time
	Metrics  *utils.Metrics
}

func NewReminderScheduler(client Enqueuer, inspector TaskDeleter, logger *zap.Logger, opts ReminderSchedulerOptions) *ReminderScheduler {
	if opts.Queue == "" {
		opts.Queue = "reminders"
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ReminderScheduler{
		client:    client,
		inspector: inspector,
		queue:     opts.Queue,
		offsets:   opts.Offsets,
		loc:       opts.Location,
		now:       opts.Now,
		metrics:   opts.Metrics,
		logger:    logger.Named("reminders"),
	}
}

// Schedule enqueues the reminders of apt. Reminders whose fire time already passed are skipped.
func (s *ReminderScheduler) Schedule(ctx context.Context, apt models.Appointment) error {
	at, err := scheduling.AppointmentMoment(apt.Date, apt.Time, s.loc)
	if err != nil {
		return err
	}

	var errs []error
	for _, offset := range s.offsets {
		fireAt := at.Add(-offset)
		if !fireAt.After(s.now()) {
			continue
		}
		payload := models.ReminderPayload{
			AppointmentID: apt.ID,
			OwnerID:       apt.OwnerID,
			Offset:        offset.String(),
			FireDate:      fireAt.UTC().Format(time.RFC3339),
			Title:         "Recordatorio de cita",
			Body:          fmt.Sprintf("Tu cita veterinaria es el %s a las %s", apt.Date, apt.Time),
		}
		err := s.enqueue(ctx, payload, fireAt, offset)
		s.count("schedule", err)
		if err != nil {
			errs = append(errs, fmt.Errorf("reminder %s: %w", ReminderTaskID(apt.ID, offset), err))
			continue
		}
		s.logger.Debug("Reminder scheduled",
			zap.String("appointmentId", apt.ID),
			zap.Duration("offset", offset),
			zap.Time("fireAt", fireAt),
		)
	}
	return errors.Join(errs...)
}

// enqueue replaces a task left behind under the same ID, for instance by a failed revoke.
func (s *ReminderScheduler) enqueue(ctx context.Context, payload models.ReminderPayload, fireAt time.Time, offset time.Duration) error {
	task, opts, err := NewReminderTask(payload, fireAt, s.queue, offset)
	if err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, task, opts...)
	if !errors.Is(err, asynq.ErrTaskIDConflict) {
		return err
	}
	if err := s.delete(ReminderTaskID(payload.AppointmentID, offset)); err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, task, opts...)
	return err
}

// Revoke deletes the pending reminders of an appointment. Missing tasks count as revoked.
func (s *ReminderScheduler) Revoke(ctx context.Context, appointmentID string) error {
	var errs []error
	for _, offset := range s.offsets {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.delete(ReminderTaskID(appointmentID, offset))
		s.count("revoke", err)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *ReminderScheduler) delete(id string) error {
	err := s.inspector.DeleteTask(s.queue, id)
	if err == nil || errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return fmt.Errorf("delete task %s: %w", id, err)
}

func (s *ReminderScheduler) count(action string, err error) {
	if s.metrics != nil {
		s.metrics.RemindersTotal.WithLabelValues(action, utils.Outcome(err)).Inc()
	}
}

// DisabledScheduler logs instead of queueing. It is used when no reminder queue is reachable.
type DisabledScheduler struct {
	logger *zap.Logger
}

func NewDisabledScheduler(logger *zap.Logger) *DisabledScheduler {
	return &DisabledScheduler{logger: logger.Named("reminders")}
}

func (d *DisabledScheduler) Schedule(_ context.Context, apt models.Appointment) error {
	d.logger.Debug("Reminder queue disabled, not scheduling", zap.String("appointmentId", apt.ID))
	return nil
}

func (d *DisabledScheduler) Revoke(_ context.Context, appointmentID string) error {
	d.logger.Debug("Reminder queue disabled, nothing to revoke", zap.String("appointmentId", appointmentID))
	return nil
}
