package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wuauser/database"
	"wuauser/database/repository"
	"wuauser/services/notification"
	"wuauser/services/scheduling"
	"wuauser/services/tasks"
	"wuauser/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReminderHandler sends the push for a due reminder.
type ReminderHandler struct {
	appointments repository.AppointmentRepository
	notifier     notification.NotificationService
	metrics      *utils.Metrics
	logger       *zap.Logger
}

func NewReminderHandler(appointments repository.AppointmentRepository, notifier notification.NotificationService, metrics *utils.Metrics, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{
		appointments: appointments,
		notifier:     notifier,
		metrics:      metrics,
		logger:       logger.Named("reminder-worker"),
	}
}

// ProcessTask implements asynq.Handler. Reminders of appointments that are gone,
// cancelled or completed are dropped without retry.
func (h *ReminderHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	p, err := tasks.ParseReminderPayload(task)
	if err != nil {
		h.logger.Error("Dropping reminder", zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	log := h.logger.With(zap.String("appointmentId", p.AppointmentID), zap.String("offset", p.Offset))

	apt, err := h.appointments.GetByID(ctx, p.AppointmentID)
	if errors.Is(err, database.ErrNotFound) {
		log.Warn("Reminder for unknown appointment, skipping")
		h.count("skip")
		return nil
	}
	if err != nil {
		return err
	}
	if scheduling.IsTerminal(apt.Status) {
		log.Info("Appointment no longer active, skipping reminder", zap.String("status", string(apt.Status)))
		h.count("skip")
		return nil
	}

	data := map[string]string{
		"appointmentId": apt.ID,
		"fireDate":      p.FireDate,
		"date":          apt.Date,
		"time":          apt.Time,
	}
	if err := h.notifier.NotifyOwner(ctx, apt.OwnerID, p.Title, p.Body, data); err != nil {
		log.Warn("Failed to send reminder", zap.Error(err))
		h.count("send_error")
		return err
	}
	log.Info("Reminder sent")
	h.count("sent")
	return nil
}

func (h *ReminderHandler) count(outcome string) {
	if h.metrics != nil {
		h.metrics.RemindersTotal.WithLabelValues("deliver", outcome).Inc()
	}
}

// StartReminderWorker runs the asynq server for the reminder queue in the background.
// The caller owns the returned server and must Shutdown it.
func StartReminderWorker(redisOpt asynq.RedisClientOpt, queue string, handler *ReminderHandler, logger *zap.Logger) (*asynq.Server, error) {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				queue: 1,
			},
			Logger:   zapAsynqLogger{logger.Named("asynq").Sugar()},
			LogLevel: asynq.WarnLevel,
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeSendReminder, handler)

	const maxAttempts = 5
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = srv.Start(mux); err == nil {
			logger.Info("Reminder worker started", zap.String("queue", queue))
			return srv, nil
		}
		logger.Warn("Failed to start reminder worker",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", maxAttempts),
			zap.Error(err),
		)
		time.Sleep(time.Duration(attempt*2) * time.Second)
	}
	return nil, fmt.Errorf("reminder worker: %w", err)
}

// zapAsynqLogger adapts zap to asynq.Logger.
type zapAsynqLogger struct {
	s *zap.SugaredLogger
}

func (l zapAsynqLogger) Debug(args ...interface{}) { l.s.Debug(args...) }
func (l zapAsynqLogger) Info(args ...interface{})  { l.s.Info(args...) }
func (l zapAsynqLogger) Warn(args ...interface{})  { l.s.Warn(args...) }
func (l zapAsynqLogger) Error(args ...interface{}) { l.s.Error(args...) }
func (l zapAsynqLogger) Fatal(args ...interface{}) { l.s.Fatal(args...) }
