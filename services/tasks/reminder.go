package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"wuauser/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// ReminderTaskID is the deterministic queue ID of one reminder of an appointment.
func ReminderTaskID(appointmentID string, offset time.Duration) string {
	return fmt.Sprintf("reminder:%s:%s", appointmentID, offset)
}

// NewReminderTask builds the task and its options for a reminder firing at fireAt.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time, queue string, offset time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(ReminderTaskID(payload.AppointmentID, offset)),
		asynq.Queue(queue),
		asynq.MaxRetry(3),
		// Keep the ID reserved after completion so a late duplicate enqueue is rejected.
		asynq.Retention(24 * time.Hour),
	}
	return task, opts, nil
}

// ParseReminderPayload decodes a reminder task body.
func ParseReminderPayload(task *asynq.Task) (models.ReminderPayload, error) {
	var p models.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid reminder payload: %w", err)
	}
	return p, nil
}
