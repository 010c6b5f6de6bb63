package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"wuauser/database"
	"wuauser/database/repository"
	"wuauser/models"
	"wuauser/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pushed struct {
	ownerID string
	title   string
	data    map[string]string
}

type fakeNotifier struct {
	sent []pushed
	err  error
}

func (f *fakeNotifier) NotifyOwner(_ context.Context, ownerID, title, _ string, data map[string]string) error {
	f.sent = append(f.sent, pushed{ownerID: ownerID, title: title, data: data})
	return f.err
}

func setup(t *testing.T, status models.AppointmentStatus) (*ReminderHandler, *fakeNotifier) {
	t.Helper()
	stores := repository.NewLocalStores(database.NewMemoryKV())
	require.NoError(t, stores.Appointments.Create(context.Background(), &models.Appointment{
		ID: "a1", OwnerID: "owner-1", VetID: "vet-1", Date: "2025-03-10", Time: "10:00", Duration: 30, Status: status,
	}))
	n := &fakeNotifier{}
	return NewReminderHandler(stores.Appointments, n, nil, zap.NewNop()), n
}

func reminderTask(t *testing.T, appointmentID string) *asynq.Task {
	t.Helper()
	task, _, err := tasks.NewReminderTask(models.ReminderPayload{
		AppointmentID: appointmentID,
		OwnerID:       "owner-1",
		Offset:        "1h0m0s",
		Title:         "Recordatorio de cita",
		Body:          "Tu cita veterinaria es el 2025-03-10 a las 10:00",
	}, time.Now().Add(time.Hour), "reminders", time.Hour)
	require.NoError(t, err)
	return task
}

func TestProcessTask_SendsForActiveAppointment(t *testing.T) {
	for _, status := range []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed} {
		h, n := setup(t, status)

		require.NoError(t, h.ProcessTask(context.Background(), reminderTask(t, "a1")))
		require.Len(t, n.sent, 1)
		assert.Equal(t, "owner-1", n.sent[0].ownerID)
		assert.Equal(t, "a1", n.sent[0].data["appointmentId"])
	}
}

func TestProcessTask_SkipsInactiveAppointment(t *testing.T) {
	for _, status := range []models.AppointmentStatus{models.StatusCancelled, models.StatusCompleted} {
		h, n := setup(t, status)

		require.NoError(t, h.ProcessTask(context.Background(), reminderTask(t, "a1")))
		assert.Empty(t, n.sent, status)
	}
}

func TestProcessTask_UnknownAppointment(t *testing.T) {
	h, n := setup(t, models.StatusPending)

	require.NoError(t, h.ProcessTask(context.Background(), reminderTask(t, "gone")))
	assert.Empty(t, n.sent)
}

func TestProcessTask_Errors(t *testing.T) {
	h, n := setup(t, models.StatusPending)
	n.err = errors.New("fcm down")

	err := h.ProcessTask(context.Background(), reminderTask(t, "a1"))
	assert.ErrorContains(t, err, "fcm down")

	err = h.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeSendReminder, []byte("not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
