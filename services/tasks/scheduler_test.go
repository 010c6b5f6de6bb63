package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"wuauser/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type enqueued struct {
	id     string
	typ    string
	fireAt time.Time
	queue  string
}

type fakeQueue struct {
	tasks     map[string]enqueued
	deleteErr error
	deleted   []string
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{tasks: map[string]enqueued{}}
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	e := enqueued{typ: task.Type()}
	for _, o := range opts {
		switch o.Type() {
		case asynq.TaskIDOpt:
			e.id = o.Value().(string)
		case asynq.ProcessAtOpt:
			e.fireAt = o.Value().(time.Time)
		case asynq.QueueOpt:
			e.queue = o.Value().(string)
		}
	}
	if _, exists := q.tasks[e.id]; exists {
		return nil, asynq.ErrTaskIDConflict
	}
	q.tasks[e.id] = e
	return &asynq.TaskInfo{ID: e.id, Queue: e.queue}, nil
}

func (q *fakeQueue) DeleteTask(queue, id string) error {
	if q.deleteErr != nil {
		return q.deleteErr
	}
	q.deleted = append(q.deleted, id)
	if _, ok := q.tasks[id]; !ok {
		return asynq.ErrTaskNotFound
	}
	delete(q.tasks, id)
	return nil
}

var clock = time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)

func newScheduler(q *fakeQueue) *ReminderScheduler {
	return NewReminderScheduler(q, q, zap.NewNop(), ReminderSchedulerOptions{
		Queue:    "reminders",
		Offsets:  []time.Duration{24 * time.Hour, time.Hour},
		Location: time.UTC,
		Now:      func() time.Time { return clock },
	})
}

func appointmentAt(date, clock string) models.Appointment {
	return models.Appointment{ID: "a1", OwnerID: "owner-1", Date: date, Time: clock, Duration: 30, Status: models.StatusPending}
}

func TestSchedule_OnePerOffset(t *testing.T) {
	q := newFakeQueue()
	s := newScheduler(q)

	require.NoError(t, s.Schedule(context.Background(), appointmentAt("2025-03-11", "10:00")))

	require.Len(t, q.tasks, 2)
	day := q.tasks["reminder:a1:24h0m0s"]
	assert.Equal(t, TypeSendReminder, day.typ)
	assert.Equal(t, "reminders", day.queue)
	assert.Equal(t, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), day.fireAt)
	hour := q.tasks["reminder:a1:1h0m0s"]
	assert.Equal(t, time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC), hour.fireAt)
}

func TestSchedule_SkipsPastOffsets(t *testing.T) {
	q := newFakeQueue()
	s := newScheduler(q)

	// Tomorrow 10:00 is only 22 hours away.
	require.NoError(t, s.Schedule(context.Background(), appointmentAt("2025-03-10", "10:00")))
	require.Len(t, q.tasks, 1)
	assert.Contains(t, q.tasks, "reminder:a1:1h0m0s")
}

func TestSchedule_ReplacesStaleTask(t *testing.T) {
	q := newFakeQueue()
	s := newScheduler(q)
	ctx := context.Background()

	require.NoError(t, s.Schedule(ctx, appointmentAt("2025-03-11", "10:00")))
	require.NoError(t, s.Schedule(ctx, appointmentAt("2025-03-12", "15:00")))

	require.Len(t, q.tasks, 2)
	assert.Equal(t, time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC), q.tasks["reminder:a1:1h0m0s"].fireAt)
}

func TestRevoke(t *testing.T) {
	q := newFakeQueue()
	s := newScheduler(q)
	ctx := context.Background()

	require.NoError(t, s.Schedule(ctx, appointmentAt("2025-03-10", "10:00")))
	require.NoError(t, s.Revoke(ctx, "a1"), "the already-skipped 24h reminder is not an error")
	assert.Empty(t, q.tasks)
	assert.ElementsMatch(t, []string{"reminder:a1:24h0m0s", "reminder:a1:1h0m0s"}, q.deleted)
}

func TestRevoke_ReportsQueueErrors(t *testing.T) {
	q := newFakeQueue()
	q.deleteErr = errors.New("connection refused")
	s := newScheduler(q)

	err := s.Revoke(context.Background(), "a1")
	assert.ErrorContains(t, err, "connection refused")
}

func TestReminderPayloadRoundTrip(t *testing.T) {
	payload := models.ReminderPayload{AppointmentID: "a1", OwnerID: "owner-1", Title: "t", Body: "b"}
	task, opts, err := NewReminderTask(payload, clock, "reminders", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, opts)

	got, err := ParseReminderPayload(task)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, err = ParseReminderPayload(asynq.NewTask(TypeSendReminder, []byte("{")))
	assert.Error(t, err)
}
