package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wuauser/database"
	"wuauser/database/repository"
	"wuauser/models"
	"wuauser/services/scheduling"
	"wuauser/utils"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeReminders struct {
	mu          sync.Mutex
	scheduled   []string
	revoked     []string
	scheduleErr error
	revokeErr   error
}

func (f *fakeReminders) Schedule(_ context.Context, apt models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, apt.ID+"@"+apt.Date+" "+apt.Time)
	return f.scheduleErr
}

func (f *fakeReminders) Revoke(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, id)
	return f.revokeErr
}

var (
	owner    = models.Actor{ID: "owner-1", Role: models.RoleOwner}
	stranger = models.Actor{ID: "owner-2", Role: models.RoleOwner}
	vet      = models.Actor{ID: "vet-1", Role: models.RoleVet}
)

type fixture struct {
	svc       *DefaultAppointmentService
	stores    *repository.Stores
	reminders *fakeReminders
	logs      *observer.ObservedLogs
	metrics   *utils.Metrics
	now       time.Time
}

// newFixture seeds one vet (09-18, 30 min grid), two services and one pet, with the clock
// at 2025-03-09 12:00 UTC.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	stores := repository.NewLocalStores(database.NewMemoryKV())
	require.NoError(t, stores.Vets.Upsert(ctx, &models.Vet{ID: "vet-1", Name: "Dra. Ruiz", Schedule: models.DefaultDaySchedule}))
	require.NoError(t, stores.Vets.Upsert(ctx, &models.Vet{ID: "vet-2", Name: "Dr. Soto"}))
	require.NoError(t, stores.Services.Upsert(ctx, &models.Service{ID: "consulta", VetID: "vet-1", Name: "Consulta", Price: 450, Duration: 30}))
	require.NoError(t, stores.Services.Upsert(ctx, &models.Service{ID: "cirugia", VetID: "vet-1", Name: "Cirugía", Price: 3000, Duration: 60}))
	require.NoError(t, stores.Services.Upsert(ctx, &models.Service{ID: "otro", VetID: "vet-2", Name: "Baño", Price: 200, Duration: 30}))
	require.NoError(t, stores.Pets.Create(ctx, &models.Pet{ID: "pet-1", OwnerID: "owner-1", Name: "Luna"}))
	require.NoError(t, stores.Pets.Create(ctx, &models.Pet{ID: "pet-2", OwnerID: "owner-2", Name: "Max"}))

	core, logs := observer.New(zapcore.DebugLevel)
	reminders := &fakeReminders{}
	metrics := utils.NewMetrics()
	now := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)

	svc := NewAppointmentService(stores, reminders, metrics, zap.New(core), Options{
		Location:     time.UTC,
		ChangeWindow: scheduling.DefaultChangeWindow,
		Now:          func() time.Time { return now },
	})
	return &fixture{svc: svc, stores: stores, reminders: reminders, logs: logs, metrics: metrics, now: now}
}

func input(date, clock, service string) models.AppointmentInput {
	return models.AppointmentInput{
		VetID:     "vet-1",
		PetID:     "pet-1",
		OwnerID:   "owner-1",
		ServiceID: service,
		Date:      date,
		Time:      clock,
		Reason:    "  vacunas  ",
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.svc.Create(ctx, input("2025-03-10", "10:00", "consulta"))
	require.NoError(t, err)

	assert.NotEmpty(t, apt.ID)
	assert.Equal(t, models.StatusPending, apt.Status)
	assert.Equal(t, 30, apt.Duration)
	assert.Equal(t, "vacunas", apt.Reason)
	assert.Equal(t, []string{apt.ID + "@2025-03-10 10:00"}, f.reminders.scheduled)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AppointmentsCreatedTotal))

	stored, err := f.stores.Appointments.GetByID(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, "10:00", stored.Time)
}

func TestCreate_SlotTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, input("2025-03-10", "10:00", "consulta"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, input("2025-03-10", "10:00", "consulta"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// A 60 minute service starting at 09:30 would run into the 10:00 booking.
	_, err = f.svc.Create(ctx, input("2025-03-10", "09:30", "cirugia"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Once cancelled, the slot is bookable again.
	_, err = f.svc.ApplyTransition(ctx, owner, first.ID, models.StatusCancelled, "")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, input("2025-03-10", "10:00", "consulta"))
	assert.NoError(t, err)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		edit  func(*models.AppointmentInput)
		field string
	}{
		{"missing vet", func(in *models.AppointmentInput) { in.VetID = "" }, "vetId"},
		{"missing owner", func(in *models.AppointmentInput) { in.OwnerID = "" }, "ownerId"},
		{"bad date", func(in *models.AppointmentInput) { in.Date = "10/03/2025" }, "date"},
		{"bad time", func(in *models.AppointmentInput) { in.Time = "9:00" }, "time"},
		{"impossible date", func(in *models.AppointmentInput) { in.Date = "2025-02-30" }, "date"},
		{"in the past", func(in *models.AppointmentInput) { in.Date = "2025-03-08" }, "date"},
		{"unknown pet", func(in *models.AppointmentInput) { in.PetID = "pet-9" }, "petId"},
		{"unknown vet", func(in *models.AppointmentInput) { in.VetID = "vet-9" }, "vetId"},
		{"service of another vet", func(in *models.AppointmentInput) { in.ServiceID = "otro" }, "serviceId"},
		{"negative duration", func(in *models.AppointmentInput) { in.Duration = -15 }, "duration"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := input("2025-03-10", "10:00", "consulta")
			tc.edit(&in)

			_, err := f.svc.Create(ctx, in)
			require.ErrorIs(t, err, ErrValidation)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestCreate_ForeignPetAndOffGridTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := input("2025-03-10", "10:00", "consulta")
	in.PetID = "pet-2"
	_, err := f.svc.Create(ctx, in)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Create(ctx, input("2025-03-10", "10:15", "consulta"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// 17:30 + 60 minutes passes closing time.
	_, err = f.svc.Create(ctx, input("2025-03-10", "17:30", "cirugia"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestCreate_ReminderFailureDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	f.reminders.scheduleErr = errors.New("redis down")

	apt, err := f.svc.Create(context.Background(), input("2025-03-10", "11:00", "consulta"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, apt.Status)
	assert.Equal(t, 1, f.logs.FilterMessage("Failed to schedule reminders").Len())
}

func TestAvailableSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, input("2025-03-10", "10:00", "consulta"))
	require.NoError(t, err)
	cancelled, err := f.svc.Create(ctx, input("2025-03-10", "14:00", "consulta"))
	require.NoError(t, err)
	_, err = f.svc.ApplyTransition(ctx, vet, cancelled.ID, models.StatusCancelled, "")
	require.NoError(t, err)

	res, err := f.svc.AvailableSlots(ctx, "vet-1", "2025-03-10", "consulta", 0)
	require.NoError(t, err)
	assert.Equal(t, 30, res.Duration)
	require.Len(t, res.Slots, 18)

	byTime := map[string]bool{}
	for _, s := range res.Slots {
		byTime[s.Time] = s.Available
	}
	assert.False(t, byTime["10:00"])
	assert.True(t, byTime["09:30"])
	assert.True(t, byTime["11:00"])
	assert.True(t, byTime["14:00"], "cancelled appointments free their slot")
}

func TestAvailableSlots_Today(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.AvailableSlots(context.Background(), "vet-1", "2025-03-09", "", 30)
	require.NoError(t, err)
	for _, s := range res.Slots {
		if s.Time <= "12:00" {
			assert.False(t, s.Available, s.Time)
		} else {
			assert.True(t, s.Available, s.Time)
		}
	}

	res, err = f.svc.AvailableSlots(context.Background(), "vet-1", "2025-03-01", "", 30)
	require.NoError(t, err)
	for _, s := range res.Slots {
		assert.False(t, s.Available, s.Time)
	}
}

func TestAvailableSlots_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AvailableSlots(ctx, "vet-9", "2025-03-10", "", 30)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.AvailableSlots(ctx, "vet-1", "tomorrow", "", 30)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.AvailableSlots(ctx, "vet-1", "2025-03-10", "", 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestApplyTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	apt, err := f.svc.Create(ctx, input("2025-03-10", "10:00", "consulta"))
	require.NoError(t, err)

	_, err = f.svc.ApplyTransition(ctx, vet, apt.ID, models.StatusCompleted, "")
	assert.ErrorIs(t, err, scheduling.ErrIllegalTransition)
	assert.Contains(t, err.Error(), "allowed: confirmed, cancelled")

	_, err = f.svc.ApplyTransition(ctx, owner, apt.ID, "bogus", "")
	assert.ErrorIs(t, err, scheduling.ErrUnknownStatus, "unknown statuses are rejected before the role check")

	_, err = f.svc.ApplyTransition(ctx, owner, apt.ID, models.StatusConfirmed, "")
	assert.ErrorIs(t, err, ErrForbidden, "owners may only cancel")

	_, err = f.svc.ApplyTransition(ctx, stranger, apt.ID, models.StatusCancelled, "")
	assert.ErrorIs(t, err, ErrForbidden)

	confirmed, err := f.svc.ApplyTransition(ctx, vet, apt.ID, models.StatusConfirmed, "traer cartilla")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
	assert.Equal(t, "traer cartilla", confirmed.Notes)

	cancelled, err := f.svc.ApplyTransition(ctx, owner, apt.ID, models.StatusCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, []string{apt.ID}, f.reminders.revoked)

	_, err = f.svc.ApplyTransition(ctx, vet, apt.ID, models.StatusConfirmed, "")
	assert.ErrorIs(t, err, scheduling.ErrIllegalTransition)

	_, err = f.svc.ApplyTransition(ctx, vet, "missing", models.StatusConfirmed, "")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TransitionsTotal.WithLabelValues("confirmed", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TransitionsTotal.WithLabelValues("cancelled", "ok")))
}

func TestApplyTransition_CancelWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 13:00 is one hour after the fixture clock.
	apt, err := f.svc.Create(ctx, input("2025-03-09", "13:00", "consulta"))
	require.NoError(t, err)
	_, err = f.svc.ApplyTransition(ctx, vet, apt.ID, models.StatusConfirmed, "")
	require.NoError(t, err)

	_, err = f.svc.ApplyTransition(ctx, owner, apt.ID, models.StatusCancelled, "")
	assert.ErrorIs(t, err, ErrPolicyViolation)
	_, err = f.svc.ApplyTransition(ctx, vet, apt.ID, models.StatusCancelled, "")
	assert.ErrorIs(t, err, ErrPolicyViolation)

	// System-originated transitions are not subject to the window.
	got, err := f.svc.ApplyTransition(ctx, models.SystemActor, apt.ID, models.StatusCancelled, "refund")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
}

func TestApplyTransition_RevokeFailureStillCancels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.reminders.revokeErr = errors.New("queue unreachable")

	apt, err := f.svc.Create(ctx, input("2025-03-10", "10:00", "consulta"))
	require.NoError(t, err)

	got, err := f.svc.ApplyTransition(ctx, owner, apt.ID, models.StatusCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)

	stored, err := f.stores.Appointments.GetByID(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)

	warnings := f.logs.FilterMessage("Failed to revoke reminders").FilterLevelExact(zapcore.WarnLevel)
	require.Equal(t, 1, warnings.Len())
	assert.Equal(t, apt.ID, warnings.All()[0].ContextMap()["appointmentId"])
}

func TestReschedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	long, err := f.svc.Create(ctx, input("2025-03-10", "10:00", "cirugia"))
	require.NoError(t, err)
	other, err := f.svc.Create(ctx, input("2025-03-10", "12:00", "consulta"))
	require.NoError(t, err)

	// Overlapping its own current slot is fine.
	moved, err := f.svc.Reschedule(ctx, owner, long.ID, "2025-03-10", "10:30")
	require.NoError(t, err)
	assert.Equal(t, "10:30", moved.Time)
	assert.Contains(t, f.reminders.revoked, long.ID)
	assert.Contains(t, f.reminders.scheduled, long.ID+"@2025-03-10 10:30")

	// 11:30 + 60 minutes runs into the 12:00 appointment.
	_, err = f.svc.Reschedule(ctx, vet, long.ID, "2025-03-10", "11:30")
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	_, err = f.svc.Reschedule(ctx, stranger, other.ID, "2025-03-11", "09:00")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Reschedule(ctx, owner, other.ID, "2025-03-11", "25:00")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReschedule_PolicyGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	soon, err := f.svc.Create(ctx, input("2025-03-09", "13:30", "consulta"))
	require.NoError(t, err)
	_, err = f.svc.Reschedule(ctx, owner, soon.ID, "2025-03-10", "09:00")
	assert.ErrorIs(t, err, ErrPolicyViolation)

	later, err := f.svc.Create(ctx, input("2025-03-10", "09:00", "consulta"))
	require.NoError(t, err)
	_, err = f.svc.ApplyTransition(ctx, owner, later.ID, models.StatusCancelled, "")
	require.NoError(t, err)
	_, err = f.svc.Reschedule(ctx, owner, later.ID, "2025-03-10", "15:00")
	assert.ErrorIs(t, err, ErrPolicyViolation, "terminal appointments cannot move")
}

func TestGetAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, input("2025-03-11", "09:00", "consulta"))
	require.NoError(t, err)
	a, err := f.svc.Create(ctx, input("2025-03-10", "16:00", "consulta"))
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, vet, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = f.svc.Get(ctx, stranger, a.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Get(ctx, owner, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	mine, err := f.svc.ListForOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, a.ID, mine[0].ID)
	assert.Equal(t, b.ID, mine[1].ID)

	day, err := f.svc.ListForVet(ctx, "vet-1", "2025-03-11")
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, b.ID, day[0].ID)

	_, err = f.svc.ListForVet(ctx, "vet-1", "11-03-2025")
	assert.ErrorIs(t, err, ErrValidation)
}
