package appointmentRepo

import (
	"context"
	"sync"
	"testing"
	"time"

	"wuauser/database"
	"wuauser/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAppointment(id, date, clock string) *models.Appointment {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.Appointment{
		ID:        id,
		VetID:     "vet-1",
		PetID:     "pet-1",
		OwnerID:   "owner-1",
		ServiceID: "svc-1",
		Date:      date,
		Time:      clock,
		Duration:  30,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newLocalRepo(t *testing.T) *LocalAppointmentRepo {
	t.Helper()
	return NewLocalAppointmentRepo(database.NewLocalDB(database.NewMemoryKV()))
}

func TestLocalRepo_CreateGetAndDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := newLocalRepo(t)

	require.NoError(t, repo.Create(ctx, sampleAppointment("a1", "2025-03-10", "10:00")))
	err := repo.Create(ctx, sampleAppointment("a1", "2025-03-10", "11:00"))
	assert.ErrorIs(t, err, database.ErrDuplicate)

	got, err := repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "10:00", got.Time)

	_, err = repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestLocalRepo_ListsAreOrdered(t *testing.T) {
	ctx := context.Background()
	repo := newLocalRepo(t)

	require.NoError(t, repo.Create(ctx, sampleAppointment("a3", "2025-03-11", "09:00")))
	require.NoError(t, repo.Create(ctx, sampleAppointment("a2", "2025-03-10", "14:00")))
	require.NoError(t, repo.Create(ctx, sampleAppointment("a1", "2025-03-10", "09:30")))
	other := sampleAppointment("b1", "2025-03-10", "08:00")
	other.VetID = "vet-2"
	other.OwnerID = "owner-2"
	require.NoError(t, repo.Create(ctx, other))

	byOwner, err := repo.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2", "a3"}, ids(byOwner))

	byVetDay, err := repo.ListByVet(ctx, "vet-1", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, ids(byVetDay))

	empty, err := repo.ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestLocalRepo_UpdateStatusIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	repo := newLocalRepo(t)
	require.NoError(t, repo.Create(ctx, sampleAppointment("a1", "2025-03-10", "10:00")))

	updated, err := repo.UpdateStatus(ctx, "a1", models.StatusPending, models.StatusConfirmed, "paid")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
	assert.Equal(t, "paid", updated.Notes)

	_, err = repo.UpdateStatus(ctx, "a1", models.StatusPending, models.StatusCancelled, "")
	assert.ErrorIs(t, err, database.ErrConflict)

	_, err = repo.UpdateStatus(ctx, "missing", models.StatusPending, models.StatusCancelled, "")
	assert.ErrorIs(t, err, database.ErrNotFound)

	stored, err := repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
}

func TestLocalRepo_ConcurrentTransitionsHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	repo := newLocalRepo(t)
	require.NoError(t, repo.Create(ctx, sampleAppointment("a1", "2025-03-10", "10:00")))

	targets := []models.AppointmentStatus{models.StatusConfirmed, models.StatusCancelled}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target models.AppointmentStatus) {
			defer wg.Done()
			_, errs[i] = repo.UpdateStatus(ctx, "a1", models.StatusPending, target, "")
		}(i, target)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, database.ErrConflict)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestLocalRepo_Reschedule(t *testing.T) {
	ctx := context.Background()
	repo := newLocalRepo(t)
	apt := sampleAppointment("a1", "2025-03-10", "10:00")
	require.NoError(t, repo.Create(ctx, apt))

	moved, err := repo.Reschedule(ctx, *apt, "2025-03-12", "16:30")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-12", moved.Date)
	assert.Equal(t, "16:30", moved.Time)

	// The original read is stale now.
	_, err = repo.Reschedule(ctx, *apt, "2025-03-13", "09:00")
	assert.ErrorIs(t, err, database.ErrConflict)
}

func ids(apts []models.Appointment) []string {
	out := make([]string, 0, len(apts))
	for _, a := range apts {
		out = append(out, a.ID)
	}
	return out
}
