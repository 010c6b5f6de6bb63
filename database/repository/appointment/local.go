package appointmentRepo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"wuauser/database"
	"wuauser/models"
)

// LocalAppointmentRepo keeps appointments as one JSON array in the local store.
type LocalAppointmentRepo struct {
	db *database.LocalDB
}

func NewLocalAppointmentRepo(db *database.LocalDB) *LocalAppointmentRepo {
	return &LocalAppointmentRepo{db: db}
}

func (r *LocalAppointmentRepo) Create(ctx context.Context, apt *models.Appointment) error {
	return database.Mutate(ctx, r.db, database.KeyAppointments, func(apts []models.Appointment) ([]models.Appointment, error) {
		for _, a := range apts {
			if a.ID == apt.ID {
				return nil, fmt.Errorf("appointment %s: %w", apt.ID, database.ErrDuplicate)
			}
		}
		return append(apts, *apt), nil
	})
}

func (r *LocalAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	apts, err := database.View[models.Appointment](ctx, r.db, database.KeyAppointments)
	if err != nil {
		return nil, err
	}
	for i := range apts {
		if apts[i].ID == id {
			return &apts[i], nil
		}
	}
	return nil, fmt.Errorf("appointment %s: %w", id, database.ErrNotFound)
}

func (r *LocalAppointmentRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Appointment, error) {
	return r.filter(ctx, func(a models.Appointment) bool { return a.OwnerID == ownerID })
}

func (r *LocalAppointmentRepo) ListByVet(ctx context.Context, vetID, date string) ([]models.Appointment, error) {
	return r.filter(ctx, func(a models.Appointment) bool {
		return a.VetID == vetID && (date == "" || a.Date == date)
	})
}

func (r *LocalAppointmentRepo) filter(ctx context.Context, keep func(models.Appointment) bool) ([]models.Appointment, error) {
	apts, err := database.View[models.Appointment](ctx, r.db, database.KeyAppointments)
	if err != nil {
		return nil, err
	}
	out := []models.Appointment{}
	for _, a := range apts {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r *LocalAppointmentRepo) UpdateStatus(ctx context.Context, id string, from, to models.AppointmentStatus, notes string) (*models.Appointment, error) {
	return r.update(ctx, id, func(a *models.Appointment) bool {
		if a.Status != from {
			return false
		}
		a.Status = to
		if notes != "" {
			a.Notes = notes
		}
		return true
	})
}

func (r *LocalAppointmentRepo) Reschedule(ctx context.Context, current models.Appointment, date, clock string) (*models.Appointment, error) {
	return r.update(ctx, current.ID, func(a *models.Appointment) bool {
		if a.Status != current.Status || a.Date != current.Date || a.Time != current.Time {
			return false
		}
		a.Date = date
		a.Time = clock
		return true
	})
}

// update applies change to the appointment with id. change returns false when the
// stored record no longer matches what the caller read.
func (r *LocalAppointmentRepo) update(ctx context.Context, id string, change func(*models.Appointment) bool) (*models.Appointment, error) {
	var updated models.Appointment
	err := database.Mutate(ctx, r.db, database.KeyAppointments, func(apts []models.Appointment) ([]models.Appointment, error) {
		for i := range apts {
			if apts[i].ID != id {
				continue
			}
			if !change(&apts[i]) {
				return nil, fmt.Errorf("appointment %s: %w", id, database.ErrConflict)
			}
			apts[i].UpdatedAt = time.Now().UTC()
			updated = apts[i]
			return apts, nil
		}
		return nil, fmt.Errorf("appointment %s: %w", id, database.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
