package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wuauser/database"
	"wuauser/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "appointments"

// MongoAppointmentRepo implements AppointmentRepository using MongoDB.
type MongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo creates a repository over the given collection.
func NewMongoAppointmentRepo(coll *mongo.Collection) *MongoAppointmentRepo {
	return &MongoAppointmentRepo{coll: coll}
}

// newContext bounds a single query.
func newContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

var sortByDateTime = bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}

func (r *MongoAppointmentRepo) Create(ctx context.Context, apt *models.Appointment) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, apt); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("appointment %s: %w", apt.ID, database.ErrDuplicate)
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *MongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var apt models.Appointment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&apt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("appointment %s: %w", id, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch appointment with id %s: %w", id, err)
	}
	return &apt, nil
}

func (r *MongoAppointmentRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Appointment, error) {
	return r.find(ctx, bson.M{"ownerId": ownerID})
}

func (r *MongoAppointmentRepo) ListByVet(ctx context.Context, vetID, date string) ([]models.Appointment, error) {
	filter := bson.M{"vetId": vetID}
	if date != "" {
		filter["date"] = date
	}
	return r.find(ctx, filter)
}

func (r *MongoAppointmentRepo) find(ctx context.Context, filter bson.M) ([]models.Appointment, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(sortByDateTime))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve appointments: %w", err)
	}
	defer cursor.Close(ctx)

	apts := []models.Appointment{}
	if err := cursor.All(ctx, &apts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return apts, nil
}

func (r *MongoAppointmentRepo) UpdateStatus(ctx context.Context, id string, from, to models.AppointmentStatus, notes string) (*models.Appointment, error) {
	set := bson.M{"status": to, "updatedAt": time.Now().UTC()}
	if notes != "" {
		set["notes"] = notes
	}
	return r.compareAndSet(ctx, id, bson.M{"id": id, "status": from}, set)
}

func (r *MongoAppointmentRepo) Reschedule(ctx context.Context, current models.Appointment, date, clock string) (*models.Appointment, error) {
	filter := bson.M{
		"id":     current.ID,
		"status": current.Status,
		"date":   current.Date,
		"time":   current.Time,
	}
	set := bson.M{"date": date, "time": clock, "updatedAt": time.Now().UTC()}
	return r.compareAndSet(ctx, current.ID, filter, set)
}

// compareAndSet applies set to the document matching filter and returns the updated document.
// When nothing matched, it tells a missing appointment apart from a concurrent change.
func (r *MongoAppointmentRepo) compareAndSet(ctx context.Context, id string, filter, set bson.M) (*models.Appointment, error) {
	cctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var apt models.Appointment
	err := r.coll.FindOneAndUpdate(cctx, filter, bson.M{"$set": set}, opts).Decode(&apt)
	if err == nil {
		return &apt, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update appointment with id %s: %w", id, err)
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("appointment %s: %w", id, database.ErrConflict)
}
