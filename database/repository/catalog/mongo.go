package catalogRepo

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

const (
	VetsCollection     = "vets"
	ServicesCollection = "services"
	PetsCollection     = "pets"
)

// mongoCollection wraps the queries shared by the catalog collections.
type mongoCollection[T any] struct {
	coll *mongo.Collection
	kind string
}

func (c mongoCollection[T]) findOne(ctx context.Context, filter bson.M, what string) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var out T
	if err := c.coll.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s %s: %w", c.kind, what, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch %s %s: %w", c.kind, what, err)
	}
	return &out, nil
}

func (c mongoCollection[T]) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %ss: %w", c.kind, err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %ss: %w", c.kind, err)
	}
	return out, nil
}

func (c mongoCollection[T]) upsert(ctx context.Context, id string, doc *T) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := c.coll.ReplaceOne(ctx, bson.M{"id": id}, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert %s %s: %w", c.kind, id, err)
	}
	return nil
}

// MongoVetRepo implements VetRepository using MongoDB.
type MongoVetRepo struct{ c mongoCollection[models.Vet] }

func NewMongoVetRepo(coll *mongo.Collection) *MongoVetRepo {
	return &MongoVetRepo{c: mongoCollection[models.Vet]{coll: coll, kind: "vet"}}
}

func (r *MongoVetRepo) GetByID(ctx context.Context, id string) (*models.Vet, error) {
	return r.c.findOne(ctx, bson.M{"id": id}, id)
}

func (r *MongoVetRepo) List(ctx context.Context) ([]models.Vet, error) {
	return r.c.find(ctx, bson.M{})
}

func (r *MongoVetRepo) Upsert(ctx context.Context, vet *models.Vet) error {
	return r.c.upsert(ctx, vet.ID, vet)
}

type geoNearVet struct {
	models.Vet     `bson:",inline"`
	DistanceMeters float64 `bson:"distanceMeters"`
}

// Nearby runs $geoNear against the 2dsphere index on location.
func (r *MongoVetRepo) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]models.NearbyVet, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: bson.D{
				{Key: "type", Value: "Point"},
				{Key: "coordinates", Value: bson.A{lng, lat}},
			}},
			{Key: "distanceField", Value: "distanceMeters"},
			{Key: "spherical", Value: true},
			{Key: "maxDistance", Value: radiusKm * 1000},
		}}},
	}
	cursor, err := r.c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to search nearby vets: %w", err)
	}
	defer cursor.Close(ctx)

	var found []geoNearVet
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode nearby vets: %w", err)
	}
	out := make([]models.NearbyVet, 0, len(found))
	for _, f := range found {
		out = append(out, models.NearbyVet{Vet: f.Vet, DistanceKm: f.DistanceMeters / 1000})
	}
	return out, nil
}

// MongoServiceRepo implements ServiceRepository using MongoDB.
type MongoServiceRepo struct{ c mongoCollection[models.Service] }

func NewMongoServiceRepo(coll *mongo.Collection) *MongoServiceRepo {
	return &MongoServiceRepo{c: mongoCollection[models.Service]{coll: coll, kind: "service"}}
}

func (r *MongoServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	return r.c.findOne(ctx, bson.M{"id": id}, id)
}

func (r *MongoServiceRepo) ListByVet(ctx context.Context, vetID string) ([]models.Service, error) {
	return r.c.find(ctx, bson.M{"vetId": vetID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *MongoServiceRepo) Upsert(ctx context.Context, svc *models.Service) error {
	return r.c.upsert(ctx, svc.ID, svc)
}

// MongoPetRepo implements PetRepository using MongoDB.
type MongoPetRepo struct{ c mongoCollection[models.Pet] }

func NewMongoPetRepo(coll *mongo.Collection) *MongoPetRepo {
	return &MongoPetRepo{c: mongoCollection[models.Pet]{coll: coll, kind: "pet"}}
}

func (r *MongoPetRepo) Create(ctx context.Context, pet *models.Pet) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.c.coll.InsertOne(ctx, pet); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("pet %s: %w", pet.ID, database.ErrDuplicate)
		}
		return fmt.Errorf("failed to create pet: %w", err)
	}
	return nil
}

func (r *MongoPetRepo) GetByID(ctx context.Context, id string) (*models.Pet, error) {
	return r.c.findOne(ctx, bson.M{"id": id}, id)
}

func (r *MongoPetRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Pet, error) {
	return r.c.find(ctx, bson.M{"ownerId": ownerID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (r *MongoPetRepo) UpdatePhoto(ctx context.Context, id, photoURL string) (*models.Pet, error) {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"photoUrl": photoURL, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var pet models.Pet
	if err := r.c.coll.FindOneAndUpdate(cctx, bson.M{"id": id}, update, opts).Decode(&pet); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("pet %s: %w", id, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update pet with id %s: %w", id, err)
	}
	return &pet, nil
}

// EnsureIndexes creates the catalog indexes on db.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	specs := map[string][]mongo.IndexModel{
		VetsCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		},
		ServicesCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "vetId", Value: 1}}},
		},
		PetsCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "ownerId", Value: 1}}},
		},
	}
	for name, indexes := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}
