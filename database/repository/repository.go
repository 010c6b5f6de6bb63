package repository

import (
	"context"
	"fmt"

	"wuauser/database"
	appointmentRepo "wuauser/database/repository/appointment"
	catalogRepo "wuauser/database/repository/catalog"
	paymentRepo "wuauser/database/repository/payment"

	"go.mongodb.org/mongo-driver/mongo"
)

// Re-export the repository interfaces.
type (
	AppointmentRepository = appointmentRepo.AppointmentRepository
	VetRepository         = catalogRepo.VetRepository
	ServiceRepository     = catalogRepo.ServiceRepository
	PetRepository         = catalogRepo.PetRepository
	PaymentRepository     = paymentRepo.PaymentRepository
)

// Stores is the persistence capability handed to the services. It is chosen once at startup.
type Stores struct {
	Backend      string
	Appointments AppointmentRepository
	Vets         VetRepository
	Services     ServiceRepository
	Pets         PetRepository
	Payments     PaymentRepository
}

// NewMongoStores builds the remote stores on db and ensures their indexes.
func NewMongoStores(ctx context.Context, db *mongo.Database) (*Stores, error) {
	appointments := appointmentRepo.NewMongoAppointmentRepo(db.Collection(appointmentRepo.CollectionName))
	payments := paymentRepo.NewMongoPaymentRepo(
		db.Collection(paymentRepo.TransactionsCollection),
		db.Collection(paymentRepo.BalancesCollection),
	)

	if err := appointments.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("repository: %w", err)
	}
	if err := payments.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("repository: %w", err)
	}
	if err := catalogRepo.EnsureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("repository: %w", err)
	}

	return &Stores{
		Backend:      "mongo",
		Appointments: appointments,
		Vets:         catalogRepo.NewMongoVetRepo(db.Collection(catalogRepo.VetsCollection)),
		Services:     catalogRepo.NewMongoServiceRepo(db.Collection(catalogRepo.ServicesCollection)),
		Pets:         catalogRepo.NewMongoPetRepo(db.Collection(catalogRepo.PetsCollection)),
		Payments:     payments,
	}, nil
}

// NewLocalStores builds the fallback stores over a key-value backend.
func NewLocalStores(kv database.KV) *Stores {
	db := database.NewLocalDB(kv)
	return &Stores{
		Backend:      "local",
		Appointments: appointmentRepo.NewLocalAppointmentRepo(db),
		Vets:         catalogRepo.NewLocalVetRepo(db),
		Services:     catalogRepo.NewLocalServiceRepo(db),
		Pets:         catalogRepo.NewLocalPetRepo(db),
		Payments:     paymentRepo.NewLocalPaymentRepo(db),
	}
}
