package paymentRepo

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
	TransactionsCollection = "transactions"
	BalancesCollection     = "vet_balances"
)

// MongoPaymentRepo implements PaymentRepository using MongoDB.
type MongoPaymentRepo struct {
	transactions *mongo.Collection
	balances     *mongo.Collection
}

func NewMongoPaymentRepo(transactions, balances *mongo.Collection) *MongoPaymentRepo {
	return &MongoPaymentRepo{transactions: transactions, balances: balances}
}

func (r *MongoPaymentRepo) Create(ctx context.Context, tx *models.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.transactions.InsertOne(ctx, tx); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("transaction %s: %w", tx.PaymentIntentID, database.ErrDuplicate)
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *MongoPaymentRepo) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var tx models.Transaction
	if err := r.transactions.FindOne(ctx, bson.M{"paymentIntentId": paymentIntentID}).Decode(&tx); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("transaction %s: %w", paymentIntentID, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", paymentIntentID, err)
	}
	return &tx, nil
}

func (r *MongoPaymentRepo) SetStatus(ctx context.Context, paymentIntentID string, status models.TransactionStatus) (bool, error) {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"paymentIntentId": paymentIntentID,
		"status":          bson.M{"$nin": []models.TransactionStatus{models.TransactionCompleted, status}},
	}
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}

	res, err := r.transactions.UpdateOne(cctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update transaction %s: %w", paymentIntentID, err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	if _, err := r.GetByPaymentIntentID(ctx, paymentIntentID); err != nil {
		return false, err
	}
	return false, nil
}

func (r *MongoPaymentRepo) CreditVet(ctx context.Context, vetID string, amount float64) (*models.VetBalance, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"available": amount},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var balance models.VetBalance
	if err := r.balances.FindOneAndUpdate(ctx, bson.M{"vetId": vetID}, update, opts).Decode(&balance); err != nil {
		return nil, fmt.Errorf("failed to credit vet %s: %w", vetID, err)
	}
	return &balance, nil
}

func (r *MongoPaymentRepo) GetBalance(ctx context.Context, vetID string) (*models.VetBalance, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var balance models.VetBalance
	if err := r.balances.FindOne(ctx, bson.M{"vetId": vetID}).Decode(&balance); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &models.VetBalance{VetID: vetID}, nil
		}
		return nil, fmt.Errorf("failed to fetch balance for vet %s: %w", vetID, err)
	}
	return &balance, nil
}

// EnsureIndexes creates indexes for fields frequently used in queries.
func (r *MongoPaymentRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	if _, err := r.transactions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "paymentIntentId", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "appointmentId", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create transaction indexes: %w", err)
	}
	if _, err := r.balances.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "vetId", Value: 1}}, Options: unique,
	}); err != nil {
		return fmt.Errorf("failed to create balance indexes: %w", err)
	}
	return nil
}
