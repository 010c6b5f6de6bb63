package paymentRepo

import (
	"context"
	"fmt"
	"time"

	"wuauser/database"
	"wuauser/models"
)

// LocalPaymentRepo keeps transactions and balances in the local store.
type LocalPaymentRepo struct {
	db *database.LocalDB
}

func NewLocalPaymentRepo(db *database.LocalDB) *LocalPaymentRepo {
	return &LocalPaymentRepo{db: db}
}

func (r *LocalPaymentRepo) Create(ctx context.Context, tx *models.Transaction) error {
	return database.Mutate(ctx, r.db, database.KeyTransactions, func(txs []models.Transaction) ([]models.Transaction, error) {
		for _, t := range txs {
			if t.PaymentIntentID == tx.PaymentIntentID {
				return nil, fmt.Errorf("transaction %s: %w", tx.PaymentIntentID, database.ErrDuplicate)
			}
		}
		return append(txs, *tx), nil
	})
}

func (r *LocalPaymentRepo) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Transaction, error) {
	txs, err := database.View[models.Transaction](ctx, r.db, database.KeyTransactions)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		if txs[i].PaymentIntentID == paymentIntentID {
			return &txs[i], nil
		}
	}
	return nil, fmt.Errorf("transaction %s: %w", paymentIntentID, database.ErrNotFound)
}

func (r *LocalPaymentRepo) SetStatus(ctx context.Context, paymentIntentID string, status models.TransactionStatus) (bool, error) {
	changed := false
	err := database.Mutate(ctx, r.db, database.KeyTransactions, func(txs []models.Transaction) ([]models.Transaction, error) {
		for i := range txs {
			if txs[i].PaymentIntentID != paymentIntentID {
				continue
			}
			if txs[i].Status == models.TransactionCompleted || txs[i].Status == status {
				return txs, nil
			}
			txs[i].Status = status
			txs[i].UpdatedAt = time.Now().UTC()
			changed = true
			return txs, nil
		}
		return nil, fmt.Errorf("transaction %s: %w", paymentIntentID, database.ErrNotFound)
	})
	return changed, err
}

func (r *LocalPaymentRepo) CreditVet(ctx context.Context, vetID string, amount float64) (*models.VetBalance, error) {
	var out models.VetBalance
	err := database.Mutate(ctx, r.db, database.KeyBalances, func(balances []models.VetBalance) ([]models.VetBalance, error) {
		now := time.Now().UTC()
		for i := range balances {
			if balances[i].VetID == vetID {
				balances[i].Available += amount
				balances[i].UpdatedAt = now
				out = balances[i]
				return balances, nil
			}
		}
		out = models.VetBalance{VetID: vetID, Available: amount, UpdatedAt: now}
		return append(balances, out), nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LocalPaymentRepo) GetBalance(ctx context.Context, vetID string) (*models.VetBalance, error) {
	balances, err := database.View[models.VetBalance](ctx, r.db, database.KeyBalances)
	if err != nil {
		return nil, err
	}
	for i := range balances {
		if balances[i].VetID == vetID {
			return &balances[i], nil
		}
	}
	return &models.VetBalance{VetID: vetID}, nil
}
