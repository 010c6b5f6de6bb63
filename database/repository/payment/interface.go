package paymentRepo

import (
	"context"

	"wuauser/models"
)

// PaymentRepository persists transactions and vet balances.
type PaymentRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Transaction, error)
	// SetStatus moves the transaction to status unless it is already there or already completed.
	// It reports whether the stored status changed.
	SetStatus(ctx context.Context, paymentIntentID string, status models.TransactionStatus) (bool, error)
	// CreditVet adds amount to the vet's available balance, creating the balance if needed.
	CreditVet(ctx context.Context, vetID string, amount float64) (*models.VetBalance, error)
	// GetBalance returns a zero balance for vets that were never credited.
	GetBalance(ctx context.Context, vetID string) (*models.VetBalance, error)
}
