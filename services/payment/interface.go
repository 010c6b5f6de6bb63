package payment

import (
	"context"
	"fmt"
	"math"

	"wuauser/database/repository"
	"wuauser/models"
	"wuauser/services/appointment"
	"wuauser/utils"

	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

// Metadata keys carried on every payment intent.
const (
	MetaAppointmentID = "citaId"
	MetaVetID         = "vetId"
	MetaCommission    = "commission"
	MetaVetAmount     = "vetAmount"
)

// PaymentService creates payment intents and reconciles Stripe webhooks.
type PaymentService interface {
	CreateIntent(ctx context.Context, actor models.Actor, appointmentID string) (*models.PaymentIntentResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error)
	Balance(ctx context.Context, actor models.Actor) (*models.VetBalance, error)
}

// WebhookResult summarises what a webhook delivery did.
type WebhookResult struct {
	EventID   string `json:"eventId"`
	Type      string `json:"type"`
	Handled   bool   `json:"handled"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// IntentCreator is the part of the Stripe payment intent client used here.
type IntentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// Config holds the payment settings.
type Config struct {
	WebhookSecret  string
	CommissionRate float64
	Currency       string
}

// DefaultPaymentService is the production implementation.
type DefaultPaymentService struct {
	payments     repository.PaymentRepository
	services     repository.ServiceRepository
	appointments appointment.AppointmentService
	intents      IntentCreator
	cfg          Config
	metrics      *utils.Metrics
	logger       *zap.Logger
}

// NewPaymentService wires the service. intents and metrics may be nil; without
// intents CreateIntent is unavailable.
func NewPaymentService(
	stores *repository.Stores,
	appointments appointment.AppointmentService,
	intents IntentCreator,
	cfg Config,
	metrics *utils.Metrics,
	logger *zap.Logger,
) *DefaultPaymentService {
	if cfg.Currency == "" {
		cfg.Currency = "mxn"
	}
	return &DefaultPaymentService{
		payments:     stores.Payments,
		services:     stores.Services,
		appointments: appointments,
		intents:      intents,
		cfg:          cfg,
		metrics:      metrics,
		logger:       logger.Named("payment"),
	}
}

// Balance returns what the platform owes the calling vet from succeeded payments.
func (s *DefaultPaymentService) Balance(ctx context.Context, actor models.Actor) (*models.VetBalance, error) {
	if actor.Role != models.RoleVet || actor.ID == "" {
		return nil, fmt.Errorf("%w: only vets have a balance", appointment.ErrForbidden)
	}
	balance, err := s.payments.GetBalance(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load balance for vet %s: %w", actor.ID, err)
	}
	return balance, nil
}

// Split returns the platform commission and the vet's share of price, rounded to cents.
func Split(price, rate float64) (commission, vetAmount float64) {
	commission = roundCents(price * rate)
	vetAmount = roundCents(price - commission)
	return commission, vetAmount
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func toMinorUnits(v float64) int64 {
	return int64(math.Round(v * 100))
}
