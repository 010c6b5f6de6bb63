package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"wuauser/database"
	"wuauser/models"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

// CreateIntent opens a Stripe payment intent for a pending appointment and records a
// pending transaction. Repeated calls for the same appointment reuse the same intent.
func (s *DefaultPaymentService) CreateIntent(ctx context.Context, actor models.Actor, appointmentID string) (*models.PaymentIntentResponse, error) {
	if s.intents == nil {
		return nil, errors.New("payments are not configured")
	}
	apt, err := s.appointments.Get(ctx, actor, appointmentID)
	if err != nil {
		return nil, err
	}
	if apt.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: appointment %s is %s", ErrNotPayable, apt.ID, apt.Status)
	}
	svc, err := s.services.GetByID(ctx, apt.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("service for appointment %s: %w", apt.ID, err)
	}
	if svc.Price <= 0 {
		return nil, fmt.Errorf("%w: service %s has no price", ErrNotPayable, svc.ID)
	}

	commission, vetAmount := Split(svc.Price, s.cfg.CommissionRate)
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(svc.Price)),
		Currency: stripe.String(s.cfg.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.SetIdempotencyKey("intent-" + apt.ID)
	params.AddMetadata(MetaAppointmentID, apt.ID)
	params.AddMetadata(MetaVetID, apt.VetID)
	params.AddMetadata(MetaCommission, strconv.FormatFloat(commission, 'f', 2, 64))
	params.AddMetadata(MetaVetAmount, strconv.FormatFloat(vetAmount, 'f', 2, 64))

	pi, err := s.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}

	now := time.Now().UTC()
	tx := &models.Transaction{
		ID:              uuid.NewString(),
		PaymentIntentID: pi.ID,
		AppointmentID:   apt.ID,
		VetID:           apt.VetID,
		Amount:          svc.Price,
		Commission:      commission,
		VetAmount:       vetAmount,
		Currency:        s.cfg.Currency,
		Status:          models.TransactionPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.payments.Create(ctx, tx); err != nil && !errors.Is(err, database.ErrDuplicate) {
		return nil, err
	}
	s.logger.Info("Payment intent created",
		zap.String("appointmentId", apt.ID),
		zap.String("paymentIntentId", pi.ID),
		zap.Float64("amount", svc.Price),
	)

	return &models.PaymentIntentResponse{
		PaymentIntentID: pi.ID,
		ClientSecret:    pi.ClientSecret,
		Amount:          svc.Price,
		Commission:      commission,
		VetAmount:       vetAmount,
		Currency:        s.cfg.Currency,
	}, nil
}
