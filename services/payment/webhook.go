package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"wuauser/database"
	"wuauser/models"
	"wuauser/services/appointment"
	"wuauser/utils"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// HandleWebhook authenticates a Stripe event and applies it. Nothing is changed when the
// signature does not verify. Events of other types are acknowledged and ignored.
func (s *DefaultPaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if signature == "" {
		s.countEvent("unknown", ErrInvalidSignature)
		return nil, fmt.Errorf("%w: missing Stripe-Signature header", ErrInvalidSignature)
	}
	if s.cfg.WebhookSecret == "" {
		s.countEvent("unknown", ErrInvalidSignature)
		s.logger.Warn("Rejecting webhook, STRIPE_WEBHOOK_SECRET is not configured")
		return nil, fmt.Errorf("%w: webhook secret is not configured", ErrInvalidSignature)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		s.countEvent("unknown", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	result := &WebhookResult{EventID: event.ID, Type: string(event.Type)}
	log := s.logger.With(zap.String("eventId", event.ID), zap.String("type", string(event.Type)))

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		err = s.handleSucceeded(ctx, event, result, log)
	case stripe.EventTypePaymentIntentPaymentFailed:
		err = s.handleClosed(ctx, event, models.TransactionFailed, result, log)
	case stripe.EventTypePaymentIntentCanceled:
		err = s.handleClosed(ctx, event, models.TransactionCancelled, result, log)
	default:
		log.Debug("Ignoring webhook event")
	}
	s.countEvent(string(event.Type), err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

type succeededMetadata struct {
	appointmentID string
	vetID         string
	commission    float64
	vetAmount     float64
}

func parseMetadata(meta map[string]string) (succeededMetadata, error) {
	var m succeededMetadata
	m.appointmentID = meta[MetaAppointmentID]
	m.vetID = meta[MetaVetID]
	if m.appointmentID == "" || m.vetID == "" {
		return m, fmt.Errorf("%w: metadata %s and %s are required", ErrInvalidEvent, MetaAppointmentID, MetaVetID)
	}
	var err error
	if m.commission, err = strconv.ParseFloat(meta[MetaCommission], 64); err != nil {
		return m, fmt.Errorf("%w: metadata %s: %v", ErrInvalidEvent, MetaCommission, err)
	}
	if m.vetAmount, err = strconv.ParseFloat(meta[MetaVetAmount], 64); err != nil {
		return m, fmt.Errorf("%w: metadata %s: %v", ErrInvalidEvent, MetaVetAmount, err)
	}
	return m, nil
}

func decodeIntent(event stripe.Event) (*stripe.PaymentIntent, error) {
	var pi stripe.PaymentIntent
	if event.Data == nil {
		return nil, fmt.Errorf("%w: event has no data", ErrInvalidEvent)
	}
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if pi.ID == "" {
		return nil, fmt.Errorf("%w: payment intent without id", ErrInvalidEvent)
	}
	return &pi, nil
}

// handleSucceeded confirms the appointment, completes the transaction and credits the vet.
// The transaction status is the idempotency gate: a redelivered event finds it completed
// and credits nothing.
func (s *DefaultPaymentService) handleSucceeded(ctx context.Context, event stripe.Event, result *WebhookResult, log *zap.Logger) error {
	pi, err := decodeIntent(event)
	if err != nil {
		return err
	}
	meta, err := parseMetadata(pi.Metadata)
	if err != nil {
		return err
	}
	log = log.With(zap.String("paymentIntentId", pi.ID), zap.String("appointmentId", meta.appointmentID))

	if err := s.ensureTransaction(ctx, pi, meta); err != nil {
		return err
	}
	if err := s.confirmAppointment(ctx, meta.appointmentID, log); err != nil {
		return err
	}

	changed, err := s.payments.SetStatus(ctx, pi.ID, models.TransactionCompleted)
	if err != nil {
		return err
	}
	result.Handled = true
	if !changed {
		result.Duplicate = true
		log.Info("Payment already recorded, skipping credit")
		return nil
	}

	balance, err := s.payments.CreditVet(ctx, meta.vetID, meta.vetAmount)
	if err != nil {
		// The transaction is already completed, so a redelivery will not retry the credit.
		log.Error("Payment completed but vet credit failed; reconcile manually",
			zap.String("vetId", meta.vetID),
			zap.Float64("vetAmount", meta.vetAmount),
			zap.Error(err),
		)
		return err
	}
	log.Info("Payment completed",
		zap.String("vetId", meta.vetID),
		zap.Float64("vetAmount", meta.vetAmount),
		zap.Float64("vetBalance", balance.Available),
	)
	return nil
}

// ensureTransaction records the transaction from the event if the intent was created elsewhere.
func (s *DefaultPaymentService) ensureTransaction(ctx context.Context, pi *stripe.PaymentIntent, meta succeededMetadata) error {
	_, err := s.payments.GetByPaymentIntentID(ctx, pi.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return err
	}

	now := time.Now().UTC()
	currency := string(pi.Currency)
	if currency == "" {
		currency = s.cfg.Currency
	}
	tx := &models.Transaction{
		ID:              uuid.NewString(),
		PaymentIntentID: pi.ID,
		AppointmentID:   meta.appointmentID,
		VetID:           meta.vetID,
		Amount:          float64(pi.Amount) / 100,
		Commission:      meta.commission,
		VetAmount:       meta.vetAmount,
		Currency:        currency,
		Status:          models.TransactionPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.payments.Create(ctx, tx); err != nil && !errors.Is(err, database.ErrDuplicate) {
		return err
	}
	return nil
}

// confirmAppointment moves a pending appointment to confirmed. An appointment that is already
// confirmed is fine; a closed or missing one is logged and the payment is still recorded.
func (s *DefaultPaymentService) confirmAppointment(ctx context.Context, id string, log *zap.Logger) error {
	apt, err := s.appointments.Get(ctx, models.SystemActor, id)
	if errors.Is(err, appointment.ErrNotFound) {
		log.Warn("Payment for unknown appointment")
		return nil
	}
	if err != nil {
		return err
	}

	switch apt.Status {
	case models.StatusConfirmed:
		return nil
	case models.StatusPending:
		_, err := s.appointments.ApplyTransition(ctx, models.SystemActor, id, models.StatusConfirmed, "")
		return err
	default:
		log.Warn("Payment received for closed appointment", zap.String("status", string(apt.Status)))
		return nil
	}
}

func (s *DefaultPaymentService) handleClosed(ctx context.Context, event stripe.Event, status models.TransactionStatus, result *WebhookResult, log *zap.Logger) error {
	pi, err := decodeIntent(event)
	if err != nil {
		return err
	}
	changed, err := s.payments.SetStatus(ctx, pi.ID, status)
	if errors.Is(err, database.ErrNotFound) {
		log.Warn("Webhook for unknown transaction", zap.String("paymentIntentId", pi.ID))
		return nil
	}
	if err != nil {
		return err
	}
	result.Handled = changed
	result.Duplicate = !changed
	log.Info("Transaction closed", zap.String("paymentIntentId", pi.ID), zap.String("status", string(status)), zap.Bool("changed", changed))
	return nil
}

func (s *DefaultPaymentService) countEvent(eventType string, err error) {
	if s.metrics != nil {
		s.metrics.WebhookEventsTotal.WithLabelValues(eventType, utils.Outcome(err)).Inc()
	}
}
