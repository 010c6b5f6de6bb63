package handlers

import (
	"errors"
	"io"
	"net/http"

	"wuauser/middleware"
	"wuauser/models"
	"wuauser/services/payment"
	"wuauser/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MaxWebhookBytes bounds the webhook body read.
const MaxWebhookBytes = 64 << 10

type PaymentHandler struct {
	svc    payment.PaymentService
	logger *zap.Logger
}

func NewPaymentHandler(svc payment.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, logger: logger.Named("payment-handler")}
}

// CreateIntentHandler creates a payment intent for one of the owner's appointments.
func (h *PaymentHandler) CreateIntentHandler(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	var req models.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid payment intent payload", err)
		return
	}

	resp, err := h.svc.CreateIntent(c.Request.Context(), actor, req.AppointmentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PaymentHandler) BalanceHandler(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	balance, err := h.svc.Balance(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// WebhookHandler receives Stripe events. The raw body is needed for signature verification.
func (h *PaymentHandler) WebhookHandler(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.JSONError(c, http.StatusRequestEntityTooLarge, "Payload too large", "")
			return
		}
		badRequest(c, "Could not read body", err)
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		badRequest(c, "Missing Stripe-Signature header", nil)
		return
	}

	result, err := h.svc.HandleWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
