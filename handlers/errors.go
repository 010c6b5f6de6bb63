package handlers

import (
	"errors"
	"net/http"

	"wuauser/services/appointment"
	"wuauser/services/payment"
	"wuauser/services/scheduling"
	"wuauser/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, appointment.ErrValidation),
		errors.Is(err, scheduling.ErrInvalidWindow),
		errors.Is(err, scheduling.ErrInvalidTime),
		errors.Is(err, scheduling.ErrCrossesMidnight),
		errors.Is(err, scheduling.ErrUnknownStatus),
		errors.Is(err, payment.ErrInvalidSignature),
		errors.Is(err, payment.ErrInvalidEvent):
		return http.StatusBadRequest
	case errors.Is(err, appointment.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, appointment.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, scheduling.ErrIllegalTransition),
		errors.Is(err, appointment.ErrSlotUnavailable),
		errors.Is(err, appointment.ErrConflict),
		errors.Is(err, payment.ErrNotPayable):
		return http.StatusConflict
	case errors.Is(err, appointment.ErrPolicyViolation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error. Internal errors are logged and their detail withheld.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		getLogger(c, logger).Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, status, http.StatusText(status), "")
		return
	}

	var verr *appointment.ValidationError
	if errors.As(err, &verr) {
		utils.JSONError(c, status, "Invalid "+verr.Field, verr.Message)
		return
	}
	utils.JSONError(c, status, http.StatusText(status), err.Error())
}

func badRequest(c *gin.Context, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	utils.JSONError(c, http.StatusBadRequest, message, details)
}
