package handlers

import (
	"net/http"
	"strconv"

	"wuauser/middleware"
	"wuauser/models"
	"wuauser/services/appointment"
	"wuauser/services/scheduling"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler serves the appointment and slot endpoints.
type AppointmentHandler struct {
	svc    appointment.AppointmentService
	logger *zap.Logger
}

func NewAppointmentHandler(svc appointment.AppointmentService, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, logger: logger.Named("appointment-handler")}
}

// CreateAppointmentHandler books an appointment for the authenticated owner.
func (h *AppointmentHandler) CreateAppointmentHandler(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	var input models.AppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid appointment payload", err)
		return
	}
	input.OwnerID = actor.ID

	apt, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, apt)
}

// ListAppointmentsHandler lists the caller's appointments. Vets may filter by ?date=.
func (h *AppointmentHandler) ListAppointmentsHandler(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	var (
		apts []models.Appointment
		err  error
	)
	if actor.Role == models.RoleVet {
		apts, err = h.svc.ListForVet(c.Request.Context(), actor.ID, c.Query("date"))
	} else {
		apts, err = h.svc.ListForOwner(c.Request.Context(), actor.ID)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if apts == nil {
		apts = []models.Appointment{}
	}
	c.JSON(http.StatusOK, gin.H{"appointments": apts})
}

func (h *AppointmentHandler) GetAppointmentHandler(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	apt, err := h.svc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, apt)
}

// UpdateStatusHandler applies a status transition.
func (h *AppointmentHandler) UpdateStatusHandler(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid status payload", err)
		return
	}

	target, err := scheduling.ParseStatus(req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	apt, err := h.svc.ApplyTransition(c.Request.Context(), actor, c.Param("id"), target, req.Notes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, apt)
}

func (h *AppointmentHandler) RescheduleHandler(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	var req models.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid reschedule payload", err)
		return
	}

	apt, err := h.svc.Reschedule(c.Request.Context(), actor, c.Param("id"), req.Date, req.Time)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, apt)
}

// AvailableSlotsHandler answers GET /api/vets/:id/slots?date=&serviceId=&duration=.
func (h *AppointmentHandler) AvailableSlotsHandler(c *gin.Context) {
	duration := 0
	if raw := c.Query("duration"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "Invalid duration", err)
			return
		}
		duration = d
	}

	slots, err := h.svc.AvailableSlots(c.Request.Context(), c.Param("id"), c.Query("date"), c.Query("serviceId"), duration)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}
