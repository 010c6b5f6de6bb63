package handlers

import (
	"net/http"
	"strconv"

	"wuauser/models"
	"wuauser/services/vet"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VetHandler struct {
	svc    vet.VetService
	logger *zap.Logger
}

func NewVetHandler(svc vet.VetService, logger *zap.Logger) *VetHandler {
	return &VetHandler{svc: svc, logger: logger.Named("vet-handler")}
}

// NearbyVetsHandler answers GET /api/vets/nearby?lat=&lng=&radiusKm=.
func (h *VetHandler) NearbyVetsHandler(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		badRequest(c, "Invalid lat", err)
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		badRequest(c, "Invalid lng", err)
		return
	}
	radius := 0.0
	if raw := c.Query("radiusKm"); raw != "" {
		if radius, err = strconv.ParseFloat(raw, 64); err != nil {
			badRequest(c, "Invalid radiusKm", err)
			return
		}
	}

	vets, err := h.svc.Nearby(c.Request.Context(), lat, lng, radius)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vets": vets})
}

func (h *VetHandler) ListServicesHandler(c *gin.Context) {
	services, err := h.svc.ListServices(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if services == nil {
		services = []models.Service{}
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}
