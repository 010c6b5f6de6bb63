package handlers

import (
	"net/http"

	"wuauser/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	monitor *utils.HealthMonitor
	backend string
}

// NewHealthHandler reports the monitor's last snapshot. monitor may be nil.
func NewHealthHandler(monitor *utils.HealthMonitor, backend string) *HealthHandler {
	return &HealthHandler{monitor: monitor, backend: backend}
}

func (h *HealthHandler) HealthHandler(c *gin.Context) {
	body := gin.H{"status": "ok", "store": h.backend}
	if h.monitor == nil {
		c.JSON(http.StatusOK, body)
		return
	}
	status := h.monitor.Status()
	body["dependencies"] = status
	if !status.Healthy() {
		body["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
