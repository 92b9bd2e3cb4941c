package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response status strings on the health surface.
const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// @Summary      Health check
// @Description  200 while the daemon makes progress; 503 with a reason when the watchdog runs low or a lookup is stuck.
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	st := h.services.Monitoring.Status(c.Request.Context())
	if st.Healthy {
		c.JSON(http.StatusOK, gin.H{"status": statusHealthy})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"status": statusUnhealthy,
		"reason": st.Reason,
	})
}

// @Summary      Daemon status
// @Description  Watchdog countdown, busy flag and last checked wallet.
// @Tags         system
// @Produce      json
// @Success      200  {object}  models.DaemonStatus
// @Router       /api/v1/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.Status(c.Request.Context()))
}
