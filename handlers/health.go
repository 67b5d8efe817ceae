// health.go - Liveness and readiness probes

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Health only says the process is serving.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready checks the database through a session and the cache when enabled.
func (h *Handler) Ready(c *gin.Context) {
	checks := gin.H{"database": "ok"}
	status := http.StatusOK

	err := h.tx(c, func(tx *gorm.DB) error { return tx.Exec("SELECT 1").Error })
	if err != nil {
		h.log(c).WithError(err).Warn("readiness: database unavailable")
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if h.Cache.Enabled() {
		checks["cache"] = "ok"
		if err := h.Cache.Ping(c.Request.Context()); err != nil {
			h.log(c).WithError(err).Warn("readiness: cache unavailable")
			checks["cache"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
