package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandlers handles liveness and readiness probes
type HealthHandlers struct {
	db *sql.DB
}

// NewHealthHandlers creates a new HealthHandlers instance
func NewHealthHandlers(db *sql.DB) *HealthHandlers {
	return &HealthHandlers{db: db}
}

// LivenessHandler answers as long as the process is up
// GET /health
func (h *HealthHandlers) LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ReadinessHandler checks the database connection
// GET /health/ready
func (h *HealthHandlers) ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
