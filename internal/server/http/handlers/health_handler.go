package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadinessChecker reports whether dependencies are reachable.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// Health handles GET /healthz.
func Health(checker ReadinessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := checker.Ready(c.Request.Context()); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
