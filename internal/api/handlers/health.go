package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/slimepool/internal/session"
)

var startTime = time.Now()

const version = "1.0.0-slimepool"

// HealthCheck returns server health status. m may be nil.
func HealthCheck(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := gin.H{
			"status":  "ok",
			"service": "slimepool-api",
			"version": version,
			"uptime":  time.Since(startTime).String(),
		}
		if m != nil {
			resp["sessions"] = m.Count()
		}
		c.JSON(http.StatusOK, resp)
	}
}
