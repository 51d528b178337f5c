package server

import (
	"net/http"

	"sportbeacon/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @Summary      Health check
// @Description  Reports degraded when the database is unreachable
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Router       /health [get]
func Health(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, api.HealthResponse{Status: "degraded"})
			return
		}
		c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
	}
}

// @Summary      Prometheus metrics
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
