package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/divyampandey/pixel-llm-server-go/internal/config"
	"github.com/divyampandey/pixel-llm-server-go/internal/health"
	"github.com/divyampandey/pixel-llm-server-go/internal/metrics"
)

// RegisterHealthRoutes registers the health and metrics routes.
func RegisterHealthRoutes(router *gin.Engine, cfg *config.Config, metricsStore *metrics.Store) {
	router.GET("/health", func(c *gin.Context) {
		// Liveness stays shallow: a Valkey or Postgres outage must not
		// get the pod restarted.
		payload := health.Collect(c.Request.Context(), cfg, false)
		c.JSON(http.StatusOK, payload)
	})

	router.GET("/health/ready", func(c *gin.Context) {
		payload := health.Collect(c.Request.Context(), cfg, true)
		status := http.StatusOK
		if payload.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, payload)
	})

	// Prometheus metrics for long-term history.
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/api/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, metricsStore.Snapshot())
	})
}
