package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/divyampandey/pixel-llm-server-go/internal/animation"
	"github.com/divyampandey/pixel-llm-server-go/internal/config"
	"github.com/divyampandey/pixel-llm-server-go/internal/metrics"
	"github.com/divyampandey/pixel-llm-server-go/internal/middleware"
)

// NewRouter builds the HTTP router.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	metricsStore *metrics.Store,
	chatHandler *ChatHandler,
	pipelineHandler *PipelineHandler,
) *gin.Engine {
	setGinMode(cfg.Logging.Level)

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		gin.Recovery(),
	)
	if cfg.Telemetry.Enabled {
		router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	router.Use(
		cors.New(corsConfig(cfg)),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.APIKeyAuth(cfg),
		middleware.RateLimit(cfg),
	)

	// Unknown routes keep the widget contract: the bubble gets the
	// error text and the avatar shakes its head.
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "not found",
			"animation": string(animation.TagNo),
		})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":     "method not allowed",
			"animation": string(animation.TagNo),
		})
	})

	RegisterHealthRoutes(router, cfg, metricsStore)
	chatHandler.RegisterRoutes(router)
	pipelineHandler.RegisterRoutes(router)

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods: cfg.CORS.AllowMethods,
		AllowHeaders: cfg.CORS.AllowHeaders,
		MaxAge:       12 * time.Hour,
	}

	allowAll := false
	for _, origin := range cfg.CORS.AllowOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
	}
	if allowAll {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowOrigins
	}

	return corsCfg
}

func setGinMode(level string) {
	if strings.EqualFold(strings.TrimSpace(level), "debug") {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}
