package http

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/postage-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/postage-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/postage-service/internal/platform/config"
	"github.com/jsamuelsen/postage-service/internal/platform/telemetry"
)

// RouterConfig holds what SetupRouter wires.
type RouterConfig struct {
	AppConfig    *config.AppConfig
	ServerConfig *config.ServerConfig

	// HealthHandler serves the /-/ probes when set.
	HealthHandler *handlers.HealthHandler

	// PostageHandler serves the /api/v1 routes when set.
	PostageHandler *handlers.PostageHandler
}

// SetupRouter installs middleware and routes on engine. Middleware runs in
// this order:
//  1. Recovery
//  2. Request ID
//  3. Correlation ID
//  4. OpenTelemetry tracing and HTTP metrics
//  5. Locale negotiation
//  6. Logging (skips /-/ probes)
//  7. Timeout, on /api/v1 only
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.AppConfig.Name)...)
	engine.Use(
		middleware.Locale(cfg.AppConfig.Locale),
		middleware.Logging(),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.ServerConfig != nil {
		apiV1.Use(middleware.Timeout(cfg.ServerConfig.RequestTimeout))
	}

	if cfg.PostageHandler != nil {
		cfg.PostageHandler.RegisterPostageRoutes(apiV1)
	}
}
