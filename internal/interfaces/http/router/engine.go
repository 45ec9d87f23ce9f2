package router

import (
	"time"

	"github.com/Daniel159642/pos-sub005/internal/infrastructure/config"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/logger"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/telemetry"
	"github.com/Daniel159642/pos-sub005/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// EngineDeps are the collaborators the HTTP stack needs besides config
type EngineDeps struct {
	Logger      *zap.Logger
	HTTPMetrics *telemetry.HTTPMetrics
}

// NewEngine builds a gin engine with the global middleware stack applied in order:
//  1. RequestID
//  2. Logger and Recovery
//  3. Security headers and CORS
//  4. BodyLimit
//  5. Tracing, span enrichment, profiling labels and HTTP metrics
//
// Swagger is mounted behind SwaggerProtection. API routes are added by the caller
// through NewAPIRouter.
func NewEngine(cfg *config.Config, deps EngineDeps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.IsProduction()
	engine.Use(middleware.Secure(security))

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	cors.MaxAge = 12 * time.Hour
	engine.Use(middleware.CORSWithConfig(cors))

	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}

	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.Profiling(cfg.Profiling.Enabled))
	engine.Use(middleware.HTTPMetrics(deps.HTTPMetrics))

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	return engine
}

// NewAPIRouter returns the /api/v1 router with tenant resolution applied.
// A malformed default tenant is ignored, so requests must then name one.
func NewAPIRouter(engine *gin.Engine, cfg *config.Config) *Router {
	defaultTenant, _ := uuid.Parse(cfg.App.DefaultTenantID)
	return NewRouter(engine, WithAPIVersion("v1")).
		Use(middleware.TenantContext(defaultTenant))
}
