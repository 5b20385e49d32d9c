package router

import (
	"github.com/crmconsole/backend/internal/infrastructure/auth"
	"github.com/crmconsole/backend/internal/infrastructure/config"
	"github.com/crmconsole/backend/internal/infrastructure/logger"
	"github.com/crmconsole/backend/internal/interfaces/http/handler"
	"github.com/crmconsole/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Dependencies are the collaborators of the HTTP engine
type Dependencies struct {
	Logger      *zap.Logger
	JWT         *auth.JWTService
	HTTP        config.HTTPConfig
	ServiceName string
	Tracing     bool
	// Meter enables request metrics when set
	Meter       metric.Meter
	Integration *handler.IntegrationHandler
	Events      *handler.MappingEventsHandler
	System      *handler.SystemHandler
	// Public registrars are mounted at the root without authentication
	Public []RouteRegistrar
}

// NewEngine builds the gin engine with the full middleware chain and routes.
func NewEngine(d Dependencies) (*gin.Engine, error) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(
		logger.Recovery(d.Logger),
		middleware.RequestID(),
		logger.GinMiddleware(d.Logger),
		middleware.TracingWithConfig(middleware.TracingConfig{ServiceName: d.ServiceName, Enabled: d.Tracing}),
		middleware.CORSWithConfig(corsConfig(d.HTTP)),
		middleware.Secure(),
	)
	if d.Meter != nil {
		mw, err := middleware.HTTPMetrics(d.Meter)
		if err != nil {
			return nil, err
		}
		engine.Use(mw)
	}

	engine.GET("/health", d.System.Health)

	r := NewRouter(engine, WithAPIMiddleware(
		middleware.BodyLimit(d.HTTP.MaxBodySize),
		middleware.JWTAuthMiddleware(d.JWT, d.Logger),
		middleware.SpanAttributes(),
	))
	for _, p := range d.Public {
		r.RegisterPublic(p)
	}
	r.Register(integrationRoutes(d.Integration, d.Events))
	r.Setup()

	return engine, nil
}

func integrationRoutes(h *handler.IntegrationHandler, events *handler.MappingEventsHandler) *DomainGroup {
	g := NewDomainGroup("integration", "/integration")
	g.GET("/settings",
		middleware.RequireAnyPermission(auth.PermSettingsRead, auth.PermSettingsWrite),
		h.GetSettings)
	g.PUT("/settings", middleware.RequirePermission(auth.PermSettingsWrite), h.SaveSettings)
	g.GET("/catalog", h.GetCatalog)
	g.GET("/mappings", h.ListMappings)
	g.POST("/mappings", middleware.RequirePermission(auth.PermMappingsWrite), h.CreateMapping)
	g.PUT("/mappings/:id", middleware.RequirePermission(auth.PermMappingsWrite), h.UpdateMapping)
	g.GET("/mappings/events", events.Stream)
	g.GET("/roles", h.ListRoles)
	return g
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	c.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		c.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		c.AllowHeaders = cfg.CORSAllowHeaders
	}
	return c
}
