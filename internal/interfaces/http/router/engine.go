package router

import (
	"fmt"

	"github.com/erp/pricing/internal/infrastructure/logger"
	"github.com/erp/pricing/internal/interfaces/http/handler"
	"github.com/erp/pricing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig holds the middleware settings of the HTTP engine
type EngineConfig struct {
	Logger         *zap.Logger
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	Tenant         middleware.TenantMiddlewareConfig
	Tracing        middleware.TracingConfig
	// Metrics is optional HTTP metrics middleware
	Metrics gin.HandlerFunc
}

// Handlers are the endpoints served by the engine
type Handlers struct {
	Health      *handler.HealthHandler
	System      *handler.SystemHandler
	Pricing     *handler.PricingHandler
	Modifiers   *handler.ModifierHandler
	Settlements *handler.SettlementHandler
}

// NewEngine builds the gin engine with the middleware chain and every route
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	// Order matters: the request ID feeds the span and the request logger,
	// and the span must wrap everything that may fail
	engine.Use(
		middleware.RequestID(),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.SpanAttributes(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)
	if cfg.Metrics != nil {
		engine.Use(cfg.Metrics)
	}
	engine.Use(middleware.Secure(), middleware.CORSWithConfig(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	engine.Use(middleware.TenantMiddlewareWithConfig(cfg.Tenant))

	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}

	r := NewRouter(engine)
	for _, g := range apiGroups(h) {
		r.Register(g)
	}
	r.Setup()

	return engine, nil
}

func apiGroups(h Handlers) []*DomainGroup {
	var groups []*DomainGroup

	if h.System != nil {
		groups = append(groups, NewDomainGroup("system", "/system").
			GET("/ping", h.System.Ping).
			GET("/info", h.System.GetSystemInfo))
	}
	if h.Pricing != nil {
		groups = append(groups, NewDomainGroup("pricing", "/pricing").
			POST("/quote", h.Pricing.Quote))
	}
	if h.Modifiers != nil {
		groups = append(groups, NewDomainGroup("modifiers", "/sales-areas/:area_id/modifiers").
			GET("", h.Modifiers.List).
			POST("", h.Modifiers.Create).
			PUT("/:id", h.Modifiers.Update).
			DELETE("/:id", h.Modifiers.Delete))
	}
	if h.Settlements != nil {
		groups = append(groups, NewDomainGroup("settlements", "/orders/:order_id/settlements").
			GET("", h.Settlements.List).
			POST("", h.Settlements.Settle))
	}
	return groups
}
