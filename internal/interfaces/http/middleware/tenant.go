package middleware

import (
	"net/http"
	"strings"

	"github.com/erp/pricing/internal/infrastructure/logger"
	"github.com/erp/pricing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// TenantIDKey holds the tenant ID as a string in gin.Context
	TenantIDKey = "tenant_id"
	// TenantUUIDKey holds the parsed tenant ID in gin.Context
	TenantUUIDKey = "tenant_uuid"
	// TenantHeaderKey is the header clients identify their tenant with
	TenantHeaderKey = "X-Tenant-ID"
)

// DevelopmentTenantID is used when no tenant header is sent and the
// middleware does not require one
var DevelopmentTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// Required rejects requests without X-Tenant-ID
	Required bool
	// DefaultTenantID is used when the header is absent and not required
	DefaultTenantID uuid.UUID
	// SkipPaths are paths that don't require tenant context (e.g., health check)
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		Required:        false,
		DefaultTenantID: DevelopmentTenantID,
		SkipPaths:       []string{"/health", "/api/v1/system"},
	}
}

// TenantMiddleware extracts the tenant from X-Tenant-ID using the default configuration
func TenantMiddleware() gin.HandlerFunc {
	return TenantMiddlewareWithConfig(DefaultTenantConfig())
}

// TenantMiddlewareWithConfig returns tenant middleware with custom configuration
func TenantMiddlewareWithConfig(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		var tenantID uuid.UUID
		header := c.GetHeader(TenantHeaderKey)
		switch {
		case header != "":
			parsed, err := uuid.Parse(header)
			if err != nil {
				respondInvalidTenant(c, "Invalid tenant ID format")
				return
			}
			tenantID = parsed
		case cfg.Required:
			respondInvalidTenant(c, "Tenant identification required")
			return
		default:
			tenantID = cfg.DefaultTenantID
		}

		c.Set(TenantIDKey, tenantID.String())
		c.Set(TenantUUIDKey, tenantID)

		// Request context carries the tenant down to the services
		ctx := c.Request.Context()
		ctx, _ = logger.WithTenantID(ctx, logger.FromContext(ctx), tenantID.String())
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("Tenant identified",
				zap.String("tenant_id", tenantID.String()),
				zap.Bool("from_header", header != ""),
			)
		}

		c.Next()
	}
}

func respondInvalidTenant(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInvalidTenant, message, GetRequestID(c),
	))
}

// GetTenantID retrieves the tenant ID from gin.Context
func GetTenantID(c *gin.Context) string {
	return c.GetString(TenantIDKey)
}

// GetTenantUUID retrieves the tenant ID set by the tenant middleware
func GetTenantUUID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(TenantUUIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
