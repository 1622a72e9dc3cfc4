package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	pricingapp "github.com/erp/pricing/internal/application/pricing"
	"github.com/erp/pricing/internal/interfaces/http/dto"
	"github.com/erp/pricing/internal/interfaces/http/handler"
	"github.com/erp/pricing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestEngine(t *testing.T, tenant middleware.TenantMiddlewareConfig) *gin.Engine {
	t.Helper()
	tracing := middleware.DefaultTracingConfig()
	tracing.Enabled = false

	engine, err := NewEngine(EngineConfig{
		Logger:      zaptest.NewLogger(t),
		CORS:        middleware.DefaultCORSConfig(),
		MaxBodySize: 4 << 10,
		Tenant:      tenant,
		Tracing:     tracing,
	}, Handlers{
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"database": func(context.Context) error { return nil },
		}, time.Second),
		System:  handler.NewSystemHandler("pos-pricing", "test"),
		Pricing: handler.NewPricingHandler(pricingapp.NewQuoteService(pricingapp.QuoteServiceConfig{})),
	})
	require.NoError(t, err)
	return engine
}

const quoteJSON = `{
	"lineItems": [{"quantity": 3, "unitPrice": {"amount": "2.50", "codeCurrency": "CUP"}}],
	"registeredPayments": [{"amount": "10", "codeCurrency": "CUP", "method": "CASH"}]
}`

func TestNewEngine_QuoteRoundTrip(t *testing.T) {
	engine := newTestEngine(t, middleware.DefaultTenantConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", strings.NewReader(quoteJSON))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.RequestIDHeader, "till-3-000042")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "till-3-000042", w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			TotalOwed []struct {
				Amount       string `json:"amount"`
				CodeCurrency string `json:"codeCurrency"`
			} `json:"totalOwed"`
			Decision struct {
				Status string `json:"status"`
			} `json:"decision"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data.TotalOwed, 1)
	assert.Equal(t, "7.5", resp.Data.TotalOwed[0].Amount)
	assert.Equal(t, "CUP", resp.Data.TotalOwed[0].CodeCurrency)
	assert.Equal(t, "paid", resp.Data.Decision.Status)
}

func TestNewEngine_Middleware(t *testing.T) {
	t.Run("health skips tenant resolution", func(t *testing.T) {
		tenant := middleware.DefaultTenantConfig()
		tenant.Required = true
		w := serve(newTestEngine(t, tenant), http.MethodGet, "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	})

	t.Run("required tenant is enforced on the API", func(t *testing.T) {
		tenant := middleware.DefaultTenantConfig()
		tenant.Required = true
		engine := newTestEngine(t, tenant)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", strings.NewReader(quoteJSON))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeInvalidTenant, resp.Error.Code)
	})

	t.Run("oversized body is refused", func(t *testing.T) {
		engine := newTestEngine(t, middleware.DefaultTenantConfig())
		body := `{"lineItems":[],"note":"` + strings.Repeat("x", 8<<10) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("unregistered handlers get no routes", func(t *testing.T) {
		engine := newTestEngine(t, middleware.DefaultTenantConfig())
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders/1/settlements", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
