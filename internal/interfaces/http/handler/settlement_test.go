package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	pricingapp "github.com/erp/pricing/internal/application/pricing"
	settlementapp "github.com/erp/pricing/internal/application/settlement"
	"github.com/erp/pricing/internal/domain/settlement"
	"github.com/erp/pricing/internal/infrastructure/cache"
	"github.com/erp/pricing/internal/interfaces/http/dto"
	"github.com/erp/pricing/internal/interfaces/http/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSettlementRepository is a mock implementation of settlement.Repository
type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) Save(ctx context.Context, s *settlement.Settlement) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSettlementRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]settlement.Settlement, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]settlement.Settlement), args.Error(1)
}

func setupSettlementRouter(t *testing.T, repo *MockSettlementRepository) http.Handler {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	svc := settlementapp.NewService(settlementapp.ServiceConfig{
		Pricer:           pricingapp.NewQuoteService(pricingapp.QuoteServiceConfig{}),
		Repository:       repo,
		IdempotencyStore: store,
	})
	h := NewSettlementHandler(svc)
	r := newTestRouter()
	r.POST("/api/v1/orders/:order_id/settlements", h.Settle)
	r.GET("/api/v1/orders/:order_id/settlements", h.List)
	return r
}

func settleBody(amount string) map[string]any {
	return map[string]any{
		"lineItems": []map[string]any{
			{"quantity": 2, "unitPrice": map[string]any{"amount": "10", "codeCurrency": "USD"}},
		},
		"registeredPayments": []map[string]any{
			{"amount": amount, "codeCurrency": "USD", "method": "CARD"},
		},
	}
}

func TestSettlementHandler_Settle(t *testing.T) {
	tenantID := uuid.New()
	orderID := uuid.New()
	path := "/api/v1/orders/" + orderID.String() + "/settlements"

	t.Run("records a partial payment", func(t *testing.T) {
		repo := new(MockSettlementRepository)
		repo.On("FindByOrder", mock.Anything, tenantID, orderID).Return([]settlement.Settlement{}, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*settlement.Settlement")).Return(nil)

		w := doJSON(setupSettlementRouter(t, repo), http.MethodPost, path, settleBody("12"), tenantHeader(tenantID))

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var body settlementapp.SettlementResponse
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &body))
		assert.Equal(t, orderID, body.OrderID)
		assert.Equal(t, settlement.StatusPartial, body.Decision.Status)
		assert.True(t, body.Decision.IsPartialPayment)
		repo.AssertExpectations(t)
	})

	t.Run("replayed idempotency key is a conflict", func(t *testing.T) {
		repo := new(MockSettlementRepository)
		repo.On("FindByOrder", mock.Anything, tenantID, orderID).Return([]settlement.Settlement{}, nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
		router := setupSettlementRouter(t, repo)

		headers := tenantHeader(tenantID)
		headers[middleware.IdempotencyKeyHeader] = "till-7-receipt-1001"

		first := doJSON(router, http.MethodPost, path, settleBody("20"), headers)
		require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

		second := doJSON(router, http.MethodPost, path, settleBody("20"), headers)
		assert.Equal(t, http.StatusConflict, second.Code)
		assert.Equal(t, dto.ErrCodeDuplicateSubmission, decode(t, second).Error.Code)
		repo.AssertNumberOfCalls(t, "Save", 1)
	})

	t.Run("paid order is a conflict", func(t *testing.T) {
		repo := new(MockSettlementRepository)
		repo.On("FindByOrder", mock.Anything, tenantID, orderID).Return([]settlement.Settlement{
			{OrderID: orderID, Decision: settlement.Decision{Status: settlement.StatusPaid}},
		}, nil)

		w := doJSON(setupSettlementRouter(t, repo), http.MethodPost, path, settleBody("1"), tenantHeader(tenantID))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeOrderAlreadyPaid, decode(t, w).Error.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("submission without payments", func(t *testing.T) {
		repo := new(MockSettlementRepository)
		repo.On("FindByOrder", mock.Anything, tenantID, orderID).Return([]settlement.Settlement{}, nil)

		body := settleBody("1")
		delete(body, "registeredPayments")
		w := doJSON(setupSettlementRouter(t, repo), http.MethodPost, path, body, tenantHeader(tenantID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeNoPayments, decode(t, w).Error.Code)
	})

	t.Run("oversized idempotency key", func(t *testing.T) {
		repo := new(MockSettlementRepository)
		headers := tenantHeader(tenantID)
		headers[middleware.IdempotencyKeyHeader] = strings.Repeat("k", 256)

		w := doJSON(setupSettlementRouter(t, repo), http.MethodPost, path, settleBody("1"), headers)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, middleware.IdempotencyKeyHeader, decode(t, w).Error.Details[0].Field)
		repo.AssertNotCalled(t, "FindByOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed order id", func(t *testing.T) {
		repo := new(MockSettlementRepository)
		w := doJSON(setupSettlementRouter(t, repo), http.MethodPost,
			"/api/v1/orders/42/settlements", settleBody("1"), tenantHeader(tenantID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "order_id", decode(t, w).Error.Details[0].Field)
	})
}

func TestSettlementHandler_List(t *testing.T) {
	tenantID := uuid.New()
	orderID := uuid.New()

	repo := new(MockSettlementRepository)
	repo.On("FindByOrder", mock.Anything, tenantID, orderID).Return([]settlement.Settlement{
		{OrderID: orderID, Decision: settlement.Decision{Status: settlement.StatusPartial}},
		{OrderID: orderID, Decision: settlement.Decision{Status: settlement.StatusPaid}},
	}, nil)

	w := doJSON(setupSettlementRouter(t, repo), http.MethodGet,
		"/api/v1/orders/"+orderID.String()+"/settlements", nil, tenantHeader(tenantID))

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, int64(2), env.Meta.Total)

	var list []settlementapp.SettlementResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, settlement.StatusPaid, list[1].Decision.Status)
}
