package handler

import (
	settlementapp "github.com/erp/pricing/internal/application/settlement"
	"github.com/erp/pricing/internal/interfaces/http/dto"
	"github.com/erp/pricing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// maxIdempotencyKeyLength bounds the Idempotency-Key header
const maxIdempotencyKeyLength = 255

// SettlementHandler records payments against orders
type SettlementHandler struct {
	BaseHandler
	settlements *settlementapp.Service
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlements *settlementapp.Service) *SettlementHandler {
	return &SettlementHandler{settlements: settlements}
}

// Settle prices the order on top of earlier submissions and records the
// payments of this one. An Idempotency-Key header makes retries safe.
// POST /api/v1/orders/:order_id/settlements
func (h *SettlementHandler) Settle(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	orderID, ok := h.uuidParam(c, "order_id")
	if !ok {
		return
	}

	key := c.GetHeader(middleware.IdempotencyKeyHeader)
	if len(key) > maxIdempotencyKeyLength {
		h.ValidationError(c, []dto.ValidationDetail{{
			Field:   middleware.IdempotencyKeyHeader,
			Message: "Must be at most 255 characters",
		}})
		return
	}

	var req settlementapp.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.settlements.Settle(c.Request.Context(), tenantID, orderID, req, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List returns every settlement recorded for an order, oldest first
// GET /api/v1/orders/:order_id/settlements
func (h *SettlementHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	orderID, ok := h.uuidParam(c, "order_id")
	if !ok {
		return
	}

	list, err := h.settlements.ListForOrder(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessList(c, list, len(list))
}
