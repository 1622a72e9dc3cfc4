package handler

import (
	pricingapp "github.com/erp/pricing/internal/application/pricing"
	"github.com/gin-gonic/gin"
)

// PricingHandler prices orders on demand
type PricingHandler struct {
	BaseHandler
	quotes *pricingapp.QuoteService
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(quotes *pricingapp.QuoteService) *PricingHandler {
	return &PricingHandler{quotes: quotes}
}

// Quote prices an order without recording anything. The response carries
// the per-currency totals and whether the registered payments settle it.
// POST /api/v1/pricing/quote
func (h *PricingHandler) Quote(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req pricingapp.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.quotes.Quote(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
