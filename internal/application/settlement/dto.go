package settlement

import (
	"time"

	pricingapp "github.com/erp/pricing/internal/application/pricing"
	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/settlement"
	"github.com/google/uuid"
)

// SettleRequest is one payment submission. RegisteredPayments and
// PrepaidRedemptions hold what was taken in this submission and are both
// recorded; payments recorded by earlier submissions of the same order are
// added by the service.
type SettleRequest struct {
	pricingapp.QuoteRequest
}

// SettlementResponse is a recorded submission in API responses
type SettlementResponse struct {
	ID          uuid.UUID              `json:"id"`
	OrderID     uuid.UUID              `json:"orderId"`
	SalesAreaID *uuid.UUID             `json:"salesAreaId,omitempty"`
	Payments    []pricing.PaymentEntry `json:"payments"`
	Totals      pricing.Result         `json:"totals"`
	Decision    settlement.Decision    `json:"decision"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// ToSettlementResponse converts a settlement to its response
func ToSettlementResponse(s *settlement.Settlement) SettlementResponse {
	payments := s.Payments
	if payments == nil {
		payments = []pricing.PaymentEntry{}
	}
	return SettlementResponse{
		ID:          s.ID,
		OrderID:     s.OrderID,
		SalesAreaID: s.SalesAreaID,
		Payments:    payments,
		Totals:      s.Totals,
		Decision:    s.Decision,
		CreatedAt:   s.CreatedAt,
	}
}
