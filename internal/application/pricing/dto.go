package pricing

import (
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/settlement"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoneyRequest is an amount in one currency as sent by clients
type MoneyRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	CodeCurrency string          `json:"codeCurrency" binding:"required,len=3"`
}

// LineItemRequest is one order line
type LineItemRequest struct {
	Quantity  int64        `json:"quantity" binding:"required"`
	UnitPrice MoneyRequest `json:"unitPrice"`
}

// ModifierRequest configures a tax or discount
type ModifierRequest struct {
	Name              string          `json:"name" binding:"required,min=1,max=100"`
	Type              string          `json:"type" binding:"required,oneof=tax discount"`
	Active            bool            `json:"active"`
	ApplyFixedAmount  bool            `json:"applyFixedAmount"`
	FixedPrice        *MoneyRequest   `json:"fixedPrice"`
	PercentAmount     decimal.Decimal `json:"percentAmount"`
	ApplyToGrossSales bool            `json:"applyToGrossSales"`
	ApplyAcumulative  bool            `json:"applyAcumulative"`
	Priority          int             `json:"priority"`
}

// PaymentRequest is a payment registered against the order
type PaymentRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	CodeCurrency string          `json:"codeCurrency" binding:"required,len=3"`
	Method       string          `json:"method" binding:"required,oneof=CASH TRANSFER CARD PREPAID COUPON"`
}

// QuoteRequest is everything needed to price an order. When SalesAreaID is
// set and Modifiers is empty, the sales area's configured modifiers are used.
type QuoteRequest struct {
	SalesAreaID        *uuid.UUID        `json:"salesAreaId"`
	LineItems          []LineItemRequest `json:"lineItems" binding:"dive"`
	Modifiers          []ModifierRequest `json:"modifiers" binding:"dive"`
	CouponDiscount     []MoneyRequest    `json:"couponDiscount" binding:"dive"`
	DiscountPercent    decimal.Decimal   `json:"discountPercent"`
	CommissionPercent  decimal.Decimal   `json:"commissionPercent"`
	ShippingCharge     *MoneyRequest     `json:"shippingCharge"`
	HouseCosted        bool              `json:"houseCosted"`
	RegisteredPayments []PaymentRequest  `json:"registeredPayments" binding:"dive"`
	PartialPayments    []PaymentRequest  `json:"partialPayments" binding:"dive"`
	PrepaidRedemptions []PaymentRequest  `json:"prepaidRedemptions" binding:"dive"`
}

// SubmittedEntries returns the payments taken in this submission: registered
// payments followed by prepaid redemptions, each with the method it was sent
// with. Currency and method are not checked here.
func (r QuoteRequest) SubmittedEntries() []pricing.PaymentEntry {
	out := make([]pricing.PaymentEntry, 0, len(r.RegisteredPayments)+len(r.PrepaidRedemptions))
	for _, group := range [][]PaymentRequest{r.RegisteredPayments, r.PrepaidRedemptions} {
		for _, p := range group {
			out = append(out, pricing.PaymentEntry{
				Amount:       p.Amount,
				CodeCurrency: valueobject.Currency(p.CodeCurrency),
				Method:       pricing.PaymentMethod(p.Method),
			})
		}
	}
	return out
}

// QuoteResponse is the priced order plus what the point of sale should do with it
type QuoteResponse struct {
	pricing.Result
	Decision    settlement.Decision `json:"decision"`
	Precision   int32               `json:"precision"`
	SalesAreaID *uuid.UUID          `json:"salesAreaId,omitempty"`
}

// ModifierResponse is a catalog modifier in API responses
type ModifierResponse struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenantId"`
	SalesAreaID uuid.UUID `json:"salesAreaId"`
	pricing.Modifier
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToModifierResponse converts a catalog entry to its response
func ToModifierResponse(m *pricing.SalesAreaModifier) ModifierResponse {
	return ModifierResponse{
		ID:          m.ID,
		TenantID:    m.TenantID,
		SalesAreaID: m.SalesAreaID,
		Modifier:    m.Modifier,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ToModifierResponses converts a list of catalog entries
func ToModifierResponses(entries []pricing.SalesAreaModifier) []ModifierResponse {
	out := make([]ModifierResponse, 0, len(entries))
	for i := range entries {
		out = append(out, ToModifierResponse(&entries[i]))
	}
	return out
}
