// Package pricing computes what an order owes, per currency, and reconciles
// it against the payments already registered.
package pricing

import (
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ModifierType distinguishes modifiers that raise the total from those that lower it
type ModifierType string

const (
	ModifierTax      ModifierType = "tax"
	ModifierDiscount ModifierType = "discount"
)

// IsValid reports whether the modifier type is known
func (t ModifierType) IsValid() bool {
	return t == ModifierTax || t == ModifierDiscount
}

// PaymentMethod is how a payment entry was settled
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentTransfer PaymentMethod = "TRANSFER"
	PaymentCard     PaymentMethod = "CARD"
	PaymentPrepaid  PaymentMethod = "PREPAID"
	PaymentCoupon   PaymentMethod = "COUPON"
)

// IsValid reports whether the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentTransfer, PaymentCard, PaymentPrepaid, PaymentCoupon:
		return true
	}
	return false
}

// LineItem is one order line
type LineItem struct {
	Quantity  int64
	UnitPrice valueobject.Money
}

// Modifier is a tax or discount configured on a sales area.
// A modifier is either fixed (FixedPrice) or percent based (PercentAmount).
type Modifier struct {
	Name              string             `json:"name"`
	Type              ModifierType       `json:"type"`
	Active            bool               `json:"active"`
	ApplyFixedAmount  bool               `json:"applyFixedAmount"`
	FixedPrice        *valueobject.Money `json:"fixedPrice,omitempty"`
	PercentAmount     decimal.Decimal    `json:"percentAmount"`
	ApplyToGrossSales bool               `json:"applyToGrossSales"`
	ApplyAcumulative  bool               `json:"applyAcumulative"`
	Priority          int                `json:"priority"`
}

// sign is -1 for discounts and +1 for taxes
func (m Modifier) sign() decimal.Decimal {
	if m.Type == ModifierDiscount {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// PaymentEntry is a payment registered against the order
type PaymentEntry struct {
	Amount       decimal.Decimal      `json:"amount"`
	CodeCurrency valueobject.Currency `json:"codeCurrency"`
	Method       PaymentMethod        `json:"method"`
}

// Money returns the payment as a Money value
func (p PaymentEntry) Money() valueobject.Money {
	return valueobject.MustNewMoney(p.Amount, p.CodeCurrency)
}

// Input carries everything needed to price and reconcile one order.
// Zero percentages mean "not present".
type Input struct {
	LineItems          []LineItem
	Modifiers          []Modifier
	CouponDiscount     valueobject.MoneyBag
	DiscountPercent    decimal.Decimal
	CommissionPercent  decimal.Decimal
	ShippingCharge     *valueobject.Money
	HouseCosted        bool
	RegisteredPayments []PaymentEntry
	PartialPayments    []PaymentEntry
	PrepaidRedemptions []PaymentEntry
}

// ModifierApplication records the signed effect of one modifier on one currency
type ModifierApplication struct {
	Name         string               `json:"name"`
	Amount       decimal.Decimal      `json:"amount"`
	CodeCurrency valueobject.Currency `json:"codeCurrency"`
}

// Result is the outcome of pricing an order.
// Difference entries are owed minus paid: negative means change is due.
type Result struct {
	Subtotal              valueobject.MoneyBag  `json:"subtotal"`
	DiscountedTotal       valueobject.MoneyBag  `json:"discountedTotal"`
	CommissionTotal       valueobject.MoneyBag  `json:"commissionTotal"`
	OrderModifiersApplied []ModifierApplication `json:"orderModifiersApplied"`
	TotalOwed             valueobject.MoneyBag  `json:"totalOwed"`
	TotalPaidSoFar        valueobject.MoneyBag  `json:"totalPaidSoFar"`
	Difference            valueobject.MoneyBag  `json:"difference"`
}
