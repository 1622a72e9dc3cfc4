// Package settlement turns a priced order into a payment decision and keeps
// the ledger of payment submissions per order.
package settlement

import (
	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Status of an order after a payment submission
type Status string

const (
	StatusPaid    Status = "paid"
	StatusPartial Status = "partial"
)

// Decision is what the point of sale does with a priced order
type Decision struct {
	IsPartialPayment bool                 `json:"isPartialPayment"`
	Status           Status               `json:"status"`
	Outstanding      valueobject.MoneyBag `json:"outstanding"`
	ChangeDue        valueobject.MoneyBag `json:"changeDue"`
}

// Decide classifies a pricing result. Every currency is judged on its own:
// an overpayment in one currency never covers a debt in another, so an order
// can be partially paid and still owe change in a different currency.
func Decide(res pricing.Result) Decision {
	outstanding := valueobject.MoneyBag{}
	change := valueobject.MoneyBag{}
	for _, entry := range res.Difference.Entries() {
		switch {
		case entry.IsPositive():
			outstanding = outstanding.Add(entry)
		case entry.IsNegative():
			change = change.Add(entry.Abs())
		}
	}

	d := Decision{
		IsPartialPayment: !outstanding.IsEmpty(),
		Status:           StatusPaid,
		Outstanding:      outstanding,
		ChangeDue:        change,
	}
	if d.IsPartialPayment {
		d.Status = StatusPartial
	}
	return d
}

// Settlement records one payment submission against an order
type Settlement struct {
	shared.TenantAggregateRoot
	OrderID     uuid.UUID
	SalesAreaID *uuid.UUID
	Payments    []pricing.PaymentEntry
	Totals      pricing.Result
	Decision    Decision
}

// NewSettlement creates a settlement for the payments of one submission and
// the totals they were reconciled against
func NewSettlement(tenantID, orderID uuid.UUID, salesAreaID *uuid.UUID, payments []pricing.PaymentEntry, totals pricing.Result) (*Settlement, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID is required")
	}
	if len(payments) == 0 {
		return nil, shared.NewDomainError("NO_PAYMENTS", "A settlement needs at least one payment")
	}

	s := &Settlement{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderID:             orderID,
		SalesAreaID:         salesAreaID,
		Payments:            append([]pricing.PaymentEntry(nil), payments...),
		Totals:              totals,
		Decision:            Decide(totals),
	}
	s.AddDomainEvent(NewSettlementRecordedEvent(s))
	return s, nil
}

// IsPaid reports whether the order owes nothing after this settlement
func (s *Settlement) IsPaid() bool {
	return s.Decision.Status == StatusPaid
}

// PriorPayments flattens the payments of earlier settlements, prepaid
// redemptions included, so they can be replayed as partial payments when the
// order is priced again
func PriorPayments(history []Settlement) []pricing.PaymentEntry {
	var out []pricing.PaymentEntry
	for _, s := range history {
		out = append(out, s.Payments...)
	}
	return out
}
