package pricing

import (
	"fmt"

	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var (
	minPercent = decimal.Zero
	maxPercent = decimal.NewFromInt(100)
)

// Validate checks the whole input and returns the first problem found
func (in Input) Validate() error {
	if err := validatePercent("discountPercent", in.DiscountPercent); err != nil {
		return err
	}
	if err := validatePercent("commissionPercent", in.CommissionPercent); err != nil {
		return err
	}
	for i, item := range in.LineItems {
		field := fmt.Sprintf("lineItems[%d]", i)
		if item.Quantity <= 0 {
			return invalid(field+".quantity", "must be positive, got %d", item.Quantity)
		}
		if err := validateCurrency(field+".unitPrice.codeCurrency", item.UnitPrice.Currency()); err != nil {
			return err
		}
	}
	for i, m := range in.Modifiers {
		if err := m.validateAt(fmt.Sprintf("modifiers[%d]", i)); err != nil {
			return err
		}
	}
	for i, c := range in.CouponDiscount.Currencies() {
		if err := validateCurrency(fmt.Sprintf("couponDiscount[%d].codeCurrency", i), c); err != nil {
			return err
		}
	}
	if in.ShippingCharge != nil {
		if err := validateCurrency("shippingCharge.codeCurrency", in.ShippingCharge.Currency()); err != nil {
			return err
		}
	}
	payments := []struct {
		field   string
		entries []PaymentEntry
	}{
		{"registeredPayments", in.RegisteredPayments},
		{"partialPayments", in.PartialPayments},
		{"prepaidRedemptions", in.PrepaidRedemptions},
	}
	for _, group := range payments {
		for i, p := range group.entries {
			if err := p.validateAt(fmt.Sprintf("%s[%d]", group.field, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Validate checks a single modifier configuration
func (m Modifier) Validate() error {
	return m.validateAt("modifier")
}

func (m Modifier) validateAt(field string) error {
	if !m.Type.IsValid() {
		return invalid(field+".type", "must be %q or %q, got %q", ModifierTax, ModifierDiscount, m.Type)
	}
	if m.ApplyFixedAmount {
		if m.FixedPrice == nil {
			return invalid(field+".fixedPrice", "required when applyFixedAmount is set")
		}
		return validateCurrency(field+".fixedPrice.codeCurrency", m.FixedPrice.Currency())
	}
	return validatePercent(field+".percentAmount", m.PercentAmount)
}

func (p PaymentEntry) validateAt(field string) error {
	if err := validateCurrency(field+".codeCurrency", p.CodeCurrency); err != nil {
		return err
	}
	if !p.Method.IsValid() {
		return invalid(field+".method", "unknown payment method %q", p.Method)
	}
	return nil
}

func validatePercent(field string, v decimal.Decimal) error {
	if v.LessThan(minPercent) || v.GreaterThan(maxPercent) {
		return invalid(field, "must be between 0 and 100, got %s", v.String())
	}
	return nil
}

func validateCurrency(field string, c valueobject.Currency) error {
	if err := c.Validate(); err != nil {
		return invalid(field, "%v", err)
	}
	return nil
}
