package pricing

import (
	"fmt"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
)

// currencySet is the set of currencies a business accepts. An empty set
// accepts every well-formed code.
type currencySet map[valueobject.Currency]struct{}

func newCurrencySet(codes []valueobject.Currency) currencySet {
	set := make(currencySet, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

func (s currencySet) check(field string, c valueobject.Currency) error {
	if err := c.Validate(); err != nil {
		return pricing.NewValidationError(field, err.Error())
	}
	if len(s) == 0 {
		return nil
	}
	if _, ok := s[c]; !ok {
		return pricing.NewValidationError(field, fmt.Sprintf("currency %s is not enabled", c))
	}
	return nil
}

func (s currencySet) money(field string, m MoneyRequest) (valueobject.Money, error) {
	c := valueobject.Currency(m.CodeCurrency)
	if err := s.check(field+".codeCurrency", c); err != nil {
		return valueobject.Money{}, err
	}
	return valueobject.NewMoney(m.Amount, c)
}

func (s currencySet) payments(field string, reqs []PaymentRequest) ([]pricing.PaymentEntry, error) {
	out := make([]pricing.PaymentEntry, 0, len(reqs))
	for i, p := range reqs {
		c := valueobject.Currency(p.CodeCurrency)
		if err := s.check(fmt.Sprintf("%s[%d].codeCurrency", field, i), c); err != nil {
			return nil, err
		}
		out = append(out, pricing.PaymentEntry{
			Amount:       p.Amount,
			CodeCurrency: c,
			Method:       pricing.PaymentMethod(p.Method),
		})
	}
	return out, nil
}

func (s currencySet) modifier(field string, req ModifierRequest) (pricing.Modifier, error) {
	m := pricing.Modifier{
		Name:              req.Name,
		Type:              pricing.ModifierType(req.Type),
		Active:            req.Active,
		ApplyFixedAmount:  req.ApplyFixedAmount,
		PercentAmount:     req.PercentAmount,
		ApplyToGrossSales: req.ApplyToGrossSales,
		ApplyAcumulative:  req.ApplyAcumulative,
		Priority:          req.Priority,
	}
	if req.FixedPrice != nil {
		price, err := s.money(field+".fixedPrice", *req.FixedPrice)
		if err != nil {
			return pricing.Modifier{}, err
		}
		m.FixedPrice = &price
	}
	return m, nil
}

// input maps a quote request onto the engine input. Payment and modifier
// semantics are left to the engine's own validation.
func (s currencySet) input(req QuoteRequest) (pricing.Input, error) {
	in := pricing.Input{
		DiscountPercent:   req.DiscountPercent,
		CommissionPercent: req.CommissionPercent,
		HouseCosted:       req.HouseCosted,
	}

	in.LineItems = make([]pricing.LineItem, 0, len(req.LineItems))
	for i, item := range req.LineItems {
		price, err := s.money(fmt.Sprintf("lineItems[%d].unitPrice", i), item.UnitPrice)
		if err != nil {
			return pricing.Input{}, err
		}
		in.LineItems = append(in.LineItems, pricing.LineItem{Quantity: item.Quantity, UnitPrice: price})
	}

	for i, mr := range req.Modifiers {
		m, err := s.modifier(fmt.Sprintf("modifiers[%d]", i), mr)
		if err != nil {
			return pricing.Input{}, err
		}
		in.Modifiers = append(in.Modifiers, m)
	}

	coupons := make([]valueobject.Money, 0, len(req.CouponDiscount))
	for i, c := range req.CouponDiscount {
		m, err := s.money(fmt.Sprintf("couponDiscount[%d]", i), c)
		if err != nil {
			return pricing.Input{}, err
		}
		coupons = append(coupons, m)
	}
	in.CouponDiscount = valueobject.NewMoneyBag(coupons...)

	if req.ShippingCharge != nil {
		shipping, err := s.money("shippingCharge", *req.ShippingCharge)
		if err != nil {
			return pricing.Input{}, err
		}
		in.ShippingCharge = &shipping
	}

	var err error
	if in.RegisteredPayments, err = s.payments("registeredPayments", req.RegisteredPayments); err != nil {
		return pricing.Input{}, err
	}
	if in.PartialPayments, err = s.payments("partialPayments", req.PartialPayments); err != nil {
		return pricing.Input{}, err
	}
	if in.PrepaidRedemptions, err = s.payments("prepaidRedemptions", req.PrepaidRedemptions); err != nil {
		return pricing.Input{}, err
	}
	return in, nil
}
