package pricing

import (
	"sort"

	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Engine prices orders for one business. It only holds the business's
// rounding precision, so a single Engine may be shared between goroutines.
type Engine struct {
	precision valueobject.Precision
}

// NewEngine creates an engine rounding to the given precision
func NewEngine(precision valueobject.Precision) (*Engine, error) {
	if err := precision.Validate(); err != nil {
		return nil, &ValidationError{Field: "precision", Reason: err.Error()}
	}
	return &Engine{precision: precision}, nil
}

var defaultEngine = &Engine{precision: valueobject.DefaultPrecision}

// DefaultEngine returns the shared engine rounding to two decimal places
func DefaultEngine() *Engine {
	return defaultEngine
}

// ComputeOrderTotals prices the order with two decimal places
func ComputeOrderTotals(in Input) (Result, error) {
	return defaultEngine.ComputeOrderTotals(in)
}

// Precision returns the rounding precision of the engine
func (e *Engine) Precision() valueobject.Precision {
	return e.precision
}

// ComputeOrderTotals runs the pricing stages in order. Each stage rounds its
// own products before handing the running total to the next one; rounding
// only at the end gives different totals for some percent/fixed mixes.
func (e *Engine) ComputeOrderTotals(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	if in.HouseCosted {
		return emptyResult(), nil
	}

	res := Result{OrderModifiersApplied: []ModifierApplication{}}

	running := e.subtotal(in.LineItems)
	res.Subtotal = running

	running, res.CommissionTotal, res.DiscountedTotal = e.applyPercentages(running, in.CommissionPercent, in.DiscountPercent)

	gross, accumulative := partitionModifiers(in.Modifiers)
	running, res.OrderModifiersApplied = e.applyModifiers(running, gross, res.OrderModifiersApplied)
	running, res.OrderModifiersApplied = e.applyModifiers(running, accumulative, res.OrderModifiersApplied)

	if in.ShippingCharge != nil {
		running = running.Add(*in.ShippingCharge)
	}
	res.TotalOwed = running

	res.TotalPaidSoFar = valueobject.SumBags(
		paymentsBag(in.RegisteredPayments),
		paymentsBag(in.PartialPayments),
		paymentsBag(in.PrepaidRedemptions),
		in.CouponDiscount,
	)
	res.Difference = res.TotalOwed.Subtract(res.TotalPaidSoFar)

	return res, nil
}

func emptyResult() Result {
	return Result{OrderModifiersApplied: []ModifierApplication{}}
}

func (e *Engine) subtotal(items []LineItem) valueobject.MoneyBag {
	bag := valueobject.MoneyBag{}
	for _, item := range items {
		line := item.UnitPrice.MultiplyByInt(item.Quantity).Round(int32(e.precision))
		bag = bag.Add(line)
	}
	return bag
}

// applyPercentages computes commission and discount from the same base per
// bucket, adds the commission and then subtracts the discount.
func (e *Engine) applyPercentages(running valueobject.MoneyBag, commissionPct, discountPct decimal.Decimal) (valueobject.MoneyBag, valueobject.MoneyBag, valueobject.MoneyBag) {
	commissions := valueobject.MoneyBag{}
	discounts := valueobject.MoneyBag{}
	if !commissionPct.IsPositive() && !discountPct.IsPositive() {
		return running, commissions, discounts
	}

	out := valueobject.MoneyBag{}
	for _, bucket := range running.Entries() {
		base := bucket.Amount()
		amount := base
		if commissionPct.IsPositive() {
			commission := e.precision.Percent(base, commissionPct)
			amount = amount.Add(commission)
			commissions = commissions.Add(valueobject.MustNewMoney(commission, bucket.Currency()))
		}
		if discountPct.IsPositive() {
			discount := e.precision.Percent(base, discountPct)
			amount = amount.Sub(discount)
			discounts = discounts.Add(valueobject.MustNewMoney(discount, bucket.Currency()))
		}
		out = out.Add(valueobject.MustNewMoney(amount, bucket.Currency()))
	}
	return out, commissions, discounts
}

// partitionModifiers keeps active modifiers and splits them by stage, each
// stage sorted by ascending priority. A modifier flagged for gross sales is
// never applied again in the accumulative stage, and one with neither flag
// belongs to no stage.
func partitionModifiers(mods []Modifier) (gross, accumulative []Modifier) {
	for _, m := range mods {
		if !m.Active {
			continue
		}
		switch {
		case m.ApplyToGrossSales:
			gross = append(gross, m)
		case m.ApplyAcumulative:
			accumulative = append(accumulative, m)
		}
	}
	sortByPriority(gross)
	sortByPriority(accumulative)
	return gross, accumulative
}

// sortByPriority orders by priority, then name, so equal priorities do not
// depend on the order the caller listed them in.
func sortByPriority(mods []Modifier) {
	sort.SliceStable(mods, func(i, j int) bool {
		if mods[i].Priority != mods[j].Priority {
			return mods[i].Priority < mods[j].Priority
		}
		return mods[i].Name < mods[j].Name
	})
}

// applyModifiers applies each modifier to the running total left by the
// previous one, so percent modifiers compound.
func (e *Engine) applyModifiers(running valueobject.MoneyBag, mods []Modifier, audit []ModifierApplication) (valueobject.MoneyBag, []ModifierApplication) {
	for _, m := range mods {
		running, audit = e.applyModifier(running, m, audit)
	}
	return running, audit
}

func (e *Engine) applyModifier(running valueobject.MoneyBag, m Modifier, audit []ModifierApplication) (valueobject.MoneyBag, []ModifierApplication) {
	sign := m.sign()
	if m.ApplyFixedAmount {
		delta := m.FixedPrice.Multiply(sign)
		audit = append(audit, ModifierApplication{
			Name:         m.Name,
			Amount:       delta.Amount(),
			CodeCurrency: delta.Currency(),
		})
		return running.Add(delta), audit
	}
	for _, bucket := range running.Entries() {
		amount := e.precision.Percent(bucket.Amount(), m.PercentAmount).Mul(sign)
		running = running.Add(valueobject.MustNewMoney(amount, bucket.Currency()))
		audit = append(audit, ModifierApplication{
			Name:         m.Name,
			Amount:       amount,
			CodeCurrency: bucket.Currency(),
		})
	}
	return running, audit
}

func paymentsBag(entries []PaymentEntry) valueobject.MoneyBag {
	bag := valueobject.MoneyBag{}
	for _, p := range entries {
		bag = bag.Add(p.Money())
	}
	return bag
}
