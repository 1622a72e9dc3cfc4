package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places a business keeps after the comma.
type Precision int32

const (
	// DefaultPrecision is used when the business has not configured one
	DefaultPrecision Precision = 2
	// MaxPrecision bounds configurable precision
	MaxPrecision Precision = 8
)

// Validate checks that the precision is within 0..MaxPrecision
func (p Precision) Validate() error {
	if p < 0 || p > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d, got %d", MaxPrecision, p)
	}
	return nil
}

// Round rounds half away from zero, so 0.125 becomes 0.13 and -0.125 becomes -0.13 at 2 places.
func (p Precision) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(int32(p))
}

// Percent returns round(amount * percent / 100).
func (p Precision) Percent(amount, percent decimal.Decimal) decimal.Decimal {
	return p.Round(amount.Mul(percent).Div(hundred))
}

var hundred = decimal.NewFromInt(100)
