package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is a three letter currency code. Codes outside ISO 4217 such as
// MLC are accepted as long as they have the right shape.
type Currency string

// Common currencies
const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	CUP Currency = "CUP"
	MXN Currency = "MXN"
)

// Currency and money errors
var (
	ErrEmptyCurrency     = errors.New("currency cannot be empty")
	ErrMalformedCurrency = errors.New("currency must be a three letter uppercase code")
	ErrCurrencyMismatch  = errors.New("currency mismatch")
)

// Validate rejects anything that is not three ASCII uppercase letters
func (c Currency) Validate() error {
	if c == "" {
		return ErrEmptyCurrency
	}
	ok := len(c) == 3
	for i := 0; ok && i < len(c); i++ {
		ok = c[i] >= 'A' && c[i] <= 'Z'
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrMalformedCurrency, string(c))
	}
	return nil
}

// String returns the code
func (c Currency) String() string { return string(c) }

// ParseCurrencies converts configured codes, failing on the first bad one
func ParseCurrencies(codes []string) ([]Currency, error) {
	out := make([]Currency, len(codes))
	for i, code := range codes {
		out[i] = Currency(code)
		if err := out[i].Validate(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Money is an immutable amount in a single currency. Amounts may be
// negative; a negative payment is a refund.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a Money, validating the currency code
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if err := currency.Validate(); err != nil {
		return Money{}, err
	}
	return Money{amount: amount, currency: currency}, nil
}

// MustNewMoney panics on an invalid currency. Use it for literals.
func MustNewMoney(amount decimal.Decimal, currency Currency) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMoneyFromString creates a Money from a decimal string such as "12.50"
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	return NewMoney(d, currency)
}

// Zero is the empty amount of currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency code
func (m Money) Currency() Currency { return m.currency }

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsPositive returns true if the amount is greater than zero
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// IsNegative returns true if the amount is less than zero
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

func (m Money) with(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: m.currency}
}

func (m Money) sameCurrency(op string, other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("%w: cannot %s %s and %s", ErrCurrencyMismatch, op, m.currency, other.currency)
	}
	return nil
}

// Add returns m + other. Both must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency("add", other); err != nil {
		return Money{}, err
	}
	return m.with(m.amount.Add(other.amount)), nil
}

// Subtract returns m - other. Both must share a currency.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency("subtract", other); err != nil {
		return Money{}, err
	}
	return m.with(m.amount.Sub(other.amount)), nil
}

// Multiply scales the amount by factor without rounding
func (m Money) Multiply(factor decimal.Decimal) Money { return m.with(m.amount.Mul(factor)) }

// MultiplyByInt scales the amount by a whole quantity
func (m Money) MultiplyByInt(n int64) Money { return m.Multiply(decimal.NewFromInt(n)) }

// Negate flips the sign of the amount
func (m Money) Negate() Money { return m.with(m.amount.Neg()) }

// Abs returns the magnitude of the amount
func (m Money) Abs() Money { return m.with(m.amount.Abs()) }

// Round rounds half away from zero to places decimals
func (m Money) Round(places int32) Money { return m.with(m.amount.Round(places)) }

// Equals compares currency and numeric value, so 1.50 equals 1.5
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String formats as "12.5 USD"
func (m Money) String() string { return m.amount.String() + " " + string(m.currency) }

type moneyJSON struct {
	Amount       decimal.Decimal `json:"amount"`
	CodeCurrency Currency        `json:"codeCurrency"`
}

// MarshalJSON writes {"amount":"1.5","codeCurrency":"USD"} with the amount
// as a string so no precision is lost in transit.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount, CodeCurrency: m.currency})
}

// UnmarshalJSON accepts the amount as a string or a number and validates the currency
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := NewMoney(v.Amount, v.CodeCurrency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
