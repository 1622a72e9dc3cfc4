package valueobject

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MoneyBag holds at most one Money per currency. Amounts in different
// currencies are never combined. Entries keep the order in which their
// currency was first seen. Like Money, a bag is immutable.
type MoneyBag struct {
	entries []Money
}

// NewMoneyBag builds a bag, summing entries that share a currency
func NewMoneyBag(items ...Money) MoneyBag {
	bag := MoneyBag{}
	for _, m := range items {
		bag = bag.Add(m)
	}
	return bag
}

// SumBags merges several bags into one, currency by currency
func SumBags(bags ...MoneyBag) MoneyBag {
	out := MoneyBag{}
	for _, b := range bags {
		for _, m := range b.entries {
			out = out.Add(m)
		}
	}
	return out
}

func (b MoneyBag) indexOf(c Currency) int {
	for i, m := range b.entries {
		if m.currency == c {
			return i
		}
	}
	return -1
}

// Add returns a new bag with m added to the bucket of its currency,
// creating the bucket when absent
func (b MoneyBag) Add(m Money) MoneyBag {
	entries := make([]Money, len(b.entries), len(b.entries)+1)
	copy(entries, b.entries)
	if i := b.indexOf(m.currency); i >= 0 {
		entries[i] = Money{amount: entries[i].amount.Add(m.amount), currency: m.currency}
	} else {
		entries = append(entries, m)
	}
	return MoneyBag{entries: entries}
}

// Get returns the bucket for a currency
func (b MoneyBag) Get(c Currency) (Money, bool) {
	if i := b.indexOf(c); i >= 0 {
		return b.entries[i], true
	}
	return Zero(c), false
}

// AmountOf returns the bucket amount for a currency, zero when absent
func (b MoneyBag) AmountOf(c Currency) decimal.Decimal {
	m, _ := b.Get(c)
	return m.amount
}

// Map returns a new bag with fn applied to every bucket.
// fn must keep the currency of the bucket it receives.
func (b MoneyBag) Map(fn func(Money) Money) MoneyBag {
	entries := make([]Money, len(b.entries))
	for i, m := range b.entries {
		out := fn(m)
		entries[i] = Money{amount: out.amount, currency: m.currency}
	}
	return MoneyBag{entries: entries}
}

// Negate flips the sign of every bucket
func (b MoneyBag) Negate() MoneyBag {
	return b.Map(Money.Negate)
}

// Subtract returns b - other over the union of both currency sets.
// Currencies missing on one side count as zero there.
func (b MoneyBag) Subtract(other MoneyBag) MoneyBag {
	out := MoneyBag{entries: make([]Money, 0, len(b.entries)+len(other.entries))}
	for _, m := range b.entries {
		out.entries = append(out.entries, Money{amount: m.amount.Sub(other.AmountOf(m.currency)), currency: m.currency})
	}
	for _, m := range other.entries {
		if b.indexOf(m.currency) < 0 {
			out.entries = append(out.entries, m.Negate())
		}
	}
	return out
}

// Currencies lists the currency of every bucket in order
func (b MoneyBag) Currencies() []Currency {
	out := make([]Currency, len(b.entries))
	for i, m := range b.entries {
		out[i] = m.currency
	}
	return out
}

// Entries returns a copy of the buckets
func (b MoneyBag) Entries() []Money {
	out := make([]Money, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of buckets
func (b MoneyBag) Len() int {
	return len(b.entries)
}

// IsEmpty returns true when the bag has no buckets
func (b MoneyBag) IsEmpty() bool {
	return len(b.entries) == 0
}

// Equals compares bags bucket by bucket, ignoring order
func (b MoneyBag) Equals(other MoneyBag) bool {
	if len(b.entries) != len(other.entries) {
		return false
	}
	for _, m := range b.entries {
		o, ok := other.Get(m.currency)
		if !ok || !o.amount.Equal(m.amount) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the bag as an array of {amount, codeCurrency}
func (b MoneyBag) MarshalJSON() ([]byte, error) {
	if b.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(b.entries)
}

// UnmarshalJSON decodes an array of {amount, codeCurrency}, summing duplicates
func (b *MoneyBag) UnmarshalJSON(data []byte) error {
	var items []Money
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*b = NewMoneyBag(items...)
	return nil
}
