package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(amount string, c Currency) Money {
	return MustNewMoney(decimal.RequireFromString(amount), c)
}

func TestNewMoneyBag(t *testing.T) {
	bag := NewMoneyBag(
		money("10", USD),
		money("5", EUR),
		money("2.5", USD),
	)

	assert.Equal(t, 2, bag.Len())
	assert.Equal(t, []Currency{USD, EUR}, bag.Currencies())
	assert.Equal(t, "12.5", bag.AmountOf(USD).String())
	assert.Equal(t, "5", bag.AmountOf(EUR).String())
	assert.True(t, bag.AmountOf(CUP).IsZero())

	_, ok := bag.Get(CUP)
	assert.False(t, ok)
}

func TestMoneyBagIsImmutable(t *testing.T) {
	base := NewMoneyBag(money("10", USD))
	grown := base.Add(money("1", USD)).Add(money("3", EUR))

	assert.Equal(t, "10", base.AmountOf(USD).String())
	assert.Equal(t, 1, base.Len())
	assert.Equal(t, "11", grown.AmountOf(USD).String())
	assert.Equal(t, 2, grown.Len())

	entries := grown.Entries()
	entries[0] = money("999", USD)
	assert.Equal(t, "11", grown.AmountOf(USD).String())
}

func TestMoneyBagSubtract(t *testing.T) {
	t.Run("same currency", func(t *testing.T) {
		owed := NewMoneyBag(money("20", USD))
		paid := NewMoneyBag(money("15", USD))
		diff := owed.Subtract(paid)
		assert.Equal(t, "5", diff.AmountOf(USD).String())
	})

	t.Run("union of currencies keeps owed order first", func(t *testing.T) {
		owed := NewMoneyBag(money("10", USD))
		paid := NewMoneyBag(money("5", EUR))
		diff := owed.Subtract(paid)

		require.Equal(t, []Currency{USD, EUR}, diff.Currencies())
		assert.Equal(t, "10", diff.AmountOf(USD).String())
		assert.Equal(t, "-5", diff.AmountOf(EUR).String())
	})

	t.Run("zero differences are kept", func(t *testing.T) {
		owed := NewMoneyBag(money("10", USD))
		diff := owed.Subtract(NewMoneyBag(money("10", USD)))
		require.Equal(t, 1, diff.Len())
		assert.True(t, diff.AmountOf(USD).IsZero())
	})
}

func TestSumBags(t *testing.T) {
	sum := SumBags(
		NewMoneyBag(money("1", USD)),
		MoneyBag{},
		NewMoneyBag(money("2", EUR), money("3", USD)),
	)
	assert.Equal(t, []Currency{USD, EUR}, sum.Currencies())
	assert.Equal(t, "4", sum.AmountOf(USD).String())
	assert.Equal(t, "2", sum.AmountOf(EUR).String())
}

func TestMoneyBagMapAndNegate(t *testing.T) {
	bag := NewMoneyBag(money("1.234", USD), money("-2", EUR))

	rounded := bag.Map(func(m Money) Money { return m.Round(2) })
	assert.Equal(t, "1.23", rounded.AmountOf(USD).String())

	neg := bag.Negate()
	assert.Equal(t, "-1.234", neg.AmountOf(USD).String())
	assert.Equal(t, "2", neg.AmountOf(EUR).String())
}

func TestMoneyBagEquals(t *testing.T) {
	a := NewMoneyBag(money("1", USD), money("2", EUR))
	b := NewMoneyBag(money("2.00", EUR), money("1.0", USD))
	c := NewMoneyBag(money("1", USD))

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func TestMoneyBagJSON(t *testing.T) {
	t.Run("empty bag encodes as empty array", func(t *testing.T) {
		data, err := json.Marshal(MoneyBag{})
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	})

	t.Run("round trip", func(t *testing.T) {
		bag := NewMoneyBag(money("10", USD), money("5", EUR))
		data, err := json.Marshal(bag)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"amount":"10","codeCurrency":"USD"},{"amount":"5","codeCurrency":"EUR"}]`, string(data))

		var decoded MoneyBag
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, decoded.Equals(bag))
	})

	t.Run("duplicates are summed on decode", func(t *testing.T) {
		var decoded MoneyBag
		require.NoError(t, json.Unmarshal([]byte(`[{"amount":"1","codeCurrency":"USD"},{"amount":"2","codeCurrency":"USD"}]`), &decoded))
		assert.Equal(t, 1, decoded.Len())
		assert.Equal(t, "3", decoded.AmountOf(USD).String())
	})
}
