package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/settlement"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func usd(amount string) MoneyRequest {
	return MoneyRequest{Amount: decimal.RequireFromString(amount), CodeCurrency: "USD"}
}

func basicOrder() QuoteRequest {
	return QuoteRequest{
		LineItems: []LineItemRequest{{Quantity: 2, UnitPrice: usd("10")}},
	}
}

func TestQuoteService_Quote(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("prices a plain order", func(t *testing.T) {
		svc := NewQuoteService(QuoteServiceConfig{})
		req := basicOrder()
		req.RegisteredPayments = []PaymentRequest{{Amount: decimal.NewFromInt(15), CodeCurrency: "USD", Method: "CASH"}}

		resp, err := svc.Quote(ctx, tenantID, req)
		require.NoError(t, err)

		assert.Equal(t, "20", resp.TotalOwed.AmountOf(valueobject.USD).String())
		assert.Equal(t, "5", resp.Difference.AmountOf(valueobject.USD).String())
		assert.Equal(t, settlement.StatusPartial, resp.Decision.Status)
		assert.True(t, resp.Decision.IsPartialPayment)
		assert.Equal(t, int32(2), resp.Precision)
	})

	t.Run("uses configured precision", func(t *testing.T) {
		engine, err := pricing.NewEngine(0)
		require.NoError(t, err)
		svc := NewQuoteService(QuoteServiceConfig{Engine: engine})

		resp, err := svc.Quote(ctx, tenantID, QuoteRequest{
			LineItems: []LineItemRequest{{Quantity: 1, UnitPrice: MoneyRequest{Amount: decimal.RequireFromString("99.5"), CodeCurrency: "CUP"}}},
		})
		require.NoError(t, err)
		assert.Equal(t, "100", resp.TotalOwed.AmountOf(valueobject.CUP).String())
		assert.Equal(t, int32(0), resp.Precision)
	})

	t.Run("loads sales area modifiers when none are given", func(t *testing.T) {
		areaID := uuid.New()
		source := new(MockModifierSource)
		source.On("ModifiersForArea", ctx, tenantID, areaID).Return([]pricing.Modifier{{
			Name: "vat", Type: pricing.ModifierTax, Active: true,
			PercentAmount: decimal.NewFromInt(10), ApplyAcumulative: true,
		}}, nil)

		svc := NewQuoteService(QuoteServiceConfig{Modifiers: source})
		req := basicOrder()
		req.SalesAreaID = &areaID

		resp, err := svc.Quote(ctx, tenantID, req)
		require.NoError(t, err)
		assert.Equal(t, "22", resp.TotalOwed.AmountOf(valueobject.USD).String())
		assert.Equal(t, &areaID, resp.SalesAreaID)
		source.AssertExpectations(t)
	})

	t.Run("explicit modifiers win over the sales area", func(t *testing.T) {
		areaID := uuid.New()
		source := new(MockModifierSource)

		svc := NewQuoteService(QuoteServiceConfig{Modifiers: source})
		req := basicOrder()
		req.SalesAreaID = &areaID
		req.Modifiers = []ModifierRequest{{
			Name: "promo", Type: "discount", Active: true, ApplyFixedAmount: true,
			FixedPrice: &MoneyRequest{Amount: decimal.NewFromInt(5), CodeCurrency: "USD"}, ApplyToGrossSales: true,
		}}

		resp, err := svc.Quote(ctx, tenantID, req)
		require.NoError(t, err)
		assert.Equal(t, "15", resp.TotalOwed.AmountOf(valueobject.USD).String())
		source.AssertNotCalled(t, "ModifiersForArea", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("modifier lookup failure is wrapped", func(t *testing.T) {
		areaID := uuid.New()
		boom := errors.New("db down")
		source := new(MockModifierSource)
		source.On("ModifiersForArea", ctx, tenantID, areaID).Return(nil, boom)

		svc := NewQuoteService(QuoteServiceConfig{Modifiers: source})
		req := basicOrder()
		req.SalesAreaID = &areaID

		_, err := svc.Quote(ctx, tenantID, req)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("rejects currencies that are not enabled", func(t *testing.T) {
		metrics := new(MockMetrics)
		metrics.On("ValidationFailed", ctx, "registeredPayments[0].codeCurrency").Return()

		svc := NewQuoteService(QuoteServiceConfig{
			EnabledCurrencies: []valueobject.Currency{valueobject.USD, valueobject.CUP},
			Metrics:           metrics,
		})
		req := basicOrder()
		req.RegisteredPayments = []PaymentRequest{{Amount: decimal.NewFromInt(5), CodeCurrency: "EUR", Method: "CASH"}}

		_, err := svc.Quote(ctx, tenantID, req)
		var vErr *pricing.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "registeredPayments[0].codeCurrency", vErr.Field)
		assert.Contains(t, vErr.Reason, "not enabled")
		metrics.AssertExpectations(t)
	})

	t.Run("engine validation errors are reported", func(t *testing.T) {
		metrics := new(MockMetrics)
		metrics.On("ValidationFailed", ctx, "discountPercent").Return()

		svc := NewQuoteService(QuoteServiceConfig{Metrics: metrics})
		req := basicOrder()
		req.DiscountPercent = decimal.NewFromInt(120)

		_, err := svc.Quote(ctx, tenantID, req)
		require.Error(t, err)
		metrics.AssertExpectations(t)
		metrics.AssertNotCalled(t, "QuoteComputed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("records computed quotes", func(t *testing.T) {
		metrics := new(MockMetrics)
		metrics.On("QuoteComputed", ctx, mock.AnythingOfType("time.Duration"), true).Return()

		svc := NewQuoteService(QuoteServiceConfig{Metrics: metrics})
		req := basicOrder()
		req.HouseCosted = true

		resp, err := svc.Quote(ctx, tenantID, req)
		require.NoError(t, err)
		assert.True(t, resp.TotalOwed.IsEmpty())
		assert.Equal(t, settlement.StatusPaid, resp.Decision.Status)
		metrics.AssertExpectations(t)
	})
}

func TestQuoteService_PriceAppendsPriorPayments(t *testing.T) {
	svc := NewQuoteService(QuoteServiceConfig{})
	req := basicOrder()
	req.PartialPayments = []PaymentRequest{{Amount: decimal.NewFromInt(4), CodeCurrency: "USD", Method: "TRANSFER"}}

	prior := []pricing.PaymentEntry{{Amount: decimal.NewFromInt(6), CodeCurrency: valueobject.USD, Method: pricing.PaymentCash}}
	res, err := svc.Price(context.Background(), uuid.New(), req, prior)
	require.NoError(t, err)

	assert.Equal(t, "10", res.TotalPaidSoFar.AmountOf(valueobject.USD).String())
	assert.Equal(t, "10", res.Difference.AmountOf(valueobject.USD).String())
}

func TestCurrencySet_Input(t *testing.T) {
	set := newCurrencySet(nil)

	t.Run("maps every field", func(t *testing.T) {
		in, err := set.input(QuoteRequest{
			LineItems:          []LineItemRequest{{Quantity: 3, UnitPrice: usd("1.5")}},
			CouponDiscount:     []MoneyRequest{usd("1"), usd("2")},
			ShippingCharge:     &MoneyRequest{Amount: decimal.NewFromInt(2), CodeCurrency: "EUR"},
			DiscountPercent:    decimal.NewFromInt(5),
			CommissionPercent:  decimal.NewFromInt(3),
			PrepaidRedemptions: []PaymentRequest{{Amount: decimal.NewFromInt(1), CodeCurrency: "USD", Method: "PREPAID"}},
		})
		require.NoError(t, err)

		require.Len(t, in.LineItems, 1)
		assert.Equal(t, int64(3), in.LineItems[0].Quantity)
		assert.Equal(t, "3", in.CouponDiscount.AmountOf(valueobject.USD).String())
		assert.Equal(t, valueobject.EUR, in.ShippingCharge.Currency())
		assert.Equal(t, pricing.PaymentPrepaid, in.PrepaidRedemptions[0].Method)
		assert.Empty(t, in.RegisteredPayments)
	})

	t.Run("malformed currency names the field", func(t *testing.T) {
		_, err := set.input(QuoteRequest{
			LineItems: []LineItemRequest{{Quantity: 1, UnitPrice: usd("1")}, {Quantity: 1, UnitPrice: MoneyRequest{CodeCurrency: "us"}}},
		})
		var vErr *pricing.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "lineItems[1].unitPrice.codeCurrency", vErr.Field)
	})

	t.Run("fixed price currency is checked", func(t *testing.T) {
		_, err := set.input(QuoteRequest{Modifiers: []ModifierRequest{{
			Name: "x", Type: "tax", ApplyFixedAmount: true, FixedPrice: &MoneyRequest{CodeCurrency: "x"},
		}}})
		var vErr *pricing.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "modifiers[0].fixedPrice.codeCurrency", vErr.Field)
	})
}
