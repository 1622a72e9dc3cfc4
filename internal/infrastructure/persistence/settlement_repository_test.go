package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/settlement"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pricedOrder(t *testing.T, paid int64) (pricing.Result, []pricing.PaymentEntry) {
	t.Helper()
	payments := []pricing.PaymentEntry{{
		Amount:       decimal.NewFromInt(paid),
		CodeCurrency: valueobject.USD,
		Method:       pricing.PaymentCash,
	}}
	res, err := pricing.ComputeOrderTotals(pricing.Input{
		LineItems: []pricing.LineItem{
			{Quantity: 2, UnitPrice: valueobject.MustNewMoney(decimal.NewFromInt(10), valueobject.USD)},
			{Quantity: 1, UnitPrice: valueobject.MustNewMoney(decimal.NewFromInt(300), valueobject.CUP)},
		},
		RegisteredPayments: payments,
	})
	require.NoError(t, err)
	return res, payments
}

func TestGormSettlementRepository_SaveAndFindByOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSettlementRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	orderID := uuid.New()
	areaID := uuid.New()

	totals, payments := pricedOrder(t, 15)
	first, err := settlement.NewSettlement(tenantID, orderID, &areaID, payments, totals)
	require.NoError(t, err)
	first.CreatedAt = time.Now().Add(-time.Minute)

	totals, payments = pricedOrder(t, 25)
	second, err := settlement.NewSettlement(tenantID, orderID, nil, payments, totals)
	require.NoError(t, err)

	// stored out of order on purpose
	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, repo.Save(ctx, first))

	other, err := settlement.NewSettlement(tenantID, uuid.New(), nil, payments, totals)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	history, err := repo.FindByOrder(ctx, tenantID, orderID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	got := history[0]
	assert.Equal(t, first.ID, got.ID)
	require.NotNil(t, got.SalesAreaID)
	assert.Equal(t, areaID, *got.SalesAreaID)
	require.Len(t, got.Payments, 1)
	assert.True(t, decimal.NewFromInt(15).Equal(got.Payments[0].Amount))
	assert.Equal(t, pricing.PaymentCash, got.Payments[0].Method)
	assert.True(t, first.Totals.TotalOwed.Equals(got.Totals.TotalOwed))
	assert.True(t, first.Totals.Difference.Equals(got.Totals.Difference))
	assert.Equal(t, settlement.StatusPartial, got.Decision.Status)
	assert.True(t, got.Decision.Outstanding.Equals(first.Decision.Outstanding))

	assert.Equal(t, second.ID, history[1].ID)
	assert.Nil(t, history[1].SalesAreaID)

	none, err := repo.FindByOrder(ctx, uuid.New(), orderID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGormSettlementRepository_DatabaseError(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormSettlementRepository(db.DB)
	tenantID := uuid.New()
	orderID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "settlements" WHERE tenant_id = \$1 AND order_id = \$2 ORDER BY created_at ASC, id ASC`).
		WithArgs(tenantID, orderID).
		WillReturnError(assert.AnError)

	_, err := repo.FindByOrder(context.Background(), tenantID, orderID)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
