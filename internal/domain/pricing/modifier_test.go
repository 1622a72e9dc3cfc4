package pricing

import (
	"errors"
	"strings"
	"testing"

	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSalesAreaModifier(t *testing.T) {
	tenantID := uuid.New()
	areaID := uuid.New()

	t.Run("creates modifier and records event", func(t *testing.T) {
		m, err := NewSalesAreaModifier(tenantID, areaID, Modifier{
			Name: "  VAT  ", Type: ModifierTax, Active: true, PercentAmount: dec("16"), ApplyAcumulative: true,
		})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, m.ID)
		assert.Equal(t, tenantID, m.TenantID)
		assert.Equal(t, areaID, m.SalesAreaID)
		assert.Equal(t, "VAT", m.Name)
		assert.Equal(t, 1, m.GetVersion())

		events := m.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeModifierCreated, events[0].EventType())
		assert.Equal(t, tenantID, events[0].TenantID())
	})

	t.Run("fixed modifier drops percent", func(t *testing.T) {
		m, err := NewSalesAreaModifier(tenantID, areaID, Modifier{
			Name: "bag fee", Type: ModifierTax, ApplyFixedAmount: true,
			FixedPrice: moneyPtr("0.5", valueobject.USD), PercentAmount: dec("40"),
		})
		require.NoError(t, err)
		assert.True(t, m.PercentAmount.IsZero())
		assert.NotNil(t, m.FixedPrice)
	})

	t.Run("percent modifier drops fixed price", func(t *testing.T) {
		m, err := NewSalesAreaModifier(tenantID, areaID, Modifier{
			Name: "promo", Type: ModifierDiscount, PercentAmount: dec("5"), FixedPrice: moneyPtr("1", valueobject.USD),
		})
		require.NoError(t, err)
		assert.Nil(t, m.FixedPrice)
	})

	tests := []struct {
		name      string
		areaID    uuid.UUID
		modifier  Modifier
		wantField string
	}{
		{"missing area", uuid.Nil, Modifier{Name: "x", Type: ModifierTax}, "salesAreaId"},
		{"blank name", areaID, Modifier{Name: "   ", Type: ModifierTax}, "name"},
		{"long name", areaID, Modifier{Name: strings.Repeat("n", MaxModifierNameLength+1), Type: ModifierTax}, "name"},
		{"bad type", areaID, Modifier{Name: "x", Type: "fee"}, "modifier.type"},
		{"bad percent", areaID, Modifier{Name: "x", Type: ModifierTax, PercentAmount: dec("120")}, "modifier.percentAmount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSalesAreaModifier(tenantID, tt.areaID, tt.modifier)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestSalesAreaModifier_Reconfigure(t *testing.T) {
	m, err := NewSalesAreaModifier(uuid.New(), uuid.New(), Modifier{Name: "vat", Type: ModifierTax, PercentAmount: dec("10")})
	require.NoError(t, err)
	m.ClearDomainEvents()

	require.NoError(t, m.Reconfigure(Modifier{Name: "vat", Type: ModifierTax, Active: true, PercentAmount: dec("12"), Priority: 3}))
	assert.Equal(t, "12", m.PercentAmount.String())
	assert.Equal(t, 3, m.Priority)
	assert.Equal(t, 2, m.GetVersion())
	require.Len(t, m.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeModifierUpdated, m.GetDomainEvents()[0].EventType())

	err = m.Reconfigure(Modifier{Name: "vat", Type: ModifierTax, PercentAmount: dec("-3")})
	assert.Error(t, err)
	assert.Equal(t, "12", m.PercentAmount.String(), "failed reconfigure must not change state")
}

func TestModifiersOf(t *testing.T) {
	a, _ := NewSalesAreaModifier(uuid.New(), uuid.New(), Modifier{Name: "a", Type: ModifierTax, PercentAmount: dec("1")})
	b, _ := NewSalesAreaModifier(uuid.New(), uuid.New(), Modifier{Name: "b", Type: ModifierDiscount, PercentAmount: dec("2")})

	mods := ModifiersOf([]SalesAreaModifier{*a, *b})
	require.Len(t, mods, 2)
	assert.Equal(t, "a", mods[0].Name)
	assert.Equal(t, ModifierDiscount, mods[1].Type)
	assert.NotNil(t, ModifiersOf(nil))
}
