package models

import (
	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesAreaModifierModel is the persistence model for a sales area modifier.
// The fixed price is split into amount and currency columns.
type SalesAreaModifierModel struct {
	TenantAggregateModel
	SalesAreaID       uuid.UUID        `gorm:"type:uuid;not null;index:idx_modifier_tenant_area,priority:2"`
	Name              string           `gorm:"type:varchar(100);not null"`
	Type              string           `gorm:"type:varchar(20);not null"`
	Active            bool             `gorm:"not null"`
	ApplyFixedAmount  bool             `gorm:"not null"`
	FixedAmount       *decimal.Decimal `gorm:"type:decimal(20,8)"`
	FixedCurrency     *string          `gorm:"type:varchar(3)"`
	PercentAmount     decimal.Decimal  `gorm:"type:decimal(9,4);not null"`
	ApplyToGrossSales bool             `gorm:"not null"`
	ApplyAccumulative bool             `gorm:"not null"`
	Priority          int              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesAreaModifierModel) TableName() string {
	return "sales_area_modifiers"
}

// FromDomain populates the model from a domain modifier
func (m *SalesAreaModifierModel) FromDomain(s *pricing.SalesAreaModifier) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.SalesAreaID = s.SalesAreaID
	m.Name = s.Name
	m.Type = string(s.Type)
	m.Active = s.Active
	m.ApplyFixedAmount = s.ApplyFixedAmount
	m.FixedAmount = nil
	m.FixedCurrency = nil
	if s.FixedPrice != nil {
		amount := s.FixedPrice.Amount()
		currency := s.FixedPrice.Currency().String()
		m.FixedAmount = &amount
		m.FixedCurrency = &currency
	}
	m.PercentAmount = s.PercentAmount
	m.ApplyToGrossSales = s.ApplyToGrossSales
	m.ApplyAccumulative = s.ApplyAcumulative
	m.Priority = s.Priority
}

// ToDomain converts the model to a domain modifier
func (m *SalesAreaModifierModel) ToDomain() (*pricing.SalesAreaModifier, error) {
	mod := pricing.Modifier{
		Name:              m.Name,
		Type:              pricing.ModifierType(m.Type),
		Active:            m.Active,
		ApplyFixedAmount:  m.ApplyFixedAmount,
		PercentAmount:     m.PercentAmount,
		ApplyToGrossSales: m.ApplyToGrossSales,
		ApplyAcumulative:  m.ApplyAccumulative,
		Priority:          m.Priority,
	}
	if m.FixedAmount != nil && m.FixedCurrency != nil {
		price, err := valueobject.NewMoney(*m.FixedAmount, valueobject.Currency(*m.FixedCurrency))
		if err != nil {
			return nil, err
		}
		mod.FixedPrice = &price
	}
	return &pricing.SalesAreaModifier{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		SalesAreaID:         m.SalesAreaID,
		Modifier:            mod,
	}, nil
}

// SalesAreaModifierModelFromDomain creates a persistence model from a domain modifier
func SalesAreaModifierModelFromDomain(s *pricing.SalesAreaModifier) *SalesAreaModifierModel {
	m := &SalesAreaModifierModel{}
	m.FromDomain(s)
	return m
}
