package models

import (
	"encoding/json"
	"fmt"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/settlement"
	"github.com/google/uuid"
)

// SettlementModel is the persistence model for one payment submission.
// Payments, totals and decision are stored as JSON documents; status is
// duplicated into its own column for filtering.
type SettlementModel struct {
	TenantAggregateModel
	OrderID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_settlement_tenant_order,priority:2"`
	SalesAreaID      *uuid.UUID `gorm:"type:uuid"`
	Status           string     `gorm:"type:varchar(20);not null"`
	IsPartialPayment bool       `gorm:"not null"`
	Payments         string     `gorm:"type:jsonb;not null"`
	Totals           string     `gorm:"type:jsonb;not null"`
	Decision         string     `gorm:"type:jsonb;not null"`
}

// TableName returns the table name for GORM
func (SettlementModel) TableName() string {
	return "settlements"
}

// FromDomain populates the model from a domain settlement
func (m *SettlementModel) FromDomain(s *settlement.Settlement) error {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.OrderID = s.OrderID
	m.SalesAreaID = s.SalesAreaID
	m.Status = string(s.Decision.Status)
	m.IsPartialPayment = s.Decision.IsPartialPayment

	payments := s.Payments
	if payments == nil {
		payments = []pricing.PaymentEntry{}
	}
	var err error
	if m.Payments, err = encodeJSON(payments); err != nil {
		return fmt.Errorf("encode payments: %w", err)
	}
	if m.Totals, err = encodeJSON(s.Totals); err != nil {
		return fmt.Errorf("encode totals: %w", err)
	}
	if m.Decision, err = encodeJSON(s.Decision); err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}
	return nil
}

// ToDomain converts the model to a domain settlement
func (m *SettlementModel) ToDomain() (*settlement.Settlement, error) {
	s := &settlement.Settlement{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		OrderID:             m.OrderID,
		SalesAreaID:         m.SalesAreaID,
	}
	if err := json.Unmarshal([]byte(m.Payments), &s.Payments); err != nil {
		return nil, fmt.Errorf("decode payments of settlement %s: %w", m.ID, err)
	}
	if err := json.Unmarshal([]byte(m.Totals), &s.Totals); err != nil {
		return nil, fmt.Errorf("decode totals of settlement %s: %w", m.ID, err)
	}
	if err := json.Unmarshal([]byte(m.Decision), &s.Decision); err != nil {
		return nil, fmt.Errorf("decode decision of settlement %s: %w", m.ID, err)
	}
	return s, nil
}

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
