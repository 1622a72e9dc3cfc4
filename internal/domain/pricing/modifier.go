package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/erp/pricing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxModifierNameLength bounds the modifier display name
const MaxModifierNameLength = 100

// SalesAreaModifier is a tax or discount configured for one sales area of a
// business. Orders placed in the area are priced with its active modifiers.
type SalesAreaModifier struct {
	shared.TenantAggregateRoot
	SalesAreaID uuid.UUID
	Modifier
}

// NewSalesAreaModifier creates a modifier for a sales area after validating
// its configuration
func NewSalesAreaModifier(tenantID, salesAreaID uuid.UUID, m Modifier) (*SalesAreaModifier, error) {
	if salesAreaID == uuid.Nil {
		return nil, invalid("salesAreaId", "is required")
	}
	m.Name = strings.TrimSpace(m.Name)
	if err := validateModifierName(m.Name); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	sam := &SalesAreaModifier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SalesAreaID:         salesAreaID,
		Modifier:            normalize(m),
	}
	sam.AddDomainEvent(NewModifierChangedEvent(EventTypeModifierCreated, sam))
	return sam, nil
}

// Reconfigure replaces the modifier configuration
func (s *SalesAreaModifier) Reconfigure(m Modifier) error {
	m.Name = strings.TrimSpace(m.Name)
	if err := validateModifierName(m.Name); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}

	s.Modifier = normalize(m)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	s.AddDomainEvent(NewModifierChangedEvent(EventTypeModifierUpdated, s))
	return nil
}

// MarkDeleted records the deletion event; the repository removes the row
func (s *SalesAreaModifier) MarkDeleted() {
	s.AddDomainEvent(NewModifierChangedEvent(EventTypeModifierDeleted, s))
}

// normalize drops the configuration that the modifier kind ignores
func normalize(m Modifier) Modifier {
	if m.ApplyFixedAmount {
		m.PercentAmount = decimal.Zero
		return m
	}
	m.FixedPrice = nil
	return m
}

func validateModifierName(name string) error {
	if name == "" {
		return invalid("name", "is required")
	}
	if len(name) > MaxModifierNameLength {
		return invalid("name", "must be at most %d characters", MaxModifierNameLength)
	}
	return nil
}

// ModifiersOf extracts the engine configuration from catalog entries
func ModifiersOf(entries []SalesAreaModifier) []Modifier {
	mods := make([]Modifier, 0, len(entries))
	for _, e := range entries {
		mods = append(mods, e.Modifier)
	}
	return mods
}

// ModifierRepository persists the modifier catalog
type ModifierRepository interface {
	// FindByArea returns every modifier of a sales area ordered by priority
	FindByArea(ctx context.Context, tenantID, salesAreaID uuid.UUID) ([]SalesAreaModifier, error)

	// FindByID returns shared.ErrNotFound when the modifier does not exist in the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SalesAreaModifier, error)

	// Save creates or updates a modifier
	Save(ctx context.Context, modifier *SalesAreaModifier) error

	// Delete removes a modifier
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// ModifierCache keeps the active modifiers of a sales area close to the
// pricing path. A miss is reported with ok == false, not an error.
type ModifierCache interface {
	Get(ctx context.Context, tenantID, salesAreaID uuid.UUID) (mods []Modifier, ok bool, err error)
	Set(ctx context.Context, tenantID, salesAreaID uuid.UUID, mods []Modifier) error
	Invalidate(ctx context.Context, tenantID, salesAreaID uuid.UUID) error
}
