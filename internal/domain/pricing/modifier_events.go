package pricing

import (
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeSalesAreaModifier names the modifier aggregate in events
const AggregateTypeSalesAreaModifier = "SalesAreaModifier"

// Event type constants
const (
	EventTypeModifierCreated = "SalesAreaModifierCreated"
	EventTypeModifierUpdated = "SalesAreaModifierUpdated"
	EventTypeModifierDeleted = "SalesAreaModifierDeleted"
)

// ModifierEventTypes lists every event that changes a sales area's modifiers
var ModifierEventTypes = []string{
	EventTypeModifierCreated,
	EventTypeModifierUpdated,
	EventTypeModifierDeleted,
}

// ModifierChangedEvent is published whenever a sales area's modifier set changes
type ModifierChangedEvent struct {
	shared.BaseDomainEvent
	ModifierID  uuid.UUID    `json:"modifier_id"`
	SalesAreaID uuid.UUID    `json:"sales_area_id"`
	Name        string       `json:"name"`
	Type        ModifierType `json:"type"`
	Active      bool         `json:"active"`
}

// NewModifierChangedEvent creates a ModifierChangedEvent of the given type
func NewModifierChangedEvent(eventType string, m *SalesAreaModifier) *ModifierChangedEvent {
	return &ModifierChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeSalesAreaModifier, m.ID, m.TenantID),
		ModifierID:      m.ID,
		SalesAreaID:     m.SalesAreaID,
		Name:            m.Name,
		Type:            m.Type,
		Active:          m.Active,
	}
}
