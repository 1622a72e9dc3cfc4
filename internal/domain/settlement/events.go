package settlement

import (
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AggregateTypeSettlement names the settlement aggregate in events
const AggregateTypeSettlement = "Settlement"

// EventTypeSettlementRecorded is emitted once per accepted payment submission
const EventTypeSettlementRecorded = "SettlementRecorded"

// SettlementRecordedEvent is published when a payment submission is stored
type SettlementRecordedEvent struct {
	shared.BaseDomainEvent
	SettlementID uuid.UUID            `json:"settlement_id"`
	OrderID      uuid.UUID            `json:"order_id"`
	Status       Status               `json:"status"`
	TotalOwed    valueobject.MoneyBag `json:"total_owed"`
	Difference   valueobject.MoneyBag `json:"difference"`
}

// NewSettlementRecordedEvent creates a SettlementRecordedEvent
func NewSettlementRecordedEvent(s *Settlement) *SettlementRecordedEvent {
	return &SettlementRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementRecorded, AggregateTypeSettlement, s.ID, s.TenantID),
		SettlementID:    s.ID,
		OrderID:         s.OrderID,
		Status:          s.Decision.Status,
		TotalOwed:       s.Totals.TotalOwed,
		Difference:      s.Totals.Difference,
	}
}
