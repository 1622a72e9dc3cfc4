package settlement

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the settlement ledger
type Repository interface {
	// Save stores a new settlement
	Save(ctx context.Context, s *Settlement) error

	// FindByOrder returns the settlements of an order, oldest first
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]Settlement, error)
}
