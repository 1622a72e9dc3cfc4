package persistence

import (
	"context"

	"github.com/erp/pricing/internal/domain/settlement"
	"github.com/erp/pricing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSettlementRepository implements settlement.Repository using GORM.
// Settlements are append only.
type GormSettlementRepository struct {
	db *gorm.DB
}

// NewGormSettlementRepository creates a new GormSettlementRepository
func NewGormSettlementRepository(db *gorm.DB) *GormSettlementRepository {
	return &GormSettlementRepository{db: db}
}

// Save inserts a settlement
func (r *GormSettlementRepository) Save(ctx context.Context, s *settlement.Settlement) error {
	var model models.SettlementModel
	if err := model.FromDomain(s); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByOrder returns the settlements of an order, oldest first
func (r *GormSettlementRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]settlement.Settlement, error) {
	var rows []models.SettlementModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]settlement.Settlement, 0, len(rows))
	for i := range rows {
		s, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

// Ensure GormSettlementRepository implements the interface
var _ settlement.Repository = (*GormSettlementRepository)(nil)
