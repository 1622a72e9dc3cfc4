package persistence

import (
	"context"
	"errors"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormModifierRepository implements pricing.ModifierRepository using GORM
type GormModifierRepository struct {
	db *gorm.DB
}

// NewGormModifierRepository creates a new GormModifierRepository
func NewGormModifierRepository(db *gorm.DB) *GormModifierRepository {
	return &GormModifierRepository{db: db}
}

// FindByArea returns the modifiers of a sales area ordered by priority, then name
func (r *GormModifierRepository) FindByArea(ctx context.Context, tenantID, salesAreaID uuid.UUID) ([]pricing.SalesAreaModifier, error) {
	var rows []models.SalesAreaModifierModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sales_area_id = ?", tenantID, salesAreaID).
		Order("priority ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]pricing.SalesAreaModifier, 0, len(rows))
	for i := range rows {
		m, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

// FindByID finds a modifier by ID within a tenant
func (r *GormModifierRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*pricing.SalesAreaModifier, error) {
	var model models.SalesAreaModifierModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// Save creates or updates a modifier
func (r *GormModifierRepository) Save(ctx context.Context, modifier *pricing.SalesAreaModifier) error {
	model := models.SalesAreaModifierModelFromDomain(modifier)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a modifier, returning shared.ErrNotFound when nothing matched
func (r *GormModifierRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.SalesAreaModifierModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormModifierRepository implements the interface
var _ pricing.ModifierRepository = (*GormModifierRepository)(nil)
