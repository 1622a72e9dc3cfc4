package pricing

import (
	"context"
	"fmt"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ModifierService manages the modifier catalog of sales areas
type ModifierService struct {
	repo       pricing.ModifierRepository
	cache      pricing.ModifierCache
	currencies currencySet
	events     shared.EventPublisher
	logger     *zap.Logger
}

// ModifierServiceConfig holds the dependencies of a ModifierService.
// Cache and EventPublisher are optional.
type ModifierServiceConfig struct {
	Repository        pricing.ModifierRepository
	Cache             pricing.ModifierCache
	EnabledCurrencies []valueobject.Currency
	EventPublisher    shared.EventPublisher
	Logger            *zap.Logger
}

// NewModifierService creates a new ModifierService
func NewModifierService(cfg ModifierServiceConfig) *ModifierService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModifierService{
		repo:       cfg.Repository,
		cache:      cfg.Cache,
		currencies: newCurrencySet(cfg.EnabledCurrencies),
		events:     cfg.EventPublisher,
		logger:     logger,
	}
}

// ListForArea returns every modifier configured on a sales area
func (s *ModifierService) ListForArea(ctx context.Context, tenantID, salesAreaID uuid.UUID) ([]ModifierResponse, error) {
	entries, err := s.repo.FindByArea(ctx, tenantID, salesAreaID)
	if err != nil {
		return nil, err
	}
	return ToModifierResponses(entries), nil
}

// ModifiersForArea returns the engine configuration of a sales area, read
// through the cache when one is configured
func (s *ModifierService) ModifiersForArea(ctx context.Context, tenantID, salesAreaID uuid.UUID) ([]pricing.Modifier, error) {
	if s.cache != nil {
		mods, ok, err := s.cache.Get(ctx, tenantID, salesAreaID)
		if err != nil {
			s.logger.Warn("Modifier cache read failed",
				zap.String("sales_area_id", salesAreaID.String()),
				zap.Error(err))
		} else if ok {
			return mods, nil
		}
	}

	entries, err := s.repo.FindByArea(ctx, tenantID, salesAreaID)
	if err != nil {
		return nil, err
	}
	mods := pricing.ModifiersOf(entries)

	if s.cache != nil {
		if err := s.cache.Set(ctx, tenantID, salesAreaID, mods); err != nil {
			s.logger.Warn("Modifier cache write failed",
				zap.String("sales_area_id", salesAreaID.String()),
				zap.Error(err))
		}
	}
	return mods, nil
}

// Create adds a modifier to a sales area
func (s *ModifierService) Create(ctx context.Context, tenantID, salesAreaID uuid.UUID, req ModifierRequest) (*ModifierResponse, error) {
	m, err := s.currencies.modifier("modifier", req)
	if err != nil {
		return nil, err
	}

	entry, err := pricing.NewSalesAreaModifier(tenantID, salesAreaID, m)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("save modifier: %w", err)
	}
	s.afterWrite(ctx, entry)

	s.logger.Info("Modifier created",
		zap.String("id", entry.ID.String()),
		zap.String("sales_area_id", salesAreaID.String()),
		zap.String("name", entry.Name))

	resp := ToModifierResponse(entry)
	return &resp, nil
}

// Update reconfigures a modifier of a sales area
func (s *ModifierService) Update(ctx context.Context, tenantID, salesAreaID, id uuid.UUID, req ModifierRequest) (*ModifierResponse, error) {
	entry, err := s.findInArea(ctx, tenantID, salesAreaID, id)
	if err != nil {
		return nil, err
	}

	m, err := s.currencies.modifier("modifier", req)
	if err != nil {
		return nil, err
	}
	if err := entry.Reconfigure(m); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("save modifier: %w", err)
	}
	s.afterWrite(ctx, entry)

	resp := ToModifierResponse(entry)
	return &resp, nil
}

// Delete removes a modifier from a sales area
func (s *ModifierService) Delete(ctx context.Context, tenantID, salesAreaID, id uuid.UUID) error {
	entry, err := s.findInArea(ctx, tenantID, salesAreaID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("delete modifier: %w", err)
	}
	entry.MarkDeleted()
	s.afterWrite(ctx, entry)

	s.logger.Info("Modifier deleted",
		zap.String("id", id.String()),
		zap.String("sales_area_id", salesAreaID.String()))
	return nil
}

func (s *ModifierService) findInArea(ctx context.Context, tenantID, salesAreaID, id uuid.UUID) (*pricing.SalesAreaModifier, error) {
	entry, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if entry.SalesAreaID != salesAreaID {
		return nil, shared.ErrNotFound
	}
	return entry, nil
}

// afterWrite drops the cached area configuration and publishes pending events.
// Neither failure undoes the write.
func (s *ModifierService) afterWrite(ctx context.Context, entry *pricing.SalesAreaModifier) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, entry.TenantID, entry.SalesAreaID); err != nil {
			s.logger.Warn("Modifier cache invalidation failed",
				zap.String("sales_area_id", entry.SalesAreaID.String()),
				zap.Error(err))
		}
	}

	events := entry.GetDomainEvents()
	entry.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish modifier events",
			zap.String("id", entry.ID.String()),
			zap.Error(err))
	}
}
