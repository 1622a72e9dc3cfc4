package pricing

import (
	"context"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockModifierRepository is a mock implementation of ModifierRepository
type MockModifierRepository struct {
	mock.Mock
}

func (m *MockModifierRepository) FindByArea(ctx context.Context, tenantID, salesAreaID uuid.UUID) ([]pricing.SalesAreaModifier, error) {
	args := m.Called(ctx, tenantID, salesAreaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricing.SalesAreaModifier), args.Error(1)
}

func (m *MockModifierRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*pricing.SalesAreaModifier, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.SalesAreaModifier), args.Error(1)
}

func (m *MockModifierRepository) Save(ctx context.Context, modifier *pricing.SalesAreaModifier) error {
	args := m.Called(ctx, modifier)
	return args.Error(0)
}

func (m *MockModifierRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockModifierCache is a mock implementation of ModifierCache
type MockModifierCache struct {
	mock.Mock
}

func (m *MockModifierCache) Get(ctx context.Context, tenantID, salesAreaID uuid.UUID) ([]pricing.Modifier, bool, error) {
	args := m.Called(ctx, tenantID, salesAreaID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]pricing.Modifier), args.Bool(1), args.Error(2)
}

func (m *MockModifierCache) Set(ctx context.Context, tenantID, salesAreaID uuid.UUID, mods []pricing.Modifier) error {
	args := m.Called(ctx, tenantID, salesAreaID, mods)
	return args.Error(0)
}

func (m *MockModifierCache) Invalidate(ctx context.Context, tenantID, salesAreaID uuid.UUID) error {
	args := m.Called(ctx, tenantID, salesAreaID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockModifierSource is a mock implementation of ModifierSource
type MockModifierSource struct {
	mock.Mock
}

func (m *MockModifierSource) ModifiersForArea(ctx context.Context, tenantID, salesAreaID uuid.UUID) ([]pricing.Modifier, error) {
	args := m.Called(ctx, tenantID, salesAreaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricing.Modifier), args.Error(1)
}

// MockMetrics is a mock implementation of Metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) QuoteComputed(ctx context.Context, elapsed time.Duration, houseCosted bool) {
	m.Called(ctx, elapsed, houseCosted)
}

func (m *MockMetrics) ValidationFailed(ctx context.Context, field string) {
	m.Called(ctx, field)
}
