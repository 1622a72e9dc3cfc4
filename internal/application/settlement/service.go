// Package settlement records payment submissions against orders
package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	pricingapp "github.com/erp/pricing/internal/application/pricing"
	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/settlement"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrOrderAlreadyPaid is returned when an order owes nothing anymore
	ErrOrderAlreadyPaid = shared.NewDomainError("ORDER_ALREADY_PAID", "Order is already fully paid")
	// ErrDuplicateSubmission is returned when an idempotency key is reused
	ErrDuplicateSubmission = shared.NewDomainError("DUPLICATE_SUBMISSION", "Payment submission was already processed")
	// ErrSettlementInProgress is returned when another submission for the
	// same order holds the order lock for longer than the lock wait
	ErrSettlementInProgress = shared.NewDomainError("SETTLEMENT_IN_PROGRESS", "Another payment for this order is being processed")
)

const defaultLockWait = 5 * time.Second

// Metrics receives settlement measurements
type Metrics interface {
	SettlementRecorded(ctx context.Context, status string)
}

type nopMetrics struct{}

func (nopMetrics) SettlementRecorded(context.Context, string) {}

// Pricer prices an order on top of payments already taken
type Pricer interface {
	Price(ctx context.Context, tenantID uuid.UUID, req pricingapp.QuoteRequest, prior []pricing.PaymentEntry) (pricing.Result, error)
}

// Service settles orders
type Service struct {
	pricer     Pricer
	repo       settlement.Repository
	idem       shared.IdempotencyStore
	idemConfig shared.IdempotencyConfig
	locker     shared.Locker
	lockWait   time.Duration
	events     shared.EventPublisher
	metrics    Metrics
	logger     *zap.Logger
}

// ServiceConfig holds the dependencies of a Service.
// IdempotencyStore, EventPublisher and Metrics are optional. Without a
// Locker, submissions for the same order are serialized within the process
// only. LockWait bounds how long a submission waits for the order lock.
type ServiceConfig struct {
	Pricer            Pricer
	Repository        settlement.Repository
	IdempotencyStore  shared.IdempotencyStore
	IdempotencyConfig *shared.IdempotencyConfig
	Locker            shared.Locker
	LockWait          time.Duration
	EventPublisher    shared.EventPublisher
	Metrics           Metrics
	Logger            *zap.Logger
}

// NewService creates a new settlement Service
func NewService(cfg ServiceConfig) *Service {
	idemConfig := shared.DefaultIdempotencyConfig()
	if cfg.IdempotencyConfig != nil {
		idemConfig = *cfg.IdempotencyConfig
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var locker shared.Locker = newLocalLocker()
	if cfg.Locker != nil {
		locker = cfg.Locker
	}
	lockWait := cfg.LockWait
	if lockWait <= 0 {
		lockWait = defaultLockWait
	}

	return &Service{
		pricer:     cfg.Pricer,
		repo:       cfg.Repository,
		idem:       cfg.IdempotencyStore,
		idemConfig: idemConfig,
		locker:     locker,
		lockWait:   lockWait,
		events:     cfg.EventPublisher,
		metrics:    metrics,
		logger:     logger,
	}
}

// Settle prices the order against every payment taken so far, decides whether
// it is fully paid and records the submission. idempotencyKey may be empty.
// Submissions for the same order run one at a time so each one is priced
// against the payments recorded before it.
func (s *Service) Settle(ctx context.Context, tenantID, orderID uuid.UUID, req SettleRequest, idempotencyKey string) (*SettlementResponse, error) {
	key, claimed, err := s.claim(ctx, tenantID, orderID, idempotencyKey)
	if err != nil {
		return nil, err
	}
	resp, err := s.settleLocked(ctx, tenantID, orderID, req)
	if err != nil && claimed {
		if rErr := s.idem.Release(ctx, key); rErr != nil {
			s.logger.Warn("Failed to release idempotency key",
				zap.String("order_id", orderID.String()),
				zap.Error(rErr))
		}
	}
	return resp, err
}

func (s *Service) settleLocked(ctx context.Context, tenantID, orderID uuid.UUID, req SettleRequest) (*SettlementResponse, error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	unlock, err := s.locker.Lock(lockCtx, fmt.Sprintf("settle:%s:%s", tenantID, orderID))
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrSettlementInProgress
		}
		return nil, fmt.Errorf("lock order %s: %w", orderID, err)
	}
	defer unlock()

	history, err := s.repo.FindByOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, fmt.Errorf("load settlements of order %s: %w", orderID, err)
	}
	if n := len(history); n > 0 && history[n-1].IsPaid() {
		return nil, ErrOrderAlreadyPaid
	}
	return s.settle(ctx, tenantID, orderID, req, history)
}

func (s *Service) settle(ctx context.Context, tenantID, orderID uuid.UUID, req SettleRequest, history []settlement.Settlement) (*SettlementResponse, error) {
	result, err := s.pricer.Price(ctx, tenantID, req.QuoteRequest, settlement.PriorPayments(history))
	if err != nil {
		return nil, err
	}

	payments := req.SubmittedEntries()
	st, err := settlement.NewSettlement(tenantID, orderID, req.SalesAreaID, payments, result)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("save settlement: %w", err)
	}

	s.metrics.SettlementRecorded(ctx, string(st.Decision.Status))
	s.publish(ctx, st)

	s.logger.Info("Settlement recorded",
		zap.String("settlement_id", st.ID.String()),
		zap.String("order_id", orderID.String()),
		zap.String("status", string(st.Decision.Status)),
		zap.Int("payments", len(payments)))

	resp := ToSettlementResponse(st)
	return &resp, nil
}

// ListForOrder returns the settlements of an order, oldest first
func (s *Service) ListForOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]SettlementResponse, error) {
	history, err := s.repo.FindByOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]SettlementResponse, 0, len(history))
	for i := range history {
		out = append(out, ToSettlementResponse(&history[i]))
	}
	return out, nil
}

func (s *Service) claim(ctx context.Context, tenantID, orderID uuid.UUID, idempotencyKey string) (string, bool, error) {
	if idempotencyKey == "" || s.idem == nil || !s.idemConfig.Enabled {
		return "", false, nil
	}
	key := fmt.Sprintf("%s:%s:%s", tenantID, orderID, idempotencyKey)
	fresh, err := s.idem.MarkProcessed(ctx, key, s.idemConfig.TTL)
	if err != nil {
		return "", false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if !fresh {
		return "", false, ErrDuplicateSubmission
	}
	return key, true, nil
}

func (s *Service) publish(ctx context.Context, st *settlement.Settlement) {
	events := st.GetDomainEvents()
	st.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish settlement events",
			zap.String("settlement_id", st.ID.String()),
			zap.Error(err))
	}
}
