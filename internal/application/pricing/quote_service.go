// Package pricing exposes order pricing and the sales area modifier catalog
// to the transport layer.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/settlement"
	"github.com/erp/pricing/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Metrics receives pricing measurements
type Metrics interface {
	QuoteComputed(ctx context.Context, elapsed time.Duration, houseCosted bool)
	ValidationFailed(ctx context.Context, field string)
}

type nopMetrics struct{}

func (nopMetrics) QuoteComputed(context.Context, time.Duration, bool) {}
func (nopMetrics) ValidationFailed(context.Context, string)           {}

// ModifierSource supplies the configured modifiers of a sales area
type ModifierSource interface {
	ModifiersForArea(ctx context.Context, tenantID, salesAreaID uuid.UUID) ([]pricing.Modifier, error)
}

// QuoteService prices orders for the point of sale
type QuoteService struct {
	engine     *pricing.Engine
	modifiers  ModifierSource
	currencies currencySet
	metrics    Metrics
	logger     *zap.Logger
}

// QuoteServiceConfig holds the dependencies of a QuoteService
type QuoteServiceConfig struct {
	Engine            *pricing.Engine
	Modifiers         ModifierSource
	EnabledCurrencies []valueobject.Currency
	Metrics           Metrics
	Logger            *zap.Logger
}

// NewQuoteService creates a new QuoteService. A nil engine prices with two
// decimal places.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	engine := cfg.Engine
	if engine == nil {
		engine = pricing.DefaultEngine()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &QuoteService{
		engine:     engine,
		modifiers:  cfg.Modifiers,
		currencies: newCurrencySet(cfg.EnabledCurrencies),
		metrics:    metrics,
		logger:     logger,
	}
}

// Quote prices an order without recording anything
func (s *QuoteService) Quote(ctx context.Context, tenantID uuid.UUID, req QuoteRequest) (*QuoteResponse, error) {
	res, err := s.Price(ctx, tenantID, req, nil)
	if err != nil {
		return nil, err
	}

	return &QuoteResponse{
		Result:      res,
		Decision:    settlement.Decide(res),
		Precision:   int32(s.engine.Precision()),
		SalesAreaID: req.SalesAreaID,
	}, nil
}

// Price runs the engine on a request. prior holds payments already taken on
// the order and is appended to the request's partial payments.
func (s *QuoteService) Price(ctx context.Context, tenantID uuid.UUID, req QuoteRequest, prior []pricing.PaymentEntry) (pricing.Result, error) {
	in, err := s.currencies.input(req)
	if err != nil {
		s.recordInvalid(ctx, err)
		return pricing.Result{}, err
	}
	in.PartialPayments = append(in.PartialPayments, prior...)

	if len(in.Modifiers) == 0 && req.SalesAreaID != nil && s.modifiers != nil {
		mods, err := s.modifiers.ModifiersForArea(ctx, tenantID, *req.SalesAreaID)
		if err != nil {
			return pricing.Result{}, fmt.Errorf("load modifiers for sales area %s: %w", *req.SalesAreaID, err)
		}
		in.Modifiers = mods
	}

	start := time.Now()
	res, err := s.engine.ComputeOrderTotals(in)
	if err != nil {
		s.recordInvalid(ctx, err)
		return pricing.Result{}, err
	}
	s.metrics.QuoteComputed(ctx, time.Since(start), in.HouseCosted)

	s.logger.Debug("order priced",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("line_items", len(in.LineItems)),
		zap.Int("modifiers_applied", len(res.OrderModifiersApplied)),
		zap.Stringer("total_owed", bagString(res.TotalOwed)),
	)
	return res, nil
}

// Precision returns the rounding precision quotes are computed with
func (s *QuoteService) Precision() valueobject.Precision {
	return s.engine.Precision()
}

func (s *QuoteService) recordInvalid(ctx context.Context, err error) {
	var vErr *pricing.ValidationError
	if errors.As(err, &vErr) {
		s.metrics.ValidationFailed(ctx, vErr.Field)
	}
}

type bagString valueobject.MoneyBag

func (b bagString) String() string {
	out := ""
	for i, m := range valueobject.MoneyBag(b).Entries() {
		if i > 0 {
			out += ", "
		}
		out += m.String()
	}
	return out
}
