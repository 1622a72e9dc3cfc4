package telemetry

import (
	"context"
	"regexp"
	"time"

	"go.opentelemetry.io/otel/metric"
)

var indexPattern = regexp.MustCompile(`\[\d+\]`)

// PricingMetrics records quote and settlement activity
type PricingMetrics struct {
	quotes           *Counter
	quoteDuration    *Histogram
	validationErrors *Counter
	settlements      *Counter
}

// NewPricingMetrics registers the pricing instruments on meter
func NewPricingMetrics(meter metric.Meter) (*PricingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	quotes, err := NewCounter(meter, "pos_quote_total", "Orders priced", "{quote}")
	if err != nil {
		return nil, err
	}
	quoteDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "pos_quote_duration_seconds",
		Description: "Time spent pricing an order",
		Unit:        "s",
		Boundaries:  QuoteDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	validationErrors, err := NewCounter(meter, "pos_quote_validation_errors_total", "Orders rejected by input validation", "{error}")
	if err != nil {
		return nil, err
	}
	settlements, err := NewCounter(meter, "pos_settlement_total", "Payment submissions recorded", "{settlement}")
	if err != nil {
		return nil, err
	}

	return &PricingMetrics{
		quotes:           quotes,
		quoteDuration:    quoteDuration,
		validationErrors: validationErrors,
		settlements:      settlements,
	}, nil
}

// QuoteComputed records one successfully priced order
func (m *PricingMetrics) QuoteComputed(ctx context.Context, elapsed time.Duration, houseCosted bool) {
	m.quotes.Inc(ctx, AttrHouseCosted.Bool(houseCosted))
	m.quoteDuration.RecordDuration(ctx, elapsed, AttrHouseCosted.Bool(houseCosted))
}

// ValidationFailed records a rejected order. List indices are dropped from
// the field path to keep cardinality bounded.
func (m *PricingMetrics) ValidationFailed(ctx context.Context, field string) {
	m.validationErrors.Inc(ctx, AttrValidationField.String(indexPattern.ReplaceAllString(field, "")))
}

// SettlementRecorded records a stored payment submission
func (m *PricingMetrics) SettlementRecorded(ctx context.Context, status string) {
	m.settlements.Inc(ctx, AttrSettlementStatus.String(status))
}
