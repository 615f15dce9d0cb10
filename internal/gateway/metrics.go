package gateway

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/MAVERICK-VF142/Drx.MediMate/internal/gateway"

// Metrics records gateway attempts through OpenTelemetry.
type Metrics struct {
	attempts     metric.Int64Counter
	exhausted    metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates instruments on meter, or on the global meter provider
// when meter is nil. Instrument creation failures fall back to no-ops.
func NewMetrics(meter metric.Meter) *Metrics {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	m, err := newMetrics(meter)
	if err != nil {
		m, _ = newMetrics(noop.NewMeterProvider().Meter(meterName))
	}
	return m
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	attempts, err := meter.Int64Counter(
		"gateway.attempts",
		metric.WithDescription("Generative service call attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	exhausted, err := meter.Int64Counter(
		"gateway.exhausted",
		metric.WithDescription("Invocations that spent their whole retry budget"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"gateway.attempt.duration_ms",
		metric.WithDescription("Generative service attempt duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		attempts:     attempts,
		exhausted:    exhausted,
		durationHist: durationHist,
	}, nil
}

func (m *Metrics) recordAttempt(ctx context.Context, a Attempt) {
	opt := metric.WithAttributes(attribute.String("outcome", a.Outcome.String()))
	// Recording must not be skipped when the request context is already done.
	ctx = context.WithoutCancel(ctx)
	m.attempts.Add(ctx, 1, opt)
	m.durationHist.Record(ctx, float64(a.Duration.Milliseconds()), opt)
}

func (m *Metrics) recordExhausted(ctx context.Context) {
	m.exhausted.Add(context.WithoutCancel(ctx), 1)
}
