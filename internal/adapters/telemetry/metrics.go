package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.trai.ch/zerr"
)

// OTelMetrics records cache counters on an OpenTelemetry meter.
type OTelMetrics struct {
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	sets          metric.Int64Counter
	invalidations metric.Int64Counter
	cascaded      metric.Int64Counter
}

// NewOTelMetrics creates the instruments on the global meter provider.
func NewOTelMetrics() (*OTelMetrics, error) {
	return NewOTelMetricsFromProvider(otel.GetMeterProvider())
}

// NewOTelMetricsFromProvider creates the instruments on mp.
func NewOTelMetricsFromProvider(mp metric.MeterProvider) (*OTelMetrics, error) {
	meter := mp.Meter(InstrumentationName)

	m := &OTelMetrics{}
	var err error
	if m.hits, err = meter.Int64Counter("strata.cache.hits", metric.WithDescription("Fast tier reads that found a live value")); err != nil {
		return nil, zerr.Wrap(err, "failed to create metric instrument")
	}
	if m.misses, err = meter.Int64Counter("strata.cache.misses", metric.WithDescription("Fast tier reads that found nothing")); err != nil {
		return nil, zerr.Wrap(err, "failed to create metric instrument")
	}
	if m.sets, err = meter.Int64Counter("strata.cache.sets", metric.WithDescription("Fast tier writes")); err != nil {
		return nil, zerr.Wrap(err, "failed to create metric instrument")
	}
	if m.invalidations, err = meter.Int64Counter("strata.invalidation.total", metric.WithDescription("Invalidation transactions by outcome")); err != nil {
		return nil, zerr.Wrap(err, "failed to create metric instrument")
	}
	if m.cascaded, err = meter.Int64Counter("strata.cascade.files", metric.WithDescription("Dependents marked stale by cascades")); err != nil {
		return nil, zerr.Wrap(err, "failed to create metric instrument")
	}
	return m, nil
}

func backendAttr(backend string) metric.AddOption {
	return metric.WithAttributes(attribute.String("backend", backend))
}

// CacheHit counts a hit.
func (m *OTelMetrics) CacheHit(ctx context.Context, backend string) {
	m.hits.Add(ctx, 1, backendAttr(backend))
}

// CacheMiss counts a miss.
func (m *OTelMetrics) CacheMiss(ctx context.Context, backend string) {
	m.misses.Add(ctx, 1, backendAttr(backend))
}

// CacheSet counts a write.
func (m *OTelMetrics) CacheSet(ctx context.Context, backend string) {
	m.sets.Add(ctx, 1, backendAttr(backend))
}

// Invalidation counts a finished invalidation.
func (m *OTelMetrics) Invalidation(ctx context.Context, outcome string) {
	m.invalidations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Cascade adds the number of files marked stale.
func (m *OTelMetrics) Cascade(ctx context.Context, files int) {
	if files > 0 {
		m.cascaded.Add(ctx, int64(files))
	}
}
