package observability

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	queryCounter  otelmetric.Int64Counter
	queryDuration otelmetric.Float64Histogram
	denialCounter otelmetric.Int64Counter
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	queryCounter, _ := meter.Int64Counter(
		"chat.queries.processed",
		otelmetric.WithDescription("Number of chat queries processed"),
	)

	queryDuration, _ := meter.Float64Histogram(
		"chat.queries.duration",
		otelmetric.WithDescription("Chat pipeline duration"),
		otelmetric.WithUnit("ms"),
	)

	denialCounter, _ := meter.Int64Counter(
		"chat.ratelimit.denied",
		otelmetric.WithDescription("Number of submissions denied by the rate limiter"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		queryCounter:  queryCounter,
		queryDuration: queryDuration,
		denialCounter: denialCounter,
	}
}

// RecordQueryProcessed counts one pipeline run by intent and terminal status.
func (o *Observability) RecordQueryProcessed(ctx context.Context, intent, status string) {
	if o.queryCounter != nil {
		o.queryCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("intent", intent),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordQueryDuration(ctx context.Context, intent string, ms float64) {
	if o.queryDuration != nil {
		o.queryDuration.Record(ctx, ms, otelmetric.WithAttributes(
			attribute.String("intent", intent),
		))
	}
}

func (o *Observability) RecordRateLimitDenied(ctx context.Context) {
	if o.denialCounter != nil {
		o.denialCounter.Add(ctx, 1)
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(context.Background())
	}
}
