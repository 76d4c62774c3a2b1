package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds the generation metrics:
// - Latency: how long discovery, rendering and writing take
// - Traffic: generations run and resources discovered
// - Errors: failed generations
type Metrics struct {
	meter    metric.Meter
	registry *prometheus.Registry

	GenerationDuration    metric.Float64Histogram
	PhaseDuration         metric.Float64Histogram
	GenerationsTotal      metric.Int64Counter
	GenerationErrorsTotal metric.Int64Counter
	ResourcesDiscovered   metric.Int64Counter
	ArtifactsScanned      metric.Int64Counter
}

// NewMetrics creates all metrics on a dedicated Prometheus registry.
func NewMetrics(ctx context.Context) (*Metrics, error) {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter("changelogagg")
	m := &Metrics{meter: meter, registry: registry}

	m.GenerationDuration, err = meter.Float64Histogram(
		"changelog_generation_duration_seconds",
		metric.WithDescription("Aggregate changelog generation latency in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	m.PhaseDuration, err = meter.Float64Histogram(
		"changelog_phase_duration_seconds",
		metric.WithDescription("Latency of each generation phase (aggregate, render, write) in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5),
	)
	if err != nil {
		return nil, err
	}

	m.GenerationsTotal, err = meter.Int64Counter(
		"changelog_generations_total",
		metric.WithDescription("Total number of aggregate changelog generations"),
	)
	if err != nil {
		return nil, err
	}

	m.GenerationErrorsTotal, err = meter.Int64Counter(
		"changelog_generation_errors_total",
		metric.WithDescription("Total number of failed generations"),
	)
	if err != nil {
		return nil, err
	}

	m.ResourcesDiscovered, err = meter.Int64Counter(
		"changelog_resources_discovered_total",
		metric.WithDescription("Total changelog fragments discovered, by origin"),
	)
	if err != nil {
		return nil, err
	}

	m.ArtifactsScanned, err = meter.Int64Counter(
		"changelog_artifacts_scanned_total",
		metric.WithDescription("Total dependency artifacts offered for discovery"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Gatherer exposes the registry backing these metrics.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the current metrics in the Prometheus text format,
// suitable for the node exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// RecordGeneration records a generation completing (success or failure).
func (m *Metrics) RecordGeneration(ctx context.Context, success bool, durationSeconds float64) {
	attrs := metric.WithAttributes(successAttr(success))
	m.GenerationDuration.Record(ctx, durationSeconds, attrs)
	m.GenerationsTotal.Add(ctx, 1, attrs)

	if !success {
		m.GenerationErrorsTotal.Add(ctx, 1)
	}
}

// RecordPhase records the duration of one generation phase.
func (m *Metrics) RecordPhase(ctx context.Context, phase string, durationSeconds float64) {
	m.PhaseDuration.Record(ctx, durationSeconds, metric.WithAttributes(phaseAttr(phase)))
}

// RecordResources records resources discovered from one origin.
func (m *Metrics) RecordResources(ctx context.Context, origin string, count int) {
	if count <= 0 {
		return
	}
	m.ResourcesDiscovered.Add(ctx, int64(count), WithOrigin(origin))
}

// RecordArtifacts records artifacts offered for discovery.
func (m *Metrics) RecordArtifacts(ctx context.Context, count int) {
	if count <= 0 {
		return
	}
	m.ArtifactsScanned.Add(ctx, int64(count))
}
