// Package observe holds the OpenTelemetry instruments for the dictation
// session. Tests should build [Metrics] from their own [metric.MeterProvider]
// to avoid sharing state through the global provider.
package observe

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"laudo/internal/domain"
)

const meterName = "laudo"

// Metrics holds every instrument. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Utterances counts finalized utterances. Attribute: kind.
	Utterances metric.Int64Counter

	// Commands counts utterances that matched a command. Attribute: action.
	Commands metric.Int64Counter

	StreamRestarts metric.Int64Counter
	ProviderErrors metric.Int64Counter
	ReportsSaved   metric.Int64Counter

	// Confidence records the displayed confidence percent of every result.
	Confidence metric.Int64Histogram
}

var confidenceBuckets = []float64{10, 25, 50, 70, 80, 90, 95, 100}

// NewMetrics creates the instruments from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Utterances, err = m.Int64Counter("laudo.utterances",
		metric.WithDescription("Finalized utterances by kind."),
	); err != nil {
		return nil, err
	}
	if met.Commands, err = m.Int64Counter("laudo.commands",
		metric.WithDescription("Voice commands executed by action."),
	); err != nil {
		return nil, err
	}
	if met.StreamRestarts, err = m.Int64Counter("laudo.stream.restarts",
		metric.WithDescription("Recognition streams restarted after ending naturally."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("laudo.provider.errors",
		metric.WithDescription("Speech provider failures."),
	); err != nil {
		return nil, err
	}
	if met.ReportsSaved, err = m.Int64Counter("laudo.reports.saved",
		metric.WithDescription("Reports saved."),
	); err != nil {
		return nil, err
	}
	if met.Confidence, err = m.Int64Histogram("laudo.utterance.confidence",
		metric.WithDescription("Recognition confidence shown to the user."),
		metric.WithUnit("%"),
		metric.WithExplicitBucketBoundaries(confidenceBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// NewGlobalMetrics builds instruments from the global meter provider.
func NewGlobalMetrics() (*Metrics, error) {
	return NewMetrics(otel.GetMeterProvider())
}

// RecordUtterance counts a finalized utterance and the command it resolved to.
// Command-table literals such as paragraph breaks count as commands too.
func (m *Metrics) RecordUtterance(ctx context.Context, action domain.Action, command bool) {
	if m == nil {
		return
	}
	kind := "text"
	if command {
		kind = "command"
		m.Commands.Add(ctx, 1, metric.WithAttributes(attribute.String("action", string(action.Kind))))
	}
	m.Utterances.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) RecordConfidence(ctx context.Context, percent int) {
	if m == nil {
		return
	}
	m.Confidence.Record(ctx, int64(percent))
}

func (m *Metrics) RecordRestart(ctx context.Context) {
	if m == nil {
		return
	}
	m.StreamRestarts.Add(ctx, 1)
}

func (m *Metrics) RecordProviderError(ctx context.Context) {
	if m == nil {
		return
	}
	m.ProviderErrors.Add(ctx, 1)
}

func (m *Metrics) RecordReportSaved(ctx context.Context) {
	if m == nil {
		return
	}
	m.ReportsSaved.Add(ctx, 1)
}
