package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	sessionkit "github.com/fintrack/sessionkit"
	internalmetrics "github.com/fintrack/sessionkit/internal/metrics"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// metricsSource is the slice of [sessionkit.Session] the exporter reads.
type metricsSource interface {
	MetricsSnapshot() sessionkit.MetricsSnapshot
	EventsDropped() uint64
}

type observedCounter struct {
	id         sessionkit.MetricID
	instrument metric.Int64ObservableCounter
}

// Exporter mirrors the session's counters into an OTel meter. Collection
// is pull-based: values are read from a snapshot on each collect cycle,
// so the session's hot path stays free of OTel instrumentation.
type Exporter struct {
	source        metricsSource
	registration  metric.Registration
	counters      []observedCounter
	eventsDropped metric.Int64ObservableCounter
}

// NewExporter registers the session's counters with the meter.
func NewExporter(meter metric.Meter, session *sessionkit.Session) (*Exporter, error) {
	if session == nil {
		return nil, ErrNilSource
	}
	return NewExporterFromSource(meter, session)
}

// NewExporterFromSource is the test seam behind [NewExporter].
func NewExporterFromSource(meter metric.Meter, source metricsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &Exporter{
		source:   source,
		counters: make([]observedCounter, 0, len(internalmetrics.CounterDefs)),
	}

	observables := make([]metric.Observable, 0, len(internalmetrics.CounterDefs)+1)

	for _, def := range internalmetrics.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		exporter.counters = append(exporter.counters, observedCounter{id: def.ID, instrument: ins})
		observables = append(observables, ins)
	}

	dropped, err := meter.Int64ObservableCounter(
		"sessionkit_events_dropped_total",
		metric.WithDescription("Session events discarded due to dispatcher backpressure."),
	)
	if err != nil {
		return nil, fmt.Errorf("create events dropped counter: %w", err)
	}
	exporter.eventsDropped = dropped
	observables = append(observables, dropped)

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		snapshot := exporter.source.MetricsSnapshot()
		for _, c := range exporter.counters {
			observer.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
		}
		observer.ObserveInt64(exporter.eventsDropped, int64(exporter.source.EventsDropped()))
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

// Close unregisters the collection callback.
func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
