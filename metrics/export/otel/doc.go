// Package otel provides OpenTelemetry metric exporter bindings for the
// session pipeline counters.
//
// [NewExporter] registers an Int64ObservableCounter per pipeline metric
// plus the dropped-event counter. A single callback reads
// [sessionkit.Session.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate session state.
package otel
