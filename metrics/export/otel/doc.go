// Package otel provides OpenTelemetry metric exporter bindings for session
// store counters and latency histograms.
//
// [NewExporter] registers an Int64ObservableCounter for each store counter
// and, per latency histogram, a bucket gauge labelled by "le" plus count
// and sum counters. A single callback reads
// [session.Store.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate store state.
package otel
