// Package prometheus exposes session store metrics as a Prometheus collector.
//
// [NewCollector] reads a [session.Store] snapshot on every scrape and emits
// sidstore_*_total counters plus one sidstore_*_latency_seconds histogram per
// operation when latency histograms are enabled.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry. Callers register the
//     collector themselves or mount [Collector.Handler].
//   - Mutate store state.
package prometheus
