package internaldefs

import (
	"strconv"

	"github.com/MrEthical07/sidstore/internal/metrics"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   metrics.ID
	Name string
	Help string
}

// HistogramDef names one exported latency histogram.
type HistogramDef struct {
	ID   metrics.ID
	Name string
	Help string
}

// CounterDefs lists every exported counter in output order.
var CounterDefs = []CounterDef{
	{ID: metrics.GetHit, Name: "sidstore_get_hit_total", Help: "Get operations that found a record."},
	{ID: metrics.GetMiss, Name: "sidstore_get_miss_total", Help: "Get operations that found no value for the sid."},
	{ID: metrics.SetSuccess, Name: "sidstore_set_total", Help: "Records written."},
	{ID: metrics.ClearKey, Name: "sidstore_clear_keys_total", Help: "Keys deleted by clear operations."},
	{ID: metrics.ErrorIO, Name: "sidstore_error_io_total", Help: "Operations failed with an I/O error."},
	{ID: metrics.ErrorSerialization, Name: "sidstore_error_serialization_total", Help: "Operations failed with a serialization error."},
	{ID: metrics.ErrorBackend, Name: "sidstore_error_backend_total", Help: "Operations failed with a backend error."},
}

// HistogramDefs lists every exported latency histogram.
var HistogramDefs = []HistogramDef{
	{ID: metrics.GetLatency, Name: "sidstore_get_latency_seconds", Help: "Get latency histogram."},
	{ID: metrics.SetLatency, Name: "sidstore_set_latency_seconds", Help: "Set latency histogram."},
	{ID: metrics.ClearLatency, Name: "sidstore_clear_latency_seconds", Help: "Clear latency histogram."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The last
// bucket of a snapshot is +Inf.
var HistogramUpperBounds = [metrics.BucketCount - 1]float64{
	0.005,
	0.01,
	0.025,
	0.05,
	0.1,
	0.25,
	0.5,
}

// BucketLabel returns the "le" label of bucket i: the upper bound in
// seconds, or "+Inf" for the last bucket.
func BucketLabel(i int) string {
	if i >= len(HistogramUpperBounds) {
		return "+Inf"
	}
	return strconv.FormatFloat(HistogramUpperBounds[i], 'g', -1, 64)
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [metrics.BucketCount]uint64 {
	var out [metrics.BucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [metrics.BucketCount]uint64) [metrics.BucketCount]uint64 {
	var out [metrics.BucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
