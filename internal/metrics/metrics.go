package metrics

import (
	"sync/atomic"
	"time"
)

// ID identifies a counter or histogram slot.
type ID uint16

// Counter and histogram IDs. The *Latency IDs are histograms; the rest are
// monotonic counters.
const (
	GetHit ID = iota
	GetMiss
	SetSuccess
	ClearKey
	ErrorIO
	ErrorSerialization
	ErrorBackend
	GetLatency
	SetLatency
	ClearLatency
	idCount
)

// BucketCount is the number of latency histogram buckets, the last being +Inf.
const BucketCount = 8

const cacheLineSize = 64

type histogram struct {
	buckets  [BucketCount]uint64
	sumNanos uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Config controls which metrics are recorded.
type Config struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// Metrics holds operation counters and latency histograms. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [idCount]paddedCounter
	histograms    [idCount]histogram
}

// Histogram is a point-in-time copy of one latency histogram. Buckets are
// non-cumulative.
type Histogram struct {
	Buckets []uint64
	Sum     time.Duration
}

// Snapshot is a point-in-time copy of all recorded values.
type Snapshot struct {
	Counters   map[ID]uint64
	Histograms map[ID]Histogram
}

// New returns a [Metrics] configured by cfg.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments counter id.
func (m *Metrics) Inc(id ID) {
	m.Add(id, 1)
}

// Add adds n to counter id.
func (m *Metrics) Add(id ID, n uint64) {
	if m == nil || !m.enabled || id >= idCount || n == 0 {
		return
	}
	atomic.AddUint64(&m.counters[id].value, n)
}

// Observe records d into histogram id. Only latency IDs carry histograms.
func (m *Metrics) Observe(id ID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || !isHistogram(id) {
		return
	}
	if d < 0 {
		d = 0
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
	atomic.AddUint64(&m.histograms[id].sumNanos, uint64(d))
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id ID) uint64 {
	if m == nil || id >= idCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters and, when enabled, latency histograms.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{
			Counters:   map[ID]uint64{},
			Histograms: map[ID]Histogram{},
		}
	}

	s := Snapshot{
		Counters:   make(map[ID]uint64, int(idCount)),
		Histograms: make(map[ID]Histogram, 3),
	}

	for id := ID(0); id < idCount; id++ {
		if isHistogram(id) {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		for _, id := range []ID{GetLatency, SetLatency, ClearLatency} {
			h := Histogram{Buckets: make([]uint64, BucketCount)}
			for i := 0; i < BucketCount; i++ {
				h.Buckets[i] = atomic.LoadUint64(&m.histograms[id].buckets[i])
			}
			h.Sum = time.Duration(atomic.LoadUint64(&m.histograms[id].sumNanos))
			s.Histograms[id] = h
		}
	}

	return s
}

func isHistogram(id ID) bool {
	return id == GetLatency || id == SetLatency || id == ClearLatency
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
