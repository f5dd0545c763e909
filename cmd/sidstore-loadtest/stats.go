package main

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
)

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total, failures: failures}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func logStats(logger zerolog.Logger, name string, s phaseStats) {
	logger.Info().
		Str("phase", name).
		Int("ops", s.ops).
		Int64("failures", s.failures).
		Dur("total", s.total.Round(time.Millisecond)).
		Float64("ops_per_sec", s.opsPerS).
		Dur("p50", s.p50.Round(time.Microsecond)).
		Dur("p95", s.p95.Round(time.Microsecond)).
		Dur("p99", s.p99.Round(time.Microsecond)).
		Msg("phase complete")
}
