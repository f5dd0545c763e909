package session

import (
	"github.com/MrEthical07/sidstore/internal/metrics"
	"github.com/rs/zerolog"
)

// MetricsConfig controls the store's in-process operation metrics.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

type options struct {
	logger  zerolog.Logger
	metrics MetricsConfig
}

// Option configures a [Store].
type Option func(*options)

// WithLogger sets the logger used for operation failures. The default
// discards everything. Credentials are never logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics enables operation counters and, optionally, latency histograms.
func WithMetrics(cfg MetricsConfig) Option {
	return func(o *options) {
		o.metrics = cfg
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o options) newMetrics() *metrics.Metrics {
	return metrics.New(metrics.Config{
		Enabled:                 o.metrics.Enabled,
		EnableLatencyHistograms: o.metrics.EnableLatencyHistograms,
	})
}
