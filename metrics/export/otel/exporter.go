package otel

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/sidstore/internal/metrics"
	"github.com/MrEthical07/sidstore/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() metrics.Snapshot
}

// latencyInstruments backs one store latency histogram. Buckets are a single
// gauge with one cumulative series per "le" attribute.
type latencyInstruments struct {
	id      metrics.ID
	buckets metric.Int64ObservableGauge
	count   metric.Int64ObservableCounter
	sum     metric.Float64ObservableCounter
}

// Exporter holds the observable instruments registered for one store.
type Exporter struct {
	source       metricsSource
	registration metric.Registration
	counters     map[metrics.ID]metric.Int64ObservableCounter
	latency      []latencyInstruments
	le           [metrics.BucketCount]metric.ObserveOption
}

// NewExporter registers observable instruments on meter that read from
// source, typically a *session.Store. Call [Exporter.Close] to unregister.
func NewExporter(meter metric.Meter, source metricsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &Exporter{
		source:   source,
		counters: make(map[metrics.ID]metric.Int64ObservableCounter, len(internaldefs.CounterDefs)),
	}
	for i := range e.le {
		e.le[i] = metric.WithAttributeSet(attribute.NewSet(attribute.String("le", internaldefs.BucketLabel(i))))
	}

	var observables []metric.Observable
	for _, def := range internaldefs.CounterDefs {
		c, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("otel counter %s: %w", def.Name, err)
		}
		e.counters[def.ID] = c
		observables = append(observables, c)
	}
	for _, def := range internaldefs.HistogramDefs {
		inst, err := newLatencyInstruments(meter, def)
		if err != nil {
			return nil, err
		}
		e.latency = append(e.latency, inst)
		observables = append(observables, inst.buckets, inst.count, inst.sum)
	}

	reg, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("otel register callback: %w", err)
	}
	e.registration = reg
	return e, nil
}

func newLatencyInstruments(meter metric.Meter, def internaldefs.HistogramDef) (latencyInstruments, error) {
	inst := latencyInstruments{id: def.ID}
	var err error
	if inst.buckets, err = meter.Int64ObservableGauge(def.Name+"_bucket",
		metric.WithDescription(def.Help+" Cumulative count per upper bound.")); err != nil {
		return inst, fmt.Errorf("otel histogram %s buckets: %w", def.Name, err)
	}
	if inst.count, err = meter.Int64ObservableCounter(def.Name+"_count",
		metric.WithDescription(def.Help+" Sample count.")); err != nil {
		return inst, fmt.Errorf("otel histogram %s count: %w", def.Name, err)
	}
	if inst.sum, err = meter.Float64ObservableCounter(def.Name+"_sum",
		metric.WithDescription(def.Help+" Sample sum."), metric.WithUnit("s")); err != nil {
		return inst, fmt.Errorf("otel histogram %s sum: %w", def.Name, err)
	}
	return inst, nil
}

// observe copies one snapshot into the registered instruments. IDs missing
// from the snapshot are skipped rather than reported as zero.
func (e *Exporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()
	for id, c := range e.counters {
		if v, ok := snap.Counters[id]; ok {
			o.ObserveInt64(c, int64(v))
		}
	}
	for _, inst := range e.latency {
		hist, ok := snap.Histograms[inst.id]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(hist.Buckets))
		for i, v := range cumulative {
			o.ObserveInt64(inst.buckets, int64(v), e.le[i])
		}
		o.ObserveInt64(inst.count, int64(cumulative[len(cumulative)-1]))
		o.ObserveFloat64(inst.sum, hist.Sum.Seconds())
	}
	return nil
}

// Close unregisters the collection callback.
func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
