package session

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/MrEthical07/sidstore/internal/metrics"
	"github.com/MrEthical07/sidstore/kv"
	"github.com/rs/zerolog"
)

const (
	opOpen  = "open"
	opGet   = "get"
	opSet   = "set"
	opClear = "clear"
)

// Store reads, writes, and clears session records in a key-value backend.
// The sid is used verbatim as the backend key.
//
// Every operation acquires its own backend connection and releases it before
// returning. Nothing is retried or cached; failures are returned as [*Error].
// Store is safe for concurrent use when its backend is.
type Store struct {
	backend kv.Backend
	closer  io.Closer
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// Open parses descriptor (for example "redis://localhost:6379/1") and returns
// a [Store] over a Redis backend. A malformed descriptor fails with a
// [KindBackend] error. No connection is made until the first operation.
func Open(descriptor string, opts ...Option) (*Store, error) {
	backend, err := kv.OpenRedis(descriptor)
	if err != nil {
		return nil, backendError(opOpen, "", err)
	}
	s := NewStore(backend, opts...)
	s.closer = backend
	return s, nil
}

// NewStore returns a [Store] over backend. The caller keeps ownership of
// backend; [Store.Close] leaves it open.
func NewStore(backend kv.Backend, opts ...Option) *Store {
	o := buildOptions(opts)
	return &Store{
		backend: backend,
		logger:  o.logger,
		metrics: o.newMetrics(),
	}
}

// Get fetches the record stored under sid. It returns (nil, nil) when the
// backend holds no value for sid. Stored text that fails to decode is
// reported as [KindSerialization] (or [KindIO]), never [KindBackend].
// An empty sid is looked up like any other key; [Store.Set] never writes one.
//
//	Backend: 1 GET.
func (s *Store) Get(ctx context.Context, sid string) (*Record, error) {
	start := time.Now()
	rec, err := s.get(ctx, sid)
	s.finish(opGet, metrics.GetLatency, start, err)
	return rec, err
}

func (s *Store) get(ctx context.Context, sid string) (*Record, error) {
	conn, err := s.backend.Conn(ctx)
	if err != nil {
		return nil, backendError(opGet, sid, err)
	}
	defer s.release(conn)

	raw, ok, err := conn.Get(ctx, sid)
	if err != nil {
		return nil, backendError(opGet, sid, err)
	}
	if !ok {
		s.metrics.Inc(metrics.GetMiss)
		return nil, nil
	}

	rec, err := Decode(raw)
	if err != nil {
		return nil, withKey(err, sid)
	}
	s.metrics.Inc(metrics.GetHit)
	return rec, nil
}

// Set stores r under r.SID, replacing any existing value. The record is
// encoded before a connection is acquired, so an unencodable record writes
// nothing.
//
//	Backend: 1 SET (no expiry).
func (s *Store) Set(ctx context.Context, r *Record) error {
	start := time.Now()
	err := s.set(ctx, r)
	s.finish(opSet, metrics.SetLatency, start, err)
	return err
}

func (s *Store) set(ctx context.Context, r *Record) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}

	conn, err := s.backend.Conn(ctx)
	if err != nil {
		return backendError(opSet, r.SID, err)
	}
	defer s.release(conn)

	if err := conn.Set(ctx, r.SID, data); err != nil {
		return backendError(opSet, r.SID, err)
	}
	s.metrics.Inc(metrics.SetSuccess)
	return nil
}

// Clear deletes keys in order over a single connection. Missing keys are not
// an error. The first failure stops the batch and is returned with the
// failing key; keys deleted before it stay deleted. An empty key is deleted
// like any other.
//
//	Backend: 1 DEL per key, sequential.
func (s *Store) Clear(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	start := time.Now()
	err := s.clear(ctx, keys)
	s.finish(opClear, metrics.ClearLatency, start, err)
	return err
}

func (s *Store) clear(ctx context.Context, keys []string) error {
	conn, err := s.backend.Conn(ctx)
	if err != nil {
		return backendError(opClear, "", err)
	}
	defer s.release(conn)

	for _, key := range keys {
		if err := conn.Del(ctx, key); err != nil {
			return backendError(opClear, key, err)
		}
		s.metrics.Inc(metrics.ClearKey)
	}
	return nil
}

// Close releases the backend when the store was built by [Open].
func (s *Store) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// MetricsSnapshot returns the current operation counters and histograms.
// The snapshot is empty unless [WithMetrics] enabled them.
func (s *Store) MetricsSnapshot() metrics.Snapshot {
	return s.metrics.Snapshot()
}

func (s *Store) release(conn kv.Conn) {
	if err := conn.Close(); err != nil {
		s.logger.Debug().Err(err).Msg("session: connection release failed")
	}
}

func (s *Store) finish(op string, latency metrics.ID, start time.Time, err error) {
	s.metrics.Observe(latency, time.Since(start))
	if err == nil {
		return
	}

	var e *Error
	if !errors.As(err, &e) {
		return
	}
	switch e.Kind {
	case KindIO:
		s.metrics.Inc(metrics.ErrorIO)
	case KindSerialization:
		s.metrics.Inc(metrics.ErrorSerialization)
	case KindBackend:
		s.metrics.Inc(metrics.ErrorBackend)
	}

	// The cause is logged rather than err so sids stay out of the log.
	event := s.logger.Warn().
		Str("op", op).
		Str("kind", e.Kind.String())
	if e.Category != CategoryNone {
		event = event.Str("category", e.Category.String())
	}
	event.AnErr("cause", e.Err).Msg("session store operation failed")
}
