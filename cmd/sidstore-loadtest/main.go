package main

import (
	"context"
	"errors"
	"flag"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/sidstore/internal/metrics"
	promexport "github.com/MrEthical07/sidstore/metrics/export/prometheus"
	"github.com/MrEthical07/sidstore/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var errAbsent = errors.New("record absent")

type sessionState struct {
	sid         string
	credentials string
	mu          sync.Mutex
}

func main() {
	var (
		sessions    = flag.Int("sessions", 10000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 50000, "operations per phase (get + overwrite)")
		batch       = flag.Int("batch", 100, "keys per clear call")
		redisURL    = flag.String("redis-url", "", "redis URL; if empty, REDIS_URL env or miniredis is used")
		secret      = flag.String("secret", "sidstore-loadtest", "HMAC secret for credential tokens")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address during the run")
		verbose     = flag.Bool("v", false, "log individual store failures")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 || *batch <= 0 {
		logger.Error().Msg("sessions, concurrency, ops, and batch must be > 0")
		os.Exit(2)
	}

	url := *redisURL
	if url == "" {
		url = os.Getenv("REDIS_URL")
	}
	if url == "" {
		mr, err := miniredis.Run()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to start miniredis")
		}
		defer mr.Close()
		url = "redis://" + mr.Addr() + "/0"
		logger.Info().Str("addr", mr.Addr()).Msg("using miniredis")
	}

	storeLogger := zerolog.Nop()
	if *verbose {
		storeLogger = logger
	}
	store, err := session.Open(url,
		session.WithLogger(storeLogger),
		session.WithMetrics(session.MetricsConfig{Enabled: true, EnableLatencyHistograms: true}),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer store.Close()

	if *metricsAddr != "" {
		srv := &http.Server{Addr: *metricsAddr, Handler: metricsMux(store), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server")
			}
		}()
		defer srv.Close()
		logger.Info().Str("addr", *metricsAddr).Msg("serving /metrics")
	}

	ctx := context.Background()
	iss := issuer{secret: []byte(*secret)}

	states := make([]sessionState, *sessions)
	logger.Info().Int("sessions", *sessions).Msg("seeding")
	startSeed := time.Now()
	for i := range states {
		sid := uuid.NewString()
		creds, err := iss.issue(sid)
		if err != nil {
			logger.Fatal().Err(err).Msg("issue credential")
		}
		if err := store.Set(ctx, &session.Record{SID: sid, Credentials: creds}); err != nil {
			logger.Fatal().Err(err).Msg("seed failed")
		}
		states[i].sid = sid
		states[i].credentials = creds
	}
	logger.Info().Dur("elapsed", time.Since(startSeed).Round(time.Millisecond)).Msg("seeded")

	getStats := runPhase(*ops, *concurrency, 7919, func(r *rand.Rand, _ int) error {
		state := &states[r.Intn(len(states))]
		rec, err := store.Get(ctx, state.sid)
		if err != nil {
			return err
		}
		if rec == nil {
			return errAbsent
		}
		return iss.verify(rec.Credentials, state.sid)
	})

	overwriteStats := runPhase(*ops, *concurrency, 6151, func(r *rand.Rand, _ int) error {
		state := &states[r.Intn(len(states))]
		state.mu.Lock()
		defer state.mu.Unlock()

		creds, err := iss.issue(state.sid)
		if err != nil {
			return err
		}
		if err := store.Set(ctx, &session.Record{SID: state.sid, Credentials: creds}); err != nil {
			return err
		}
		state.credentials = creds
		return nil
	})

	batches := batchKeys(states, *batch)
	clearStats := runPhase(len(batches), *concurrency, 0, func(_ *rand.Rand, i int) error {
		return store.Clear(ctx, batches[i])
	})

	var leftovers int
	for i := 0; i < len(states) && i < 100; i++ {
		rec, err := store.Get(ctx, states[i].sid)
		if err != nil || rec != nil {
			leftovers++
		}
	}

	logStats(logger, "get", getStats)
	logStats(logger, "overwrite", overwriteStats)
	logStats(logger, "clear", clearStats)
	logCounters(logger, store.MetricsSnapshot())
	if leftovers > 0 {
		logger.Error().Int("leftovers", leftovers).Msg("records still present after clear")
		os.Exit(1)
	}
}

// runPhase runs ops calls of fn across concurrency workers and collects
// per-call latency.
func runPhase(ops, concurrency int, salt int64, fn func(r *rand.Rand, i int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*salt))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := fn(r, i)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

func batchKeys(states []sessionState, size int) [][]string {
	out := make([][]string, 0, (len(states)+size-1)/size)
	for i := 0; i < len(states); i += size {
		end := i + size
		if end > len(states) {
			end = len(states)
		}
		keys := make([]string, 0, end-i)
		for j := i; j < end; j++ {
			keys = append(keys, states[j].sid)
		}
		out = append(out, keys)
	}
	return out
}

func metricsMux(store *session.Store) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promexport.NewCollector(store).Handler())
	return mux
}

func logCounters(logger zerolog.Logger, snap metrics.Snapshot) {
	logger.Info().
		Uint64("get_hit", snap.Counters[metrics.GetHit]).
		Uint64("get_miss", snap.Counters[metrics.GetMiss]).
		Uint64("set", snap.Counters[metrics.SetSuccess]).
		Uint64("cleared", snap.Counters[metrics.ClearKey]).
		Uint64("err_io", snap.Counters[metrics.ErrorIO]).
		Uint64("err_serialization", snap.Counters[metrics.ErrorSerialization]).
		Uint64("err_backend", snap.Counters[metrics.ErrorBackend]).
		Msg("store counters")
}
