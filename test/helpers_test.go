//go:build integration
// +build integration

package test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/MrEthical07/sidstore/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// redisMode describes which Redis backend the suite is running against.
type redisMode struct {
	name  string
	setup func(t *testing.T) (*session.Store, *redis.Client, func())
}

// redisModes returns the set of Redis backends to test.
// miniredis is always available.
// Real Redis is used when REDIS_URL is set (e.g. "redis://127.0.0.1:6379/15").
func redisModes(t *testing.T) []redisMode {
	t.Helper()
	modes := []redisMode{
		{
			name: "miniredis",
			setup: func(t *testing.T) (*session.Store, *redis.Client, func()) {
				t.Helper()
				mr, err := miniredis.Run()
				if err != nil {
					t.Fatalf("miniredis: %v", err)
				}
				return openStore(t, "redis://"+mr.Addr()+"/1", mr.Close)
			},
		},
	}

	if url := os.Getenv("REDIS_URL"); url != "" {
		modes = append(modes, redisMode{
			name: "standalone:" + url,
			setup: func(t *testing.T) (*session.Store, *redis.Client, func()) {
				t.Helper()
				return openStore(t, url, func() {})
			},
		})
	}

	return modes
}

// openStore opens a store and a raw client on the same database. The raw
// client is used to seed and inspect keys directly.
func openStore(t *testing.T, url string, stop func()) (*session.Store, *redis.Client, func()) {
	t.Helper()

	opts, err := redis.ParseURL(url)
	if err != nil {
		stop()
		t.Fatalf("parse %s: %v", url, err)
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		stop()
		t.Skipf("cannot connect to Redis at %s: %v", url, err)
	}
	// Flush the test DB to avoid state leaking between runs.
	rdb.FlushDB(context.Background())

	store, err := session.Open(url)
	if err != nil {
		_ = rdb.Close()
		stop()
		t.Fatalf("open store: %v", err)
	}

	return store, rdb, func() {
		rdb.FlushDB(context.Background())
		_ = store.Close()
		_ = rdb.Close()
		stop()
	}
}
