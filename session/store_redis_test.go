package session

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	store, err := Open("redis://" + mr.Addr() + "/1")
	if err != nil {
		mr.Close()
		t.Fatalf("open store: %v", err)
	}
	if err := store.Clear(context.Background(), []string{"sid"}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
		mr.Close()
	})
	return store, mr
}

func TestRedisGetUnknownKey(t *testing.T) {
	store, _ := newRedisStoreTest(t)

	rec, err := store.Get(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected absent, got %+v", rec)
	}
}

func TestRedisGetSession(t *testing.T) {
	store, mr := newRedisStoreTest(t)
	ctx := context.Background()

	if err := store.Set(ctx, &Record{SID: "sid", Credentials: "credentials"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	rec, err := store.Get(ctx, "sid")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.SID != "sid" || rec.Credentials != "credentials" {
		t.Fatalf("unexpected record %+v", rec)
	}

	// Stored verbatim under the sid in the selected database, without expiry.
	raw, err := mr.DB(1).Get("sid")
	if err != nil {
		t.Fatalf("raw get: %v", err)
	}
	if raw != `{"sid":"sid","credentials":"credentials"}` {
		t.Fatalf("unexpected stored value %s", raw)
	}
	if ttl := mr.DB(1).TTL("sid"); ttl != 0 {
		t.Fatalf("expected no expiry, got %v", ttl)
	}
}

func TestRedisClearThenGet(t *testing.T) {
	store, _ := newRedisStoreTest(t)
	ctx := context.Background()

	if err := store.Set(ctx, &Record{SID: "sid", Credentials: "credentials"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Clear(ctx, []string{"sid"}); err != nil {
		t.Fatalf("first clear: %v", err)
	}
	if err := store.Clear(ctx, []string{"sid"}); err != nil {
		t.Fatalf("second clear: %v", err)
	}

	rec, err := store.Get(ctx, "sid")
	if err != nil || rec != nil {
		t.Fatalf("expected absent, got %+v, %v", rec, err)
	}
}

func TestRedisCorruptValueIsNotBackendError(t *testing.T) {
	store, mr := newRedisStoreTest(t)

	if err := mr.DB(1).Set("sid", "bad"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := store.Get(context.Background(), "sid")
	if !errors.Is(err, ErrMalformed) || errors.Is(err, ErrBackend) {
		t.Fatalf("expected malformed serialization error, got %v", err)
	}
}

func TestRedisWrongTypeIsBackendError(t *testing.T) {
	store, mr := newRedisStoreTest(t)

	if _, err := mr.DB(1).Lpush("sid", "x"); err != nil {
		t.Fatalf("seed list: %v", err)
	}

	_, err := store.Get(context.Background(), "sid")
	if !errors.Is(err, ErrBackend) {
		t.Fatalf("expected backend error for WRONGTYPE, got %v", err)
	}
	if errors.Is(err, redis.Nil) {
		t.Fatal("redis.Nil must never escape as an error")
	}
}

func TestRedisServerDownIsBackendError(t *testing.T) {
	store, mr := newRedisStoreTest(t)
	mr.Close()

	_, err := store.Get(context.Background(), "sid")
	if !errors.Is(err, ErrBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestRedisAuthFailureIsBackendError(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("s3cret")

	store, err := Open("redis://:wrong@" + mr.Addr() + "/0")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	err = store.Set(context.Background(), &Record{SID: "sid", Credentials: "c"})
	if !errors.Is(err, ErrBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if mr.Exists("sid") {
		t.Fatal("nothing must be written on auth failure")
	}
}
