package kv

import (
	"context"
	"errors"
)

var (
	// ErrInvalidDescriptor is returned when a connection descriptor cannot be parsed.
	ErrInvalidDescriptor = errors.New("invalid connection descriptor")
	// ErrClosed is returned when a connection is requested from a closed backend.
	ErrClosed = errors.New("backend closed")
)

// Backend hands out connections to a key-value server.
type Backend interface {
	// Conn acquires a connection for a single store operation. Callers must
	// Close it when the operation finishes.
	Conn(ctx context.Context) (Conn, error)
}

// Conn is the get/set/delete capability set over string keys and values.
type Conn interface {
	// Get returns the value stored at key. ok is false when the key holds no
	// value; that case is not an error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value at key, overwriting any existing value.
	Set(ctx context.Context, key, value string) error
	// Del removes key. Removing a missing key succeeds.
	Del(ctx context.Context, key string) error
	// Close releases the connection.
	Close() error
}
