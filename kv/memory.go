package kv

import (
	"context"
	"sync"
)

// Memory is a goroutine-safe in-memory [Backend]. It exists so the session
// store can be exercised without a live server.
type Memory struct {
	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

// NewMemory returns an empty [Memory] backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Conn implements [Backend].
func (m *Memory) Conn(ctx context.Context) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return &memoryConn{m: m}, nil
}

// Len reports the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Close marks the backend closed. Stored values are kept.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

type memoryConn struct {
	m      *Memory
	closed bool
}

func (c *memoryConn) Get(ctx context.Context, key string) (string, bool, error) {
	if err := c.check(ctx); err != nil {
		return "", false, err
	}
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	val, ok := c.m.data[key]
	return val, ok, nil
}

func (c *memoryConn) Set(ctx context.Context, key, value string) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	c.m.mu.Lock()
	c.m.data[key] = value
	c.m.mu.Unlock()
	return nil
}

func (c *memoryConn) Del(ctx context.Context, key string) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	c.m.mu.Lock()
	delete(c.m.data, key)
	c.m.mu.Unlock()
	return nil
}

func (c *memoryConn) Close() error {
	c.closed = true
	return nil
}

func (c *memoryConn) check(ctx context.Context) error {
	if c.closed {
		return ErrClosed
	}
	return ctx.Err()
}
