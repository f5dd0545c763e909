package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis is a [Backend] over a go-redis client. Every [Redis.Conn] call takes a
// dedicated connection from the client's pool.
type Redis struct {
	client *redis.Client
	owned  bool
}

// OpenRedis parses descriptor (redis://, rediss:// or unix:// URL; the path
// selects the logical database) and builds a client for it. No network
// connection is made until the first command.
func OpenRedis(descriptor string) (*Redis, error) {
	opts, err := redis.ParseURL(descriptor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	return &Redis{client: redis.NewClient(opts), owned: true}, nil
}

// NewRedis wraps an existing client. The caller keeps ownership of client;
// [Redis.Close] does not close it.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Conn implements [Backend].
func (r *Redis) Conn(ctx context.Context) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &redisConn{conn: r.client.Conn()}, nil
}

// Close closes the underlying client if it was created by [OpenRedis].
func (r *Redis) Close() error {
	if r == nil || !r.owned {
		return nil
	}
	return r.client.Close()
}

type redisConn struct {
	conn *redis.Conn
}

func (c *redisConn) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.conn.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *redisConn) Set(ctx context.Context, key, value string) error {
	return c.conn.Set(ctx, key, value, 0).Err()
}

func (c *redisConn) Del(ctx context.Context, key string) error {
	return c.conn.Del(ctx, key).Err()
}

func (c *redisConn) Close() error {
	return c.conn.Close()
}
