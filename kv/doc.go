// Package kv defines the narrow key-value capability the session store depends
// on, plus the Redis adapter used in production and an in-memory backend used
// as a test fake.
//
// # Connection model
//
// A [Backend] hands out one [Conn] per store operation. The connection is
// released by [Conn.Close] when the operation returns; no connection state is
// held between operations. Pooling, dialing, retries, and TLS belong to the
// underlying client (go-redis), not to this package.
//
// # What this package must NOT do
//
//   - Prefix, namespace, or otherwise rewrite keys.
//   - Interpret stored values.
//   - Apply expiry to written keys.
package kv
