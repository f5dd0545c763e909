// Package session provides a key-value backed session record store with a
// single error taxonomy covering I/O, serialization, and backend failures.
//
// # Wire format
//
// A [Record] is stored as a compact JSON object with two text fields, sid and
// credentials, under the key sid. No prefix is applied to keys and no expiry
// is set on values.
//
// # Errors
//
// Every failure is an [*Error] carrying a [Kind] (io, serialization, backend)
// and, for serialization failures, a [Category] (syntax, data, eof). Use
// [errors.Is] with [ErrIO], [ErrSerialization], [ErrBackend], [ErrTruncated],
// or [ErrMalformed] to branch. A missing key is not an error: [Store.Get]
// returns a nil record and a nil error.
//
// # Architecture boundaries
//
// This package owns the [Store] and the [Record] codec. Connection handling,
// pooling, and TLS belong to the backend (see package kv).
//
// # What this package must NOT do
//
//   - Retry, cache, or batch backend operations.
//   - Apply expiry, rotation, or encryption to sessions.
//   - Log credentials or session ids.
package session
