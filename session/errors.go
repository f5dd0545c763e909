package session

import (
	"errors"
	"strings"
)

var (
	// ErrIO matches any [Error] of [KindIO].
	ErrIO = errors.New("session io failure")
	// ErrSerialization matches any [Error] of [KindSerialization].
	ErrSerialization = errors.New("session serialization failure")
	// ErrBackend matches any [Error] of [KindBackend].
	ErrBackend = errors.New("session backend failure")
	// ErrTruncated matches serialization failures caused by incomplete input.
	ErrTruncated = errors.New("session record truncated")
	// ErrMalformed matches serialization failures caused by invalid syntax or
	// a value of the wrong shape.
	ErrMalformed = errors.New("session record malformed")
)

// Kind is the top-level class of a store failure.
type Kind uint8

const (
	// KindIO is a local or stream-level read failure.
	KindIO Kind = iota + 1
	// KindSerialization is text that cannot be encoded or decoded as a record.
	KindSerialization
	// KindBackend is any failure reported by the key-value backend, including
	// a malformed connection descriptor.
	KindBackend
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindSerialization:
		return "serialization"
	case KindBackend:
		return "backend"
	default:
		return "unknown"
	}
}

// Category sub-classifies [KindSerialization] failures.
type Category uint8

const (
	// CategoryNone is the category of every non-serialization failure.
	CategoryNone Category = iota
	// CategorySyntax is text that is not well-formed.
	CategorySyntax
	// CategoryData is well-formed text of the wrong shape.
	CategoryData
	// CategoryEOF is text that ends before the record is complete.
	CategoryEOF
)

func (c Category) String() string {
	switch c {
	case CategorySyntax:
		return "syntax"
	case CategoryData:
		return "data"
	case CategoryEOF:
		return "eof"
	default:
		return ""
	}
}

// Error is the single error type returned by [Store] operations and the codec.
type Error struct {
	Kind     Kind
	Category Category
	// Op is the operation that failed: open, get, set, clear, encode, decode.
	Op string
	// Key is the backend key involved, when there is one.
	Key string
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("session ")
	b.WriteString(e.Op)
	if e.Key != "" {
		b.WriteString(" ")
		b.WriteString(e.Key)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Category != CategoryNone {
		b.WriteString(" (")
		b.WriteString(e.Category.String())
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind or category.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrIO:
		return e.Kind == KindIO
	case ErrSerialization:
		return e.Kind == KindSerialization
	case ErrBackend:
		return e.Kind == KindBackend
	case ErrTruncated:
		return e.Kind == KindSerialization && e.Category == CategoryEOF
	case ErrMalformed:
		return e.Kind == KindSerialization &&
			(e.Category == CategorySyntax || e.Category == CategoryData)
	}
	return false
}

// KindOf returns the [Kind] of the first [Error] in err's chain, or 0 when
// err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func backendError(op, key string, err error) *Error {
	return &Error{Kind: KindBackend, Op: op, Key: key, Err: err}
}

// withKey attaches the backend key to a codec error raised under a store call.
func withKey(err error, key string) error {
	var e *Error
	if errors.As(err, &e) && e.Key == "" {
		out := *e
		out.Key = key
		return &out
	}
	return err
}
