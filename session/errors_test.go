package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesKindSentinels(t *testing.T) {
	cases := []struct {
		err  *Error
		want []error
		not  []error
	}{
		{
			err:  &Error{Kind: KindIO, Op: opDecode},
			want: []error{ErrIO},
			not:  []error{ErrSerialization, ErrBackend, ErrTruncated, ErrMalformed},
		},
		{
			err:  &Error{Kind: KindSerialization, Category: CategoryEOF, Op: opDecode},
			want: []error{ErrSerialization, ErrTruncated},
			not:  []error{ErrIO, ErrBackend, ErrMalformed},
		},
		{
			err:  &Error{Kind: KindSerialization, Category: CategorySyntax, Op: opDecode},
			want: []error{ErrSerialization, ErrMalformed},
			not:  []error{ErrIO, ErrBackend, ErrTruncated},
		},
		{
			err:  &Error{Kind: KindSerialization, Category: CategoryData, Op: opEncode},
			want: []error{ErrSerialization, ErrMalformed},
			not:  []error{ErrIO, ErrBackend, ErrTruncated},
		},
		{
			err:  &Error{Kind: KindBackend, Op: opGet},
			want: []error{ErrBackend},
			not:  []error{ErrIO, ErrSerialization, ErrTruncated, ErrMalformed},
		},
	}

	for _, tc := range cases {
		for _, target := range tc.want {
			if !errors.Is(tc.err, target) {
				t.Fatalf("%v: expected match for %v", tc.err, target)
			}
		}
		for _, target := range tc.not {
			if errors.Is(tc.err, target) {
				t.Fatalf("%v: unexpected match for %v", tc.err, target)
			}
		}
	}
}

func TestErrorUnwrapKeepsCause(t *testing.T) {
	err := backendError(opGet, "sid", context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected cause through Unwrap, got %v", err)
	}

	wrapped := fmt.Errorf("handler: %w", err)
	if KindOf(wrapped) != KindBackend {
		t.Fatalf("expected backend kind through wrapping, got %v", KindOf(wrapped))
	}
}

func TestErrorMessage(t *testing.T) {
	cases := map[string]*Error{
		"session get sid: backend: boom": {
			Kind: KindBackend, Op: opGet, Key: "sid", Err: errors.New("boom"),
		},
		"session decode: serialization (eof): unexpected EOF": {
			Kind: KindSerialization, Category: CategoryEOF, Op: opDecode, Err: errors.New("unexpected EOF"),
		},
		"session open: backend": {
			Kind: KindBackend, Op: opOpen,
		},
	}
	for want, err := range cases {
		if got := err.Error(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestKindOfForeignError(t *testing.T) {
	if KindOf(errors.New("plain")) != 0 {
		t.Fatal("expected zero kind for foreign error")
	}
	if KindOf(nil) != 0 {
		t.Fatal("expected zero kind for nil")
	}
}

func TestWithKeyPreservesClassification(t *testing.T) {
	_, decodeErr := Decode("{")
	err := withKey(decodeErr, "sid")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if e.Key != "sid" || e.Kind != KindSerialization || e.Category != CategoryEOF {
		t.Fatalf("classification lost: %#v", e)
	}

	var orig *Error
	_ = errors.As(decodeErr, &orig)
	if orig.Key != "" {
		t.Fatal("withKey must not mutate the original error")
	}
}
