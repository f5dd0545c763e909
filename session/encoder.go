package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	opEncode = "encode"
	opDecode = "decode"
)

var (
	errNilRecord       = errors.New("nil record")
	errEmptySID        = errors.New("empty sid")
	errInvalidUTF8     = errors.New("field is not valid UTF-8")
	errMissingSID      = errors.New("missing sid field")
	errMissingCreds    = errors.New("missing credentials field")
	errTrailingContent = errors.New("trailing content after record")
)

// wireRecord distinguishes absent fields from empty ones on decode.
type wireRecord struct {
	SID         *string `json:"sid"`
	Credentials *string `json:"credentials"`
}

// Encode renders r as a compact JSON object with sid and credentials fields.
// It fails with a [KindSerialization] error when r cannot round-trip: a nil
// record, an empty sid, or a field that is not valid UTF-8.
func Encode(r *Record) (string, error) {
	if r == nil {
		return "", codecError(opEncode, CategoryData, errNilRecord)
	}
	if r.SID == "" {
		return "", codecError(opEncode, CategoryData, errEmptySID)
	}
	if !utf8.ValidString(r.SID) || !utf8.ValidString(r.Credentials) {
		return "", codecError(opEncode, CategoryData, errInvalidUTF8)
	}

	data, err := json.Marshal(r)
	if err != nil {
		return "", codecError(opEncode, CategoryData, err)
	}
	return string(data), nil
}

// Decode parses text produced by [Encode]. The whole value is decoded in one
// call; a partial record is never returned. Text that is not valid UTF-8 is a
// [CategoryData] failure.
func Decode(text string) (*Record, error) {
	if !utf8.ValidString(text) {
		return nil, codecError(opDecode, CategoryData, errInvalidUTF8)
	}
	return decode(strings.NewReader(text))
}

// DecodeFrom reads r to its end and decodes one record from it. Failures
// returned by r itself are reported as [KindIO]; text that ends early is
// [KindSerialization] with [CategoryEOF].
func DecodeFrom(r io.Reader) (*Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Kind: KindIO, Op: opDecode, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, codecError(opDecode, CategoryData, errInvalidUTF8)
	}
	return decode(bytes.NewReader(data))
}

func decode(src io.Reader) (*Record, error) {
	dec := json.NewDecoder(src)

	var w wireRecord
	if err := dec.Decode(&w); err != nil {
		return nil, classifyDecode(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return nil, codecError(opDecode, CategorySyntax, errTrailingContent)
		}
		return nil, classifyDecode(err)
	}

	switch {
	case w.SID == nil:
		return nil, codecError(opDecode, CategoryData, errMissingSID)
	case *w.SID == "":
		return nil, codecError(opDecode, CategoryData, errEmptySID)
	case w.Credentials == nil:
		return nil, codecError(opDecode, CategoryData, errMissingCreds)
	}

	return &Record{SID: *w.SID, Credentials: *w.Credentials}, nil
}

// classifyDecode maps an encoding/json failure on fully read input to a
// serialization category.
func classifyDecode(err error) error {
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return codecError(opDecode, CategoryEOF, err)
	case errors.As(err, &syntaxErr):
		return codecError(opDecode, CategorySyntax, err)
	default:
		return codecError(opDecode, CategoryData, err)
	}
}

func codecError(op string, c Category, err error) *Error {
	return &Error{Kind: KindSerialization, Category: c, Op: op, Err: err}
}
