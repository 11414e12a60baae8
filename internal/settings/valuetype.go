package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// ValueType is the declared type tag of a setting.
type ValueType string

const (
	// TypeString stores the value verbatim.
	TypeString ValueType = "string"
	// TypeInteger stores a base-10 integer.
	TypeInteger ValueType = "integer"
	// TypeBoolean stores "true" or "false".
	TypeBoolean ValueType = "boolean"
	// TypeJSON stores compact JSON text.
	TypeJSON ValueType = "json"
)

var (
	// ErrUnknownValueType is returned for a tag outside the supported set.
	ErrUnknownValueType = errors.New("unknown value type")
	// ErrInvalidBoolean is returned for a token outside the recognised boolean tokens.
	ErrInvalidBoolean = errors.New("invalid boolean token")
	// ErrInvalidJSON is returned for text that is not valid JSON.
	ErrInvalidJSON = errors.New("invalid json")
	// ErrUnsupportedValue is returned when a Go value cannot be written under a tag.
	ErrUnsupportedValue = errors.New("unsupported value")
)

type codec struct {
	decode func(raw string) (any, error)
	encode func(value any) (string, error)
}

// codecs is the dispatch table for every supported tag.
var codecs = map[ValueType]codec{ //nolint:gochecknoglobals
	TypeString:  {decode: decodeString, encode: encodeString},
	TypeInteger: {decode: decodeInteger, encode: encodeInteger},
	TypeBoolean: {decode: decodeBoolean, encode: encodeBoolean},
	TypeJSON:    {decode: decodeJSON, encode: encodeJSON},
}

// ValueTypes returns the supported tags.
func ValueTypes() []ValueType {
	return []ValueType{TypeString, TypeInteger, TypeBoolean, TypeJSON}
}

// ParseValueType converts a tag name into a ValueType.
func ParseValueType(s string) (ValueType, error) {
	vt := ValueType(strings.ToLower(strings.TrimSpace(s)))
	if !vt.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownValueType, s)
	}

	return vt, nil
}

// Valid reports whether vt is one of the supported tags.
func (vt ValueType) Valid() bool {
	_, ok := codecs[vt]
	return ok
}

// String implements fmt.Stringer.
func (vt ValueType) String() string {
	return string(vt)
}

// Decode interprets raw under vt.
func (vt ValueType) Decode(raw string) (any, error) {
	c, ok := codecs[vt]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownValueType, string(vt))
	}

	return c.decode(raw)
}

// Encode converts value into its canonical text form under vt.
func (vt ValueType) Encode(value any) (string, error) {
	c, ok := codecs[vt]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownValueType, string(vt))
	}

	return c.encode(value)
}

func decodeString(raw string) (any, error) {
	return raw, nil
}

func encodeString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: %T is not a string", ErrUnsupportedValue, value)
	}
}

func decodeInteger(raw string) (any, error) {
	n, err := strconv.ParseInt(raw, 10, strconv.IntSize)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return int(n), nil
}

func encodeInteger(value any) (string, error) {
	switch v := value.(type) {
	case string:
		// parse and reformat so "+5" and "007" are stored as "5" and "7"
		n, err := strconv.ParseInt(v, 10, strconv.IntSize)
		if err != nil {
			return "", err //nolint:wrapcheck
		}
		return strconv.FormatInt(n, 10), nil
	case json.Number:
		return encodeInteger(v.String())
	case float32:
		return encodeFloat(float64(v))
	case float64:
		return encodeFloat(v)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() { //nolint:exhaustive
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < math.MinInt || n > math.MaxInt {
			return "", fmt.Errorf("%w: %d overflows int", ErrUnsupportedValue, n)
		}
		return strconv.FormatInt(n, 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		if n > math.MaxInt {
			return "", fmt.Errorf("%w: %d overflows int", ErrUnsupportedValue, n)
		}
		return strconv.FormatUint(n, 10), nil
	default:
		return "", fmt.Errorf("%w: %T is not an integer", ErrUnsupportedValue, value)
	}
}

// encodeFloat accepts numbers decoded from JSON documents as long as they are integral.
func encodeFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return "", fmt.Errorf("%w: %v is not an integer", ErrUnsupportedValue, f)
	}
	if f < math.MinInt || f >= math.MaxInt {
		return "", fmt.Errorf("%w: %v overflows int", ErrUnsupportedValue, f)
	}

	return strconv.FormatInt(int64(f), 10), nil
}

// FromText turns text from a config file or command line into a value Encode
// accepts for vt. JSON text is passed through as a document, not a string.
func (vt ValueType) FromText(text string) any {
	if vt == TypeJSON {
		return json.RawMessage(text)
	}

	return text
}

// ParseBool maps the recognised boolean tokens, case-insensitively.
func ParseBool(token string) (bool, error) {
	switch strings.ToLower(token) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidBoolean, token)
	}
}

func decodeBoolean(raw string) (any, error) {
	return ParseBool(raw)
}

func encodeBoolean(value any) (string, error) {
	var (
		b   bool
		err error
	)

	switch v := value.(type) {
	case bool:
		b = v
	case string:
		b, err = ParseBool(v)
	default:
		return "", fmt.Errorf("%w: %T is not a boolean", ErrUnsupportedValue, value)
	}

	if err != nil {
		return "", err
	}

	return strconv.FormatBool(b), nil
}

// decodeJSON keeps numbers as json.Number so integers above 2^53 read back exactly.
func decodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", ErrInvalidJSON)
	}

	return v, nil
}

func encodeJSON(value any) (string, error) {
	if raw, ok := value.(json.RawMessage); ok {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
		return buf.String(), nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
	}

	return string(data), nil
}
