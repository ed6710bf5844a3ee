package nsqlitekit

import (
	"fmt"
	"math"
)

// RawBytes is a byte view borrowed from SQLite. When read from a Cursor it
// is only valid until the iterator advances or its statement is reset,
// copy it to keep it longer.
type RawBytes []byte

// ValueKind tags the content of a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt32
	KindInt64
	KindFloat64
	KindText
	KindBlob
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// Value is a bind value of one of the types SQLite accepts for a parameter.
// The zero Value is NULL.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
	b    []byte
}

// Int32 returns a 32-bit integer value.
func Int32(v int32) Value { return Value{kind: KindInt32, i: int64(v)} }

// Int64 returns a 64-bit integer value.
func Int64(v int64) Value { return Value{kind: KindInt64, i: v} }

// Float64 returns a floating point value.
func Float64(v float64) Value { return Value{kind: KindFloat64, f: v} }

// Text returns a text value.
func Text(v string) Value { return Value{kind: KindText, s: v} }

// Blob returns a blob value. A nil slice is NULL, an empty one is a
// zero-length blob.
func Blob(v []byte) Value {
	if v == nil {
		return Null()
	}
	return Value{kind: KindBlob, b: v}
}

// Null returns the NULL value.
func Null() Value { return Value{} }

// Kind reports what the value holds.
func (v Value) Kind() ValueKind { return v.kind }

// Interface returns the value as a plain Go value: nil, int32, int64,
// float64, string or []byte.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt32:
		return int32(v.i)
	case KindInt64:
		return v.i
	case KindFloat64:
		return v.f
	case KindText:
		return v.s
	case KindBlob:
		return v.b
	}
	return nil
}

// ValueOf converts a Go value to a Value. Accepted types are every integer
// type (uint64 and uint only when they fit in int64), bool, float32,
// float64, string, []byte, RawBytes, nil and Value.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case int8:
		return Int32(int32(x)), nil
	case int16:
		return Int32(int32(x)), nil
	case int32:
		return Int32(x), nil
	case int:
		return Int64(int64(x)), nil
	case int64:
		return Int64(x), nil
	case uint8:
		return Int32(int32(x)), nil
	case uint16:
		return Int32(int32(x)), nil
	case uint32:
		return Int64(int64(x)), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedType, x)
		}
		return Int64(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedType, x)
		}
		return Int64(int64(x)), nil
	case bool:
		if x {
			return Int32(1), nil
		}
		return Int32(0), nil
	case float32:
		return Float64(float64(x)), nil
	case float64:
		return Float64(x), nil
	case string:
		return Text(x), nil
	case []byte:
		return Blob(x), nil
	case RawBytes:
		return Blob([]byte(x)), nil
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}
