package nsqlitekit

import (
	"fmt"

	"github.com/nsqlite/nsqlitekit/internal/sqlitec"
)

// Cursor is a view over the current row of an Iterator. It owns nothing:
// once the iterator advances, every cursor taken from it shows the new row,
// and once the iterator is done or stale they fail.
//
// Numeric and text decoding follow SQLite's own type conversion rules.
type Cursor struct {
	it *Iterator
}

// stmt returns the statement for metadata lookups, which need no row.
func (cur *Cursor) stmt() (*sqlitec.Stmt, error) {
	if cur.it.handle == nil {
		return nil, ErrExhausted
	}
	return cur.it.handle.get()
}

// column returns the statement positioned on the row after checking index.
func (cur *Cursor) column(index int) (*sqlitec.Stmt, error) {
	raw, err := cur.it.current()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= raw.ColumnCount() {
		return nil, fmt.Errorf("%w: index %d out of range", ErrUnknownColumn, index)
	}
	return raw, nil
}

// ColumnCount returns the number of columns of the row.
func (cur *Cursor) ColumnCount() int {
	raw, err := cur.stmt()
	if err != nil {
		return 0
	}
	return raw.ColumnCount()
}

// ColumnName returns the name of the column at index.
func (cur *Cursor) ColumnName(index int) (string, error) {
	raw, err := cur.stmt()
	if err != nil {
		return "", err
	}
	if index < 0 || index >= raw.ColumnCount() {
		return "", fmt.Errorf("%w: index %d out of range", ErrUnknownColumn, index)
	}
	return raw.ColumnName(index), nil
}

// ColumnIndex returns the index of the first column called name. The match
// is exact and case-sensitive.
func (cur *Cursor) ColumnIndex(name string) (int, error) {
	raw, err := cur.stmt()
	if err != nil {
		return 0, err
	}
	for i := range raw.ColumnCount() {
		if raw.ColumnName(i) == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// Type returns the storage class of the value at index.
func (cur *Cursor) Type(index int) (StorageClass, error) {
	raw, err := cur.column(index)
	if err != nil {
		return 0, err
	}
	return raw.ColumnType(index), nil
}

// IsNull reports whether the value at index is NULL. A zero-length text or
// blob is not NULL.
func (cur *Cursor) IsNull(index int) (bool, error) {
	class, err := cur.Type(index)
	if err != nil {
		return false, err
	}
	return class == StorageNull, nil
}

// IsNullByName is IsNull for the column called name.
func (cur *Cursor) IsNullByName(name string) (bool, error) {
	index, err := cur.ColumnIndex(name)
	if err != nil {
		return false, err
	}
	return cur.IsNull(index)
}

// Int32 decodes the value at index as a 32-bit integer.
func (cur *Cursor) Int32(index int) (int32, error) {
	raw, err := cur.column(index)
	if err != nil {
		return 0, err
	}
	return raw.ColumnInt(index), nil
}

// Int64 decodes the value at index as a 64-bit integer.
func (cur *Cursor) Int64(index int) (int64, error) {
	raw, err := cur.column(index)
	if err != nil {
		return 0, err
	}
	return raw.ColumnInt64(index), nil
}

// Int decodes the value at index as an int.
func (cur *Cursor) Int(index int) (int, error) {
	v, err := cur.Int64(index)
	return int(v), err
}

// Float64 decodes the value at index as a float.
func (cur *Cursor) Float64(index int) (float64, error) {
	raw, err := cur.column(index)
	if err != nil {
		return 0, err
	}
	return raw.ColumnFloat64(index), nil
}

// Text decodes the value at index as a string. NULL decodes as "".
func (cur *Cursor) Text(index int) (string, error) {
	raw, err := cur.column(index)
	if err != nil {
		return "", err
	}
	return raw.ColumnText(index), nil
}

// Blob returns a copy of the value at index. NULL is nil, a zero-length
// value is an empty slice.
func (cur *Cursor) Blob(index int) ([]byte, error) {
	raw, err := cur.column(index)
	if err != nil {
		return nil, err
	}
	return raw.ColumnBlob(index), nil
}

// RawText returns the text of the value at index without copying it.
func (cur *Cursor) RawText(index int) (RawBytes, error) {
	raw, err := cur.column(index)
	if err != nil {
		return nil, err
	}
	return RawBytes(raw.ColumnRawText(index)), nil
}

// RawBlob returns the bytes of the value at index without copying them.
// NULL and a zero-length blob both come back nil, check IsNull first.
func (cur *Cursor) RawBlob(index int) (RawBytes, error) {
	raw, err := cur.column(index)
	if err != nil {
		return nil, err
	}
	return RawBytes(raw.ColumnRawBlob(index)), nil
}

// Decodable lists the types Get can decode a column into.
type Decodable interface {
	int32 | int64 | int | float64 | string | []byte | RawBytes
}

// Get decodes the value at index as T.
func Get[T Decodable](cur *Cursor, index int) (T, error) {
	var zero T
	var v any
	var err error

	switch any(zero).(type) {
	case int32:
		v, err = cur.Int32(index)
	case int64:
		v, err = cur.Int64(index)
	case int:
		v, err = cur.Int(index)
	case float64:
		v, err = cur.Float64(index)
	case string:
		v, err = cur.Text(index)
	case []byte:
		v, err = cur.Blob(index)
	case RawBytes:
		v, err = cur.RawBlob(index)
	}
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// GetByName decodes the value of the column called name as T.
func GetByName[T Decodable](cur *Cursor, name string) (T, error) {
	index, err := cur.ColumnIndex(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return Get[T](cur, index)
}
