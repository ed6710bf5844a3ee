package sqlitec

import "C"
import (
	"errors"
	"fmt"
)

// ErrCodecUnsupported is returned by Conn.Key when the library was not built
// with the sqlcipher tag.
var ErrCodecUnsupported = errors.New("sqlite codec is not compiled in")

// ErrEmptyStatement is returned by Conn.Prepare when the text holds only
// whitespace or comments.
var ErrEmptyStatement = errors.New("query contains no statement")

// Error is a failed call into the SQLite C library.
type Error struct {
	// Code is the (possibly extended) result code returned by SQLite.
	Code ResultCode
	// Op describes the failed operation, for example "prepare statement".
	Op string
	// Msg is the diagnostic reported by SQLite.
	Msg string
}

func newError(op string, resCode C.int, msg string) *Error {
	return &Error{Code: ResultCode(resCode), Op: op, Msg: msg}
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to %s: %s: %s", e.Op, e.Code, e.Msg)
}
