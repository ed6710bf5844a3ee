package nsqlitekit

import (
	"errors"
	"fmt"

	"github.com/nsqlite/nsqlitekit/internal/sqlitec"
)

// ResultCode is a SQLite result code. Use Primary to drop the extended bits.
type ResultCode = sqlitec.ResultCode

// StorageClass is the datatype of a value as stored by SQLite.
type StorageClass = sqlitec.StorageClass

// Storage classes reported by Cursor.Type.
const (
	StorageInteger = sqlitec.StorageInteger
	StorageFloat   = sqlitec.StorageFloat
	StorageText    = sqlitec.StorageText
	StorageBlob    = sqlitec.StorageBlob
	StorageNull    = sqlitec.StorageNull
)

// Engine failure kinds. An *EngineError matches the sentinel of its primary
// result code with errors.Is.
var (
	ErrBusy       = errors.New("database is busy")
	ErrLocked     = errors.New("database table is locked")
	ErrConstraint = errors.New("constraint violation")
	ErrReadOnly   = errors.New("attempt to write a readonly database")
	ErrCorrupt    = errors.New("database disk image is malformed")
	ErrNotADB     = errors.New("file is not a database")
	ErrFull       = errors.New("database or disk is full")
	ErrMisuse     = errors.New("library routine called out of sequence")
	ErrInterrupt  = errors.New("operation interrupted")
)

// ErrInvalidState is the root of every usage error: the caller did something
// the current state of a connection, statement, iterator or transaction does
// not allow. It never comes from the engine.
var ErrInvalidState = errors.New("nsqlitekit: invalid state")

func invalidState(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, msg)
}

// Usage errors. All of them match ErrInvalidState with errors.Is.
var (
	ErrClosed           = invalidState("connection is closed")
	ErrAlreadyOpen      = invalidState("connection is already open")
	ErrFinalized        = invalidState("statement is finalized")
	ErrUnknownParameter = invalidState("unknown parameter")
	ErrUnknownColumn    = invalidState("unknown column")
	ErrInvalidVersion   = invalidState("user version must be greater than zero")
	ErrStaleIterator    = invalidState("iterator was invalidated by a reset of its statement")
	ErrExhausted        = invalidState("iterator has no current row")
	ErrUnexpectedRow    = invalidState("statement returned a row")
	ErrTxDone           = invalidState("transaction has already been committed or rolled back")
	ErrUnsupportedType  = invalidState("unsupported value type")
	ErrNoCodec          = invalidState("encryption is not compiled in, build with -tags sqlcipher")
	ErrEmptyStatement   = invalidState("query contains no statement")
)

// EngineError is a failure reported by the SQLite engine.
type EngineError struct {
	// Code is the result code returned by SQLite.
	Code ResultCode
	// Op is the operation that failed.
	Op string
	// SQL is the statement text involved, if any.
	SQL string
	// Msg is the diagnostic of the engine.
	Msg string
}

func (e *EngineError) Error() string {
	msg := fmt.Sprintf("failed to %s: %s: %s", e.Op, e.Code, e.Msg)
	if e.SQL != "" {
		msg += fmt.Sprintf(", SQL = %q", e.SQL)
	}
	return msg
}

// Unwrap returns the sentinel of the primary result code, or nil when there
// is none.
func (e *EngineError) Unwrap() error {
	switch e.Code.Primary() {
	case sqlitec.SQLITE_BUSY:
		return ErrBusy
	case sqlitec.SQLITE_LOCKED:
		return ErrLocked
	case sqlitec.SQLITE_CONSTRAINT:
		return ErrConstraint
	case sqlitec.SQLITE_READONLY:
		return ErrReadOnly
	case sqlitec.SQLITE_CORRUPT:
		return ErrCorrupt
	case sqlitec.SQLITE_NOTADB:
		return ErrNotADB
	case sqlitec.SQLITE_FULL:
		return ErrFull
	case sqlitec.SQLITE_MISUSE:
		return ErrMisuse
	case sqlitec.SQLITE_INTERRUPT:
		return ErrInterrupt
	}
	return nil
}

// engineError turns an error of the sqlitec layer into an *EngineError for
// op. Other errors are wrapped as they are.
func engineError(op string, sql string, err error) error {
	var sqlErr *sqlitec.Error
	if errors.As(err, &sqlErr) {
		return &EngineError{
			Code: sqlErr.Code,
			Op:   op,
			SQL:  sql,
			Msg:  sqlErr.Msg,
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
