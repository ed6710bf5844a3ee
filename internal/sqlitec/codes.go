package sqlitec

/*
#include <sqlite3.h>
*/
import "C"
import "fmt"

// Primary result codes.
//
// https://www.sqlite.org/rescode.html
const (
	SQLITE_OK         = C.SQLITE_OK
	SQLITE_ERROR      = C.SQLITE_ERROR
	SQLITE_INTERNAL   = C.SQLITE_INTERNAL
	SQLITE_PERM       = C.SQLITE_PERM
	SQLITE_ABORT      = C.SQLITE_ABORT
	SQLITE_BUSY       = C.SQLITE_BUSY
	SQLITE_LOCKED     = C.SQLITE_LOCKED
	SQLITE_NOMEM      = C.SQLITE_NOMEM
	SQLITE_READONLY   = C.SQLITE_READONLY
	SQLITE_INTERRUPT  = C.SQLITE_INTERRUPT
	SQLITE_IOERR      = C.SQLITE_IOERR
	SQLITE_CORRUPT    = C.SQLITE_CORRUPT
	SQLITE_NOTFOUND   = C.SQLITE_NOTFOUND
	SQLITE_FULL       = C.SQLITE_FULL
	SQLITE_CANTOPEN   = C.SQLITE_CANTOPEN
	SQLITE_PROTOCOL   = C.SQLITE_PROTOCOL
	SQLITE_EMPTY      = C.SQLITE_EMPTY
	SQLITE_SCHEMA     = C.SQLITE_SCHEMA
	SQLITE_TOOBIG     = C.SQLITE_TOOBIG
	SQLITE_CONSTRAINT = C.SQLITE_CONSTRAINT
	SQLITE_MISMATCH   = C.SQLITE_MISMATCH
	SQLITE_MISUSE     = C.SQLITE_MISUSE
	SQLITE_NOLFS      = C.SQLITE_NOLFS
	SQLITE_AUTH       = C.SQLITE_AUTH
	SQLITE_FORMAT     = C.SQLITE_FORMAT
	SQLITE_RANGE      = C.SQLITE_RANGE
	SQLITE_NOTADB     = C.SQLITE_NOTADB
	SQLITE_NOTICE     = C.SQLITE_NOTICE
	SQLITE_WARNING    = C.SQLITE_WARNING
	SQLITE_ROW        = C.SQLITE_ROW
	SQLITE_DONE       = C.SQLITE_DONE
)

// ResultCode is a SQLite result code as returned by the C API.
type ResultCode int

var resCodeNames = map[ResultCode]string{
	SQLITE_OK:         "SQLITE_OK",
	SQLITE_ERROR:      "SQLITE_ERROR",
	SQLITE_INTERNAL:   "SQLITE_INTERNAL",
	SQLITE_PERM:       "SQLITE_PERM",
	SQLITE_ABORT:      "SQLITE_ABORT",
	SQLITE_BUSY:       "SQLITE_BUSY",
	SQLITE_LOCKED:     "SQLITE_LOCKED",
	SQLITE_NOMEM:      "SQLITE_NOMEM",
	SQLITE_READONLY:   "SQLITE_READONLY",
	SQLITE_INTERRUPT:  "SQLITE_INTERRUPT",
	SQLITE_IOERR:      "SQLITE_IOERR",
	SQLITE_CORRUPT:    "SQLITE_CORRUPT",
	SQLITE_NOTFOUND:   "SQLITE_NOTFOUND",
	SQLITE_FULL:       "SQLITE_FULL",
	SQLITE_CANTOPEN:   "SQLITE_CANTOPEN",
	SQLITE_PROTOCOL:   "SQLITE_PROTOCOL",
	SQLITE_EMPTY:      "SQLITE_EMPTY",
	SQLITE_SCHEMA:     "SQLITE_SCHEMA",
	SQLITE_TOOBIG:     "SQLITE_TOOBIG",
	SQLITE_CONSTRAINT: "SQLITE_CONSTRAINT",
	SQLITE_MISMATCH:   "SQLITE_MISMATCH",
	SQLITE_MISUSE:     "SQLITE_MISUSE",
	SQLITE_NOLFS:      "SQLITE_NOLFS",
	SQLITE_AUTH:       "SQLITE_AUTH",
	SQLITE_FORMAT:     "SQLITE_FORMAT",
	SQLITE_RANGE:      "SQLITE_RANGE",
	SQLITE_NOTADB:     "SQLITE_NOTADB",
	SQLITE_NOTICE:     "SQLITE_NOTICE",
	SQLITE_WARNING:    "SQLITE_WARNING",
	SQLITE_ROW:        "SQLITE_ROW",
	SQLITE_DONE:       "SQLITE_DONE",
}

// Primary strips the extended bits of the code.
//
// https://www.sqlite.org/rescode.html#primary_result_codes_versus_extended_result_codes
func (code ResultCode) Primary() ResultCode {
	return code & 0xff
}

// String returns the symbolic name of the code followed by its number, for
// example "SQLITE_BUSY (5)".
func (code ResultCode) String() string {
	name, ok := resCodeNames[code.Primary()]
	if !ok {
		name = "SQLITE_UNKNOWN"
	}
	return fmt.Sprintf("%s (%d)", name, int(code))
}

// StorageClass is the fundamental datatype of a value in SQLite.
//
// https://www.sqlite.org/c3ref/c_blob.html
type StorageClass int

const (
	StorageInteger StorageClass = C.SQLITE_INTEGER
	StorageFloat   StorageClass = C.SQLITE_FLOAT
	StorageText    StorageClass = C.SQLITE_TEXT
	StorageBlob    StorageClass = C.SQLITE_BLOB
	StorageNull    StorageClass = C.SQLITE_NULL
)

// String returns the SQL name of the storage class.
func (sc StorageClass) String() string {
	switch sc {
	case StorageInteger:
		return "INTEGER"
	case StorageFloat:
		return "REAL"
	case StorageText:
		return "TEXT"
	case StorageBlob:
		return "BLOB"
	case StorageNull:
		return "NULL"
	}
	return "UNKNOWN"
}
