package sqlitec

/*
#include <stdlib.h>
#include <sqlite3.h>

static int cust_sqlite3_bind_text(sqlite3_stmt *stmt, int idx, const char *val, int n) {
	return sqlite3_bind_text(stmt, idx, val, n, SQLITE_TRANSIENT);
}

static int cust_sqlite3_bind_blob(sqlite3_stmt *stmt, int idx, const void *val, int n) {
	return sqlite3_bind_blob(stmt, idx, val, n, SQLITE_TRANSIENT);
}
*/
import "C"
import (
	"time"
	"unsafe"
)

// Conn represents a low-level connection to a SQLite database.
//
// https://www.sqlite.org/c3ref/sqlite3.html
type Conn struct {
	cDB *C.sqlite3
}

// Stmt represents a prepared statement in SQLite.
//
// https://www.sqlite.org/c3ref/stmt.html
type Stmt struct {
	conn  *Conn
	cStmt *C.sqlite3_stmt
}

// LibVersion returns the version of the linked SQLite library.
//
// https://www.sqlite.org/c3ref/libversion.html
func LibVersion() string {
	return C.GoString(C.sqlite3_libversion())
}

// lastErrMsg returns the most recent diagnostic of the connection, falling
// back to the generic description of resCode.
func lastErrMsg(db *C.sqlite3, resCode C.int) string {
	if db != nil {
		if msg := C.GoString(C.sqlite3_errmsg(db)); msg != "" {
			return msg
		}
	}
	return C.GoString(C.sqlite3_errstr(resCode))
}

// Open opens a new SQLite database connection using the given path. The
// special path ":memory:" opens a private in-memory database.
//
// https://www.sqlite.org/c3ref/open.html
func Open(filePath string) (*Conn, error) {
	cFilePath := C.CString(filePath)
	defer C.free(unsafe.Pointer(cFilePath))

	var db *C.sqlite3
	resCode := C.sqlite3_open(cFilePath, &db)
	if resCode != SQLITE_OK {
		err := newError("open database", resCode, lastErrMsg(db, resCode))
		// A handle is returned even on failure unless memory ran out.
		_ = C.sqlite3_close_v2(db)
		return nil, err
	}

	return &Conn{cDB: db}, nil
}

// IsOpen reports whether the native handle is still alive.
func (conn *Conn) IsOpen() bool {
	return conn != nil && conn.cDB != nil
}

// Close finalizes every statement still prepared against the connection and
// then closes it. Stmt values that pointed at those statements must not be
// used afterwards.
//
// https://www.sqlite.org/c3ref/close.html
func (conn *Conn) Close() error {
	if conn.cDB == nil {
		return nil
	}

	for cStmt := C.sqlite3_next_stmt(conn.cDB, nil); cStmt != nil; cStmt = C.sqlite3_next_stmt(conn.cDB, nil) {
		_ = C.sqlite3_finalize(cStmt)
	}

	// The sqlite3_close_v2() interface is intended for use with host
	// languages that are garbage collected, and where the order in which
	// destructors are called is arbitrary.
	resCode := C.sqlite3_close_v2(conn.cDB)
	if resCode != SQLITE_OK {
		return newError("close database", resCode, lastErrMsg(conn.cDB, resCode))
	}
	conn.cDB = nil

	return nil
}

// SetBusyTimeout installs a busy handler that sleeps and retries until the
// given time has accumulated. A non-positive duration removes the handler.
//
// https://www.sqlite.org/c3ref/busy_timeout.html
func (conn *Conn) SetBusyTimeout(timeout time.Duration) error {
	resCode := C.sqlite3_busy_timeout(conn.cDB, C.int(timeout.Milliseconds()))
	if resCode != SQLITE_OK {
		return newError("set busy timeout", resCode, lastErrMsg(conn.cDB, resCode))
	}
	return nil
}

// Interrupt makes any statement running on the connection stop at its next
// opportunity with SQLITE_INTERRUPT. It is safe to call from any goroutine
// while the connection is open.
//
// https://www.sqlite.org/c3ref/interrupt.html
func (conn *Conn) Interrupt() {
	if conn == nil || conn.cDB == nil {
		return
	}
	C.sqlite3_interrupt(conn.cDB)
}

// Autocommit reports whether the connection is in autocommit mode, that is,
// outside of an explicit transaction.
//
// https://www.sqlite.org/c3ref/get_autocommit.html
func (conn *Conn) Autocommit() bool {
	return C.sqlite3_get_autocommit(conn.cDB) != 0
}

// LastInsertRowID returns the row ID of the most recent successful INSERT
// into the database from the current connection.
//
// https://www.sqlite.org/c3ref/last_insert_rowid.html
func (conn *Conn) LastInsertRowID() int64 {
	return int64(C.sqlite3_last_insert_rowid(conn.cDB))
}

// RowsAffected returns the number of rows modified, inserted, or deleted by
// the most recent successful INSERT, UPDATE, or DELETE statement from the
// current connection.
//
// https://www.sqlite.org/c3ref/changes.html
func (conn *Conn) RowsAffected() int64 {
	return int64(C.sqlite3_changes(conn.cDB))
}

// Exec executes the given SQL on the SQLite database connection from start
// to finish, without returning any data. The text may hold several
// statements separated by semicolons.
//
// https://www.sqlite.org/c3ref/exec.html
func (conn *Conn) Exec(query string) error {
	cQuery := C.CString(query)
	defer C.free(unsafe.Pointer(cQuery))

	var errMsg *C.char
	resCode := C.sqlite3_exec(conn.cDB, cQuery, nil, nil, &errMsg)
	if resCode != SQLITE_OK {
		msg := C.GoString(errMsg)
		C.sqlite3_free(unsafe.Pointer(errMsg))
		if msg == "" {
			msg = lastErrMsg(conn.cDB, resCode)
		}
		return newError("execute query", resCode, msg)
	}

	return nil
}

// Prepare compiles the given SQL query into a prepared statement. Only the
// first statement of the text is compiled.
//
// https://www.sqlite.org/c3ref/prepare.html
func (conn *Conn) Prepare(query string) (*Stmt, error) {
	cQuery := C.CString(query)
	defer C.free(unsafe.Pointer(cQuery))

	var cStmt *C.sqlite3_stmt
	resCode := C.sqlite3_prepare_v2(conn.cDB, cQuery, C.int(-1), &cStmt, nil)
	if resCode != SQLITE_OK {
		return nil, newError("prepare statement", resCode, lastErrMsg(conn.cDB, resCode))
	}
	if cStmt == nil {
		return nil, ErrEmptyStatement
	}
	return &Stmt{conn: conn, cStmt: cStmt}, nil
}

// stmtError builds an error for a failed call on the statement.
func (stmt *Stmt) stmtError(op string, resCode C.int) error {
	var db *C.sqlite3
	if stmt.conn != nil {
		db = stmt.conn.cDB
	}
	return newError(op, resCode, lastErrMsg(db, resCode))
}

// IsFinalized reports whether Finalize has been called.
func (stmt *Stmt) IsFinalized() bool {
	return stmt.cStmt == nil
}

// SQL returns the text used to prepare the statement.
//
// https://www.sqlite.org/c3ref/expanded_sql.html
func (stmt *Stmt) SQL() string {
	return C.GoString(C.sqlite3_sql(stmt.cStmt))
}

// ReadOnly returns true if the statement makes no direct changes to the
// database file.
//
// https://www.sqlite.org/c3ref/stmt_readonly.html
func (stmt *Stmt) ReadOnly() bool {
	return C.sqlite3_stmt_readonly(stmt.cStmt) != 0
}

// BindParameterCount returns the index of the largest parameter.
//
// https://www.sqlite.org/c3ref/bind_parameter_count.html
func (stmt *Stmt) BindParameterCount() int {
	return int(C.sqlite3_bind_parameter_count(stmt.cStmt))
}

// BindParameterIndex returns the index of the parameter with the given name,
// prefix included (":name", "@name", "$name", "?NNN"), or 0 when there is no
// such parameter.
//
// https://www.sqlite.org/c3ref/bind_parameter_index.html
func (stmt *Stmt) BindParameterIndex(name string) int {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	return int(C.sqlite3_bind_parameter_index(stmt.cStmt, cName))
}

// BindInt binds an int32 parameter at the given index.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindInt(index int, value int32) error {
	resCode := C.sqlite3_bind_int(stmt.cStmt, C.int(index), C.int(value))
	if resCode != SQLITE_OK {
		return stmt.stmtError("bind int", resCode)
	}
	return nil
}

// BindInt64 binds an int64 parameter at the given index.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindInt64(index int, value int64) error {
	resCode := C.sqlite3_bind_int64(stmt.cStmt, C.int(index), C.sqlite3_int64(value))
	if resCode != SQLITE_OK {
		return stmt.stmtError("bind int64", resCode)
	}
	return nil
}

// BindFloat64 binds a float64 parameter at the given index.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindFloat64(index int, value float64) error {
	resCode := C.sqlite3_bind_double(stmt.cStmt, C.int(index), C.double(value))
	if resCode != SQLITE_OK {
		return stmt.stmtError("bind float64", resCode)
	}
	return nil
}

// BindText binds a string parameter at the given index. SQLite keeps its own
// copy of the bytes.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindText(index int, value string) error {
	cStr := C.CString(value)
	defer C.free(unsafe.Pointer(cStr))

	resCode := C.cust_sqlite3_bind_text(stmt.cStmt, C.int(index), cStr, C.int(len(value)))
	if resCode != SQLITE_OK {
		return stmt.stmtError("bind text", resCode)
	}
	return nil
}

// BindBlob binds a byte slice parameter at the given index. SQLite keeps its
// own copy of the bytes. A nil slice binds NULL and an empty one binds a
// zero-length blob.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindBlob(index int, data []byte) error {
	if data == nil {
		return stmt.BindNull(index)
	}

	var resCode C.int
	if len(data) == 0 {
		resCode = C.sqlite3_bind_zeroblob(stmt.cStmt, C.int(index), 0)
	} else {
		resCode = C.cust_sqlite3_bind_blob(stmt.cStmt, C.int(index), unsafe.Pointer(&data[0]), C.int(len(data)))
	}
	if resCode != SQLITE_OK {
		return stmt.stmtError("bind blob", resCode)
	}
	return nil
}

// BindNull binds a NULL value at the given index.
//
// https://www.sqlite.org/c3ref/bind_blob.html
func (stmt *Stmt) BindNull(index int) error {
	resCode := C.sqlite3_bind_null(stmt.cStmt, C.int(index))
	if resCode != SQLITE_OK {
		return stmt.stmtError("bind null", resCode)
	}
	return nil
}

// ClearBindings sets every parameter back to NULL.
//
// https://www.sqlite.org/c3ref/clear_bindings.html
func (stmt *Stmt) ClearBindings() error {
	resCode := C.sqlite3_clear_bindings(stmt.cStmt)
	if resCode != SQLITE_OK {
		return stmt.stmtError("clear bindings", resCode)
	}
	return nil
}

// Step advances the statement to the next row of data, returning true if a new row
// is available, or false if there are no more rows. If an error occurs, it is returned.
//
// https://www.sqlite.org/c3ref/step.html
func (stmt *Stmt) Step() (bool, error) {
	resCode := C.sqlite3_step(stmt.cStmt)

	if resCode == SQLITE_DONE {
		return false, nil
	}

	if resCode == SQLITE_ROW {
		return true, nil
	}

	return false, stmt.stmtError("step statement", resCode)
}

// Reset rewinds the statement so it can be stepped again. Bindings are kept.
// When the most recent step failed, Reset reports that same failure.
//
// https://www.sqlite.org/c3ref/reset.html
func (stmt *Stmt) Reset() error {
	resCode := C.sqlite3_reset(stmt.cStmt)
	if resCode != SQLITE_OK {
		return stmt.stmtError("reset statement", resCode)
	}
	return nil
}

// ColumnCount returns the number of columns in the result set.
//
// https://www.sqlite.org/c3ref/column_count.html
func (stmt *Stmt) ColumnCount() int {
	return int(C.sqlite3_column_count(stmt.cStmt))
}

// ColumnName returns the name of the column at the given index.
//
// https://www.sqlite.org/c3ref/column_name.html
func (stmt *Stmt) ColumnName(colIndex int) string {
	return C.GoString(C.sqlite3_column_name(stmt.cStmt, C.int(colIndex)))
}

// ColumnDeclType returns the declared type of the column at the given index,
// or an empty string for expressions.
//
// https://www.sqlite.org/c3ref/column_decltype.html
func (stmt *Stmt) ColumnDeclType(colIndex int) string {
	return C.GoString(C.sqlite3_column_decltype(stmt.cStmt, C.int(colIndex)))
}

// ColumnType returns the storage class of the value at the given index in
// the current row.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnType(colIndex int) StorageClass {
	return StorageClass(C.sqlite3_column_type(stmt.cStmt, C.int(colIndex)))
}

// ColumnBytes returns the size in bytes of the text or blob value at the
// given index.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnBytes(colIndex int) int {
	return int(C.sqlite3_column_bytes(stmt.cStmt, C.int(colIndex)))
}

// ColumnInt returns the column value at the given index as int32.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnInt(colIndex int) int32 {
	return int32(C.sqlite3_column_int(stmt.cStmt, C.int(colIndex)))
}

// ColumnInt64 returns the column value at the given index as int64.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnInt64(colIndex int) int64 {
	return int64(C.sqlite3_column_int64(stmt.cStmt, C.int(colIndex)))
}

// ColumnFloat64 returns the column value at the given index as float64.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnFloat64(colIndex int) float64 {
	return float64(C.sqlite3_column_double(stmt.cStmt, C.int(colIndex)))
}

// ColumnText returns the column value at the given index as a string.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnText(colIndex int) string {
	text := (*C.char)(unsafe.Pointer(C.sqlite3_column_text(stmt.cStmt, C.int(colIndex))))
	if text == nil {
		return ""
	}
	length := C.sqlite3_column_bytes(stmt.cStmt, C.int(colIndex))
	return C.GoStringN(text, length)
}

// ColumnBlob returns a copy of the column value at the given index. It is
// nil for NULL and an empty non-nil slice for a zero-length value.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnBlob(colIndex int) []byte {
	if stmt.ColumnType(colIndex) == StorageNull {
		return nil
	}
	dataPtr := C.sqlite3_column_blob(stmt.cStmt, C.int(colIndex))
	size := C.sqlite3_column_bytes(stmt.cStmt, C.int(colIndex))
	if dataPtr == nil || size <= 0 {
		return []byte{}
	}
	return C.GoBytes(dataPtr, size)
}

// ColumnRawText returns the text of the column at the given index without
// copying it. The slice aliases SQLite memory and is only valid until the
// statement is stepped, reset or finalized.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnRawText(colIndex int) []byte {
	text := C.sqlite3_column_text(stmt.cStmt, C.int(colIndex))
	if text == nil {
		return nil
	}
	length := C.sqlite3_column_bytes(stmt.cStmt, C.int(colIndex))
	return unsafe.Slice((*byte)(unsafe.Pointer(text)), int(length))
}

// ColumnRawBlob returns the blob of the column at the given index without
// copying it. A nil slice means either NULL or a zero-length blob, use
// ColumnType to tell them apart. The slice is only valid until the statement
// is stepped, reset or finalized.
//
// https://www.sqlite.org/c3ref/column_blob.html
func (stmt *Stmt) ColumnRawBlob(colIndex int) []byte {
	dataPtr := C.sqlite3_column_blob(stmt.cStmt, C.int(colIndex))
	if dataPtr == nil {
		return nil
	}
	size := C.sqlite3_column_bytes(stmt.cStmt, C.int(colIndex))
	return unsafe.Slice((*byte)(dataPtr), int(size))
}

// Finalize frees the resources associated with this statement. The statement
// is unusable afterwards even when an error is returned, since SQLite
// releases it regardless and only echoes the error of the last step.
//
// https://www.sqlite.org/c3ref/finalize.html
func (stmt *Stmt) Finalize() error {
	if stmt.cStmt == nil {
		return nil
	}

	resCode := C.sqlite3_finalize(stmt.cStmt)
	stmt.cStmt = nil
	if resCode != SQLITE_OK {
		return stmt.stmtError("finalize statement", resCode)
	}

	return nil
}
