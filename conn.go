package nsqlitekit

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/nsqlite/nsqlitekit/internal/log"
	"github.com/nsqlite/nsqlitekit/internal/sqlitec"
)

// Memory is the path of a private, non-persistent in-memory database.
const Memory = ":memory:"

// LibVersion returns the version of the linked SQLite library.
func LibVersion() string {
	return sqlitec.LibVersion()
}

// HasCodec reports whether the build supports encrypted databases.
func HasCodec() bool {
	return sqlitec.HasCodec
}

// Conn is a connection to one SQLite database. It is not safe for
// concurrent use; serialize access externally.
type Conn struct {
	path            string
	busyTimeout     time.Duration
	postOpenQueries []string
	listener        Listener
	logger          *log.Logger
	handle          *connHandle
}

// New creates a closed connection to path. Call Open or OpenWithPassphrase
// before using it.
func New(path string, options ...connOption) *Conn {
	logger := log.Discard()
	conn := &Conn{
		path:        path,
		busyTimeout: DefaultBusyTimeout,
		logger:      &logger,
	}

	for _, option := range options {
		option(conn)
	}

	runtime.SetFinalizer(conn, (*Conn).release)
	return conn
}

// Open opens (creating it if needed) the database at path. Use Memory for
// an in-memory database.
func Open(path string, options ...connOption) (*Conn, error) {
	conn := New(path, options...)
	if err := conn.Open(); err != nil {
		return nil, err
	}
	return conn, nil
}

// Open opens the connection. It fails with ErrAlreadyOpen if it is open.
func (conn *Conn) Open() error {
	return conn.open(nil)
}

// OpenWithPassphrase opens an encrypted database and applies the
// passphrase before anything else touches the file. It requires building
// with the sqlcipher tag, otherwise it fails with ErrNoCodec.
func (conn *Conn) OpenWithPassphrase(passphrase string) error {
	if !sqlitec.HasCodec {
		return ErrNoCodec
	}
	return conn.open(&passphrase)
}

func (conn *Conn) open(passphrase *string) error {
	if conn.handle != nil {
		return ErrAlreadyOpen
	}

	raw, err := sqlitec.Open(conn.path)
	if err != nil {
		return engineError("open database", "", err)
	}
	closeOnErr := func(err error) error {
		_ = raw.Close()
		return err
	}

	if passphrase != nil {
		if err := raw.Key(*passphrase); err != nil {
			return closeOnErr(engineError("set key", "", err))
		}
	}

	if err := raw.SetBusyTimeout(conn.busyTimeout); err != nil {
		return closeOnErr(engineError("set busy timeout", "", err))
	}

	for _, query := range conn.postOpenQueries {
		if err := raw.Exec(query); err != nil {
			return closeOnErr(fmt.Errorf(
				`failed to execute "%s" post-open query: %w`, query, engineError("execute query", query, err),
			))
		}
	}

	conn.handle = newConnHandle(raw, conn.path, conn.logger)
	conn.logger.DebugNs(nsConn, "opened", log.KV{
		"path":         conn.path,
		"busy_timeout": conn.busyTimeout.String(),
	})
	return nil
}

// Close finalizes every statement prepared through the connection and
// closes it. Closing a closed connection does nothing.
func (conn *Conn) Close() error {
	handle := conn.handle
	if handle == nil {
		return nil
	}
	conn.handle = nil

	err := handle.close()
	handle.release()
	if err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

// release drops the reference of a connection collected without Close.
func (conn *Conn) release() {
	if conn.handle != nil {
		conn.handle.release()
		conn.handle = nil
	}
}

// IsOpen reports whether the connection is open.
func (conn *Conn) IsOpen() bool {
	return conn.handle != nil && conn.handle.isOpen()
}

// Interrupt aborts the statement currently running on the connection, which
// then fails with ErrInterrupt. Unlike the rest of Conn it may be called from
// another goroutine, as long as Close is not running concurrently. It does
// nothing on a closed connection.
func (conn *Conn) Interrupt() {
	handle := conn.handle
	if handle == nil {
		return
	}
	handle.interrupt()
}

// Path returns the path the connection was created with.
func (conn *Conn) Path() string {
	return conn.path
}

func (conn *Conn) getHandle() (*connHandle, *sqlitec.Conn, error) {
	if conn.handle == nil {
		return nil, nil, ErrClosed
	}
	raw, err := conn.handle.get()
	if err != nil {
		return nil, nil, err
	}
	return conn.handle, raw, nil
}

// Prepare compiles the first statement of query.
func (conn *Conn) Prepare(query string) (*Stmt, error) {
	handle, raw, err := conn.getHandle()
	if err != nil {
		return nil, err
	}

	rawStmt, err := raw.Prepare(query)
	if errors.Is(err, sqlitec.ErrEmptyStatement) {
		return nil, fmt.Errorf("%w: %q", ErrEmptyStatement, query)
	}
	if err != nil {
		return nil, engineError("prepare statement", query, err)
	}

	conn.logger.DebugNs(nsStmt, "prepared", log.KV{"sql": query})
	return newStmt(newStmtHandle(handle, rawStmt, query)), nil
}

// ExecSQL runs query once with args bound positionally and fails with
// ErrUnexpectedRow if the statement produces a row.
func (conn *Conn) ExecSQL(query string, args ...any) error {
	stmt, err := conn.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Finalize()

	if err := stmt.BindValues(args...); err != nil {
		return err
	}

	hasRow, err := stmt.step()
	if err != nil {
		return err
	}
	if hasRow {
		return fmt.Errorf("%w: %q", ErrUnexpectedRow, query)
	}
	return nil
}

// Exec executes stmt. With args, the bindings are cleared and args are
// bound positionally first.
func (conn *Conn) Exec(stmt *Stmt, args ...any) error {
	if len(args) == 0 {
		return stmt.Exec()
	}
	return stmt.ExecWithBindings(args...)
}

// Query prepares query, binds args positionally and returns its result
// set. The statement lives as long as the result set; close it when done.
func (conn *Conn) Query(query string, args ...any) (*ResultSet, error) {
	stmt, err := conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	defer stmt.Finalize()

	return stmt.QueryWithBindings(args...)
}

// SetBusyTimeout changes how long the connection waits on a locked
// database. The value also applies when the connection is reopened.
func (conn *Conn) SetBusyTimeout(timeout time.Duration) error {
	_, raw, err := conn.getHandle()
	if err != nil {
		return err
	}
	if err := raw.SetBusyTimeout(timeout); err != nil {
		return engineError("set busy timeout", "", err)
	}
	conn.busyTimeout = timeout
	return nil
}

// InTransaction reports whether an explicit transaction is open.
func (conn *Conn) InTransaction() bool {
	_, raw, err := conn.getHandle()
	if err != nil {
		return false
	}
	return !raw.Autocommit()
}

// LastInsertRowID returns the rowid of the most recent successful INSERT,
// or 0 when the connection is closed.
func (conn *Conn) LastInsertRowID() int64 {
	_, raw, err := conn.getHandle()
	if err != nil {
		return 0
	}
	return raw.LastInsertRowID()
}

// Changes returns the number of rows changed by the most recent INSERT,
// UPDATE or DELETE, or 0 when the connection is closed.
func (conn *Conn) Changes() int64 {
	_, raw, err := conn.getHandle()
	if err != nil {
		return 0
	}
	return raw.RowsAffected()
}
