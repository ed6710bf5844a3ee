package nsqlitekit

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/nsqlite/nsqlitekit/internal/sqlitec"
)

// Stmt is a prepared statement. Bound values stay in place across
// executions until they are replaced or ClearBindings is called.
//
// A Stmt is not safe for concurrent use.
type Stmt struct {
	handle *stmtHandle
}

func newStmt(handle *stmtHandle) *Stmt {
	stmt := &Stmt{handle: handle}
	runtime.SetFinalizer(stmt, (*Stmt).Finalize)
	return stmt
}

func (stmt *Stmt) get() (*sqlitec.Stmt, error) {
	if stmt.handle == nil {
		return nil, ErrFinalized
	}
	return stmt.handle.get()
}

// SQL returns the text the statement was prepared from.
func (stmt *Stmt) SQL() string {
	if stmt.handle == nil {
		return ""
	}
	return stmt.handle.query
}

// ReadOnly reports whether the statement leaves the database unchanged.
func (stmt *Stmt) ReadOnly() bool {
	raw, err := stmt.get()
	if err != nil {
		return false
	}
	return raw.ReadOnly()
}

// ColumnCount returns the number of columns of the result, 0 for
// statements that return no data.
func (stmt *Stmt) ColumnCount() int {
	raw, err := stmt.get()
	if err != nil {
		return 0
	}
	return raw.ColumnCount()
}

// ParameterCount returns the largest parameter index of the statement.
func (stmt *Stmt) ParameterCount() int {
	raw, err := stmt.get()
	if err != nil {
		return 0
	}
	return raw.BindParameterCount()
}

// ParameterIndex returns the 1-based index of a named parameter. The name
// may carry its prefix (":id", "@id", "$id", "?3") or not ("id"), in which
// case ":", "@" and "$" are tried in that order.
func (stmt *Stmt) ParameterIndex(name string) (int, error) {
	raw, err := stmt.get()
	if err != nil {
		return 0, err
	}

	if index := raw.BindParameterIndex(name); index > 0 {
		return index, nil
	}
	if name != "" && !strings.ContainsAny(name[:1], ":@$?") {
		for _, prefix := range []string{":", "@", "$"} {
			if index := raw.BindParameterIndex(prefix + name); index > 0 {
				return index, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
}

// Bind binds value to the 1-based parameter index. See ValueOf for the
// accepted types. Binding a statement that has been stepped resets it
// first.
func (stmt *Stmt) Bind(index int, value any) error {
	v, err := ValueOf(value)
	if err != nil {
		return err
	}
	return stmt.bindValue(index, v)
}

// BindNamed binds value to the parameter called name, see ParameterIndex.
func (stmt *Stmt) BindNamed(name string, value any) error {
	index, err := stmt.ParameterIndex(name)
	if err != nil {
		return err
	}
	return stmt.Bind(index, value)
}

// BindNull binds NULL to the 1-based parameter index.
func (stmt *Stmt) BindNull(index int) error {
	return stmt.bindValue(index, Null())
}

// BindValues binds values to parameters 1..len(values), stopping at the
// first failure.
func (stmt *Stmt) BindValues(values ...any) error {
	for i, value := range values {
		if err := stmt.Bind(i+1, value); err != nil {
			return err
		}
	}
	return nil
}

func (stmt *Stmt) bindValue(index int, value Value) error {
	raw, err := stmt.get()
	if err != nil {
		return err
	}
	stmt.handle.prepareBind(raw)

	switch value.kind {
	case KindInt32:
		err = raw.BindInt(index, int32(value.i))
	case KindInt64:
		err = raw.BindInt64(index, value.i)
	case KindFloat64:
		err = raw.BindFloat64(index, value.f)
	case KindText:
		err = raw.BindText(index, value.s)
	case KindBlob:
		err = raw.BindBlob(index, value.b)
	default:
		err = raw.BindNull(index)
	}
	if err != nil {
		return engineError(fmt.Sprintf("bind %s to parameter %d", value.kind, index), stmt.handle.query, err)
	}
	return nil
}

// ClearBindings sets every parameter back to NULL.
func (stmt *Stmt) ClearBindings() error {
	raw, err := stmt.get()
	if err != nil {
		return err
	}
	stmt.handle.prepareBind(raw)

	if err := raw.ClearBindings(); err != nil {
		return engineError("clear bindings", stmt.handle.query, err)
	}
	return nil
}

// Reset rewinds the statement without touching its bindings. Iterators
// obtained before become stale.
func (stmt *Stmt) Reset() error {
	raw, err := stmt.get()
	if err != nil {
		return err
	}
	stmt.handle.rewind(raw)
	return nil
}

// step rewinds the statement if needed and steps it once.
func (stmt *Stmt) step() (bool, error) {
	raw, err := stmt.get()
	if err != nil {
		return false, err
	}
	stmt.handle.rewind(raw)
	return stmt.handle.step(raw)
}

// Exec resets the statement and runs it by one step. A row produced by the
// step is not an error; it is simply not surfaced.
func (stmt *Stmt) Exec() error {
	_, err := stmt.step()
	return err
}

// ExecWithBindings clears the bindings, binds values positionally and
// executes the statement.
func (stmt *Stmt) ExecWithBindings(values ...any) error {
	if err := stmt.ClearBindings(); err != nil {
		return err
	}
	if err := stmt.BindValues(values...); err != nil {
		return err
	}
	return stmt.Exec()
}

// Query returns a result set over the statement. Nothing runs until the
// result set is iterated. The result set keeps the underlying statement
// alive even after Finalize.
func (stmt *Stmt) Query() (*ResultSet, error) {
	if _, err := stmt.get(); err != nil {
		return nil, err
	}
	return newResultSet(stmt.handle.acquire()), nil
}

// QueryWithBindings clears the bindings, binds values positionally and
// returns the result set.
func (stmt *Stmt) QueryWithBindings(values ...any) (*ResultSet, error) {
	if err := stmt.ClearBindings(); err != nil {
		return nil, err
	}
	if err := stmt.BindValues(values...); err != nil {
		return nil, err
	}
	return stmt.Query()
}

// Finalize releases the statement. Any later call on it fails with
// ErrFinalized; result sets obtained from it keep working until closed.
// Calling Finalize again does nothing.
func (stmt *Stmt) Finalize() {
	if stmt.handle == nil {
		return
	}
	handle := stmt.handle
	stmt.handle = nil
	runtime.SetFinalizer(stmt, nil)
	handle.release()
}
