package nsqlitekit

import (
	"iter"
	"runtime"

	"github.com/nsqlite/nsqlitekit/internal/sqlitec"
)

// ResultSet is a forward-only, single-pass view over the rows of a
// statement.
//
// All iterators of a result set share the statement's single cursor:
// Begin resets the statement, so every iterator obtained earlier from the
// same statement becomes stale and reports ErrStaleIterator. So does a
// Reset, Exec or bind on the statement itself.
type ResultSet struct {
	handle *stmtHandle
}

func newResultSet(handle *stmtHandle) *ResultSet {
	rs := &ResultSet{handle: handle}
	runtime.SetFinalizer(rs, (*ResultSet).Close)
	return rs
}

func (rs *ResultSet) get() (*sqlitec.Stmt, error) {
	if rs.handle == nil {
		return nil, ErrFinalized
	}
	return rs.handle.get()
}

// Begin rewinds the statement and steps to its first row. The returned
// iterator is either positioned on a row or already done.
func (rs *ResultSet) Begin() (*Iterator, error) {
	raw, err := rs.get()
	if err != nil {
		return nil, err
	}

	rs.handle.rewind(raw)
	it := &Iterator{
		handle: rs.handle.acquire(),
		gen:    rs.handle.gen.Load(),
	}
	// A collected iterator only gives its reference back. Resetting from the
	// finalizer goroutine could race with the statement's owner.
	runtime.SetFinalizer(it, (*Iterator).release)

	hasRow, err := rs.handle.step(raw)
	if err != nil {
		it.finish()
		return nil, err
	}
	if !hasRow {
		it.finish()
		return it, nil
	}
	it.state = StateRow
	return it, nil
}

// End returns the end sentinel. Every done iterator is Equal to it.
func (rs *ResultSet) End() *Iterator {
	return &Iterator{}
}

// All returns an iterator over the rows, for use with range:
//
//	for cur, err := range rs.All() {
//		if err != nil {
//			return err
//		}
//		...
//	}
//
// Each cursor is only valid during its loop iteration.
func (rs *ResultSet) All() iter.Seq2[*Cursor, error] {
	return func(yield func(*Cursor, error) bool) {
		it, err := rs.Begin()
		if err != nil {
			yield(nil, err)
			return
		}
		defer it.Close()

		for !it.Done() {
			if !yield(it.Cursor(), nil) {
				return
			}
			if err := it.Next(); err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// ColumnNames returns the result column names.
func (rs *ResultSet) ColumnNames() ([]string, error) {
	raw, err := rs.get()
	if err != nil {
		return nil, err
	}
	names := make([]string, raw.ColumnCount())
	for i := range names {
		names[i] = raw.ColumnName(i)
	}
	return names, nil
}

// Close releases the result set. It does not affect the statement it came
// from, but a result set returned by Conn.Query owns its statement.
func (rs *ResultSet) Close() {
	if rs.handle == nil {
		return
	}
	handle := rs.handle
	rs.handle = nil
	runtime.SetFinalizer(rs, nil)
	handle.release()
}

// IteratorState is the position of an Iterator.
type IteratorState int

const (
	// StateNone is the state of the end sentinel.
	StateNone IteratorState = iota
	// StateRow means a row is available through Cursor.
	StateRow
	// StateDone means the rows are exhausted.
	StateDone
)

// Iterator walks a ResultSet one row at a time. It holds a reference to the
// statement until it is done or closed.
type Iterator struct {
	handle *stmtHandle
	gen    uint64
	row    uint64
	state  IteratorState
}

// finish moves the iterator to its terminal state and drops its reference.
func (it *Iterator) finish() {
	it.state = StateDone
	it.release()
}

func (it *Iterator) release() {
	if it.handle == nil {
		return
	}
	handle := it.handle
	it.handle = nil
	runtime.SetFinalizer(it, nil)
	handle.release()
}

// current returns the statement positioned on the iterator's row.
func (it *Iterator) current() (*sqlitec.Stmt, error) {
	if it.state != StateRow || it.handle == nil {
		return nil, ErrExhausted
	}
	raw, err := it.handle.get()
	if err != nil {
		return nil, err
	}
	if it.handle.gen.Load() != it.gen {
		return nil, ErrStaleIterator
	}
	return raw, nil
}

// Next steps to the following row. On the last row it moves the iterator
// to StateDone. Calling Next on a done iterator fails with ErrExhausted.
func (it *Iterator) Next() error {
	raw, err := it.current()
	if err != nil {
		return err
	}

	hasRow, err := it.handle.step(raw)
	if err != nil {
		it.finish()
		return err
	}
	if !hasRow {
		it.finish()
		return nil
	}
	it.row++
	return nil
}

// Cursor returns the view over the current row.
func (it *Iterator) Cursor() *Cursor {
	return &Cursor{it: it}
}

// State returns the iterator position.
func (it *Iterator) State() IteratorState {
	return it.state
}

// Row returns the 0-based index of the current row.
func (it *Iterator) Row() uint64 {
	return it.row
}

// Done reports whether the iterator has no current row.
func (it *Iterator) Done() bool {
	return it == nil || it.state != StateRow
}

// Equal reports whether both iterators are done (the end sentinel
// included), or both point at the same row of the same statement.
func (it *Iterator) Equal(other *Iterator) bool {
	if it.Done() || other.Done() {
		return it.Done() && other.Done()
	}
	return it.handle == other.handle &&
		it.gen == other.gen &&
		it.row == other.row
}

// Close drops the iterator's reference to the statement and moves it to
// StateDone. Closing an iterator that is still current on a row resets the
// statement, which releases the locks held by the unfinished query.
// Iterators that reached the end have already done so.
func (it *Iterator) Close() {
	if it.state == StateRow {
		if raw, err := it.current(); err == nil {
			it.handle.rewind(raw)
		}
		it.state = StateDone
	}
	it.release()
}
