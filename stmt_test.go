package nsqlitekit

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queryOne runs query with args and hands the cursor of its first row to fn.
func queryOne(t *testing.T, conn *Conn, query string, fn func(cur *Cursor), args ...any) {
	t.Helper()
	rs, err := conn.Query(query, args...)
	require.NoError(t, err)
	defer rs.Close()

	it, err := rs.Begin()
	require.NoError(t, err)
	defer it.Close()
	require.False(t, it.Done(), "query returned no rows")

	fn(it.Cursor())
}

func TestStmtBindRoundTrip(t *testing.T) {
	conn := newMemoryConn(t)

	t.Run("Int32", func(t *testing.T) {
		queryOne(t, conn, "SELECT ?", func(cur *Cursor) {
			v, err := Get[int32](cur, 0)
			require.NoError(t, err)
			assert.Equal(t, int32(100), v)
		}, int32(100))
	})

	t.Run("Int64", func(t *testing.T) {
		queryOne(t, conn, "SELECT ?", func(cur *Cursor) {
			v, err := Get[int64](cur, 0)
			require.NoError(t, err)
			assert.Equal(t, int64(math.MaxInt64), v)
		}, int64(math.MaxInt64))
	})

	t.Run("Int", func(t *testing.T) {
		queryOne(t, conn, "SELECT ?", func(cur *Cursor) {
			v, err := Get[int](cur, 0)
			require.NoError(t, err)
			assert.Equal(t, -42, v)
		}, -42)
	})

	t.Run("Float64", func(t *testing.T) {
		queryOne(t, conn, "SELECT ?", func(cur *Cursor) {
			v, err := Get[float64](cur, 0)
			require.NoError(t, err)
			assert.Equal(t, 55.55, v)

			text, err := Get[string](cur, 0)
			require.NoError(t, err)
			assert.Equal(t, "55.55", text)
		}, 55.55)
	})

	t.Run("Text", func(t *testing.T) {
		value := uuid.NewString()
		queryOne(t, conn, "SELECT ?", func(cur *Cursor) {
			v, err := Get[string](cur, 0)
			require.NoError(t, err)
			assert.Equal(t, value, v)

			raw, err := cur.RawText(0)
			require.NoError(t, err)
			assert.Equal(t, value, string(raw))
		}, value)
	})

	t.Run("Bool", func(t *testing.T) {
		queryOne(t, conn, "SELECT ?, ?", func(cur *Cursor) {
			yes, err := cur.Int(0)
			require.NoError(t, err)
			no, err := cur.Int(1)
			require.NoError(t, err)
			assert.Equal(t, 1, yes)
			assert.Equal(t, 0, no)
		}, true, false)
	})

	t.Run("Value", func(t *testing.T) {
		queryOne(t, conn, "SELECT ?, ?", func(cur *Cursor) {
			v, err := cur.Int32(0)
			require.NoError(t, err)
			assert.Equal(t, int32(7), v)

			isNull, err := cur.IsNull(1)
			require.NoError(t, err)
			assert.True(t, isNull)
		}, Int32(7), Null())
	})

	t.Run("Coercion", func(t *testing.T) {
		queryOne(t, conn, "SELECT ?", func(cur *Cursor) {
			class, err := cur.Type(0)
			require.NoError(t, err)
			assert.Equal(t, StorageText, class)

			v, err := cur.Int64(0)
			require.NoError(t, err)
			assert.Equal(t, int64(123), v)
		}, "123")
	})
}

func TestStmtBlob(t *testing.T) {
	conn := newMemoryConn(t)
	blob := []byte{'a', 'b', 'c', 0, 'd', 'e', 'f', 'g', 0}

	queryOne(t, conn, "SELECT ?", func(cur *Cursor) {
		raw, err := cur.RawBlob(0)
		require.NoError(t, err)
		assert.Len(t, raw, 9)
		assert.Equal(t, blob, []byte(raw))

		owned, err := Get[[]byte](cur, 0)
		require.NoError(t, err)
		assert.Equal(t, blob, owned)

		view, err := Get[RawBytes](cur, 0)
		require.NoError(t, err)
		assert.Equal(t, RawBytes(blob), view)

		class, err := cur.Type(0)
		require.NoError(t, err)
		assert.Equal(t, StorageBlob, class)
	}, blob)
}

func TestStmtNull(t *testing.T) {
	conn := newMemoryConn(t)

	queryOne(t, conn, "SELECT ?, ?, ?, ?, ?", func(cur *Cursor) {
		tests := []struct {
			index int
			want  bool
		}{
			{0, true},
			{1, false},
			{2, false},
			{3, false},
			{4, true},
		}
		for _, tt := range tests {
			isNull, err := cur.IsNull(tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.want, isNull, "column %d", tt.index)
		}

		empty, err := cur.Blob(1)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		null, err := cur.Blob(4)
		require.NoError(t, err)
		assert.Nil(t, null)
	}, nil, []byte{}, "", 0, []byte(nil))
}

func TestStmtNamedParameters(t *testing.T) {
	conn := newMemoryConn(t)

	t.Run("Prefixes", func(t *testing.T) {
		stmt, err := conn.Prepare("SELECT :a, @b, $c, ?7")
		require.NoError(t, err)
		defer stmt.Finalize()

		assert.Equal(t, 7, stmt.ParameterCount())
		require.NoError(t, stmt.BindNamed(":a", 1))
		require.NoError(t, stmt.BindNamed("b", 2))
		require.NoError(t, stmt.BindNamed("$c", 3))
		require.NoError(t, stmt.BindNamed("?7", 4))

		rs, err := stmt.Query()
		require.NoError(t, err)
		defer rs.Close()

		var got []int64
		for cur, err := range rs.All() {
			require.NoError(t, err)
			for i := range cur.ColumnCount() {
				v, err := cur.Int64(i)
				require.NoError(t, err)
				got = append(got, v)
			}
		}
		assert.Equal(t, []int64{1, 2, 3, 4}, got)
	})

	t.Run("Unknown", func(t *testing.T) {
		stmt, err := conn.Prepare("SELECT :a")
		require.NoError(t, err)
		defer stmt.Finalize()

		_, err = stmt.ParameterIndex("missing")
		assert.ErrorIs(t, err, ErrUnknownParameter)
		assert.ErrorIs(t, err, ErrInvalidState)

		err = stmt.BindNamed(":b", 1)
		assert.ErrorIs(t, err, ErrUnknownParameter)
	})
}

func TestStmtBindErrors(t *testing.T) {
	conn := newMemoryConn(t)
	stmt, err := conn.Prepare("SELECT ?")
	require.NoError(t, err)
	defer stmt.Finalize()

	t.Run("UnsupportedType", func(t *testing.T) {
		err := stmt.Bind(1, struct{}{})
		assert.ErrorIs(t, err, ErrUnsupportedType)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		err := stmt.Bind(2, 1)
		var engineErr *EngineError
		require.True(t, errors.As(err, &engineErr))
		assert.Contains(t, engineErr.Op, "parameter 2")
	})

	t.Run("BindValuesStopsAtFirstError", func(t *testing.T) {
		err := stmt.BindValues(1, 2)
		var engineErr *EngineError
		assert.True(t, errors.As(err, &engineErr))
	})
}

func TestStmtExec(t *testing.T) {
	t.Run("StickyBindings", func(t *testing.T) {
		conn := newMemoryConn(t)
		require.NoError(t, conn.ExecSQL("CREATE TABLE t (id INTEGER, val TEXT)"))

		stmt, err := conn.Prepare("INSERT INTO t (id, val) VALUES (?, ?)")
		require.NoError(t, err)
		defer stmt.Finalize()

		require.NoError(t, stmt.Bind(1, 1))
		require.NoError(t, stmt.Bind(2, "kept"))
		require.NoError(t, stmt.Exec())

		require.NoError(t, stmt.Bind(1, 2))
		require.NoError(t, stmt.Exec())

		require.NoError(t, stmt.Exec())

		rs, err := conn.Query("SELECT id, val FROM t ORDER BY rowid")
		require.NoError(t, err)
		defer rs.Close()

		var ids []int64
		for cur, err := range rs.All() {
			require.NoError(t, err)
			id, err := cur.Int64(0)
			require.NoError(t, err)
			val, err := GetByName[string](cur, "val")
			require.NoError(t, err)
			assert.Equal(t, "kept", val)
			ids = append(ids, id)
		}
		assert.Equal(t, []int64{1, 2, 2}, ids)
	})

	t.Run("ClearBindings", func(t *testing.T) {
		conn := newMemoryConn(t)
		stmt, err := conn.Prepare("SELECT ?")
		require.NoError(t, err)
		defer stmt.Finalize()

		require.NoError(t, stmt.Bind(1, "x"))
		require.NoError(t, stmt.ClearBindings())

		rs, err := stmt.Query()
		require.NoError(t, err)
		defer rs.Close()
		it, err := rs.Begin()
		require.NoError(t, err)
		defer it.Close()
		isNull, err := it.Cursor().IsNull(0)
		require.NoError(t, err)
		assert.True(t, isNull)
	})

	t.Run("ExecAllowsRows", func(t *testing.T) {
		conn := newMemoryConn(t)
		stmt, err := conn.Prepare("SELECT 1")
		require.NoError(t, err)
		defer stmt.Finalize()

		assert.NoError(t, stmt.Exec())
		assert.NoError(t, stmt.Exec())
	})

	t.Run("ExecAfterFailureRecovers", func(t *testing.T) {
		conn := newMemoryConn(t)
		require.NoError(t, conn.ExecSQL("CREATE TABLE t (id INTEGER PRIMARY KEY)"))
		stmt, err := conn.Prepare("INSERT INTO t VALUES (?)")
		require.NoError(t, err)
		defer stmt.Finalize()

		require.NoError(t, stmt.ExecWithBindings(1))
		assert.ErrorIs(t, stmt.ExecWithBindings(1), ErrConstraint)
		assert.NoError(t, stmt.ExecWithBindings(2))
		assert.Equal(t, int64(2), countRows(t, conn, "t"))
	})

	t.Run("Metadata", func(t *testing.T) {
		conn := newMemoryConn(t)
		stmt, err := conn.Prepare("SELECT 1 AS one, 2 AS two")
		require.NoError(t, err)
		defer stmt.Finalize()

		assert.Equal(t, "SELECT 1 AS one, 2 AS two", stmt.SQL())
		assert.Equal(t, 2, stmt.ColumnCount())
		assert.True(t, stmt.ReadOnly())
		assert.Equal(t, 0, stmt.ParameterCount())
	})

	t.Run("Finalize", func(t *testing.T) {
		conn := newMemoryConn(t)
		stmt, err := conn.Prepare("SELECT 1")
		require.NoError(t, err)

		stmt.Finalize()
		stmt.Finalize()

		assert.ErrorIs(t, stmt.Exec(), ErrFinalized)
		assert.ErrorIs(t, stmt.Bind(1, 1), ErrFinalized)
		_, err = stmt.Query()
		assert.ErrorIs(t, err, ErrFinalized)
		assert.ErrorIs(t, stmt.Reset(), ErrInvalidState)
		assert.Equal(t, "", stmt.SQL())
	})
}
