package nsqlitekit

import (
	"bytes"
	"database/sql"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryConn(t *testing.T, options ...connOption) *Conn {
	t.Helper()
	conn, err := Open(Memory, options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), uuid.NewString()+".db")
}

func countRows(t *testing.T, conn *Conn, table string) int64 {
	t.Helper()
	rs, err := conn.Query("SELECT count(*) FROM " + table)
	require.NoError(t, err)
	defer rs.Close()

	it, err := rs.Begin()
	require.NoError(t, err)
	defer it.Close()
	require.False(t, it.Done())

	count, err := it.Cursor().Int64(0)
	require.NoError(t, err)
	return count
}

func TestConnLifecycle(t *testing.T) {
	t.Run("OpenClose", func(t *testing.T) {
		conn, err := Open(Memory)
		require.NoError(t, err)
		assert.True(t, conn.IsOpen())
		assert.Equal(t, Memory, conn.Path())

		assert.NoError(t, conn.Close())
		assert.False(t, conn.IsOpen())
		assert.NoError(t, conn.Close())
		assert.False(t, conn.IsOpen())
	})

	t.Run("NewIsClosed", func(t *testing.T) {
		conn := New(Memory)
		assert.False(t, conn.IsOpen())
		assert.ErrorIs(t, conn.ExecSQL("SELECT 1"), ErrClosed)
		assert.NoError(t, conn.Close())
	})

	t.Run("Reopen", func(t *testing.T) {
		path := newDBPath(t)
		conn, err := Open(path)
		require.NoError(t, err)

		require.NoError(t, conn.ExecSQL("CREATE TABLE t (id INTEGER)"))
		require.NoError(t, conn.ExecSQL("INSERT INTO t VALUES (1)"))
		require.NoError(t, conn.Close())

		require.NoError(t, conn.Open())
		defer conn.Close()
		assert.Equal(t, int64(1), countRows(t, conn, "t"))
	})

	t.Run("AlreadyOpen", func(t *testing.T) {
		conn := newMemoryConn(t)
		err := conn.Open()
		assert.ErrorIs(t, err, ErrAlreadyOpen)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("OpenFailure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), uuid.NewString(), "db.sqlite")
		conn, err := Open(path)
		assert.Nil(t, conn)

		var engineErr *EngineError
		require.True(t, errors.As(err, &engineErr))
		assert.Equal(t, "open database", engineErr.Op)
		assert.False(t, errors.Is(err, ErrInvalidState))
	})

	t.Run("UseAfterClose", func(t *testing.T) {
		conn, err := Open(Memory)
		require.NoError(t, err)
		require.NoError(t, conn.Close())

		_, err = conn.Prepare("SELECT 1")
		assert.ErrorIs(t, err, ErrClosed)
		_, err = conn.Query("SELECT 1")
		assert.ErrorIs(t, err, ErrClosed)
		assert.ErrorIs(t, conn.SetBusyTimeout(time.Second), ErrClosed)
		_, err = conn.CreateTransaction(Deferred)
		assert.ErrorIs(t, err, ErrClosed)
		_, err = conn.UserVersion()
		assert.ErrorIs(t, err, ErrClosed)
		assert.False(t, conn.InTransaction())
		assert.Zero(t, conn.LastInsertRowID())
		assert.Zero(t, conn.Changes())
	})

	t.Run("CloseFinalizesStatements", func(t *testing.T) {
		conn, err := Open(Memory)
		require.NoError(t, err)
		require.NoError(t, conn.ExecSQL("CREATE TABLE t (id INTEGER)"))

		stmt, err := conn.Prepare("INSERT INTO t VALUES (?)")
		require.NoError(t, err)
		rs, err := conn.Query("SELECT id FROM t")
		require.NoError(t, err)

		require.NoError(t, conn.Close())

		assert.ErrorIs(t, stmt.ExecWithBindings(1), ErrClosed)
		_, err = rs.Begin()
		assert.ErrorIs(t, err, ErrClosed)

		stmt.Finalize()
		rs.Close()
		assert.ErrorIs(t, stmt.Exec(), ErrFinalized)
	})

	t.Run("PassphraseWithoutCodec", func(t *testing.T) {
		conn := New(Memory)
		err := conn.OpenWithPassphrase("secret")
		if err == nil {
			t.Cleanup(func() { _ = conn.Close() })
			t.Skip("built with codec support")
		}
		assert.ErrorIs(t, err, ErrNoCodec)
		assert.False(t, conn.IsOpen())
		assert.False(t, HasCodec())
	})

	t.Run("LibVersion", func(t *testing.T) {
		conn := newMemoryConn(t)
		rs, err := conn.Query("SELECT sqlite_version()")
		require.NoError(t, err)
		defer rs.Close()

		for cur, err := range rs.All() {
			require.NoError(t, err)
			version, err := cur.Text(0)
			require.NoError(t, err)
			assert.Equal(t, version, LibVersion())
		}
	})
}

func TestConnOptions(t *testing.T) {
	t.Run("PostOpenQueries", func(t *testing.T) {
		conn := newMemoryConn(t, WithPostOpenQueries(
			"CREATE TABLE seeded (id INTEGER)",
			"INSERT INTO seeded VALUES (1), (2)",
		))
		assert.Equal(t, int64(2), countRows(t, conn, "seeded"))
	})

	t.Run("PostOpenQueryFailure", func(t *testing.T) {
		conn, err := Open(Memory, WithPostOpenQueries("PRAGMA nope = ;"))
		assert.Nil(t, conn)
		assert.ErrorContains(t, err, "post-open query")
	})

	t.Run("Logger", func(t *testing.T) {
		buf := &bytes.Buffer{}
		conn, err := Open(Memory, WithLogger(buf, slog.LevelDebug))
		require.NoError(t, err)
		require.NoError(t, conn.ExecSQL("SELECT 1 WHERE 0"))
		require.NoError(t, conn.Close())

		logs := buf.String()
		assert.Contains(t, logs, `"ns":"conn"`)
		assert.Contains(t, logs, `"msg":"opened"`)
		assert.Contains(t, logs, `"msg":"prepared"`)
		assert.Contains(t, logs, `"msg":"closed"`)
	})

	t.Run("BusyTimeout", func(t *testing.T) {
		path := newDBPath(t)
		writer, err := Open(path)
		require.NoError(t, err)
		defer writer.Close()
		reader, err := Open(path, WithBusyTimeout(30*time.Millisecond))
		require.NoError(t, err)
		defer reader.Close()

		require.NoError(t, writer.ExecSQL("CREATE TABLE t (id INTEGER)"))
		require.NoError(t, writer.BeginTransaction(Exclusive))

		start := time.Now()
		err = reader.ExecSQL("INSERT INTO t VALUES (1)")
		assert.ErrorIs(t, err, ErrBusy)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

		var engineErr *EngineError
		require.True(t, errors.As(err, &engineErr))
		assert.Equal(t, "INSERT INTO t VALUES (1)", engineErr.SQL)

		require.NoError(t, writer.RollbackTransaction())
		assert.NoError(t, reader.ExecSQL("INSERT INTO t VALUES (1)"))
	})
}

func TestConnExec(t *testing.T) {
	t.Run("ExecSQLWithArgs", func(t *testing.T) {
		conn := newMemoryConn(t)
		require.NoError(t, conn.ExecSQL("CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT, score REAL)"))

		require.NoError(t, conn.ExecSQL("INSERT INTO t (name, score) VALUES (?, ?)", "ana", 9.5))
		assert.Equal(t, int64(1), conn.LastInsertRowID())
		assert.Equal(t, int64(1), conn.Changes())

		require.NoError(t, conn.ExecSQL("UPDATE t SET score = ? WHERE name = ?", 7, "ana"))
		assert.Equal(t, int64(1), conn.Changes())
	})

	t.Run("ExecSQLRejectsRows", func(t *testing.T) {
		conn := newMemoryConn(t)
		err := conn.ExecSQL("SELECT 1")
		assert.ErrorIs(t, err, ErrUnexpectedRow)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("ExecSQLEngineError", func(t *testing.T) {
		conn := newMemoryConn(t)
		err := conn.ExecSQL("INSERT INTO missing VALUES (1)")

		var engineErr *EngineError
		require.True(t, errors.As(err, &engineErr))
		assert.Equal(t, "prepare statement", engineErr.Op)
		assert.Contains(t, engineErr.Msg, "no such table")
		assert.False(t, errors.Is(err, ErrInvalidState))
	})

	t.Run("ExecStatement", func(t *testing.T) {
		conn := newMemoryConn(t)
		require.NoError(t, conn.ExecSQL("CREATE TABLE t (id INTEGER, name TEXT)"))

		stmt, err := conn.Prepare("INSERT INTO t VALUES (?, ?)")
		require.NoError(t, err)
		defer stmt.Finalize()

		require.NoError(t, conn.Exec(stmt, 1, "a"))
		require.NoError(t, conn.Exec(stmt, 2, "b"))
		require.NoError(t, conn.Exec(stmt))
		assert.Equal(t, int64(3), countRows(t, conn, "t"))
	})

	t.Run("EmptyStatement", func(t *testing.T) {
		conn := newMemoryConn(t)
		for _, query := range []string{"", "  ", "-- comment", "/* nothing */ "} {
			_, err := conn.Prepare(query)
			assert.ErrorIs(t, err, ErrEmptyStatement, query)
			assert.ErrorIs(t, err, ErrInvalidState, query)

			var engineErr *EngineError
			assert.False(t, errors.As(err, &engineErr), query)
			assert.False(t, errors.Is(err, ErrMisuse), query)

			assert.ErrorIs(t, conn.ExecSQL(query), ErrEmptyStatement, query)
		}
	})

	t.Run("Interrupt", func(t *testing.T) {
		conn := newMemoryConn(t)

		done, stopped := make(chan struct{}), make(chan struct{})
		go func() {
			defer close(stopped)
			ticker := time.NewTicker(5 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					conn.Interrupt()
				}
			}
		}()

		err := conn.ExecSQL(`
			CREATE TABLE n AS
			WITH RECURSIVE c(x) AS (SELECT 1 UNION ALL SELECT x + 1 FROM c WHERE x < 1000000000)
			SELECT count(*) AS total FROM c
		`)
		close(done)
		<-stopped

		assert.ErrorIs(t, err, ErrInterrupt)
		var engineErr *EngineError
		assert.True(t, errors.As(err, &engineErr))

		require.NoError(t, conn.ExecSQL("CREATE TABLE t (id INTEGER)"))
		assert.Equal(t, int64(0), countRows(t, conn, "t"))
	})

	t.Run("InterruptClosed", func(t *testing.T) {
		conn := newMemoryConn(t)
		require.NoError(t, conn.Close())
		assert.NotPanics(t, conn.Interrupt)
		assert.NotPanics(t, New(Memory).Interrupt)
	})

	t.Run("Constraint", func(t *testing.T) {
		conn := newMemoryConn(t)
		require.NoError(t, conn.ExecSQL("CREATE TABLE t (id INTEGER PRIMARY KEY)"))
		require.NoError(t, conn.ExecSQL("INSERT INTO t VALUES (1)"))

		err := conn.ExecSQL("INSERT INTO t VALUES (1)")
		assert.ErrorIs(t, err, ErrConstraint)
	})
}

// TestPersistedState reads what nsqlitekit wrote through mattn/go-sqlite3.
func TestPersistedState(t *testing.T) {
	path := newDBPath(t)
	blob := []byte{'a', 'b', 'c', 0, 'd', 'e', 'f', 'g', 0}

	conn, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, conn.ExecSQL("CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT, price REAL, data BLOB)"))
	err = conn.WithTransaction(Immediate, func(tx *Tx) error {
		stmt, err := tx.Conn().Prepare("INSERT INTO items (name, price, data) VALUES (?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Finalize()

		for _, name := range []string{"pen", "ink", "nib"} {
			if err := stmt.ExecWithBindings(name, 1.25, blob); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, conn.UpdateUserVersion(4, Deferred))
	require.NoError(t, conn.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM items").Scan(&count))
	assert.Equal(t, 3, count)

	var name string
	var price float64
	var data []byte
	require.NoError(t, db.QueryRow("SELECT name, price, data FROM items WHERE id = 2").Scan(&name, &price, &data))
	assert.Equal(t, "ink", name)
	assert.Equal(t, 1.25, price)
	assert.Equal(t, blob, data)

	var version int
	require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, 4, version)
}
