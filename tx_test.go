package nsqlitekit

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountsConn(t *testing.T, options ...connOption) *Conn {
	t.Helper()
	conn := newMemoryConn(t, options...)
	require.NoError(t, conn.ExecSQL("CREATE TABLE accounts (id INTEGER PRIMARY KEY, balance INTEGER)"))
	return conn
}

func TestTx(t *testing.T) {
	t.Run("Commit", func(t *testing.T) {
		conn := newAccountsConn(t)

		tx, err := conn.CreateTransaction(Immediate)
		require.NoError(t, err)
		defer tx.Close()
		assert.True(t, tx.Active())
		assert.Equal(t, Immediate, tx.Mode())
		assert.True(t, conn.InTransaction())

		require.NoError(t, conn.ExecSQL("INSERT INTO accounts (balance) VALUES (10)"))
		require.NoError(t, tx.Commit())
		assert.False(t, tx.Active())
		assert.False(t, conn.InTransaction())
		assert.ErrorIs(t, tx.Commit(), ErrTxDone)
		assert.ErrorIs(t, tx.Rollback(), ErrTxDone)

		tx.Close()
		assert.Equal(t, int64(1), countRows(t, conn, "accounts"))
	})

	t.Run("CloseRollsBack", func(t *testing.T) {
		conn := newAccountsConn(t)

		func() {
			tx, err := conn.CreateTransaction(Deferred)
			require.NoError(t, err)
			defer tx.Close()

			require.NoError(t, conn.ExecSQL("INSERT INTO accounts (balance) VALUES (10)"))
			err = conn.ExecSQL("INSERT INTO missing (balance) VALUES (20)")
			require.Error(t, err)
		}()

		assert.False(t, conn.InTransaction())
		assert.Equal(t, int64(0), countRows(t, conn, "accounts"))
	})

	t.Run("Rollback", func(t *testing.T) {
		conn := newAccountsConn(t)

		tx, err := conn.CreateTransaction(Exclusive)
		require.NoError(t, err)
		require.NoError(t, conn.ExecSQL("INSERT INTO accounts (balance) VALUES (10)"))
		require.NoError(t, tx.Rollback())
		assert.False(t, tx.Active())
		assert.Equal(t, int64(0), countRows(t, conn, "accounts"))
	})

	t.Run("CloseDiscardsRollbackError", func(t *testing.T) {
		buf := &bytes.Buffer{}
		conn := newAccountsConn(t, WithLogger(buf, slog.LevelWarn))

		tx, err := conn.CreateTransaction(Deferred)
		require.NoError(t, err)
		// The transaction ends behind the guard's back.
		require.NoError(t, conn.RollbackTransaction())

		assert.NotPanics(t, tx.Close)
		assert.False(t, tx.Active())
		assert.Contains(t, buf.String(), "discarded rollback error")
	})

	t.Run("CloseAfterConnClose", func(t *testing.T) {
		conn, err := Open(Memory)
		require.NoError(t, err)

		tx, err := conn.CreateTransaction(Deferred)
		require.NoError(t, err)
		require.NoError(t, conn.Close())

		assert.NotPanics(t, tx.Close)
	})

	t.Run("FailedCommitStaysActive", func(t *testing.T) {
		conn := newAccountsConn(t)
		require.NoError(t, conn.ExecSQL("PRAGMA foreign_keys = ON"))
		require.NoError(t, conn.ExecSQL(`
			CREATE TABLE transfers (
				id INTEGER PRIMARY KEY,
				account_id INTEGER REFERENCES accounts(id) DEFERRABLE INITIALLY DEFERRED
			)
		`))

		tx, err := conn.CreateTransaction(Deferred)
		require.NoError(t, err)
		defer tx.Close()

		require.NoError(t, conn.ExecSQL("INSERT INTO transfers (account_id) VALUES (42)"))
		err = tx.Commit()
		assert.ErrorIs(t, err, ErrConstraint)
		assert.True(t, tx.Active())
		assert.True(t, conn.InTransaction())

		require.NoError(t, tx.Rollback())
		assert.False(t, conn.InTransaction())
		assert.Equal(t, int64(0), countRows(t, conn, "transfers"))
	})

	t.Run("InvalidMode", func(t *testing.T) {
		conn := newAccountsConn(t)
		_, err := conn.CreateTransaction(TxMode{Value: "LAZY"})
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.False(t, conn.InTransaction())
	})

	t.Run("DirectCalls", func(t *testing.T) {
		conn := newAccountsConn(t)

		require.NoError(t, conn.BeginTransaction(Deferred))
		assert.True(t, conn.InTransaction())
		require.NoError(t, conn.ExecSQL("INSERT INTO accounts (balance) VALUES (1)"))
		require.NoError(t, conn.CommitTransaction())
		assert.False(t, conn.InTransaction())

		var engineErr *EngineError
		assert.True(t, errors.As(conn.CommitTransaction(), &engineErr))
	})
}

func TestWithTransaction(t *testing.T) {
	t.Run("Commit", func(t *testing.T) {
		conn := newAccountsConn(t)
		err := conn.WithTransaction(Deferred, func(tx *Tx) error {
			return tx.Conn().ExecSQL("INSERT INTO accounts (balance) VALUES (?)", 5)
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), countRows(t, conn, "accounts"))
	})

	t.Run("Error", func(t *testing.T) {
		conn := newAccountsConn(t)
		boom := errors.New("boom")
		err := conn.WithTransaction(Deferred, func(tx *Tx) error {
			require.NoError(t, tx.Conn().ExecSQL("INSERT INTO accounts (balance) VALUES (?)", 5))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, int64(0), countRows(t, conn, "accounts"))
	})

	t.Run("Panic", func(t *testing.T) {
		conn := newAccountsConn(t)
		assert.Panics(t, func() {
			_ = conn.WithTransaction(Deferred, func(tx *Tx) error {
				require.NoError(t, tx.Conn().ExecSQL("INSERT INTO accounts (balance) VALUES (?)", 5))
				panic("boom")
			})
		})
		assert.False(t, conn.InTransaction())
		assert.Equal(t, int64(0), countRows(t, conn, "accounts"))
	})
}

func TestTxMode(t *testing.T) {
	tests := []struct {
		name    string
		want    TxMode
		wantErr bool
	}{
		{"deferred", Deferred, false},
		{"IMMEDIATE", Immediate, false},
		{" Exclusive ", Exclusive, false},
		{"lazy", TxMode{}, true},
		{"", TxMode{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTxMode(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidState)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "immediate", Immediate.String())
	assert.Len(t, TxModes.Members(), 3)
}
