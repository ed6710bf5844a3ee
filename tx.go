package nsqlitekit

import (
	"fmt"
	"runtime"

	"github.com/nsqlite/nsqlitekit/internal/log"
)

// BeginTransaction starts a transaction in the given mode.
func (conn *Conn) BeginTransaction(mode TxMode) error {
	query, err := mode.beginSQL()
	if err != nil {
		return err
	}
	if err := conn.ExecSQL(query); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	conn.logger.DebugNs(nsTransaction, "began", log.KV{"mode": mode.String()})
	return nil
}

// CommitTransaction commits the open transaction.
func (conn *Conn) CommitTransaction() error {
	if err := conn.ExecSQL("COMMIT;"); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	conn.logger.DebugNs(nsTransaction, "committed")
	return nil
}

// RollbackTransaction rolls back the open transaction.
func (conn *Conn) RollbackTransaction() error {
	if err := conn.ExecSQL("ROLLBACK;"); err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	conn.logger.DebugNs(nsTransaction, "rolled back")
	return nil
}

// Tx is a scoped transaction: it is open from CreateTransaction until
// Commit, Rollback or Close. Close rolls back an uncommitted transaction and
// never fails, so the usual pattern is
//
//	tx, err := conn.CreateTransaction(nsqlitekit.Deferred)
//	if err != nil {
//		return err
//	}
//	defer tx.Close()
//	...
//	return tx.Commit()
type Tx struct {
	conn   *Conn
	handle *connHandle
	mode   TxMode
	active bool
}

// CreateTransaction begins a transaction and returns its guard.
func (conn *Conn) CreateTransaction(mode TxMode) (*Tx, error) {
	handle, _, err := conn.getHandle()
	if err != nil {
		return nil, err
	}
	if err := conn.BeginTransaction(mode); err != nil {
		return nil, err
	}

	tx := &Tx{
		conn:   conn,
		handle: handle.acquire(),
		mode:   mode,
		active: true,
	}
	// A collected guard only gives its reference back. Rolling back from
	// the finalizer goroutine could hit a later transaction.
	runtime.SetFinalizer(tx, (*Tx).release)
	return tx, nil
}

// WithTransaction runs fn inside a transaction in the given mode and
// commits it if fn returns nil. An error or a panic from fn rolls it back.
func (conn *Conn) WithTransaction(mode TxMode, fn func(tx *Tx) error) error {
	tx, err := conn.CreateTransaction(mode)
	if err != nil {
		return err
	}
	defer tx.Close()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Conn returns the connection the transaction runs on.
func (tx *Tx) Conn() *Conn {
	return tx.conn
}

// Mode returns the mode the transaction was started with.
func (tx *Tx) Mode() TxMode {
	return tx.mode
}

// Active reports whether the transaction is neither committed nor rolled
// back.
func (tx *Tx) Active() bool {
	return tx.active
}

func (tx *Tx) exec(query string) error {
	raw, err := tx.handle.get()
	if err != nil {
		return err
	}
	if err := raw.Exec(query); err != nil {
		return engineError("execute query", query, err)
	}
	return nil
}

// Commit commits the transaction. If the commit fails the transaction stays
// active, so it can be retried or rolled back.
func (tx *Tx) Commit() error {
	if !tx.active {
		return ErrTxDone
	}
	if err := tx.exec("COMMIT;"); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx.active = false
	tx.handle.logger.DebugNs(nsTransaction, "committed", log.KV{"mode": tx.mode.String()})
	tx.release()
	return nil
}

// Rollback rolls the transaction back. The transaction is over afterwards
// even if the rollback fails.
func (tx *Tx) Rollback() error {
	if !tx.active {
		return ErrTxDone
	}
	tx.active = false
	defer tx.release()

	if err := tx.exec("ROLLBACK;"); err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	tx.handle.logger.DebugNs(nsTransaction, "rolled back", log.KV{"mode": tx.mode.String()})
	return nil
}

// Close rolls back the transaction if it is still active. A failing
// rollback is logged and discarded.
func (tx *Tx) Close() {
	if !tx.active {
		return
	}
	if err := tx.Rollback(); err != nil {
		tx.conn.logger.WarnNs(nsTransaction, "discarded rollback error", log.KV{
			"mode":  tx.mode.String(),
			"error": err.Error(),
		})
	}
}

func (tx *Tx) release() {
	if tx.handle == nil {
		return
	}
	handle := tx.handle
	tx.handle = nil
	runtime.SetFinalizer(tx, nil)
	handle.release()
}
