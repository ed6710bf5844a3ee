package nsqlitekit

import (
	"fmt"

	"github.com/nsqlite/nsqlitekit/internal/log"
)

// Listener receives user version changes made through UpdateUserVersion.
// The hooks run inside the version transaction: an error (or a panic)
// rolls the whole change back. Nil hooks are skipped.
type Listener struct {
	OnUpgrade   func(conn *Conn, oldVersion, newVersion int) error
	OnDowngrade func(conn *Conn, oldVersion, newVersion int) error
}

// Listener returns the user version listener of the connection.
func (conn *Conn) Listener() Listener {
	return conn.listener
}

// SetListener replaces the user version listener of the connection.
func (conn *Conn) SetListener(listener Listener) {
	conn.listener = listener
}

// UserVersion returns the user version stored in the database header, 0
// for a new database.
//
// https://www.sqlite.org/pragma.html#pragma_user_version
func (conn *Conn) UserVersion() (int, error) {
	stmt, err := conn.Prepare("PRAGMA user_version;")
	if err != nil {
		return 0, fmt.Errorf("failed to read user version: %w", err)
	}
	defer stmt.Finalize()

	raw, err := stmt.get()
	if err != nil {
		return 0, err
	}
	hasRow, err := stmt.step()
	if err != nil {
		return 0, fmt.Errorf("failed to read user version: %w", err)
	}
	if !hasRow {
		return 0, nil
	}
	return int(raw.ColumnInt(0)), nil
}

// UpdateUserVersion moves the user version to version inside a transaction
// of the given mode, calling the listener's OnUpgrade or OnDowngrade first.
// Nothing happens when the version is already current. If the hook fails
// the transaction is rolled back and the version is left unchanged.
func (conn *Conn) UpdateUserVersion(version int, mode TxMode) error {
	if version < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidVersion, version)
	}

	current, err := conn.UserVersion()
	if err != nil {
		return err
	}
	if current == version {
		return nil
	}

	tx, err := conn.CreateTransaction(mode)
	if err != nil {
		return err
	}
	defer tx.Close()

	hook := conn.listener.OnUpgrade
	if version < current {
		hook = conn.listener.OnDowngrade
	}
	if hook != nil {
		if err := hook(conn, current, version); err != nil {
			return fmt.Errorf("failed to change user version from %d to %d: %w", current, version, err)
		}
	}

	if err := conn.ExecSQL(fmt.Sprintf("PRAGMA user_version = %d;", version)); err != nil {
		return fmt.Errorf("failed to write user version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	conn.logger.InfoNs(nsUserVersion, "changed", log.KV{
		"from": current,
		"to":   version,
	})
	return nil
}
