package nsqlitekit

import (
	"fmt"
	"strings"

	"github.com/orsinium-labs/enum"
)

// TxMode is the locking strategy of a transaction.
//
// https://www.sqlite.org/lang_transaction.html
type TxMode enum.Member[string]

var (
	// Deferred acquires locks on first access.
	Deferred = TxMode{Value: "DEFERRED"}
	// Immediate takes the write lock at once; readers are still allowed.
	Immediate = TxMode{Value: "IMMEDIATE"}
	// Exclusive keeps every other connection from reading or writing.
	Exclusive = TxMode{Value: "EXCLUSIVE"}

	TxModes = enum.New(Deferred, Immediate, Exclusive)
)

// ParseTxMode parses a mode name, ignoring case.
func ParseTxMode(name string) (TxMode, error) {
	mode := TxModes.Parse(strings.ToUpper(strings.TrimSpace(name)))
	if mode == nil {
		return TxMode{}, fmt.Errorf("%w: unknown transaction mode %q", ErrInvalidState, name)
	}
	return *mode, nil
}

// String returns the lowercase mode name.
func (mode TxMode) String() string {
	return strings.ToLower(mode.Value)
}

func (mode TxMode) beginSQL() (string, error) {
	if TxModes.Parse(mode.Value) == nil {
		return "", fmt.Errorf("%w: unknown transaction mode %q", ErrInvalidState, mode.Value)
	}
	return "BEGIN " + mode.Value + ";", nil
}
