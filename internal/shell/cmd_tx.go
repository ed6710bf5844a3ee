package shell

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/nsqlite/nsqlitekit"
)

var (
	errTxOpen   = errors.New("a transaction is already open")
	errNoTxOpen = errors.New("no transaction is open")
)

func cmdBegin(s *Shell, args []string) error {
	if s.conn.InTransaction() {
		return errTxOpen
	}

	mode := s.conf.TxMode
	if len(args) == 1 {
		var err error
		if mode, err = nsqlitekit.ParseTxMode(args[0]); err != nil {
			return err
		}
	}

	tx, err := s.conn.CreateTransaction(mode)
	if err != nil {
		return err
	}
	s.tx = tx
	s.printOK(fmt.Sprintf("Transaction started (%s)", mode))
	return nil
}

func cmdCommit(s *Shell, _ []string) error {
	if !s.conn.InTransaction() {
		return errNoTxOpen
	}

	if s.tx == nil {
		if err := s.conn.CommitTransaction(); err != nil {
			return err
		}
	} else {
		if err := s.tx.Commit(); err != nil {
			return err
		}
		s.tx = nil
	}
	s.printOK("Transaction committed")
	return nil
}

func cmdRollback(s *Shell, _ []string) error {
	if !s.conn.InTransaction() {
		return errNoTxOpen
	}

	if s.tx == nil {
		if err := s.conn.RollbackTransaction(); err != nil {
			return err
		}
	} else {
		err := s.tx.Rollback()
		s.tx = nil
		if err != nil {
			return err
		}
	}
	s.printOK("Transaction rolled back")
	return nil
}

func cmdVersion(s *Shell, args []string) error {
	if len(args) == 0 {
		version, err := s.conn.UserVersion()
		if err != nil {
			return err
		}
		s.printOK(fmt.Sprintf("User version %d", version))
		return nil
	}

	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: version must be an integer", errUsage)
	}
	if err := s.conn.UpdateUserVersion(version, s.conf.TxMode); err != nil {
		return err
	}
	s.printOK(fmt.Sprintf("User version %d", version))
	return nil
}
