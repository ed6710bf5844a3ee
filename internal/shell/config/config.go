package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/nsqlite/nsqlitekit"
	"github.com/nsqlite/nsqlitekit/internal/version"
)

// Config represents the configuration for the nsqlitekit shell.
type Config struct {
	Path            string        `arg:"positional" help:"Path of the SQLite database file, use :memory: for an in-memory database" default:":memory:"`
	BusyTimeout     time.Duration `arg:"--busy-timeout,env:NSQLITEKIT_BUSY_TIMEOUT" help:"How long to wait for a locked database before failing. Valid time units are ns, us (or µs), ms, s, m, h" default:"200ms"`
	Passphrase      string        `arg:"--passphrase,env:NSQLITEKIT_PASSPHRASE" help:"Passphrase of an encrypted database, requires a SQLCipher build"`
	Command         string        `arg:"-c,--command" help:"Run a single statement or dot command and exit"`
	TransactionMode string        `arg:"--transaction-mode,env:NSQLITEKIT_TRANSACTION_MODE" help:"Default mode for .begin (deferred, immediate, exclusive)" default:"deferred"`
	Verbose         bool          `arg:"-v,--verbose,env:NSQLITEKIT_VERBOSE" help:"Write debug logs to stderr" default:"false"`

	TxMode nsqlitekit.TxMode `arg:"-"`
}

func (Config) Version() string {
	return fmt.Sprintf("%s\n", version.ShellVersion())
}

// MustParse parses and validates the configuration from the command
// line arguments. It returns a Config struct or exits the program
// with an error. The help and version flags print to stdout and exit 0.
func MustParse(args []string) Config {
	cfg, err := parse(args, os.Stdout)
	if errors.Is(err, arg.ErrHelp) || errors.Is(err, arg.ErrVersion) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Parse is MustParse without the exit, it returns arg.ErrHelp and
// arg.ErrVersion when those flags are requested.
func Parse(args []string) (Config, error) {
	return parse(args, io.Discard)
}

// parse writes the usage or the version to w when the matching flag is
// given.
func parse(args []string, w io.Writer) (Config, error) {
	cfg := Config{}

	parser, err := arg.NewParser(
		arg.Config{Program: "nsqlitekit"},
		&cfg,
	)
	if err != nil {
		return cfg, err
	}
	if err := parser.Parse(args[1:]); err != nil {
		switch {
		case errors.Is(err, arg.ErrHelp):
			parser.WriteHelp(w)
			return cfg, err
		case errors.Is(err, arg.ErrVersion):
			fmt.Fprint(w, cfg.Version())
			return cfg, err
		}
		return cfg, fmt.Errorf("failed to parse arguments: %w", err)
	}

	if err := validatePath(cfg.Path); err != nil {
		return cfg, err
	}

	if err := validateBusyTimeout(cfg.BusyTimeout); err != nil {
		return cfg, err
	}

	cfg.TxMode, err = validateTransactionMode(cfg.TransactionMode)
	if err != nil {
		return cfg, err
	}

	return cfg, nil
}

// validatePath validates that path is not blank.
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("invalid database path, must not be empty")
	}
	return nil
}

// validateBusyTimeout validates that timeout is not negative.
func validateBusyTimeout(timeout time.Duration) error {
	if timeout < 0 {
		return errors.New("invalid busy timeout, must not be negative")
	}
	return nil
}

// validateTransactionMode validates mode against the known transaction modes.
func validateTransactionMode(mode string) (nsqlitekit.TxMode, error) {
	txMode, err := nsqlitekit.ParseTxMode(mode)
	if err != nil {
		valid := []string{}
		for _, m := range nsqlitekit.TxModes.Members() {
			valid = append(valid, m.String())
		}
		return txMode, fmt.Errorf(
			"invalid transaction mode, valid values are: %s",
			strings.Join(valid, ", "),
		)
	}
	return txMode, nil
}
