package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nsqlite/nsqlitekit"
	"github.com/nsqlite/nsqlitekit/internal/log"
	"github.com/nsqlite/nsqlitekit/internal/shell/config"
	"github.com/nsqlite/nsqlitekit/internal/styled"
)

const nsShell = "shell"

// errUsage is returned for dot commands invoked with wrong arguments.
var errUsage = errors.New("invalid arguments")

// Shell executes statements and dot commands against one connection.
type Shell struct {
	conf        config.Config
	conn        *nsqlitekit.Conn
	out         io.Writer
	logger      log.Logger
	ctx         context.Context
	stop        context.CancelFunc
	tx          *nsqlitekit.Tx
	historyPath string
}

// New returns a Shell writing its output to out.
func New(
	ctx context.Context,
	stop context.CancelFunc,
	conf config.Config,
	conn *nsqlitekit.Conn,
	out io.Writer,
	logger log.Logger,
) *Shell {
	return &Shell{
		conf:        conf,
		conn:        conn,
		out:         out,
		logger:      logger,
		ctx:         ctx,
		stop:        stop,
		historyPath: filepath.Join(os.TempDir(), ".nsqlitekit_history"),
	}
}

// Execute runs one line of input. It reports quit when the input asks to
// leave the shell.
func (s *Shell) Execute(input string) (quit bool, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return false, nil
	}

	s.syncTx()

	if !strings.HasPrefix(input, ".") {
		s.logger.DebugNs(nsShell, "running statement", log.KV{"sql": input})
		return false, s.cmdQuery(input)
	}

	fields := strings.Fields(input)
	name, args := strings.ToLower(fields[0]), fields[1:]

	cmd, ok := findDotCmd(name)
	if !ok {
		return false, fmt.Errorf("unknown command %q, type .help for usage hints", name)
	}
	if len(args) < cmd.minArgs || len(args) > cmd.maxArgs {
		return false, fmt.Errorf("%w for %s, usage: %s", errUsage, cmd.autocomplete, cmd.name)
	}

	s.logger.DebugNs(nsShell, "running dot command", log.KV{"command": name})
	if cmd.quit {
		return true, nil
	}
	return false, cmd.run(s, args)
}

// Close rolls back a transaction left open by .begin.
func (s *Shell) Close() {
	if s.tx != nil {
		if s.tx.Active() {
			s.logger.InfoNs(nsShell, "rolling back open transaction")
		}
		s.tx.Close()
		s.tx = nil
	}
}

// Shutdown stops the shell.
func (s *Shell) Shutdown() {
	s.stop()
}

// syncTx forgets the .begin transaction when a plain COMMIT or ROLLBACK
// statement ended it.
func (s *Shell) syncTx() {
	if s.tx == nil || s.conn.InTransaction() {
		return
	}
	s.tx.Close()
	s.tx = nil
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Shell) printHint(format string, a ...any) {
	styled.DimmedColor().Fprintf(s.out, format+"\n", a...)
}

// printError prints err as a single cell table.
func (s *Shell) printError(err error) {
	s.println(styled.Render(styled.NewMessageTable("Error", cleanError(err))))
}

// cleanError removes the unwanted text from the error message. So, the error
// is more readable.
func cleanError(err error) string {
	errStr := err.Error()
	errStr = strings.ReplaceAll(errStr, "failed to prepare statement:", "")
	errStr = strings.ReplaceAll(errStr, "failed to step statement:", "")
	if i := strings.LastIndex(errStr, ", SQL = "); i >= 0 {
		errStr = errStr[:i]
	}
	return strings.TrimSpace(errStr)
}
