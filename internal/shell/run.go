package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nsqlite/nsqlitekit"
	"github.com/nsqlite/nsqlitekit/internal/log"
	"github.com/nsqlite/nsqlitekit/internal/shell/config"
	"github.com/nsqlite/nsqlitekit/internal/version"
)

// Run runs the nsqlitekit shell.
func Run(ctx context.Context) error {
	conf := config.MustParse(os.Args)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logWriter, level := io.Discard, slog.LevelInfo
	if conf.Verbose {
		logWriter, level = os.Stderr, slog.LevelDebug
	}
	logger := log.NewLoggerWithLevel(logWriter, level)

	conn, err := openConn(conf, logWriter, level)
	if err != nil {
		return err
	}
	sh := New(ctx, stop, conf, conn, os.Stdout, logger)

	if conf.Command != "" {
		return sh.serve(func() error {
			_, err := sh.Execute(conf.Command)
			return err
		}, shutdownGrace)
	}

	fmt.Println(version.ShellVersion())
	fmt.Println(version.EngineLine(nsqlitekit.LibVersion()))
	fmt.Printf("Connected to %s\n", conn.Path())

	err = sh.serve(sh.Start, shutdownGrace)
	fmt.Printf("\nGoodbye!\n\n")
	return err
}

const (
	shutdownGrace  = 2 * time.Second
	interruptEvery = 50 * time.Millisecond
)

// serve runs loop on its own goroutine, which is then the only user of the
// connection, until loop returns or the shell context is canceled. On
// cancellation the statement in flight is interrupted until loop returns.
// The shell and its connection are closed only after that. If loop is still
// blocked after grace, serve returns without closing them.
func (s *Shell) serve(loop func() error, grace time.Duration) error {
	done := make(chan error, 1)
	go func() {
		defer s.stop()
		done <- loop()
	}()

	var loopErr error
	select {
	case loopErr = <-done:
	case <-s.ctx.Done():
		var stopped bool
		if stopped, loopErr = s.awaitLoop(done, grace); !stopped {
			s.logger.WarnNs(nsShell, "shell loop did not stop, leaving connection open", log.KV{
				"grace": grace.String(),
			})
			return nil
		}
	}

	s.Close()
	return errors.Join(loopErr, s.conn.Close())
}

// awaitLoop interrupts the connection until done delivers the loop result
// or grace runs out.
func (s *Shell) awaitLoop(done <-chan error, grace time.Duration) (bool, error) {
	ticker := time.NewTicker(interruptEvery)
	defer ticker.Stop()
	deadline := time.After(grace)

	for {
		s.conn.Interrupt()
		select {
		case err := <-done:
			return true, err
		case <-ticker.C:
		case <-deadline:
			return false, nil
		}
	}
}

// openConn opens the configured database, applying the passphrase when
// one is set.
func openConn(conf config.Config, logWriter io.Writer, level slog.Level) (*nsqlitekit.Conn, error) {
	conn := nsqlitekit.New(
		conf.Path,
		nsqlitekit.WithBusyTimeout(conf.BusyTimeout),
		nsqlitekit.WithLogger(logWriter, level),
	)

	var err error
	if conf.Passphrase != "" {
		err = conn.OpenWithPassphrase(conf.Passphrase)
	} else {
		err = conn.Open()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", conf.Path, err)
	}
	return conn, nil
}
