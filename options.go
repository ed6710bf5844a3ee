package nsqlitekit

import (
	"io"
	"log/slog"
	"time"

	"github.com/nsqlite/nsqlitekit/internal/log"
)

// DefaultBusyTimeout is how long a connection waits on a locked database
// before failing with ErrBusy.
const DefaultBusyTimeout = 200 * time.Millisecond

type connOption func(*Conn)

// WithBusyTimeout sets the busy timeout installed every time the connection
// is opened. Zero or a negative duration disables waiting.
func WithBusyTimeout(timeout time.Duration) connOption {
	return func(conn *Conn) {
		conn.busyTimeout = timeout
	}
}

// WithLogger makes the connection write JSON logs of the given level and
// above to writer. Connections are silent by default.
func WithLogger(writer io.Writer, level slog.Level) connOption {
	return func(conn *Conn) {
		logger := log.NewLoggerWithLevel(writer, level)
		conn.logger = &logger
	}
}

// WithListener sets the user version listener.
func WithListener(listener Listener) connOption {
	return func(conn *Conn) {
		conn.listener = listener
	}
}

// WithPostOpenQueries sets a slice of queries to be executed every time the
// connection is opened, for example PRAGMA settings.
func WithPostOpenQueries(queries ...string) connOption {
	return func(conn *Conn) {
		conn.postOpenQueries = queries
	}
}
