package nsqlitekit

import (
	"sync"
	"sync/atomic"

	"github.com/nsqlite/nsqlitekit/internal/log"
	"github.com/nsqlite/nsqlitekit/internal/sqlitec"
)

const (
	nsConn        = "conn"
	nsStmt        = "stmt"
	nsTransaction = "transaction"
	nsUserVersion = "user_version"
)

// connHandle owns one native connection. Every Conn, Stmt handle and Tx
// holds a reference to it; the last release closes the native connection.
type connHandle struct {
	mu     sync.Mutex
	raw    *sqlitec.Conn
	refs   atomic.Int32
	stmts  map[*stmtHandle]struct{}
	path   string
	logger *log.Logger
}

func newConnHandle(raw *sqlitec.Conn, path string, logger *log.Logger) *connHandle {
	h := &connHandle{
		raw:    raw,
		stmts:  map[*stmtHandle]struct{}{},
		path:   path,
		logger: logger,
	}
	h.refs.Store(1)
	return h
}

func (h *connHandle) acquire() *connHandle {
	h.refs.Add(1)
	return h
}

func (h *connHandle) release() {
	if h.refs.Add(-1) == 0 {
		if err := h.close(); err != nil {
			h.logger.WarnNs(nsConn, "failed to close released connection", log.KV{
				"path":  h.path,
				"error": err.Error(),
			})
		}
	}
}

// get returns the native connection or ErrClosed.
func (h *connHandle) get() (*sqlitec.Conn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.raw == nil {
		return nil, ErrClosed
	}
	return h.raw, nil
}

func (h *connHandle) interrupt() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.raw.Interrupt()
}

func (h *connHandle) isOpen() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.raw != nil
}

func (h *connHandle) register(s *stmtHandle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stmts != nil {
		h.stmts[s] = struct{}{}
	}
}

func (h *connHandle) unregister(s *stmtHandle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.stmts, s)
}

// close finalizes every statement still prepared on the connection and
// closes it. Outstanding references stay valid objects but report ErrClosed.
func (h *connHandle) close() error {
	h.mu.Lock()
	raw := h.raw
	if raw == nil {
		h.mu.Unlock()
		return nil
	}
	h.raw = nil
	stmts := h.stmts
	h.stmts = nil
	h.mu.Unlock()

	for s := range stmts {
		s.detach()
	}
	if len(stmts) > 0 {
		h.logger.DebugNs(nsConn, "finalized outstanding statements", log.KV{
			"path":  h.path,
			"count": len(stmts),
		})
	}

	if err := raw.Close(); err != nil {
		return engineError("close database", "", err)
	}
	h.logger.DebugNs(nsConn, "closed", log.KV{"path": h.path})
	return nil
}

// stmtHandle owns one prepared statement and keeps its connection alive.
// Stmt, ResultSet and live Iterators each hold a reference; the last
// release finalizes the native statement.
type stmtHandle struct {
	mu           sync.Mutex
	conn         *connHandle
	raw          *sqlitec.Stmt
	closedByConn bool
	refs         atomic.Int32
	// gen changes on every reset so iterators can tell they went stale.
	gen     atomic.Uint64
	stepped bool
	query   string
}

func newStmtHandle(conn *connHandle, raw *sqlitec.Stmt, query string) *stmtHandle {
	s := &stmtHandle{
		conn:  conn.acquire(),
		raw:   raw,
		query: query,
	}
	s.refs.Store(1)
	conn.register(s)
	return s
}

func (s *stmtHandle) acquire() *stmtHandle {
	s.refs.Add(1)
	return s
}

func (s *stmtHandle) release() {
	if s.refs.Add(-1) != 0 {
		return
	}

	s.mu.Lock()
	raw := s.raw
	s.raw = nil
	s.mu.Unlock()

	if raw != nil {
		// Finalize only echoes the error of the last step, already reported.
		_ = raw.Finalize()
		s.conn.logger.DebugNs(nsStmt, "finalized", log.KV{"sql": s.query})
	}
	s.conn.unregister(s)
	s.conn.release()
}

// detach finalizes the native statement because its connection is closing.
func (s *stmtHandle) detach() {
	s.mu.Lock()
	raw := s.raw
	s.raw = nil
	s.closedByConn = true
	s.mu.Unlock()

	if raw != nil {
		_ = raw.Finalize()
	}
}

// get returns the native statement, or ErrClosed once the connection was
// closed underneath it.
func (s *stmtHandle) get() (*sqlitec.Stmt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raw == nil {
		if s.closedByConn {
			return nil, ErrClosed
		}
		return nil, ErrFinalized
	}
	return s.raw, nil
}

// rewind resets the statement and invalidates every iterator over it. The
// code returned by reset only repeats the last step error and is ignored.
func (s *stmtHandle) rewind(raw *sqlitec.Stmt) {
	_ = raw.Reset()
	s.gen.Add(1)
	s.stepped = false
}

// step advances the statement by one row.
func (s *stmtHandle) step(raw *sqlitec.Stmt) (bool, error) {
	s.stepped = true
	hasRow, err := raw.Step()
	if err != nil {
		return false, engineError("step statement", s.query, err)
	}
	return hasRow, nil
}

// prepareBind rewinds a stepped statement, SQLite refuses binds on it.
func (s *stmtHandle) prepareBind(raw *sqlitec.Stmt) {
	if s.stepped {
		s.rewind(raw)
	}
}
