// Package nsqlitekit is a thin layer over the SQLite C library that manages
// connections, prepared statements and result rows with explicit errors
// instead of raw handles and result codes.
//
// Connections and statements are reference counted: a statement keeps its
// connection alive, and result sets and iterators keep their statement
// alive, so they can be released in any order. Conn.Close finalizes every
// statement prepared through the connection before closing it; objects
// still referring to it then fail with ErrClosed.
//
// A statement has a single cursor. Starting a new iteration (or resetting,
// executing or rebinding the statement) invalidates iterators obtained
// before, which then fail with ErrStaleIterator.
//
// Two kinds of errors are returned: *EngineError for failures reported by
// SQLite, and errors matching ErrInvalidState for calls the current state
// does not allow, such as using a closed connection.
//
//	conn, err := nsqlitekit.Open("app.db")
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	rs, err := conn.Query("SELECT id, name FROM users WHERE age > ?", 18)
//	if err != nil {
//		return err
//	}
//	defer rs.Close()
//
//	for cur, err := range rs.All() {
//		if err != nil {
//			return err
//		}
//		name, err := nsqlitekit.GetByName[string](cur, "name")
//		...
//	}
package nsqlitekit
