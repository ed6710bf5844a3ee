// Package sqlitec provides a lightweight wrapper for the SQLite C library.
// It allows direct interaction with SQLite's low-level API and is the only
// package of the module that talks to C.
//
// By default it links against the system libsqlite3. Building with the
// sqlcipher tag links libsqlcipher instead and enables Conn.Key.
//
//   - https://www.sqlite.org/cintro.html
//   - https://www.sqlite.org/c3ref/intro.html
package sqlitec
