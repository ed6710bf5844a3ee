//go:build sqlcipher

package sqlitec

/*
#cgo CFLAGS: -DSQLITE_HAS_CODEC -I/usr/include/sqlcipher
#cgo LDFLAGS: -lsqlcipher
#cgo linux LDFLAGS: -Wl,--allow-multiple-definition
#include <stdlib.h>
#include <sqlite3.h>
*/
import "C"
import "unsafe"

// HasCodec reports whether the library was built against an encryption
// capable SQLite.
const HasCodec = true

// Key sets the passphrase of the database. It must be called right after
// Open, before anything reads the file.
//
// https://www.zetetic.net/sqlcipher/sqlcipher-api/#sqlite3_key
func (conn *Conn) Key(passphrase string) error {
	cKey := C.CString(passphrase)
	defer C.free(unsafe.Pointer(cKey))

	resCode := C.sqlite3_key(conn.cDB, unsafe.Pointer(cKey), C.int(len(passphrase)))
	if resCode != SQLITE_OK {
		return newError("set key", resCode, lastErrMsg(conn.cDB, resCode))
	}
	return nil
}
