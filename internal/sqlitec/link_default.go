//go:build !sqlcipher

package sqlitec

/*
#cgo LDFLAGS: -lsqlite3
#cgo linux LDFLAGS: -Wl,--allow-multiple-definition
*/
import "C"

// HasCodec reports whether the library was built against an encryption
// capable SQLite.
const HasCodec = false

// Key is unavailable without the sqlcipher build tag.
func (conn *Conn) Key(passphrase string) error {
	return ErrCodecUnsupported
}
