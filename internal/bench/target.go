package bench

const (
	insertUserSQL  = "INSERT INTO users (created, email, active) VALUES (?, ?, ?)"
	selectUsersSQL = "SELECT id, created, email, active FROM users ORDER BY id"
	insertBlobSQL  = "INSERT INTO blobs (data) VALUES (?)"
	selectBlobsSQL = "SELECT id, data FROM blobs ORDER BY id"
)

// target is one SQLite front end measured by the benchmark. Every target
// runs the same statements over its own database file.
type target interface {
	Name() string
	Exec(query string) error
	// InsertUsers inserts n users in one transaction with a prepared
	// statement and returns the number of written rows.
	InsertUsers(n int, progress func()) (uint64, error)
	// ReadUsers decodes every user once and returns the number of rows.
	ReadUsers() (uint64, error)
	// InsertBlobs inserts every payload in one transaction.
	InsertBlobs(payloads [][]byte, progress func()) (uint64, error)
	// ReadBlobs calls visit for every stored blob in id order.
	ReadBlobs(visit func(id int64, data []byte) error) (uint64, error)
	Close() error
}

// schemaSQL drops and recreates every benchmark table.
var schemaSQL = []string{
	`PRAGMA foreign_keys = ON`,

	`DROP TABLE IF EXISTS blobs`,
	`DROP TABLE IF EXISTS users`,

	`CREATE TABLE users (
		id INTEGER PRIMARY KEY NOT NULL,
		created INTEGER NOT NULL,
		email TEXT NOT NULL,
		active INTEGER NOT NULL
	)`,
	`CREATE INDEX users_created ON users(created)`,

	`CREATE TABLE blobs (
		id INTEGER PRIMARY KEY NOT NULL,
		data BLOB NOT NULL
	)`,
}

// recreateSchema drops all tables and recreates them.
func recreateSchema(t target) error {
	for _, s := range schemaSQL {
		if err := t.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
