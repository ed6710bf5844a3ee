package bench

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// mattnTarget runs the benchmark through database/sql and mattn/go-sqlite3.
type mattnTarget struct {
	db *sql.DB
}

func openMattn(dir string) (target, error) {
	dbPath := filepath.Join(dir, "mattn", "bench.db")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// A single connection keeps both targets on the same footing.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &mattnTarget{db: db}, nil
}

func (m *mattnTarget) Name() string {
	return "mattn/go-sqlite3"
}

func (m *mattnTarget) Exec(query string) error {
	_, err := m.db.Exec(query)
	return err
}

func (m *mattnTarget) InsertUsers(n int, progress func()) (uint64, error) {
	var totalWrites uint64

	tx, err := m.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(insertUserSQL)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	created := time.Now().Unix()
	for idx := range n {
		res, err := stmt.Exec(created, fmt.Sprintf("user%d@example.com", idx), 1)
		if err != nil {
			return totalWrites, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return totalWrites, err
		}
		totalWrites += uint64(affected)
		progress()
	}

	return totalWrites, tx.Commit()
}

func (m *mattnTarget) ReadUsers() (uint64, error) {
	var totalReads uint64

	rows, err := m.db.Query(selectUsersSQL)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, created, active int64
		var email string
		if err := rows.Scan(&id, &created, &email, &active); err != nil {
			return totalReads, err
		}
		totalReads++
	}

	return totalReads, rows.Err()
}

func (m *mattnTarget) InsertBlobs(payloads [][]byte, progress func()) (uint64, error) {
	var totalWrites uint64

	tx, err := m.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(insertBlobSQL)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	for _, payload := range payloads {
		if _, err := stmt.Exec(payload); err != nil {
			return totalWrites, err
		}
		totalWrites++
		progress()
	}

	return totalWrites, tx.Commit()
}

func (m *mattnTarget) ReadBlobs(visit func(id int64, data []byte) error) (uint64, error) {
	var totalReads uint64

	rows, err := m.db.Query(selectBlobsSQL)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var data sql.RawBytes
		if err := rows.Scan(&id, &data); err != nil {
			return totalReads, err
		}
		if err := visit(id, data); err != nil {
			return totalReads, err
		}
		totalReads++
	}

	return totalReads, rows.Err()
}

func (m *mattnTarget) Close() error {
	return m.db.Close()
}
