package bench

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nsqlite/nsqlitekit"
)

// kitTarget runs the benchmark through nsqlitekit.
type kitTarget struct {
	conn *nsqlitekit.Conn
}

func openKit(dir string, logWriter io.Writer, level slog.Level) (target, error) {
	dbPath := filepath.Join(dir, "nsqlitekit", "bench.db")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	conn, err := nsqlitekit.Open(
		dbPath,
		nsqlitekit.WithLogger(logWriter, level),
		nsqlitekit.WithPostOpenQueries("PRAGMA journal_mode = WAL;"),
	)
	if err != nil {
		return nil, err
	}

	return &kitTarget{conn: conn}, nil
}

func (k *kitTarget) Name() string {
	return "nsqlitekit"
}

func (k *kitTarget) Exec(query string) error {
	return k.conn.ExecSQL(query)
}

func (k *kitTarget) InsertUsers(n int, progress func()) (uint64, error) {
	var totalWrites uint64

	err := k.conn.WithTransaction(nsqlitekit.Immediate, func(tx *nsqlitekit.Tx) error {
		stmt, err := tx.Conn().Prepare(insertUserSQL)
		if err != nil {
			return err
		}
		defer stmt.Finalize()

		created := time.Now().Unix()
		for idx := range n {
			if err := tx.Conn().Exec(stmt, created, fmt.Sprintf("user%d@example.com", idx), 1); err != nil {
				return err
			}
			totalWrites += uint64(tx.Conn().Changes())
			progress()
		}
		return nil
	})

	return totalWrites, err
}

func (k *kitTarget) ReadUsers() (uint64, error) {
	var totalReads uint64

	rs, err := k.conn.Query(selectUsersSQL)
	if err != nil {
		return 0, err
	}
	defer rs.Close()

	for cur, err := range rs.All() {
		if err != nil {
			return totalReads, err
		}
		if _, err := cur.Int64(0); err != nil {
			return totalReads, err
		}
		if _, err := cur.Int64(1); err != nil {
			return totalReads, err
		}
		if _, err := cur.Text(2); err != nil {
			return totalReads, err
		}
		if _, err := cur.Int64(3); err != nil {
			return totalReads, err
		}
		totalReads++
	}

	return totalReads, nil
}

func (k *kitTarget) InsertBlobs(payloads [][]byte, progress func()) (uint64, error) {
	var totalWrites uint64

	err := k.conn.WithTransaction(nsqlitekit.Immediate, func(tx *nsqlitekit.Tx) error {
		stmt, err := tx.Conn().Prepare(insertBlobSQL)
		if err != nil {
			return err
		}
		defer stmt.Finalize()

		for _, payload := range payloads {
			if err := tx.Conn().Exec(stmt, payload); err != nil {
				return err
			}
			totalWrites++
			progress()
		}
		return nil
	})

	return totalWrites, err
}

func (k *kitTarget) ReadBlobs(visit func(id int64, data []byte) error) (uint64, error) {
	var totalReads uint64

	rs, err := k.conn.Query(selectBlobsSQL)
	if err != nil {
		return 0, err
	}
	defer rs.Close()

	for cur, err := range rs.All() {
		if err != nil {
			return totalReads, err
		}
		id, err := nsqlitekit.Get[int64](cur, 0)
		if err != nil {
			return totalReads, err
		}
		data, err := nsqlitekit.Get[nsqlitekit.RawBytes](cur, 1)
		if err != nil {
			return totalReads, err
		}
		if err := visit(id, data); err != nil {
			return totalReads, err
		}
		totalReads++
	}

	return totalReads, nil
}

func (k *kitTarget) Close() error {
	return k.conn.Close()
}
