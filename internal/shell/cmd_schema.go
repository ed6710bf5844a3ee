package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nsqlite/nsqlitekit"
	"github.com/nsqlite/nsqlitekit/internal/styled"
)

var errTableNotFound = errors.New("table not found")

func cmdTables(s *Shell, _ []string) error {
	return s.cmdQuery(`
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
}

func cmdIndexes(s *Shell, _ []string) error {
	return s.cmdQuery(`
		SELECT name, tbl_name AS "table" FROM sqlite_master
		WHERE type = 'index' AND name NOT LIKE 'sqlite_%'
		ORDER BY tbl_name, name
	`)
}

func cmdSchema(s *Shell, args []string) error {
	if len(args) == 0 {
		return s.cmdQuery(`
			SELECT sql FROM sqlite_master
			WHERE sql IS NOT NULL AND name NOT LIKE 'sqlite_%'
			ORDER BY tbl_name, type DESC, name
		`)
	}
	if err := s.requireTable(args[0]); err != nil {
		return err
	}
	return s.cmdQuery(`
		SELECT sql FROM sqlite_master
		WHERE sql IS NOT NULL AND tbl_name = ?
		ORDER BY type DESC, name
	`, args[0])
}

func cmdColumns(s *Shell, args []string) error {
	if err := s.requireTable(args[0]); err != nil {
		return err
	}
	return s.cmdQuery(`
		SELECT name, type, "notnull" AS not_null, dflt_value AS "default", pk
		FROM pragma_table_info(?)
		ORDER BY cid
	`, args[0])
}

func cmdCount(s *Shell, args []string) error {
	if err := s.requireTable(args[0]); err != nil {
		return err
	}
	return s.cmdQuery(fmt.Sprintf(`SELECT count(*) AS "count" FROM %s`, quoteIdent(args[0])))
}

// requireTable fails with errTableNotFound unless name is a table or view.
func (s *Shell) requireTable(name string) error {
	rs, err := s.conn.Query(
		"SELECT count(*) FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?",
		name,
	)
	if err != nil {
		return err
	}
	defer rs.Close()

	found := false
	for cur, err := range rs.All() {
		if err != nil {
			return err
		}
		n, err := nsqlitekit.Get[int64](cur, 0)
		if err != nil {
			return err
		}
		found = n > 0
	}
	if !found {
		return fmt.Errorf("%w: %s", errTableNotFound, name)
	}
	return nil
}

// quoteIdent quotes name as an SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *Shell) printOK(message string) {
	s.println(styled.Render(styled.NewMessageTable("OK", message)))
}
