package shell

import (
	"encoding/hex"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nsqlite/nsqlitekit"
	"github.com/nsqlite/nsqlitekit/internal/styled"
	"github.com/nsqlite/nsqlitekit/internal/util/numutil"
)

// blobPreview is how many bytes of a blob are shown in a cell.
const blobPreview = 16

// cmdQuery prepares the first statement of input and runs it. Statements
// without result columns report the changes, the rest print their rows.
func (s *Shell) cmdQuery(input string, args ...any) error {
	stmt, err := s.conn.Prepare(input)
	if err != nil {
		return err
	}
	defer stmt.Finalize()

	if err := stmt.BindValues(args...); err != nil {
		return err
	}

	if stmt.ColumnCount() == 0 {
		if err := stmt.Exec(); err != nil {
			return err
		}
		tw := styled.NewTableWriter()
		tw.AppendHeader(table.Row{"-", "Rows Affected", "Last Insert ID"})
		tw.AppendRow(table.Row{"OK", s.conn.Changes(), s.conn.LastInsertRowID()})
		s.println(styled.Render(tw))
		return nil
	}

	rs, err := stmt.Query()
	if err != nil {
		return err
	}
	defer rs.Close()

	tw, count, err := renderResultSet(rs)
	if err != nil {
		return err
	}
	s.println(styled.Render(tw))
	s.printHint("%s row(s)", numutil.IntWithCommas(count))
	return nil
}

// renderResultSet reads every row of rs into a table.
func renderResultSet(rs *nsqlitekit.ResultSet) (table.Writer, int, error) {
	names, err := rs.ColumnNames()
	if err != nil {
		return nil, 0, err
	}

	tw := styled.NewTableWriter()
	header := table.Row{}
	for _, name := range names {
		header = append(header, name)
	}
	tw.AppendHeader(header)

	count := 0
	for cur, err := range rs.All() {
		if err != nil {
			return nil, 0, err
		}

		row := make(table.Row, cur.ColumnCount())
		for i := range row {
			row[i], err = formatCell(cur, i)
			if err != nil {
				return nil, 0, err
			}
		}
		tw.AppendRow(row)
		count++
	}

	return tw, count, nil
}

// formatCell decodes a column by its storage class. Numbers are kept as
// numbers so the table aligns them to the right.
func formatCell(cur *nsqlitekit.Cursor, index int) (any, error) {
	class, err := cur.Type(index)
	if err != nil {
		return nil, err
	}

	switch class {
	case nsqlitekit.StorageInteger:
		return cur.Int64(index)
	case nsqlitekit.StorageFloat:
		return cur.Float64(index)
	case nsqlitekit.StorageText:
		return cur.Text(index)
	case nsqlitekit.StorageBlob:
		v, err := cur.RawBlob(index)
		if err != nil {
			return nil, err
		}
		return formatBlob(v), nil
	default:
		return "NULL", nil
	}
}

func formatBlob(b []byte) string {
	preview, more := b, ""
	if len(b) > blobPreview {
		preview, more = b[:blobPreview], "..."
	}
	return fmt.Sprintf("x'%s%s' (%s bytes)", hex.EncodeToString(preview), more, numutil.IntWithCommas(len(b)))
}
