package styled

import (
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// NewTableWriter returns a new table.Writer with the custom
// styles for the nsqlitekit shell and bench.
func NewTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault
	tw.Style().Color.Header = text.Colors{text.FgCyan, text.Bold}
	tw.Style().Color.Footer = text.Colors{text.FgCyan, text.Bold}

	return tw
}

// NewMessageTable returns a single cell table with a header, used for
// short shell results like "OK" or an error.
func NewMessageTable(header, message string) table.Writer {
	tw := NewTableWriter()
	tw.AppendHeader(table.Row{header})
	tw.AppendRow(table.Row{message})
	return tw
}

// Render renders tw, dropping its colors when fatih/color output is
// disabled (NO_COLOR or a non terminal stdout).
func Render(tw table.Writer) string {
	if color.NoColor {
		tw.Style().Color = table.ColorOptions{}
	}
	return tw.Render()
}
