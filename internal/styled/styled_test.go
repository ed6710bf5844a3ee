package styled

import (
	"testing"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/stretchr/testify/assert"
)

func withoutColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestNewTableWriter(t *testing.T) {
	withoutColor(t)

	tw := NewTableWriter()
	tw.AppendHeader(table.Row{"id", "name"})
	tw.AppendRow(table.Row{1, "alice"})

	out := Render(tw)
	assert.Contains(t, out, "│ id │ name  │")
	assert.Contains(t, out, "│  1 │ alice │")
	assert.NotContains(t, out, "\x1b[")
}

func TestNewMessageTable(t *testing.T) {
	withoutColor(t)

	out := Render(NewMessageTable("OK", "Transaction started"))
	assert.Contains(t, out, "│ OK                  │")
	assert.Contains(t, out, "│ Transaction started │")
}

func TestColors(t *testing.T) {
	withoutColor(t)

	assert.Equal(t, "hint", DimmedColor().Sprint("hint"))
	assert.Equal(t, "boom", ErrorColor().Sprint("boom"))
	assert.Equal(t, "done", SuccessColor().Sprint("done"))
}
