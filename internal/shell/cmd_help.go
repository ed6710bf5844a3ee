package shell

import (
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nsqlite/nsqlitekit/internal/styled"
	"github.com/nsqlite/nsqlitekit/internal/util/sysutil"
)

type dotCmd struct {
	name         string
	autocomplete string
	help         string
	args         string
	minArgs      int
	maxArgs      int
	quit         bool
	run          func(s *Shell, args []string) error
}

func cmdHelpCommands() []dotCmd {
	cmds := []dotCmd{
		{name: ".count [table_name]", autocomplete: ".count", help: "Count the number of rows in a table", args: "table_name (required)", minArgs: 1, maxArgs: 1, run: cmdCount},
		{name: ".columns [table_name]", autocomplete: ".columns", help: "List all columns in a table", args: "table_name (required)", minArgs: 1, maxArgs: 1, run: cmdColumns},
		{name: ".schema [table_name]", autocomplete: ".schema", help: "Show the CREATE statements of the database or of one table", args: "table_name (optional)", maxArgs: 1, run: cmdSchema},
		{name: ".version [version]", autocomplete: ".version", help: "Show or update the user version of the database", args: "version (optional, >= 1)", maxArgs: 1, run: cmdVersion},
		{name: ".begin [mode]", autocomplete: ".begin", help: "Start a transaction", args: "mode (optional, deferred, immediate or exclusive)", maxArgs: 1, run: cmdBegin},

		{name: ".commit", autocomplete: ".commit", help: "Commit the open transaction", run: cmdCommit},
		{name: ".rollback", autocomplete: ".rollback", help: "Roll back the open transaction", run: cmdRollback},
		{name: ".tables", autocomplete: ".tables", help: "List all tables in the database", run: cmdTables},
		{name: ".indexes", autocomplete: ".indexes", help: "List all indexes in the database", run: cmdIndexes},
		{name: ".clear", autocomplete: ".clear", help: "Clear the terminal screen", run: cmdClear},
		{name: ".help", autocomplete: ".help", help: "Show the help message", run: cmdHelp},
		{name: ".quit", autocomplete: ".quit", help: "Exit the application", quit: true},
		{name: ".exit", autocomplete: ".exit", help: "Exit the application", quit: true},
		{name: "CTRL+c", help: "Exit the application"},
	}

	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i].name < cmds[j].name
	})

	return cmds
}

// findDotCmd looks up a dot command by the word that invokes it.
func findDotCmd(name string) (dotCmd, bool) {
	for _, cmd := range cmdHelpCommands() {
		if cmd.autocomplete != "" && cmd.autocomplete == name {
			return cmd, true
		}
	}
	return dotCmd{}, false
}

func cmdHelp(s *Shell, _ []string) error {
	s.println("Available commands:")
	cmds := cmdHelpCommands()

	tw := styled.NewTableWriter()
	tw.AppendHeader(table.Row{"Command", "Description", "Arguments"})

	for _, cmd := range cmds {
		tw.AppendRow(table.Row{cmd.name, cmd.help, cmd.args})
	}

	s.println(styled.Render(tw))
	return nil
}

func cmdClear(_ *Shell, _ []string) error {
	sysutil.ClearTerminal()
	return nil
}

func cmdHelpCompleter(line string) []string {
	suggestions := []string{
		"SELECT ",
		"SELECT * FROM ",
		"SELECT COUNT(*) FROM ",
		"INSERT INTO ",
		"UPDATE ",
		"DELETE FROM ",
		"CREATE TABLE ",
		"DROP TABLE ",
		"ALTER TABLE ",
		"PRAGMA ",
	}

	for _, cmd := range cmdHelpCommands() {
		if cmd.autocomplete != "" {
			suggestions = append(suggestions, cmd.autocomplete)
		}
	}

	results := []string{}
	for _, suggestion := range suggestions {
		if strings.HasPrefix(strings.ToLower(suggestion), strings.ToLower(line)) {
			results = append(results, suggestion)
		}
	}

	return results
}
