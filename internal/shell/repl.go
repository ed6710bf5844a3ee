package shell

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterh/liner"
)

// Start runs the read-eval-print loop until the input asks to quit or the
// context is canceled.
func (s *Shell) Start() error {
	s.println()
	s.println(`Enter ".help" for usage hints and ".quit" or "CTRL+C" to quit`)
	s.println()

	for {
		select {
		case <-s.ctx.Done():
			return nil
		default:
			input, ok := s.prompt()
			if !ok {
				s.Shutdown()
				return nil
			}
			if s.ctx.Err() != nil {
				return nil
			}

			quit, err := s.Execute(input)
			if err != nil {
				s.printError(err)
			}
			if quit {
				s.Shutdown()
				return nil
			}
		}
	}
}

// promptLabel shows the mode of the open transaction, if any.
func (s *Shell) promptLabel() string {
	s.syncTx()
	switch {
	case s.tx != nil:
		return fmt.Sprintf("nsqlitekit(%s)> ", s.tx.Mode())
	case s.conn.InTransaction():
		return "nsqlitekit(tx)> "
	default:
		return "nsqlitekit> "
	}
}

// prompt shows the prompt and reads the input from the user. It returns
// false when the user pressed CTRL+C or closed the input.
func (s *Shell) prompt() (string, bool) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(cmdHelpCompleter)

	if file, err := os.Open(s.historyPath); err == nil {
		_, _ = line.ReadHistory(file)
		file.Close()
	}

	input, err := line.Prompt(s.promptLabel())
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			s.println("CTRL+C pressed, exiting...")
		}
		return "", false
	}

	line.AppendHistory(input)
	if file, err := os.Create(s.historyPath); err == nil {
		_, _ = line.WriteHistory(file)
		file.Close()
	}

	return strings.TrimSpace(input), true
}
