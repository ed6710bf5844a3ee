package sysutil

import (
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ClearTerminal clears the terminal screen in supported operating systems.
func ClearTerminal() {
	clearTerminal(runtime.GOOS, os.Stdout)
}

func clearTerminal(goos string, out io.Writer) {
	cmd := clearCommand(goos)
	if cmd == nil {
		return
	}
	cmd.Stdout = out
	_ = cmd.Run()
}

// clearCommand returns the command that clears the screen on goos, or nil
// when the platform is not supported.
func clearCommand(goos string) *exec.Cmd {
	switch {
	case strings.HasPrefix(goos, "windows"):
		return exec.Command("cmd", "/c", "cls")
	case strings.HasPrefix(goos, "linux"), strings.HasPrefix(goos, "darwin"):
		return exec.Command("clear")
	}
	return nil
}
