package version

import "fmt"

const (
	Version = "v0.1.0"

	colorReset     = "\033[0m"
	colorCyanBold  = "\033[36;1m"
	colorWhiteBold = "\033[37;1m"
)

// asciiArtTpl returns the ASCII art of nsqlitekit.
func asciiArtTpl() string {
	asciiArt := `
    _   _______ ____    __    _ __       __ __ _ __ 
   / | / / ___// __ \  / /   (_) /____  / //_/(_) /_
  /  |/ /\__ \/ / / / / /   / / __/ _ \/ ,<  / / __/
 / /|  /___/ / /_/ / / /___/ / /_/  __/ /| |/ / /_  
/_/ |_//____/\___\_\/_____/_/\__/\___/_/ |_/_/\__/  
%s ` + Version

	asciiArt = asciiArt[1:]                          // This just removes the first newline character
	asciiArt = colorCyanBold + asciiArt + colorReset // Add color to the ASCII art

	return asciiArt
}

// ShellVersion returns the banner of the nsqlitekit shell.
func ShellVersion() string {
	return fmt.Sprintf(asciiArtTpl(), "Shell")
}

// BenchVersion returns the banner of the nsqlitekit benchmark.
func BenchVersion() string {
	return fmt.Sprintf(asciiArtTpl(), "Bench")
}

// EngineLine formats the SQLite library version for the banners.
func EngineLine(sqliteVersion string) string {
	return fmt.Sprintf("%sRunning on SQLite %s%s", colorWhiteBold, sqliteVersion, colorReset)
}
