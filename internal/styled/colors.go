package styled

import "github.com/fatih/color"

// DimmedColor returns a dimmed *color.Color to print secondary information.
func DimmedColor() *color.Color {
	return color.RGB(128, 128, 128)
}

// ErrorColor returns a *color.Color to print errors.
func ErrorColor() *color.Color {
	return color.New(color.FgRed, color.Bold)
}

// SuccessColor returns a *color.Color to print confirmations.
func SuccessColor() *color.Color {
	return color.New(color.FgGreen)
}
