// Package output renders sampling reports for terminals and machines. It is
// a pure transformation of the sampler's data model; nothing here feeds back
// into measurement.
package output

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorScheme defines the colors used for different elements in the output
type ColorScheme struct {
	Header  *color.Color
	Event   *color.Color
	Stat    *color.Color
	Value   *color.Color
	Unknown *color.Color
	Success *color.Color
	Error   *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Header:  color.New(color.FgCyan, color.Bold),
		Event:   color.New(color.FgBlue, color.Bold),
		Stat:    color.New(color.FgYellow),
		Value:   color.New(color.FgWhite),
		Unknown: color.New(color.FgHiBlack),
		Success: color.New(color.FgGreen),
		Error:   color.New(color.FgRed),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()

	scheme.Header.DisableColor()
	scheme.Event.DisableColor()
	scheme.Stat.DisableColor()
	scheme.Value.DisableColor()
	scheme.Unknown.DisableColor()
	scheme.Success.DisableColor()
	scheme.Error.DisableColor()

	return scheme
}

// IsTerminal reports whether f is attached to a terminal, so color can be
// disabled automatically on pipes and files.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
