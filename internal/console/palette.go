// Package console implements the interactive menu that drives the signal
// controller: numbered choices on stdin, colored status lines on stdout.
package console

import (
	"os"

	"github.com/mattn/go-isatty"
)

// ///////////////////////////////////////////////
// Palette
// ///////////////////////////////////////////////

const (
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiReset = "\x1b[0m"
)

// Palette wraps text in ANSI colors when enabled.
type Palette struct {
	enabled bool
}

// NewPalette returns a Palette that colors output only if enabled is true.
func NewPalette(enabled bool) Palette {
	return Palette{enabled: enabled}
}

// Enabled reports whether the palette emits escape codes.
func (p Palette) Enabled() bool { return p.enabled }

// Green colors s for confirmations and handler output.
func (p Palette) Green(s string) string { return p.wrap(ansiGreen, s) }

// Red colors s for errors and warnings.
func (p Palette) Red(s string) string { return p.wrap(ansiRed, s) }

func (p Palette) wrap(code, s string) string {
	if !p.enabled {
		return s
	}
	return code + s + ansiReset
}

// ColorEnabled resolves a display.color mode ("auto", "always", "never")
// against the output file. "auto" colors only a terminal.
func ColorEnabled(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if f == nil {
			return false
		}
		fd := f.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
}
