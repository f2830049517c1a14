package cli

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// statusColor picks a color for the given HTTP status code. Colors are
// disabled when noColor is set or stderr is not a terminal.
func statusColor(code int, noColor bool) *color.Color {
	var c *color.Color
	switch {
	case code >= 200 && code < 300:
		c = color.New(color.FgGreen, color.Bold)
	case code >= 300 && code < 400:
		c = color.New(color.FgYellow, color.Bold)
	default:
		c = color.New(color.FgRed, color.Bold)
	}

	if noColor || !isatty.IsTerminal(os.Stderr.Fd()) {
		c.DisableColor()
	}

	return c
}
