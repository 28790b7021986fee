package cli

import (
	"io"
	"os"

	"golang.org/x/term"
)

const (
	// fallbackColumns is used when output is not a terminal.
	fallbackColumns = 52
	minColumns      = 7
	maxColumns      = 61

	// gridGutter and gridCellWidth mirror the row-major renderer.
	gridGutter    = 4
	gridCellWidth = 2
)

func isTerminal(out io.Writer) (int, bool) {
	f, ok := out.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0, false
	}
	return fd, true
}

// gridColumns derives the year grid width from the terminal output is written to.
func gridColumns(out io.Writer) int {
	fd, ok := isTerminal(out)
	if !ok {
		return fallbackColumns
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return fallbackColumns
	}
	return clampColumns((width - gridGutter) / gridCellWidth)
}

func clampColumns(columns int) int {
	if columns < minColumns {
		return minColumns
	}
	if columns > maxColumns {
		return maxColumns
	}
	return columns
}
