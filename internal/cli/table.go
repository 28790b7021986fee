package cli

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

const tableGap = "  "

// writeTable writes rows under headers. Columns holding only integers are right
// aligned. Widths are display cells with ANSI escapes removed.
func writeTable(out io.Writer, headers []string, rows [][]string) error {
	cols := len(headers)
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return nil
	}

	widths := make([]int, cols)
	numeric := make([]bool, cols)
	for i := range numeric {
		numeric[i] = len(rows) > 0
	}
	for i, h := range headers {
		widths[i] = cellWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < cols; i++ {
			value := cellAt(row, i)
			widths[i] = max(widths[i], cellWidth(value))
			if _, err := strconv.Atoi(stripANSI(value)); err != nil {
				numeric[i] = false
			}
		}
	}

	w := bufio.NewWriter(out)
	line := func(row []string) {
		var b strings.Builder
		for i := 0; i < cols; i++ {
			value := cellAt(row, i)
			pad := strings.Repeat(" ", widths[i]-cellWidth(value))
			switch {
			case numeric[i]:
				b.WriteString(pad + value)
			case i < cols-1:
				b.WriteString(value + pad)
			default:
				b.WriteString(value)
			}
			if i < cols-1 {
				b.WriteString(tableGap)
			}
		}
		w.WriteString(strings.TrimRight(b.String(), " "))
		w.WriteByte('\n')
	}
	if len(headers) > 0 {
		line(headers)
	}
	for _, row := range rows {
		line(row)
	}
	return w.Flush()
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func cellWidth(value string) int {
	return runewidth.StringWidth(stripANSI(value))
}

func formatYesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// stripANSI removes CSI escape sequences.
func stripANSI(value string) string {
	if !strings.Contains(value, "\x1b[") {
		return value
	}
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if value[i] != 0x1b || i+1 >= len(value) || value[i+1] != '[' {
			b.WriteByte(value[i])
			continue
		}
		for i += 2; i < len(value); i++ {
			if c := value[i]; c >= 0x40 && c <= 0x7e {
				break
			}
		}
	}
	return b.String()
}
