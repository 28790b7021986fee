package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tOgg1/habitgrid/internal/calendar"
)

const (
	glyphDone    = "■"
	glyphEmpty   = "□"
	glyphFuture  = "·"
	glyphPadding = " "

	gutterW = 4
	cellW   = 2
	dayW    = 3

	overviewPerRow = 3
)

var weekdayShort = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// Renderer draws layouts with a theme.
type Renderer struct {
	theme Theme
	done  string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithHabitColor draws completed cells in color instead of the theme's done color.
// An empty color keeps the theme default.
func WithHabitColor(color string) Option {
	return func(r *Renderer) {
		if c := strings.TrimSpace(color); c != "" {
			r.done = c
		}
	}
}

// New returns a renderer for theme.
func New(theme Theme, opts ...Option) *Renderer {
	r := &Renderer{theme: theme, done: theme.Cell.Done}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws layout under title.
func (r *Renderer) Render(title string, layout calendar.Layout) string {
	var body string
	switch layout.Kind {
	case calendar.KindYearGrid, calendar.KindRollingGrid:
		body = r.renderRowMajor(layout)
	case calendar.KindWeekAlignedYearGrid:
		body = r.renderWeekColumns(layout)
	case calendar.KindMonthGrid:
		body = r.renderMonth(layout.Cells, layout.Rows)
	case calendar.KindYearOverview:
		body = r.renderOverview(layout)
	case calendar.KindTodayWeek:
		body = r.renderWeek(layout)
	}

	parts := []string{r.header(title, layout)}
	if body != "" {
		parts = append(parts, body)
	}
	parts = append(parts, r.footer(layout))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (r *Renderer) header(title string, layout calendar.Layout) string {
	accent := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(r.theme.Base.Accent))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(r.theme.Base.Muted))

	var scope string
	switch layout.Kind {
	case calendar.KindMonthGrid:
		scope = fmt.Sprintf("%s %d", layout.Start.Month, layout.Start.Year)
	case calendar.KindYearGrid, calendar.KindWeekAlignedYearGrid, calendar.KindYearOverview:
		scope = fmt.Sprintf("%d", layout.Start.Year)
	default:
		scope = fmt.Sprintf("%s .. %s", layout.Start, layout.End)
	}
	if title == "" {
		return accent.Render(scope)
	}
	return accent.Render(title) + " " + muted.Render(scope)
}

func (r *Renderer) footer(layout calendar.Layout) string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(r.theme.Base.Muted))
	total := 0
	if layout.Kind == calendar.KindYearOverview {
		for _, ml := range layout.Months {
			total += ml.Month.Days()
		}
	} else {
		total = len(layout.InScope())
	}
	return muted.Render(fmt.Sprintf("%d/%d days completed", layout.CompletedCount, total))
}

// renderRowMajor draws year and rolling grids. The gutter names the month of the
// first label that falls in each row.
func (r *Renderer) renderRowMajor(layout calendar.Layout) string {
	if layout.Cols <= 0 || layout.Rows <= 0 {
		return ""
	}
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(r.theme.Base.Muted))
	rowLabels := make(map[int]time.Month, len(layout.MonthLabels))
	for _, label := range layout.MonthLabels {
		if _, ok := rowLabels[label.Row]; !ok {
			rowLabels[label.Row] = label.Month
		}
	}

	lines := make([]string, 0, layout.Rows)
	for row := 0; row < layout.Rows; row++ {
		var b strings.Builder
		gutter := ""
		if m, ok := rowLabels[row]; ok {
			gutter = m.String()[:3]
		}
		b.WriteString(muted.Render(padRight(gutter, gutterW)))
		for col := 0; col < layout.Cols; col++ {
			idx := row*layout.Cols + col
			if idx >= len(layout.Cells) {
				break
			}
			b.WriteString(padRight(r.cell(layout.Cells[idx]), cellW))
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return strings.Join(lines, "\n")
}

// renderWeekColumns draws the week-aligned year: a month axis over seven weekday rows.
func (r *Renderer) renderWeekColumns(layout calendar.Layout) string {
	if layout.Cols <= 0 {
		return ""
	}
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(r.theme.Base.Muted))

	axis := []rune(strings.Repeat(" ", layout.Cols*cellW+cellW))
	for _, label := range layout.MonthLabels {
		name := []rune(label.Month.String()[:3])
		at := label.Col * cellW
		for i, ch := range name {
			if at+i < len(axis) {
				axis[at+i] = ch
			}
		}
	}

	lines := []string{muted.Render(strings.Repeat(" ", gutterW) + strings.TrimRight(string(axis), " "))}
	for row := 0; row < calendar.DaysPerWeek; row++ {
		var b strings.Builder
		gutter := ""
		if row%2 == 0 && row < 5 {
			gutter = weekdayShort[row]
		}
		b.WriteString(muted.Render(padRight(gutter, gutterW)))
		for col := 0; col < layout.Cols; col++ {
			idx := col*calendar.DaysPerWeek + row
			if idx >= len(layout.Cells) {
				break
			}
			b.WriteString(padRight(r.cell(layout.Cells[idx]), cellW))
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return strings.Join(lines, "\n")
}

// renderMonth draws a Monday-first month with day numbers.
func (r *Renderer) renderMonth(cells []calendar.Cell, rows int) string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(r.theme.Base.Muted))

	var head strings.Builder
	for _, wd := range weekdayShort {
		head.WriteString(padLeft(wd, dayW))
	}
	lines := []string{muted.Render(head.String())}

	for row := 0; row < rows; row++ {
		var b strings.Builder
		for col := 0; col < calendar.DaysPerWeek; col++ {
			idx := row*calendar.DaysPerWeek + col
			if idx >= len(cells) {
				break
			}
			b.WriteString(padLeft(r.dayNumber(cells[idx]), dayW))
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return strings.Join(lines, "\n")
}

// renderOverview draws the twelve months in a grid of mini calendars.
func (r *Renderer) renderOverview(layout calendar.Layout) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(r.theme.Base.Foreground))
	locked := lipgloss.NewStyle().Foreground(lipgloss.Color(r.theme.Locked))
	block := lipgloss.NewStyle().Width(calendar.DaysPerWeek*dayW + 2)

	blocks := make([]string, 0, len(layout.Months))
	for _, ml := range layout.Months {
		name := title.Render(ml.Month.Month.String())
		body := r.renderMonth(ml.Cells, ml.Rows)
		if ml.Locked {
			name = locked.Render(ml.Month.Month.String() + " (locked)")
			body = locked.Render(stripStyles(body))
		}
		blocks = append(blocks, block.Render(lipgloss.JoinVertical(lipgloss.Left, name, body)))
	}

	var rows []string
	for i := 0; i < len(blocks); i += overviewPerRow {
		end := i + overviewPerRow
		if end > len(blocks) {
			end = len(blocks)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, blocks[i:end]...))
	}
	return strings.Join(rows, "\n\n")
}

// renderWeek draws the seven days of a week on one line.
func (r *Renderer) renderWeek(layout calendar.Layout) string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(r.theme.Base.Muted))
	parts := make([]string, 0, len(layout.Cells))
	for i, cell := range layout.Cells {
		label := weekdayShort[i%calendar.DaysPerWeek]
		parts = append(parts, muted.Render(label)+" "+r.cell(cell))
	}
	return strings.Join(parts, "  ")
}

func (r *Renderer) cell(cell calendar.Cell) string {
	if !cell.InScope {
		return glyphPadding
	}
	style := lipgloss.NewStyle()
	glyph := glyphEmpty
	switch {
	case cell.Completed:
		glyph = glyphDone
		style = style.Foreground(lipgloss.Color(r.done))
	case cell.Future:
		glyph = glyphFuture
		style = style.Foreground(lipgloss.Color(r.theme.Cell.Future))
	default:
		style = style.Foreground(lipgloss.Color(r.theme.Cell.Empty))
	}
	if cell.IsToday {
		style = style.Underline(true).Bold(true)
		if !cell.Completed {
			style = style.Foreground(lipgloss.Color(r.theme.Cell.Today))
		}
	}
	return style.Render(glyph)
}

func (r *Renderer) dayNumber(cell calendar.Cell) string {
	if !cell.InScope {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(r.theme.Cell.Empty))
	switch {
	case cell.Completed:
		style = style.Foreground(lipgloss.Color(r.done)).Bold(true)
	case cell.Future:
		style = style.Foreground(lipgloss.Color(r.theme.Cell.Future))
	}
	if cell.IsToday {
		style = style.Underline(true)
	}
	return style.Render(fmt.Sprintf("%d", cell.Date.Day))
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func padLeft(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}

// stripStyles drops ANSI escape sequences.
func stripStyles(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
