// Package render draws calendar layouts for the terminal with lipgloss.
package render

import (
	"sort"
	"strings"
)

// BaseColors defines global text colors.
type BaseColors struct {
	Foreground string
	Muted      string
	Accent     string
	Border     string
}

// CellColors defines colors for day cells.
type CellColors struct {
	Done   string
	Empty  string
	Future string
	Today  string
}

// Theme defines the color tokens used by the renderer. Values are ANSI-256 codes or
// hex colors.
type Theme struct {
	Name string

	Base BaseColors
	Cell CellColors

	// Locked colors months of the year overview that are not yet open.
	Locked string
}

// DefaultTheme is the standard palette.
var DefaultTheme = Theme{
	Name: "default",
	Base: BaseColors{
		Foreground: "252",
		Muted:      "245",
		Accent:     "75",
		Border:     "240",
	},
	Cell: CellColors{
		Done:   "41",
		Empty:  "238",
		Future: "236",
		Today:  "220",
	},
	Locked: "240",
}

// HighContrastTheme favours legibility over subtlety.
var HighContrastTheme = Theme{
	Name: "high-contrast",
	Base: BaseColors{
		Foreground: "231",
		Muted:      "250",
		Accent:     "51",
		Border:     "231",
	},
	Cell: CellColors{
		Done:   "46",
		Empty:  "250",
		Future: "244",
		Today:  "226",
	},
	Locked: "244",
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

// ThemeByName looks up a palette, ignoring case and surrounding space.
func ThemeByName(name string) (Theme, bool) {
	t, ok := Themes[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// ThemeNames returns the palette names in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(Themes))
	for name := range Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
