package tui

import (
	"math/bits"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

const (
	tileWidth  = 8
	tileHeight = 3
)

// Theme is the board look for one progression tier.
type Theme struct {
	Accent lipgloss.Color // title, border and tier badge
	Empty  lipgloss.Color // background of empty cells
}

// themes by tier (slate, neon pink, galaxy indigo); tiers past the end use
// the last entry.
var themes = []Theme{
	{Accent: lipgloss.Color("244"), Empty: lipgloss.Color("236")},
	{Accent: lipgloss.Color("205"), Empty: lipgloss.Color("53")},
	{Accent: lipgloss.Color("99"), Empty: lipgloss.Color("17")},
}

func themeFor(tier int) Theme {
	if tier < 0 {
		tier = 0
	}
	if tier >= len(themes) {
		tier = len(themes) - 1
	}
	return themes[tier]
}

// tileColors assigns a background per power of two, in runs of three shades
// per hue: slate, blue, purple, yellow, pink, cyan, green, orange, red,
// indigo, violet, fuchsia.
var tileColors = []lipgloss.Color{
	"240", "242",
	"18", "19", "20",
	"54", "55", "56",
	"136", "178", "220",
	"125", "161", "198",
	"30", "37", "44",
	"22", "28", "34",
	"130", "166", "202",
	"124",
	"54", "61", "63",
	"92", "93", "99",
	"127", "163", "201",
}

// tileStyle returns the style for a tile value. Zero renders as an empty
// cell in the theme colour.
func tileStyle(value int, theme Theme) lipgloss.Style {
	base := lipgloss.NewStyle().
		Width(tileWidth).
		Height(tileHeight).
		Align(lipgloss.Center, lipgloss.Center).
		Bold(true)

	if value == 0 {
		return base.Background(theme.Empty)
	}

	idx := bits.Len(uint(value)) - 2 // 2 -> 0
	if idx < 0 {
		idx = 0
	}
	if idx >= len(tileColors) {
		// Beyond the palette the tile takes the theme accent.
		return base.Background(theme.Accent).Foreground(lipgloss.Color("231")).Blink(true)
	}

	fg := lipgloss.Color("231")
	if value <= 4 {
		fg = lipgloss.Color("255")
	}
	return base.Background(tileColors[idx]).Foreground(fg)
}

// tileLabel shortens large values so they fit in a cell.
func tileLabel(value int) string {
	if value == 0 {
		return ""
	}
	switch {
	case value >= 1<<30:
		return strconv.Itoa(value>>30) + "G"
	case value >= 1<<20:
		return strconv.Itoa(value>>20) + "M"
	case value >= 1<<17:
		return strconv.Itoa(value>>10) + "K"
	}
	return strconv.Itoa(value)
}
