// Package theme holds the color palettes used by the terminal UI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme is a set of semantic colors. Every color adapts to light and dark
// terminals.
type Theme struct {
	Name string

	Primary lipgloss.AdaptiveColor // header, focused borders
	Accent  lipgloss.AdaptiveColor // identifiers, titles

	Error   lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Success lipgloss.AdaptiveColor

	Text      lipgloss.AdaptiveColor
	TextMuted lipgloss.AdaptiveColor

	Selection lipgloss.AdaptiveColor // selected row background
	Surface   lipgloss.AdaptiveColor // overlays, toasts

	Border        lipgloss.AdaptiveColor
	BorderFocused lipgloss.AdaptiveColor
}

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// TokyoNight is the default theme.
var TokyoNight = Theme{
	Name:          "tokyonight",
	Primary:       ac("#2e7de9", "#82aaff"),
	Accent:        ac("#b15c00", "#ff966c"),
	Error:         ac("#f52a65", "#ff757f"),
	Warning:       ac("#8c6c3e", "#ffc777"),
	Success:       ac("#587539", "#c3e88d"),
	Text:          ac("#3760bf", "#c8d3f5"),
	TextMuted:     ac("#848cb5", "#636da6"),
	Selection:     ac("#c8c9ce", "#2f334d"),
	Surface:       ac("#d5d6db", "#1e2030"),
	Border:        ac("#a8aecb", "#3b4261"),
	BorderFocused: ac("#2e7de9", "#82aaff"),
}

// Nord follows https://www.nordtheme.com/docs/colors-and-palettes.
var Nord = Theme{
	Name:          "nord",
	Primary:       ac("#5E81AC", "#88C0D0"),
	Accent:        ac("#8FBCBB", "#8FBCBB"),
	Error:         ac("#BF616A", "#BF616A"),
	Warning:       ac("#D08770", "#EBCB8B"),
	Success:       ac("#A3BE8C", "#A3BE8C"),
	Text:          ac("#2E3440", "#ECEFF4"),
	TextMuted:     ac("#4C566A", "#D8DEE9"),
	Selection:     ac("#E5E9F0", "#434C5E"),
	Surface:       ac("#ECEFF4", "#3B4252"),
	Border:        ac("#D8DEE9", "#4C566A"),
	BorderFocused: ac("#5E81AC", "#88C0D0"),
}

// Mono uses only grey levels, for terminals with poor color support.
var Mono = Theme{
	Name:          "mono",
	Primary:       ac("#000000", "#ffffff"),
	Accent:        ac("#303030", "#d0d0d0"),
	Error:         ac("#000000", "#ffffff"),
	Warning:       ac("#303030", "#d0d0d0"),
	Success:       ac("#303030", "#d0d0d0"),
	Text:          ac("#202020", "#e0e0e0"),
	TextMuted:     ac("#707070", "#8a8a8a"),
	Selection:     ac("#d0d0d0", "#3a3a3a"),
	Surface:       ac("#e4e4e4", "#262626"),
	Border:        ac("#a0a0a0", "#585858"),
	BorderFocused: ac("#000000", "#ffffff"),
}

func init() {
	RegisterTheme(TokyoNight)
	RegisterTheme(Nord)
	RegisterTheme(Mono)
}
