package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"tally/internal/ui/theme"
)

// Output formats for the detail pane.
const (
	FormatRich  = "rich"
	FormatLight = "light"
	FormatPlain = "plain"
)

func styleAppHeader() lipgloss.Style {
	t := theme.Current()
	return lipgloss.NewStyle().
		Foreground(t.Surface).
		Background(t.Primary).
		Bold(true).
		Padding(0, 1)
}

func styleStatsDim() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().TextMuted)
}

func styleID() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Accent).Bold(true)
}

func styleDone() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Success).Bold(true)
}

func stylePane(focused bool) lipgloss.Style {
	t := theme.Current()
	s := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.Border)
	if focused {
		s = s.Border(lipgloss.ThickBorder()).BorderForeground(t.BorderFocused)
	}
	return s
}

func styleErrorToast() lipgloss.Style {
	t := theme.Current()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Error).
		Foreground(t.Text).
		Padding(0, 1)
}

func styleSuccessToast() lipgloss.Style {
	t := theme.Current()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Success).
		Foreground(t.Text).
		Padding(0, 1)
}

func styleErrorText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Error).Bold(true)
}

func styleField() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Primary).Bold(true).Width(12)
}

func styleTableHeader() lipgloss.Style {
	t := theme.Current()
	return lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Padding(0, 1)
}

func styleTableSelected() lipgloss.Style {
	t := theme.Current()
	return lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Selection).
		Bold(true)
}

// buildMarkdownRenderer returns a function rendering markdown at width for
// the given output format. Unknown formats and renderer failures fall back
// to plain word wrapping.
func buildMarkdownRenderer(format string, width int) func(string) string {
	if width < 10 {
		width = 10
	}
	fallback := func(input string) string {
		return wordwrap.String(input, width)
	}

	var style string
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatRich, "dark":
		style = "dark"
	case FormatLight:
		style = "light"
	case FormatPlain, "notty":
		return fallback
	default:
		return fallback
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.TrimSpace(out)
	}
}
