package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tally/internal/ui/theme"
)

// Overlay content widths, passed to lipgloss Style.Width. Width includes
// padding but not the border.
const (
	OverlayWidthStandard = 48
	OverlayWidthWide     = 64

	overlayHPadding = 2
)

// OverlayContentWidth returns the usable width inside an overlay's padding.
func OverlayContentWidth(boxWidth int) int {
	inner := boxWidth - (overlayHPadding * 2)
	if inner < 1 {
		return 1
	}
	return inner
}

func styleOverlay() lipgloss.Style {
	t := theme.Current()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocused).
		Padding(1, overlayHPadding)
}

func styleOverlayDanger() lipgloss.Style {
	return styleOverlay().BorderForeground(theme.Current().Error)
}

func styleOverlayTitle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Accent).Bold(true)
}

func styleOverlayDivider() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Border)
}

func styleOverlayLabel() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Primary).Bold(true)
}

// footerHint is a key hint shown at the bottom of an overlay.
type footerHint struct {
	key  string
	desc string
}

func keyPill(k, desc string) string {
	t := theme.Current()
	pill := lipgloss.NewStyle().Background(t.Primary).Foreground(t.Surface).Bold(true)
	return pill.Render(" "+k+" ") + " " + styleStatsDim().Render(desc)
}

// overlayFooterLine renders hints centered within width.
func overlayFooterLine(hints []footerHint, width int) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, keyPill(h.key, h.desc))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(parts, "  "))
}

// placeOverlay centers content in a width x height region.
func placeOverlay(width, height int, content string) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
