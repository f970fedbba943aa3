package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"tally/internal/ui/theme"
)

// DeleteOverlay is a confirmation modal for deleting a record.
type DeleteOverlay struct {
	recordID string
	label    string
}

// DeleteConfirmedMsg is sent when deletion is confirmed.
type DeleteConfirmedMsg struct {
	ID string
}

// DeleteCancelledMsg is sent when the overlay is dismissed without deletion.
type DeleteCancelledMsg struct{}

var (
	deleteConfirmKeys = key.NewBinding(key.WithKeys("d", "y"))
	deleteCancelKeys  = key.NewBinding(key.WithKeys("c", "n", "esc"))
)

// NewDeleteOverlay creates a new delete confirmation overlay.
func NewDeleteOverlay(recordID, label string) *DeleteOverlay {
	return &DeleteOverlay{recordID: recordID, label: label}
}

// Init implements tea.Model.
func (m *DeleteOverlay) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *DeleteOverlay) Update(msg tea.Msg) (*DeleteOverlay, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, deleteConfirmKeys):
			id := m.recordID
			return m, func() tea.Msg { return DeleteConfirmedMsg{ID: id} }
		case key.Matches(msg, deleteCancelKeys):
			return m, func() tea.Msg { return DeleteCancelledMsg{} }
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *DeleteOverlay) View() string {
	t := theme.Current()
	width := OverlayContentWidth(OverlayWidthStandard)

	title := lipgloss.NewStyle().Foreground(t.Error).Bold(true).Render("Delete")
	divider := styleOverlayDivider().Render(strings.Repeat("─", width))
	body := lipgloss.NewStyle().Foreground(t.Text)
	warning := lipgloss.NewStyle().Foreground(t.Warning)
	icon := lipgloss.NewStyle().Foreground(t.Error).Bold(true).Render("✖")

	room := width - lipgloss.Width(m.recordID) - 6
	if room < 8 {
		room = 8
	}
	label := truncate.StringWithTail(m.label, uint(room), "…")
	lines := []string{
		title,
		divider,
		"",
		icon + " " + body.Bold(true).Render("Delete this record?"),
		"",
		"  " + body.Render("● ") + styleID().Render(m.recordID) + body.Render("  "+label),
		"",
		warning.Render("This action cannot be undone."),
		"",
		divider,
		overlayFooterLine([]footerHint{{"d", "Delete"}, {"c/esc", "Cancel"}}, width),
	}
	return styleOverlayDanger().Width(OverlayWidthStandard).Render(strings.Join(lines, "\n"))
}
