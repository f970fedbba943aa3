package ui

import (
	"fmt"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tally/internal/records"
	"tally/internal/ui/theme"
)

const (
	formDescriptionLines = 5
	formTitleLimit       = 200
	formDescriptionLimit = 2000
)

type formField int

const (
	fieldTitle formField = iota
	fieldDescription
	fieldCompleted
	fieldCount
)

// FormSubmittedMsg is sent when the user saves the form.
type FormSubmittedMsg struct {
	Draft records.ItemDraft
}

// FormCancelledMsg is sent when the user closes the form without saving.
type FormCancelledMsg struct{}

// FormOverlay edits an ItemDraft. It does not validate; the caller reports
// problems back with SetError.
type FormOverlay struct {
	heading     string
	targetID    string
	title       textinput.Model
	description textarea.Model
	completed   bool
	focus       formField
	errorMsg    string
	busy        bool
}

// NewFormOverlay builds a form pre-filled from draft. targetID is empty
// when creating.
func NewFormOverlay(heading, targetID string, draft records.ItemDraft) *FormOverlay {
	contentWidth := OverlayContentWidth(OverlayWidthWide)

	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = formTitleLimit
	ti.Width = contentWidth - 2
	ti.SetValue(draft.Title)
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "Description (markdown)"
	ta.CharLimit = formDescriptionLimit
	ta.ShowLineNumbers = false
	ta.SetWidth(contentWidth - 2)
	ta.SetHeight(formDescriptionLines)
	ta.SetValue(draft.Description)
	ta.Blur()

	return &FormOverlay{
		heading:     heading,
		targetID:    targetID,
		title:       ti,
		description: ta,
		completed:   draft.Completed,
	}
}

// Draft returns the current field values.
func (m *FormOverlay) Draft() records.ItemDraft {
	return records.ItemDraft{
		Title:       strings.TrimSpace(m.title.Value()),
		Description: strings.TrimSpace(m.description.Value()),
		Completed:   m.completed,
	}
}

// TargetID returns the record being edited, empty in create mode.
func (m *FormOverlay) TargetID() string { return m.targetID }

// SetError shows msg under the fields.
func (m *FormOverlay) SetError(msg string) { m.errorMsg = msg }

// SetBusy marks the form as waiting for the server.
func (m *FormOverlay) SetBusy(busy bool) { m.busy = busy }

// Init implements tea.Model.
func (m *FormOverlay) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *FormOverlay) Update(msg tea.Msg) (*FormOverlay, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEsc:
			return m, func() tea.Msg { return FormCancelledMsg{} }
		case tea.KeyCtrlS:
			return m.submit()
		case tea.KeyTab:
			return m, m.setFocus((m.focus + 1) % fieldCount)
		case tea.KeyShiftTab:
			return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		case tea.KeyEnter:
			switch m.focus {
			case fieldTitle:
				return m, m.setFocus(fieldDescription)
			case fieldCompleted:
				return m.submit()
			}
		case tea.KeySpace:
			if m.focus == fieldCompleted {
				m.completed = !m.completed
				return m, nil
			}
		}
		if m.focus == fieldCompleted && msg.String() == "x" {
			m.completed = !m.completed
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
	case fieldDescription:
		m.description, cmd = m.description.Update(msg)
	}
	return m, cmd
}

func (m *FormOverlay) setFocus(f formField) tea.Cmd {
	m.focus = f
	m.title.Blur()
	m.description.Blur()
	switch f {
	case fieldTitle:
		return m.title.Focus()
	case fieldDescription:
		return m.description.Focus()
	}
	return nil
}

func (m *FormOverlay) submit() (*FormOverlay, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.errorMsg = ""
	draft := m.Draft()
	return m, func() tea.Msg { return FormSubmittedMsg{Draft: draft} }
}

// View implements tea.Model.
func (m *FormOverlay) View() string {
	t := theme.Current()
	width := OverlayContentWidth(OverlayWidthWide)
	divider := styleOverlayDivider().Render(strings.Repeat("─", width))

	header := styleOverlayTitle().Render(m.heading)
	if m.targetID != "" {
		header += "  " + styleID().Render(m.targetID)
	}

	box := func(focused bool) lipgloss.Style {
		s := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border)
		if focused {
			s = s.BorderForeground(t.BorderFocused)
		}
		return s
	}

	check := "[ ]"
	if m.completed {
		check = styleDone().Render("[✓]")
	}
	completed := check + " Completed"
	if m.focus == fieldCompleted {
		completed = lipgloss.NewStyle().Foreground(t.BorderFocused).Bold(true).Render("› ") + completed
	} else {
		completed = "  " + completed
	}

	lines := []string{
		header,
		divider,
		styleOverlayLabel().Render("Title"),
		box(m.focus == fieldTitle).Render(m.title.View()),
		styleOverlayLabel().Render("Description"),
		box(m.focus == fieldDescription).Render(m.description.View()),
		completed,
	}
	if m.errorMsg != "" {
		lines = append(lines, "", styleErrorText().Render("⚠ "+m.errorMsg))
	}
	if m.busy {
		lines = append(lines, "", styleStatsDim().Render("Saving…"))
	}

	saveKey := "^S"
	if runtime.GOOS == "darwin" {
		saveKey = "⌘S"
	}
	lines = append(lines, "", divider, overlayFooterLine([]footerHint{
		{saveKey, "Save"},
		{"⇥", "Next field"},
		{"esc", "Cancel"},
	}, width))
	lines = append(lines, styleStatsDim().Render(fmt.Sprintf("%d/%d", utf8.RuneCountInString(m.description.Value()), formDescriptionLimit)))

	return styleOverlay().Width(OverlayWidthWide).Render(strings.Join(lines, "\n"))
}
