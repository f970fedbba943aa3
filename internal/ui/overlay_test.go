package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"tally/internal/records"
)

func TestDeleteOverlayKeys(t *testing.T) {
	for _, k := range []string{"d", "y"} {
		overlay := NewDeleteOverlay("a1", "Buy milk")
		_, cmd := overlay.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		if cmd == nil {
			t.Fatalf("expected command from %q", k)
		}
		msg, ok := cmd().(DeleteConfirmedMsg)
		if !ok || msg.ID != "a1" {
			t.Fatalf("%q: expected DeleteConfirmedMsg{a1}, got %#v", k, msg)
		}
	}

	overlay := NewDeleteOverlay("a1", "Buy milk")
	_, cmd := overlay.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(DeleteCancelledMsg); !ok {
		t.Fatal("expected esc to cancel")
	}

	_, cmd = overlay.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if cmd != nil {
		t.Fatal("unrelated key should do nothing")
	}
}

func TestDeleteOverlayTruncatesLongTitles(t *testing.T) {
	overlay := NewDeleteOverlay("a1", strings.Repeat("very long title ", 10))
	out := ansi.Strip(overlay.View())
	if !strings.Contains(out, "…") {
		t.Fatalf("expected truncated title:\n%s", out)
	}
}

func TestFormOverlayPrefillAndToggle(t *testing.T) {
	form := NewFormOverlay("Edit item", "b2", records.ItemDraft{Title: "Report", Description: "numbers"})
	if got := form.Draft(); got.Title != "Report" || got.Description != "numbers" || got.Completed {
		t.Fatalf("unexpected prefill: %+v", got)
	}

	form.Update(tea.KeyMsg{Type: tea.KeyTab})
	form.Update(tea.KeyMsg{Type: tea.KeyTab})
	if form.focus != fieldCompleted {
		t.Fatalf("expected focus on completed, got %d", form.focus)
	}
	form.Update(tea.KeyMsg{Type: tea.KeySpace})
	if !form.Draft().Completed {
		t.Fatal("space should toggle completed")
	}

	form.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	form.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if form.focus != fieldTitle {
		t.Fatalf("expected focus back on title, got %d", form.focus)
	}
}

func TestFormOverlaySubmitAndCancel(t *testing.T) {
	form := NewFormOverlay("New item", "", records.ItemDraft{})
	form.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Milk")})

	_, cmd := form.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	msg, ok := cmd().(FormSubmittedMsg)
	if !ok || msg.Draft.Title != "Milk" {
		t.Fatalf("expected submitted draft with title, got %#v", msg)
	}

	form.SetBusy(true)
	if _, cmd := form.Update(tea.KeyMsg{Type: tea.KeyCtrlS}); cmd != nil {
		t.Fatal("busy form must not submit again")
	}

	_, cmd = form.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(FormCancelledMsg); !ok {
		t.Fatal("expected esc to cancel")
	}
}

func TestFormOverlayShowsError(t *testing.T) {
	form := NewFormOverlay("New item", "", records.ItemDraft{})
	form.SetError("Title required")
	if out := ansi.Strip(form.View()); !strings.Contains(out, "Title required") {
		t.Fatalf("expected error in view:\n%s", out)
	}
}

func TestFormOverlayCountsDescriptionRunes(t *testing.T) {
	form := NewFormOverlay("Edit item", "a1", records.ItemDraft{Title: "Café", Description: "héllo✓"})
	out := ansi.Strip(form.View())
	if !strings.Contains(out, "6/2000") || strings.Contains(out, "9/2000") {
		t.Fatalf("expected counter in characters, not bytes:\n%s", out)
	}
}
