package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	appErrors "tally/internal/errors"
)

const (
	loginHint = "Session rejected. Run `tally login` to sign in again."
	retryHint = "The server may just be unreachable; try again."
)

// toast is a transient message with a countdown.
type toast struct {
	title    string
	body     string
	start    time.Time
	duration time.Duration
	visible  bool
}

func (t *toast) show(title, body string, now time.Time, d time.Duration) {
	t.title = title
	t.body = body
	t.start = now
	t.duration = d
	t.visible = true
}

func (t *toast) hide() { t.visible = false }

// expired hides the toast once its duration has elapsed and reports
// whether it is gone.
func (t *toast) expired(now time.Time) bool {
	if !t.visible {
		return true
	}
	if now.Sub(t.start) >= t.duration {
		t.visible = false
		return true
	}
	return false
}

func (t *toast) remaining(now time.Time) int {
	left := t.duration - now.Sub(t.start)
	if left < 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

func (t *toast) render(style lipgloss.Style, now time.Time, maxWidth int) string {
	if !t.visible {
		return ""
	}
	if maxWidth < 20 {
		maxWidth = 20
	}
	lines := []string{t.title}
	if t.body != "" {
		for _, l := range strings.Split(t.body, "\n") {
			lines = append(lines, truncate.StringWithTail(l, uint(maxWidth), "…"))
		}
	}
	countdown := fmt.Sprintf("[%ds]", t.remaining(now))

	width := 30
	for _, l := range lines {
		if w := lipgloss.Width(l); w > width {
			width = w
		}
	}
	pad := width - lipgloss.Width(countdown)
	if pad < 0 {
		pad = 0
	}
	lines = append(lines, strings.Repeat(" ", pad)+countdown)
	return style.Render(strings.Join(lines, "\n"))
}

// errorBody builds the toast text for err. The generic message always
// leads; unauthorized failures add a sign-in hint and failures that may
// pass on a second attempt say so.
func errorBody(generic string, err error) string {
	switch {
	case appErrors.IsCode(err, appErrors.CodeUnauthorized):
		return generic + "\n" + loginHint
	case appErrors.Retryable(err):
		return generic + "\n" + retryHint
	}
	return generic
}
