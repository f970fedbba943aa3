// Package ui renders record views in the terminal with Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"tally/internal/debug"
	"tally/internal/ui/theme"
)

const (
	minTableHeight = 3
	headerHeight   = 1
)

// Config configures a UI application.
type Config struct {
	Version      string
	OutputFormat string
	// Clipboard copies text; defaults to the system clipboard.
	Clipboard func(string) error
	// SaveTheme persists the theme chosen with the theme key. Optional.
	SaveTheme func(string) error
	// Now defaults to time.Now.
	Now func() time.Time
}

// Result reports how a UI application ended.
type Result struct {
	LoggedOut bool
	LogoutErr error
}

// frame is the chrome shared by the list applications: header, table,
// spinner, toasts and help footer.
type frame struct {
	title string
	cfg   Config
	keys  KeyMap

	table   table.Model
	rowIDs  []string
	spinner spinner.Model
	help    help.Model

	errToast  toast
	infoToast toast

	width  int
	height int
	ready  bool

	result Result
}

func newFrame(title string, keys KeyMap, cfg Config) frame {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = clipboard.WriteAll
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Current().Primary)

	t := table.New(table.WithFocused(true), table.WithHeight(minTableHeight))
	f := frame{
		title:   title,
		cfg:     cfg,
		keys:    keys,
		table:   t,
		spinner: sp,
		help:    help.New(),
	}
	f.applyTheme()
	return f
}

func (f *frame) applyTheme() {
	s := table.DefaultStyles()
	s.Header = styleTableHeader()
	s.Selected = styleTableSelected()
	f.table.SetStyles(s)
	f.spinner.Style = lipgloss.NewStyle().Foreground(theme.Current().Primary)
	f.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(theme.Current().Primary).Bold(true)
	f.help.Styles.ShortDesc = styleStatsDim()
	f.help.Styles.FullKey = f.help.Styles.ShortKey
	f.help.Styles.FullDesc = f.help.Styles.ShortDesc
}

// Result returns how the application ended.
func (f *frame) Result() Result { return f.result }

func (f *frame) resize(width, height int) {
	f.width = width
	f.height = height
	f.ready = true
	f.help.Width = width
}

// bodyHeight is the space left for the table and side panes.
func (f *frame) bodyHeight() int {
	h := f.height - headerHeight - lipgloss.Height(f.footer()) - 1
	if h < minTableHeight {
		h = minTableHeight
	}
	return h
}

// selectedID returns the identifier of the row under the cursor.
func (f *frame) selectedID() (string, bool) {
	i := f.table.Cursor()
	if i < 0 || i >= len(f.rowIDs) {
		return "", false
	}
	return f.rowIDs[i], true
}

// setRows replaces the table contents, keeping the cursor on the same
// record when it still exists.
func (f *frame) setRows(ids []string, rows []table.Row) {
	prev, had := f.selectedID()
	f.rowIDs = ids
	f.table.SetRows(rows)
	cursor := 0
	if had {
		for i, id := range ids {
			if id == prev {
				cursor = i
				break
			}
		}
	}
	if len(rows) > 0 {
		f.table.SetCursor(cursor)
	}
}

func (f *frame) showError(generic string, err error) tea.Cmd {
	debug.Logf("ui: %s: %v", generic, err)
	f.errToast.show("⚠ Error", errorBody(generic, err), f.cfg.Now(), errorToastDuration)
	return scheduleErrorToastTick()
}

func (f *frame) showInfo(text string) tea.Cmd {
	f.infoToast.show(text, "", f.cfg.Now(), copyToastDuration)
	return scheduleCopyToastTick()
}

func (f *frame) copySelected() tea.Cmd {
	id, ok := f.selectedID()
	if !ok {
		return nil
	}
	if err := f.cfg.Clipboard(id); err != nil {
		return f.showError("Copy failed", err)
	}
	return f.showInfo(fmt.Sprintf("Copied '%s' to clipboard.", id))
}

func (f *frame) cycleTheme() tea.Cmd {
	name := theme.CycleTheme()
	f.applyTheme()
	if f.cfg.SaveTheme != nil {
		if err := f.cfg.SaveTheme(name); err != nil {
			debug.Logf("ui: save theme: %v", err)
		}
	}
	return f.showInfo("Theme: " + name)
}

// handleFrameMsg processes messages every list application treats alike.
// handled is false when the caller should look at msg itself.
func (f *frame) handleFrameMsg(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.resize(msg.Width, msg.Height)
		return nil, false
	case spinner.TickMsg:
		var c tea.Cmd
		f.spinner, c = f.spinner.Update(msg)
		return c, true
	case errorToastTickMsg:
		if f.errToast.expired(f.cfg.Now()) {
			return nil, true
		}
		return scheduleErrorToastTick(), true
	case copyToastTickMsg:
		if f.infoToast.expired(f.cfg.Now()) {
			return nil, true
		}
		return scheduleCopyToastTick(), true
	}
	return nil, false
}

// handleCommonKey handles bindings shared by every list application.
func (f *frame) handleCommonKey(msg tea.KeyMsg) (cmd tea.Cmd, handled bool) {
	switch {
	case key.Matches(msg, f.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, f.keys.Help):
		f.help.ShowAll = !f.help.ShowAll
		return nil, true
	case key.Matches(msg, f.keys.Copy):
		return f.copySelected(), true
	case key.Matches(msg, f.keys.Theme):
		return f.cycleTheme(), true
	case key.Matches(msg, f.keys.Escape):
		if f.errToast.visible {
			f.errToast.hide()
			return nil, true
		}
	}
	return nil, false
}

func (f *frame) header(count int, loading bool) string {
	title := strings.ToUpper(f.title)
	if f.cfg.Version != "" {
		title = fmt.Sprintf("TALLY %s v%s", title, f.cfg.Version)
	} else {
		title = "TALLY " + title
	}
	status := styleStatsDim().Render(fmt.Sprintf("%d records", count))
	if loading {
		status = f.spinner.View() + " " + styleStatsDim().Render("Loading…")
	}
	line := styleAppHeader().Render(title) + " " + status
	if f.errToast.visible {
		indicator := styleErrorText().Render("⚠ error")
		gap := f.width - lipgloss.Width(line) - lipgloss.Width(indicator)
		if gap > 0 {
			line += strings.Repeat(" ", gap) + indicator
		}
	}
	return line
}

func (f *frame) footer() string {
	return f.help.View(f.keys)
}

// toasts renders visible toasts right-aligned.
func (f *frame) toasts() string {
	now := f.cfg.Now()
	var parts []string
	if s := f.errToast.render(styleErrorToast(), now, f.width-6); s != "" {
		parts = append(parts, s)
	}
	if s := f.infoToast.render(styleSuccessToast(), now, f.width-6); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return ""
	}
	return lipgloss.PlaceHorizontal(f.width, lipgloss.Right, lipgloss.JoinVertical(lipgloss.Right, parts...))
}

// compose stacks header, body, toasts and footer into the full screen.
func (f *frame) compose(header, body string) string {
	parts := []string{header, body}
	if t := f.toasts(); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, f.footer())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// cell truncates s to width terminal cells.
func cell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	return truncate.StringWithTail(s, uint(width), "…")
}
