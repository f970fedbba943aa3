package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"tally/internal/records"
)

// UserView is the record view driving UsersApp.
type UserView = records.ListView[records.User]

// UsersApp is the read-only account list.
type UsersApp struct {
	frame
	view *UserView

	nameW, roleW int
}

// NewUsersApp builds the user list over view.
func NewUsersApp(view *UserView, cfg Config) *UsersApp {
	m := &UsersApp{
		frame: newFrame("users", DefaultKeyMap().ReadOnly(), cfg),
		view:  view,
	}
	m.layout()
	return m
}

// Init implements tea.Model.
func (m *UsersApp) Init() tea.Cmd {
	return m.reload()
}

func (m *UsersApp) reload() tea.Cmd {
	if m.view.FetchState().Loading() {
		return nil
	}
	m.view.BeginLoad()
	view := m.view
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return loadCompleteMsg[records.User]{res: view.PerformLoad(context.Background())}
	})
}

// Update implements tea.Model.
func (m *UsersApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd, handled := m.handleFrameMsg(msg); handled {
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout()
	case loadCompleteMsg[records.User]:
		err := m.view.CompleteLoad(msg.res)
		m.refreshRows()
		if err != nil {
			return m, m.showError(m.view.LoadFailedMessage(), err)
		}
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Escape) {
			m.view.DismissNotice()
		}
		if cmd, handled := m.handleCommonKey(msg); handled {
			return m, cmd
		}
		switch {
		case key.Matches(msg, m.keys.Refresh):
			return m, m.reload()
		case key.Matches(msg, m.keys.Logout):
			m.result.LogoutErr = m.view.Logout()
			m.result.LoggedOut = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *UsersApp) layout() {
	if m.width <= 0 {
		m.width = 80
	}
	if m.height <= 0 {
		m.height = 24
	}
	inner := m.width - 2
	avail := inner - 4
	m.roleW = avail / 3
	if m.roleW < 8 {
		m.roleW = 8
	}
	m.nameW = avail - m.roleW
	if m.nameW < 8 {
		m.nameW = 8
	}
	m.table.SetColumns([]table.Column{
		{Title: "Username", Width: m.nameW},
		{Title: "Role", Width: m.roleW},
	})
	m.table.SetWidth(inner)
	m.table.SetHeight(m.bodyHeight() - 2)
	m.refreshRows()
}

func (m *UsersApp) refreshRows() {
	users := m.view.Records()
	ids := make([]string, 0, len(users))
	rows := make([]table.Row, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.RecordID())
		rows = append(rows, table.Row{cell(u.Username, m.nameW), cell(u.Role, m.roleW)})
	}
	m.setRows(ids, rows)
}

// View implements tea.Model.
func (m *UsersApp) View() string {
	if !m.ready {
		return "Initializing..."
	}
	snap := m.view.Snapshot()
	height := m.bodyHeight()

	var body string
	if len(snap.Records) == 0 {
		msg := "No users."
		switch {
		case snap.Loading:
			msg = m.spinner.View() + " Loading users…"
		case snap.Error != "":
			msg = styleErrorText().Render(snap.Error) + styleStatsDim().Render("  ·  press r to retry")
		}
		body = placeOverlay(m.width, height, msg)
	} else {
		body = stylePane(true).Render(m.table.View())
	}
	return m.compose(m.header(len(snap.Records), snap.Loading), body)
}
