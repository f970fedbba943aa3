package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appErrors "tally/internal/errors"
	"tally/internal/records"
)

// ItemView is the record view driving ItemsApp.
type ItemView = records.CrudView[records.Item, records.ItemDraft]

// ItemsApp is the interactive item list with create, edit and delete.
type ItemsApp struct {
	frame
	view *ItemView

	form    *FormOverlay
	confirm *DeleteOverlay

	showDetail  bool
	detail      viewport.Model
	detailID    string
	renderWidth int
	render      func(string) string

	doneW, idW, titleW, descW int
}

// NewItemsApp builds the item list over view.
func NewItemsApp(view *ItemView, cfg Config) *ItemsApp {
	m := &ItemsApp{
		frame:  newFrame("items", DefaultKeyMap(), cfg),
		view:   view,
		detail: viewport.New(0, 0),
	}
	m.layout()
	return m
}

// Init implements tea.Model.
func (m *ItemsApp) Init() tea.Cmd {
	return m.reload()
}

func (m *ItemsApp) reload() tea.Cmd {
	if m.view.FetchState().Loading() {
		return nil
	}
	m.view.BeginLoad()
	view := m.view
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return loadCompleteMsg[records.Item]{res: view.PerformLoad(context.Background())}
	})
}

func (m *ItemsApp) submitCmd(sub records.Submission[records.ItemDraft]) tea.Cmd {
	view := m.view
	return func() tea.Msg {
		return submitCompleteMsg{res: view.PerformSubmit(context.Background(), sub)}
	}
}

func (m *ItemsApp) deleteCmd(d records.Deletion) tea.Cmd {
	view := m.view
	return func() tea.Msg {
		return deleteCompleteMsg{res: view.PerformDelete(context.Background(), d)}
	}
}

// Update implements tea.Model.
func (m *ItemsApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd, handled := m.handleFrameMsg(msg); handled {
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout()
		return m, nil

	case loadCompleteMsg[records.Item]:
		err := m.view.CompleteLoad(msg.res)
		m.refreshRows()
		if err != nil {
			return m, m.showError(m.view.LoadFailedMessage(), err)
		}
		return m, nil

	case submitCompleteMsg:
		sub := msg.res.Submission
		formForSub := m.form != nil && m.view.FormShows(sub)
		err := m.view.CompleteSubmit(msg.res)
		m.refreshRows()
		if formForSub {
			m.form.SetBusy(false)
		}
		if err != nil {
			if formForSub {
				m.form.SetError(records.MsgOperationFailed)
			}
			return m, m.showError(records.MsgOperationFailed, err)
		}
		if !m.view.Form().Open() {
			m.form = nil
		}
		if sub.Op == records.OpCreate {
			m.selectID(msg.res.Record.ID)
		}
		return m, nil

	case deleteCompleteMsg:
		err := m.view.CompleteDelete(msg.res)
		m.refreshRows()
		if !m.view.Form().Open() {
			m.form = nil
		}
		if err != nil {
			return m, m.showError(records.MsgDeleteFailed, err)
		}
		return m, nil

	case FormSubmittedMsg:
		return m, m.submitForm(msg.Draft)

	case FormCancelledMsg:
		m.view.Cancel()
		m.form = nil
		return m, nil

	case DeleteConfirmedMsg:
		m.confirm = nil
		d, err := m.view.ConfirmDelete()
		if err != nil {
			if appErrors.IsCode(err, appErrors.CodeInFlight) {
				return m, m.showInfo("Delete already in progress.")
			}
			return m, nil
		}
		return m, m.deleteCmd(d)

	case DeleteCancelledMsg:
		m.view.DeclineDelete()
		m.confirm = nil
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	if m.form != nil {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *ItemsApp) submitForm(draft records.ItemDraft) tea.Cmd {
	if m.form == nil {
		return nil
	}
	if err := m.view.SetDraft(draft); err != nil {
		m.form.SetError(err.Error())
		return nil
	}
	sub, err := m.view.BeginSubmit()
	if err != nil {
		switch appErrors.CodeOf(err) {
		case appErrors.CodeInFlight:
			m.form.SetError("Already saving…")
		default:
			m.form.SetError(capitalize(err.Error()))
		}
		return nil
	}
	m.form.SetBusy(true)
	return m.submitCmd(sub)
}

func (m *ItemsApp) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.form != nil {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return cmd
	}
	if m.confirm != nil {
		var cmd tea.Cmd
		m.confirm, cmd = m.confirm.Update(msg)
		return cmd
	}
	if key.Matches(msg, m.keys.Escape) {
		m.view.DismissNotice()
	}
	if cmd, handled := m.handleCommonKey(msg); handled {
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m.reload()
	case key.Matches(msg, m.keys.Logout):
		m.result.LogoutErr = m.view.Logout()
		m.result.LoggedOut = true
		return tea.Quit
	case key.Matches(msg, m.keys.New):
		if !m.view.OpenCreate() {
			return nil
		}
		m.form = NewFormOverlay("New item", "", m.view.Draft())
		return m.form.Init()
	case key.Matches(msg, m.keys.Edit):
		id, ok := m.selectedID()
		if !ok || m.view.OpenEdit(id) != nil {
			return nil
		}
		m.form = NewFormOverlay("Edit item", id, m.view.Draft())
		return m.form.Init()
	case key.Matches(msg, m.keys.Delete):
		id, ok := m.selectedID()
		if !ok || m.view.RequestDelete(id) != nil {
			return nil
		}
		it, _ := m.view.PendingDelete()
		m.confirm = NewDeleteOverlay(it.ID, it.Title)
		return nil
	case key.Matches(msg, m.keys.Detail):
		m.showDetail = !m.showDetail
		m.layout()
		return nil
	case key.Matches(msg, m.keys.Escape):
		if m.showDetail {
			m.showDetail = false
			m.layout()
		}
		return nil
	case m.showDetail && key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	m.syncDetail(false)
	return cmd
}

func (m *ItemsApp) selectID(id string) {
	for i, rid := range m.rowIDs {
		if rid == id {
			m.table.SetCursor(i)
			m.syncDetail(false)
			return
		}
	}
}

// layout sizes the table and detail pane for the current window.
func (m *ItemsApp) layout() {
	width, height := m.width, m.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	m.width, m.height = width, height

	body := m.bodyHeight()
	tableOuter := width
	if m.showDetail {
		tableOuter = width * 3 / 5
	}
	inner := tableOuter - 2
	avail := inner - 8
	m.doneW, m.idW = 4, 10
	rest := avail - m.doneW - m.idW
	if rest < 12 {
		rest = 12
	}
	m.titleW = rest * 2 / 5
	m.descW = rest - m.titleW

	m.table.SetColumns([]table.Column{
		{Title: "Done", Width: m.doneW},
		{Title: "ID", Width: m.idW},
		{Title: "Title", Width: m.titleW},
		{Title: "Description", Width: m.descW},
	})
	m.table.SetWidth(inner)
	m.table.SetHeight(body - 2)

	m.detail.Width = width - tableOuter - 2
	m.detail.Height = body - 2
	if m.detail.Width < 10 {
		m.detail.Width = 10
	}
	m.refreshRows()
}

func (m *ItemsApp) refreshRows() {
	items := m.view.Records()
	ids := make([]string, 0, len(items))
	rows := make([]table.Row, 0, len(items))
	for _, it := range items {
		done := ""
		if it.Completed {
			done = "✓"
		}
		ids = append(ids, it.ID)
		rows = append(rows, table.Row{
			done,
			cell(it.ID, m.idW),
			cell(it.Title, m.titleW),
			cell(it.Description, m.descW),
		})
	}
	m.setRows(ids, rows)
	m.syncDetail(true)
}

// syncDetail re-renders the detail pane when the selection changed or
// force is set.
func (m *ItemsApp) syncDetail(force bool) {
	if !m.showDetail {
		return
	}
	id, ok := m.selectedID()
	if !ok {
		m.detailID = ""
		m.detail.SetContent(styleStatsDim().Render("Nothing selected."))
		return
	}
	if id == m.detailID && !force {
		return
	}
	it, ok := m.view.Collection().Find(id)
	if !ok {
		return
	}
	if m.render == nil || m.renderWidth != m.detail.Width {
		m.renderWidth = m.detail.Width
		m.render = buildMarkdownRenderer(m.cfg.OutputFormat, m.detail.Width-2)
	}
	m.detailID = id
	m.detail.SetContent(m.detailContent(it))
	m.detail.GotoTop()
}

func (m *ItemsApp) detailContent(it records.Item) string {
	status := "open"
	if it.Completed {
		status = styleDone().Render("completed")
	}
	lines := []string{
		styleField().Render("ID") + styleID().Render(it.ID),
		styleField().Render("Title") + it.Title,
		styleField().Render("Status") + status,
		"",
	}
	desc := strings.TrimSpace(it.Description)
	if desc == "" {
		lines = append(lines, styleStatsDim().Render("No description."))
	} else {
		lines = append(lines, m.render(desc))
	}
	return strings.Join(lines, "\n")
}

// View implements tea.Model.
func (m *ItemsApp) View() string {
	if !m.ready {
		return "Initializing..."
	}
	snap := m.view.Snapshot()
	bodyHeight := m.bodyHeight()

	var body string
	switch {
	case m.form != nil:
		body = placeOverlay(m.width, bodyHeight, m.form.View())
	case m.confirm != nil:
		body = placeOverlay(m.width, bodyHeight, m.confirm.View())
	default:
		body = m.renderBody(snap, bodyHeight)
	}
	return m.compose(m.header(len(snap.Records), snap.Loading || m.view.InFlight()), body)
}

func (m *ItemsApp) renderBody(snap records.Snapshot[records.Item], height int) string {
	if len(snap.Records) == 0 {
		msg := "No items yet. Press n to create one."
		switch {
		case snap.Loading:
			msg = m.spinner.View() + " Loading items…"
		case snap.Error != "":
			msg = styleErrorText().Render(snap.Error) + styleStatsDim().Render("  ·  press r to retry")
		}
		return placeOverlay(m.width, height, msg)
	}
	list := stylePane(!m.showDetail).Render(m.table.View())
	if !m.showDetail {
		return list
	}
	detail := stylePane(true).Render(m.detail.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
