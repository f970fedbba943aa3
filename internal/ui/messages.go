package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tally/internal/records"
)

const (
	errorToastDuration = 10 * time.Second
	copyToastDuration  = 3 * time.Second
)

type loadCompleteMsg[R records.Record] struct {
	res records.LoadResult[R]
}

type submitCompleteMsg struct {
	res records.SubmitResult[records.Item, records.ItemDraft]
}

type deleteCompleteMsg struct {
	res records.DeleteResult
}

type errorToastTickMsg struct{}

func scheduleErrorToastTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return errorToastTickMsg{}
	})
}

type copyToastTickMsg struct{}

func scheduleCopyToastTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return copyToastTickMsg{}
	})
}
