package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const toastDuration = 4 * time.Second

type toastKind int

const (
	toastInfo toastKind = iota
	toastSuccess
	toastWarn
	toastError
)

// toastState is a transient one-line message. id increases with every toast
// so an expiry only clears the toast it was scheduled for.
type toastState struct {
	text string
	kind toastKind
	id   int
}

type toastExpiredMsg struct {
	id int
}

// showToast replaces the current toast and schedules its expiry.
func (m *Model) showToast(text string, kind toastKind) tea.Cmd {
	m.toast.id++
	m.toast.text = text
	m.toast.kind = kind
	id := m.toast.id
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m Model) renderToast() string {
	if m.toast.text == "" {
		return ""
	}
	styles := m.theme.Styles()
	style := styles.InfoText
	switch m.toast.kind {
	case toastSuccess:
		style = styles.SuccessText
	case toastWarn:
		style = styles.WarningText
	case toastError:
		style = styles.DangerText
	}
	return style.Render(truncate(m.toast.text, max(m.width-2, 0)))
}
