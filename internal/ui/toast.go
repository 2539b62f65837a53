package ui

import (
	"time"

	"github.com/atomicstack/ua-popup-control/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

const toastDuration = 2 * time.Second

type toastExpiredMsg struct {
	seq int
}

// showToast replaces the current toast and schedules its removal. A toast
// shown later resets the timer of the one it replaced.
func (m *Model) showToast(message string) tea.Cmd {
	m.toastSeq++
	m.infoMsg = message
	events.UI.Toast(message)
	seq := m.toastSeq
	if m.tick == nil {
		return nil
	}
	return m.tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (m *Model) handleToastExpiredMsg(msg tea.Msg) tea.Cmd {
	expired, ok := msg.(toastExpiredMsg)
	if !ok {
		return nil
	}
	if expired.seq == m.toastSeq {
		m.infoMsg = ""
	}
	return nil
}
