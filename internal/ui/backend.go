package ui

import (
	"github.com/atomicstack/ua-popup-control/internal/backend"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	m.applyBackendEvent(eventMsg.event)
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

func (m *Model) applyBackendEvent(evt backend.Event) {
	if m.backendState == nil {
		m.backendState = make(map[backend.Kind]error)
	}
	m.backendState[evt.Kind] = evt.Err
	if evt.Err != nil {
		m.backendLastErr = evt.Err.Error()
		return
	}

	res := m.dispatcher.Handle(evt)
	if res.UAUpdated || (res.ContainersUpdated && m.ctx.InContainer()) {
		// The field follows the stored override, replacing an edit in progress.
		m.setFieldValue(m.currentOverride())
	}
	if res.Any() {
		m.syncViewport()
	}

	if warn, _ := m.hasBackendIssue(); !warn {
		m.backendLastErr = ""
	}
}

// currentOverride returns the stored override that applies to this popup: the
// container's own override when it has one, else the default-context `ua`.
// Private windows always show the default string.
func (m *Model) currentOverride() string {
	if m.agent == nil {
		return ""
	}
	if m.ctx.InContainer() {
		if ua := m.overrides.ContainerUA(m.ctx.CookieStoreID); ua != "" {
			return ua
		}
	}
	return m.overrides.ActiveUA()
}

func (m *Model) hasBackendIssue() (bool, string) {
	for _, err := range m.backendState {
		if err != nil {
			msg := m.backendLastErr
			if msg == "" {
				msg = err.Error()
			}
			return true, msg
		}
	}
	return false, ""
}
