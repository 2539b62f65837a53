package ui

import (
	"context"

	"github.com/atomicstack/ua-popup-control/internal/logging/events"
	"github.com/atomicstack/ua-popup-control/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

// cycleBrowser moves to the next browser, following with the OS when the
// current one has no catalog for it, and reloads the catalog.
func (m *Model) cycleBrowser(delta int) tea.Cmd {
	next := m.ctx.Map.NextBrowser(m.browser, delta)
	if next == m.browser {
		return nil
	}
	m.browser = next
	events.UI.Control("browser", next)
	persist := []tea.Cmd{m.persist("browser", func() error { return m.prefs.SetBrowser(next) })}
	if !m.ctx.Map.Compatible(m.browser, m.os) {
		if name := m.ctx.Map.NextOS(m.browser, m.os, 1); name != m.os {
			m.os = name
			events.UI.Control("os", name)
			persist = append(persist, m.persist("os", func() error { return m.prefs.SetOS(name) }))
		}
	}
	return tea.Batch(append(persist, m.loadCatalogCmd(false))...)
}

// cycleOS moves to the next OS that has a catalog for the browser.
func (m *Model) cycleOS(delta int) tea.Cmd {
	next := m.ctx.Map.NextOS(m.browser, m.os, delta)
	if next == m.os {
		return nil
	}
	m.os = next
	events.UI.Control("os", next)
	return tea.Batch(
		m.persist("os", func() error { return m.prefs.SetOS(next) }),
		m.loadCatalogCmd(false),
	)
}

// toggleSort flips the order and re-sorts the rows already loaded.
func (m *Model) toggleSort() tea.Cmd {
	m.order = m.order.Toggle()
	order := string(m.order)
	events.UI.Control("sort", order)
	m.rebuildRows()
	return m.persist("sort", func() error { return m.prefs.SetSort(order) })
}

func (m *Model) persist(label string, write func() error) tea.Cmd {
	if m.prefs == nil {
		return nil
	}
	return m.bus.Execute(command.Request{
		Label: "persist:" + label,
		Handler: func(context.Context) (string, error) {
			return "", write()
		},
	})
}
