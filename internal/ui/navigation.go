package ui

import (
	"github.com/atomicstack/ua-popup-control/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc":
		return m.handleEscapeKey()
	case "tab", "shift+tab":
		m.toggleFocus()
		return nil
	case "enter":
		return m.applyCommand()
	case "ctrl+w":
		return m.windowCommand()
	case "ctrl+r":
		return m.resetCommand()
	case "ctrl+t":
		return m.testCommand()
	case "ctrl+y":
		return m.copyCommand()
	case "ctrl+b":
		return m.cycleBrowser(1)
	case "ctrl+o":
		return m.cycleOS(1)
	case "ctrl+s":
		return m.toggleSort()
	case "ctrl+l":
		return m.loadCatalogCmd(true)
	case "up":
		return m.moveCursor(m.level.MoveCursorUp)
	case "down":
		return m.moveCursor(m.level.MoveCursorDown)
	case "pgup":
		return m.moveCursor(func() bool { return m.level.MoveCursorPageUp(m.maxVisibleItems()) })
	case "pgdown":
		return m.moveCursor(func() bool { return m.level.MoveCursorPageDown(m.maxVisibleItems()) })
	case "home":
		if m.focus == focusFilter {
			return m.moveCursor(m.level.MoveCursorHome)
		}
	case "end":
		if m.focus == focusFilter {
			return m.moveCursor(m.level.MoveCursorEnd)
		}
	}
	return m.updateFocusedInput(keyMsg)
}

// handleEscapeKey leaves the field, then clears the filter, then quits.
func (m *Model) handleEscapeKey() tea.Cmd {
	if m.focus == focusField {
		m.toggleFocus()
		return nil
	}
	if m.clearFilter() {
		return nil
	}
	return tea.Quit
}

// moveCursor runs move and, when the cursor changed rows, copies the row's
// user-agent into the field.
func (m *Model) moveCursor(move func() bool) tea.Cmd {
	if !move() {
		return nil
	}
	events.UI.Cursor(m.level.ID, m.level.Cursor)
	m.syncViewport()
	m.chooseCurrent()
	return nil
}

func (m *Model) chooseCurrent() {
	item, ok := m.level.Current()
	if !ok {
		return
	}
	events.UI.Choose(m.level.ID, item.UA)
	m.setFieldValue(item.UA)
}

func (m *Model) syncViewport() {
	m.level.EnsureCursorVisible(m.maxVisibleItems())
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.filter.Width = m.inputWidth(m.filter.Prompt)
	m.field.Width = m.inputWidth(m.field.Prompt)
	m.syncViewport()
	return nil
}

func (m *Model) inputWidth(prompt string) int {
	if m.width <= 0 {
		return 0
	}
	w := m.width - len([]rune(prompt)) - 1
	if w < 1 {
		return 1
	}
	return w
}

// maxVisibleItems is the number of table rows that fit once the header, the
// field, the details and the bottom bar are laid out.
func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return -1
	}
	// header, blank, field, details, status, filter prompt
	used := 3 + len(m.detailLines()) + 2
	if m.infoMsg != "" {
		used++
	}
	if m.showFooter {
		used += 2
	}
	remain := m.height - used
	if remain < 1 {
		return 1
	}
	return remain
}
