package ui

import (
	"github.com/atomicstack/ua-popup-control/internal/agent"
	"github.com/atomicstack/ua-popup-control/internal/logging/events"
	keybind "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// inputKeyMap frees the control keys the popup uses for its own commands.
func inputKeyMap() textinput.KeyMap {
	km := textinput.DefaultKeyMap
	km.DeleteWordBackward = keybind.NewBinding(keybind.WithKeys("alt+backspace"))
	km.CharacterBackward = keybind.NewBinding(keybind.WithKeys("left"))
	km.CharacterForward = keybind.NewBinding(keybind.WithKeys("right"))
	km.LineStart = keybind.NewBinding(keybind.WithKeys("home", "ctrl+a"))
	km.LineEnd = keybind.NewBinding(keybind.WithKeys("end", "ctrl+e"))
	km.Paste = keybind.NewBinding(keybind.WithKeys("ctrl+v"))
	return km
}

func newFilterInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "» "
	ti.Placeholder = "Filter"
	ti.KeyMap = inputKeyMap()
	applyInputStyles(&ti, styles.FilterPrompt, styles.Filter, styles.FilterPlaceholder)
	return ti
}

func newFieldInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "UA: "
	ti.Placeholder = "User-Agent string"
	ti.KeyMap = inputKeyMap()
	applyInputStyles(&ti, styles.FieldPrompt, styles.Field, styles.FilterPlaceholder)
	return ti
}

func applyInputStyles(ti *textinput.Model, prompt, text, placeholder *lipgloss.Style) {
	if prompt != nil {
		ti.PromptStyle = *prompt
	}
	if text != nil {
		ti.TextStyle = *text
	}
	if placeholder != nil {
		ti.PlaceholderStyle = *placeholder
	}
	if styles.Cursor != nil {
		ti.Cursor.Style = *styles.Cursor
	}
}

// setFieldValue fills the user-agent field, falling back to the default
// string when value is empty, and refreshes the parsed details.
func (m *Model) setFieldValue(value string) {
	if value == "" {
		value = m.ctx.DefaultUA
	}
	m.field.SetValue(value)
	m.field.CursorEnd()
	m.level.MarkActive(value)
	m.parseField()
}

func (m *Model) parseField() {
	value := m.field.Value()
	if value == "" || m.agent == nil {
		m.details = agent.Parse(value)
		return
	}
	m.details = m.agent.Parse(value)
}

func (m *Model) toggleFocus() {
	if m.focus == focusFilter {
		m.focus = focusField
		m.filter.Blur()
		m.field.Focus()
		events.UI.Focus("field")
		return
	}
	m.focus = focusFilter
	m.field.Blur()
	m.filter.Focus()
	events.UI.Focus("filter")
}

// updateFocusedInput feeds a key to whichever input has focus and reacts to
// edits of its value.
func (m *Model) updateFocusedInput(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	if m.focus == focusField {
		before := m.field.Value()
		m.field, cmd = m.field.Update(msg)
		if value := m.field.Value(); value != before {
			m.level.MarkActive(value)
			m.parseField()
			m.syncViewport()
		}
		return cmd
	}
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if value := m.filter.Value(); value != before {
		m.level.SetFilter(value)
		if value == "" {
			events.Filter.Cleared(m.level.ID)
		} else {
			events.Filter.Changed(m.level.ID, value, len(m.level.Items))
		}
		m.syncViewport()
	}
	return cmd
}

// updateInputs forwards non-key messages such as cursor blinks to both inputs.
func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var filterCmd, fieldCmd tea.Cmd
	m.filter, filterCmd = m.filter.Update(msg)
	m.field, fieldCmd = m.field.Update(msg)
	return tea.Batch(filterCmd, fieldCmd)
}

func (m *Model) clearFilter() bool {
	if m.filter.Value() == "" {
		return false
	}
	m.filter.SetValue("")
	m.level.SetFilter("")
	events.Filter.Cleared(m.level.ID)
	m.syncViewport()
	return true
}
