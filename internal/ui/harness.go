package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
)

// Harness drives the UI model programmatically for integration tests.
// Cursor blinking and toast timers are disabled so every command chain
// terminates.
type Harness struct {
	model    *Model
	quitting bool
}

// NewHarness creates a harness for the provided model.
func NewHarness(model *Model) *Harness {
	if model != nil {
		_ = model.filter.Cursor.SetMode(cursor.CursorStatic)
		_ = model.field.Cursor.SetMode(cursor.CursorStatic)
		model.tick = func(time.Duration, func(time.Time) tea.Msg) tea.Cmd { return nil }
	}
	return &Harness{model: model}
}

// Init runs the model's Init command chain.
func (h *Harness) Init() {
	if h.model == nil {
		return
	}
	h.processCmd(h.model.Init())
}

// Send routes a message through the model and executes any returned commands.
func (h *Harness) Send(msg tea.Msg) {
	if h.model == nil {
		return
	}
	mdl, cmd := h.model.Update(msg)
	if updated, ok := mdl.(*Model); ok {
		h.model = updated
	}
	h.processCmd(cmd)
}

func (h *Harness) processCmd(cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		switch msg := msg.(type) {
		case nil:
			return
		case tea.QuitMsg:
			h.quitting = true
			return
		case tea.BatchMsg:
			for _, sub := range msg {
				h.processCmd(sub)
			}
			return
		}
		mdl, next := h.model.Update(msg)
		if updated, ok := mdl.(*Model); ok {
			h.model = updated
		}
		cmd = next
	}
}

// View returns the current view string.
func (h *Harness) View() string {
	if h.model == nil {
		return ""
	}
	return h.model.View()
}

// Model exposes the underlying model.
func (h *Harness) Model() *Model {
	return h.model
}

// Quitting reports whether the model asked the program to exit.
func (h *Harness) Quitting() bool {
	return h.quitting
}
