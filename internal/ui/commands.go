package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atomicstack/ua-popup-control/internal/logging/events"
	"github.com/atomicstack/ua-popup-control/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	msgDefaultUA         = "Default UA, press the reset button instead"
	msgApplied           = "User-Agent is Set"
	msgResetContainer    = "Disabled on this container. Uses the default user-agent string"
	msgReset             = "Disabled. Uses the default user-agent string"
	msgWindowUnsupported = "Window overrides need a window id"
)

var errPrivate = errors.New("overrides are unavailable in private windows")

// applyCommand stores the field value as the override of the default context
// or, inside a container, of that container.
func (m *Model) applyCommand() tea.Cmd {
	value := m.field.Value()
	if value == "" {
		return nil
	}
	if value == m.ctx.DefaultUA {
		return m.showToast(msgDefaultUA)
	}
	toast := m.showToast(msgApplied)
	m.level.MarkActive(value)
	m.syncViewport()
	if m.ctx.InContainer() {
		id := m.ctx.CookieStoreID
		agent := m.agent
		prefs := m.prefs
		return tea.Batch(toast, m.bus.Execute(command.Request{
			Label: "apply:container",
			Handler: func(ctx context.Context) (string, error) {
				if agent == nil {
					return "", errPrivate
				}
				if err := agent.Update(ctx, value, nil, id); err != nil {
					return "", err
				}
				if prefs == nil {
					return "", nil
				}
				return "", prefs.SetContainerUA(id, value)
			},
		}))
	}
	return tea.Batch(toast, m.persist("ua", func() error { return m.prefs.SetActiveUA(value) }))
}

// windowCommand applies the field value to every tab of the current window.
// Nothing is persisted; the override lives as long as the agent does.
func (m *Model) windowCommand() tea.Cmd {
	value := m.field.Value()
	if value == "" {
		return nil
	}
	if m.agent == nil {
		m.errMsg = errPrivate.Error()
		return nil
	}
	if m.ctx.WindowID == nil {
		return m.showToast(msgWindowUnsupported)
	}
	window := *m.ctx.WindowID
	id := m.ctx.CookieStoreID
	agent := m.agent
	return m.bus.Execute(command.Request{
		Label: "window",
		Handler: func(ctx context.Context) (string, error) {
			if err := agent.Update(ctx, value, &window, id); err != nil {
				return "", err
			}
			return fmt.Sprintf("Applied to window %d", window), nil
		},
	})
}

// resetCommand drops the override of the default context or, inside a
// container, of that container. Window overrides are left alone.
func (m *Model) resetCommand() tea.Cmd {
	m.level.ClearActive()
	if m.ctx.InContainer() {
		id := m.ctx.CookieStoreID
		agent := m.agent
		prefs := m.prefs
		toast := m.showToast(msgResetContainer)
		return tea.Batch(toast, m.bus.Execute(command.Request{
			Label: "reset:container",
			Handler: func(ctx context.Context) (string, error) {
				if agent != nil {
					agent.Forget(id)
					if err := agent.Update(ctx, "", nil, id); err != nil {
						return "", err
					}
				}
				if prefs == nil {
					return "", nil
				}
				return "", prefs.DeleteContainerUA(id)
			},
		}))
	}
	toast := m.showToast(msgReset)
	return tea.Batch(toast, m.persist("ua", func() error { return m.prefs.SetActiveUA("") }))
}

// testCommand shows the diagnostic page that echoes the reported user-agent.
func (m *Model) testCommand() tea.Cmd {
	prefs := m.prefs
	return m.bus.Execute(command.Request{
		Label: "test",
		Handler: func(context.Context) (string, error) {
			if prefs == nil {
				return "", errors.New("no preference store")
			}
			url, err := prefs.TestURL()
			if err != nil {
				return "", err
			}
			return "Test page: " + url, nil
		},
	})
}

// copyCommand puts the field value on the system clipboard.
func (m *Model) copyCommand() tea.Cmd {
	value := m.field.Value()
	if value == "" {
		return nil
	}
	copyFn := m.copyFn
	return m.bus.Execute(command.Request{
		Label: "copy",
		Handler: func(context.Context) (string, error) {
			if copyFn == nil {
				return "", errors.New("clipboard unavailable")
			}
			if err := copyFn(value); err != nil {
				return "", err
			}
			return "Copied to clipboard", nil
		},
	})
}

func (m *Model) handleCommandResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(command.Result)
	if !ok {
		return nil
	}
	if result.Err != nil {
		m.errMsg = result.Err.Error()
		events.Action.Error(result.Err)
		return nil
	}
	events.Action.Success(result.Info)
	if strings.TrimSpace(result.Info) == "" {
		return nil
	}
	return m.showToast(result.Info)
}
