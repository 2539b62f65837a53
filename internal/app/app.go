package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/atomicstack/ua-popup-control/internal/agent"
	"github.com/atomicstack/ua-popup-control/internal/backend"
	"github.com/atomicstack/ua-popup-control/internal/logging"
	"github.com/atomicstack/ua-popup-control/internal/logging/events"
	"github.com/atomicstack/ua-popup-control/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultUA is reported when no override is active.
const DefaultUA = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

const watchInterval = 1500 * time.Millisecond

// Config describes user-provided application options.
type Config struct {
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
	// StatePath is the SQLite database shared with other popups. Empty
	// selects the XDG state directory.
	StatePath string
	// MapPath overrides the built-in browser/OS map.
	MapPath   string
	BaseURL   string
	DefaultUA string

	WindowID      *int
	CookieStoreID string
	Private       bool

	Offline bool
	Refresh bool
}

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	svc, err := Open(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	var controller agent.Controller
	if !cfg.Private {
		containers, err := svc.Prefs.ContainerUAs()
		if err != nil {
			logging.Error(err)
		}
		controller = agent.New(containers)
	}

	watcher := backend.NewWatcher(svc.Prefs, watchInterval)
	defer func() {
		watcher.Stop()
		watcher.Wait()
	}()

	model := ui.NewModel(ui.Options{
		Context: ui.Context{
			WindowID:      cfg.WindowID,
			CookieStoreID: cfg.CookieStoreID,
			Map:           svc.Map,
			DefaultUA:     cfg.DefaultUA,
			Refresh:       cfg.Refresh,
		},
		Prefs:      svc.Prefs,
		Loader:     svc.Loader,
		Agent:      controller,
		Watcher:    watcher,
		Width:      cfg.Width,
		Height:     cfg.Height,
		ShowFooter: cfg.ShowFooter,
		Verbose:    cfg.Verbose,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	svc.Loader.Wait()
	if errors.Is(err, tea.ErrProgramKilled) {
		events.App.Exit("killed")
		return nil
	}
	if err != nil {
		return fmt.Errorf("run popup: %w", err)
	}
	events.App.Exit("quit")
	return nil
}
