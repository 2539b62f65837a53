package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/atomicstack/ua-popup-control/internal/catalog"
	"github.com/atomicstack/ua-popup-control/internal/format/table"
	"github.com/atomicstack/ua-popup-control/internal/logging"
	"github.com/atomicstack/ua-popup-control/internal/logging/events"
	uistate "github.com/atomicstack/ua-popup-control/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

const catalogLoadTimeout = 30 * time.Second

// catalogLoadedMsg carries the outcome of one catalog load tagged with the
// generation that requested it.
type catalogLoadedMsg struct {
	gen       uint64
	path      string
	records   catalog.Catalog
	refreshed time.Time
	err       error
}

// loadCatalogCmd starts a new generation for the current selection. When
// force is set the catalog is refreshed into the cache before it is read.
func (m *Model) loadCatalogCmd(force bool) tea.Cmd {
	gen := m.gen.Next()
	path := catalog.Path(m.browser, m.os)
	m.path = path
	m.loading = true
	loader := m.loader
	return func() tea.Msg {
		if loader == nil {
			return catalogLoadedMsg{gen: gen, path: path, records: catalog.Catalog{}, err: errors.New("no catalog loader configured")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), catalogLoadTimeout)
		defer cancel()
		if force {
			if err := loader.Refresh(ctx, path); err != nil {
				events.Catalog.RefreshFailed(path, err)
			}
		}
		records, err := loader.Load(ctx, path)
		return catalogLoadedMsg{
			gen:       gen,
			path:      path,
			records:   records,
			refreshed: loader.LastRefreshed(path),
			err:       err,
		}
	}
}

func (m *Model) handleCatalogLoadedMsg(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(catalogLoadedMsg)
	if !ok {
		return nil
	}
	if !m.gen.IsCurrent(loaded.gen) {
		events.Catalog.Stale(loaded.path, loaded.gen)
		return nil
	}
	m.loading = false
	if !loaded.refreshed.IsZero() {
		m.stamps.SetStamp(loaded.path, loaded.refreshed.UnixMilli())
	}
	if loaded.err != nil {
		events.Catalog.Failed(loaded.path, loaded.err)
		logging.Error(loaded.err)
		m.records = catalog.Catalog{}
		if errors.Is(loaded.err, catalog.ErrOSNotFound) {
			m.errMsg = fmt.Sprintf("No entries for %s on %s", m.browser, m.os)
		} else {
			m.errMsg = loaded.err.Error()
		}
		m.rebuildRows()
		return nil
	}
	m.errMsg = ""
	m.records = loaded.records
	m.rebuildRows()
	return nil
}

// rebuildRows renders the loaded records in the current order, keeps the
// filter applied and marks the row matching the field.
func (m *Model) rebuildRows() {
	sorted := catalog.Sort(m.records, m.order)
	rows := make([][]string, len(sorted))
	for i, rec := range sorted {
		rows[i] = []string{rec.Browser.Label(), rec.OS.Label(), rec.UA}
	}
	labels := table.Format(rows, nil)
	items := make([]uistate.Item, len(sorted))
	for i, rec := range sorted {
		items[i] = uistate.Item{ID: strconv.Itoa(i), Label: labels[i], UA: rec.UA}
	}
	m.level.UpdateItems(items)
	m.level.MarkActive(m.field.Value())
	m.filter.Placeholder = fmt.Sprintf("Filter among %d", len(items))
	m.syncViewport()
}
