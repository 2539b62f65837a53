package dispatcher

import (
	"strings"

	"github.com/atomicstack/ua-popup-control/internal/backend"
	"github.com/atomicstack/ua-popup-control/internal/logging"
	"github.com/atomicstack/ua-popup-control/internal/prefs"
	"github.com/atomicstack/ua-popup-control/internal/state"
)

type Result struct {
	UAUpdated         bool
	ContainersUpdated bool
	// StampsUpdated lists catalog paths whose refresh time changed.
	StampsUpdated []string
}

// Any reports whether the event touched anything the popup shows.
func (r Result) Any() bool {
	return r.UAUpdated || r.ContainersUpdated || len(r.StampsUpdated) > 0
}

type Dispatcher struct {
	overrides state.OverrideStore
	stamps    state.StampStore
}

func New(o state.OverrideStore, s state.StampStore) *Dispatcher {
	return &Dispatcher{overrides: o, stamps: s}
}

func (d *Dispatcher) Handle(evt backend.Event) Result {
	var res Result
	if evt.Err != nil {
		return res
	}
	switch evt.Kind {
	case backend.KindPrefs:
		changes, ok := evt.Data.([]prefs.Change)
		if !ok {
			return res
		}
		for _, c := range changes {
			d.apply(c, &res)
		}
	}
	return res
}

func (d *Dispatcher) apply(c prefs.Change, res *Result) {
	switch {
	case c.Key == prefs.KeyUA:
		var ua string
		if err := c.Decode(&ua); err != nil {
			logging.Error(err)
			return
		}
		d.overrides.SetActiveUA(ua)
		res.UAUpdated = true
	case c.Key == prefs.KeyContainerUAs:
		containers := map[string]string{}
		if err := c.Decode(&containers); err != nil {
			logging.Error(err)
			return
		}
		d.overrides.SetContainers(containers)
		res.ContainersUpdated = true
	case strings.HasPrefix(c.Key, prefs.CacheKey("")):
		var ms int64
		if err := c.Decode(&ms); err != nil {
			logging.Error(err)
			return
		}
		path := strings.TrimPrefix(c.Key, prefs.CacheKey(""))
		d.stamps.SetStamp(path, ms)
		res.StampsUpdated = append(res.StampsUpdated, path)
	}
}
