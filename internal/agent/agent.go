// Package agent is the component that owns user-agent overrides scoped to
// windows and containers and decomposes user-agent strings into the fields a
// browser reports alongside them.
package agent

import (
	"context"
	"strings"
	"sync"

	"github.com/atomicstack/ua-popup-control/internal/logging/events"
)

// DefaultContainer is the cookie store id of the default (non-container)
// browsing context.
const DefaultContainer = "firefox-default"

// Controller is what the popup needs from the agent.
type Controller interface {
	// Update sets value as the override for a window (when windowID is not
	// nil) or for a container. An empty value clears that override.
	Update(ctx context.Context, value string, windowID *int, cookieStoreID string) error
	// Parse decomposes a user-agent string.
	Parse(value string) Info
	// Forget drops the container's entry from the override map.
	Forget(cookieStoreID string)
}

type windowKey struct {
	window    int
	container string
}

// Agent keeps overrides in memory. It is safe for concurrent use.
type Agent struct {
	mu         sync.RWMutex
	containers map[string]string
	windows    map[windowKey]string
}

// New returns an agent seeded with persisted container overrides.
func New(containers map[string]string) *Agent {
	a := &Agent{
		containers: make(map[string]string, len(containers)),
		windows:    make(map[windowKey]string),
	}
	for id, ua := range containers {
		if strings.TrimSpace(ua) != "" {
			a.containers[id] = ua
		}
	}
	return a
}

// Update implements Controller.
func (a *Agent) Update(ctx context.Context, value string, windowID *int, cookieStoreID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if windowID != nil {
		key := windowKey{window: *windowID, container: cookieStoreID}
		if value == "" {
			delete(a.windows, key)
		} else {
			a.windows[key] = value
		}
		events.Agent.Update(value, *windowID, cookieStoreID)
		return nil
	}
	if value == "" {
		delete(a.containers, cookieStoreID)
	} else {
		a.containers[cookieStoreID] = value
	}
	events.Agent.Update(value, -1, cookieStoreID)
	return nil
}

// Forget implements Controller.
func (a *Agent) Forget(cookieStoreID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.containers, cookieStoreID)
	events.Agent.Forget(cookieStoreID)
}

// Parse implements Controller.
func (a *Agent) Parse(value string) Info {
	return Parse(value)
}
