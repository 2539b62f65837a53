package backend

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/ua-popup-control/internal/logging/events"
	"github.com/atomicstack/ua-popup-control/internal/prefs"
)

// Kind represents the type of data emitted by the backend watcher.
type Kind int

const (
	// KindPrefs events carry a []prefs.Change.
	KindPrefs Kind = iota
)

// Event conveys updated data or an error from a backend poll.
type Event struct {
	Kind Kind
	Data interface{}
	Err  error
}

// Source is the preference store as seen by the watcher.
type Source interface {
	Revision(ctx context.Context) (int64, error)
	Since(ctx context.Context, rev int64) ([]prefs.Change, int64, error)
	Subscribe() (<-chan prefs.Change, func())
}

// Watcher publishes preference changes. Writes made through the same store
// arrive immediately through its subscription; writes made by other
// processes sharing the database are picked up by polling every interval.
type Watcher struct {
	source   Source
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher starts watching src.
func NewWatcher(src Source, interval time.Duration) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		source:   src,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
	}

	// subscribe and read the starting revision before returning so writes
	// made right after NewWatcher are never missed
	changes, unsubscribe := src.Subscribe()
	rev, err := src.Revision(ctx)
	w.wg.Add(1)
	go w.run(rev, err, changes, unsubscribe)

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of backend events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. The poller exits after its current query
// completes; use Wait if a clean drain is required (e.g. in tests).
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until the poller has exited and the events channel is closed.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) run(rev int64, err error, local <-chan prefs.Change, unsubscribe func()) {
	defer w.wg.Done()
	defer unsubscribe()

	if err != nil && !w.emit(Event{Kind: KindPrefs, Err: err}) {
		return
	}
	// revisions already delivered through the subscription
	seen := map[int64]struct{}{}
	throttle := newThrottle(250 * time.Millisecond)

	interval := w.interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case change, ok := <-local:
			if !ok {
				local = nil
				continue
			}
			if change.Revision <= rev {
				continue
			}
			seen[change.Revision] = struct{}{}
			if !w.emit(Event{Kind: KindPrefs, Data: []prefs.Change{change}}) {
				return
			}
		case <-ticker.C:
			if !throttle.wait(w.ctx) {
				return
			}
			changes, latest, err := w.source.Since(w.ctx, rev)
			if err != nil {
				if !w.emit(Event{Kind: KindPrefs, Err: err}) {
					return
				}
				continue
			}
			external := changes[:0]
			for _, c := range changes {
				if _, ok := seen[c.Revision]; ok {
					continue
				}
				events.Prefs.External(c.Key, c.Revision)
				external = append(external, c)
			}
			for r := range seen {
				if r <= latest {
					delete(seen, r)
				}
			}
			rev = latest
			if len(external) == 0 {
				continue
			}
			if !w.emit(Event{Kind: KindPrefs, Data: external}) {
				return
			}
		}
	}
}

func (w *Watcher) emit(evt Event) bool {
	select {
	case <-w.ctx.Done():
		return false
	case w.events <- evt:
		return true
	}
}
