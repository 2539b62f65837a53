package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/ua-popup-control/internal/cache"
	"github.com/atomicstack/ua-popup-control/internal/logging/events"
	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL is the CDN directory the catalog files are served from.
const DefaultBaseURL = "https://cdn.jsdelivr.net/gh/ray-lothian/UserAgent-Switcher/node/"

// RefreshInterval is how old a cached catalog may get before it is re-added
// to the response cache.
const RefreshInterval = 7 * 24 * time.Hour

const backgroundRefreshTimeout = time.Minute

// Stamps persists the last time each catalog path was refreshed, in
// milliseconds since the epoch. Zero means never.
type Stamps interface {
	CacheStamp(path string) (int64, error)
	SetCacheStamp(path string, ms int64) error
}

// Fetcher retrieves a URL over the network.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	BaseURL string
	Cache   cache.Cache
	Stamps  Stamps
	Fetcher Fetcher
	Now     func() time.Time
}

// Loader fetches catalogs, serving from the response cache whenever it can and
// refreshing cached entries in the background once they are a week old.
type Loader struct {
	base    string
	cache   cache.Cache
	stamps  Stamps
	fetcher Fetcher
	now     func() time.Time

	group      singleflight.Group
	background sync.WaitGroup
}

// NewLoader builds a loader. A nil cache selects the no-op cache.
func NewLoader(opts LoaderOptions) *Loader {
	base := opts.BaseURL
	if strings.TrimSpace(base) == "" {
		base = DefaultBaseURL
	}
	c := opts.Cache
	if c == nil {
		c = cache.Noop{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Loader{
		base:    base,
		cache:   c,
		stamps:  opts.Stamps,
		fetcher: opts.Fetcher,
		now:     now,
	}
}

// URL joins the CDN base with a catalog path.
func (l *Loader) URL(path string) string {
	return strings.TrimRight(l.base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Load returns the catalog stored at path. Failures come back as an empty,
// non-nil catalog together with the error so callers can render nothing and
// log the reason.
func (l *Loader) Load(ctx context.Context, path string) (Catalog, error) {
	url := l.URL(path)
	events.Catalog.Load(path, url)

	if stale, last := l.stale(path); stale {
		events.Catalog.RefreshScheduled(path, last)
		l.background.Add(1)
		go func() {
			defer l.background.Done()
			bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundRefreshTimeout)
			defer cancel()
			if err := l.Refresh(bg, path); err != nil {
				events.Catalog.RefreshFailed(path, err)
			}
		}()
	}

	body, err := l.read(ctx, url)
	if err != nil {
		return Catalog{}, err
	}
	list, err := Decode(body)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	events.Catalog.Loaded(path, len(list))
	return list, nil
}

// Refresh adds the catalog at path to the response cache and, once that
// succeeds, records now as its refresh time. Concurrent refreshes of the
// same path share one request.
func (l *Loader) Refresh(ctx context.Context, path string) error {
	url := l.URL(path)
	now := l.now()
	_, err, _ := l.group.Do(path, func() (interface{}, error) {
		if err := l.cache.Add(ctx, url); err != nil {
			return nil, fmt.Errorf("refresh %s: %w", path, err)
		}
		if l.stamps == nil {
			return nil, nil
		}
		if err := l.stamps.SetCacheStamp(path, now.UnixMilli()); err != nil {
			return nil, fmt.Errorf("record refresh of %s: %w", path, err)
		}
		return nil, nil
	})
	if err == nil {
		events.Catalog.Refreshed(path, now)
	}
	return err
}

// Wait blocks until background refreshes started by Load have finished.
func (l *Loader) Wait() {
	l.background.Wait()
}

// LastRefreshed returns when path was last added to the cache, or the zero
// time when it never was.
func (l *Loader) LastRefreshed(path string) time.Time {
	if l.stamps == nil {
		return time.Time{}
	}
	ms, err := l.stamps.CacheStamp(path)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func (l *Loader) stale(path string) (bool, int64) {
	var last int64
	if l.stamps != nil {
		ms, err := l.stamps.CacheStamp(path)
		if err != nil {
			events.Catalog.StampError(path, err)
		} else {
			last = ms
		}
	}
	return l.now().UnixMilli()-last > RefreshInterval.Milliseconds(), last
}

func (l *Loader) read(ctx context.Context, url string) ([]byte, error) {
	body, ok, err := l.cache.Match(ctx, url)
	switch {
	case err != nil:
		events.Cache.MatchError(url, err)
	case ok:
		events.Cache.Hit(url)
		return body, nil
	default:
		events.Cache.Miss(url)
	}
	if l.fetcher == nil {
		return nil, errors.New("no fetcher configured")
	}
	body, _, err = l.fetcher.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return body, nil
}
