package events

import (
	"time"

	"github.com/atomicstack/ua-popup-control/internal/logging"
)

type CatalogTracer struct{}

type CacheTracer struct{}

var (
	Catalog = CatalogTracer{}
	Cache   = CacheTracer{}
)

func (CatalogTracer) Load(path, url string) {
	logging.Trace("catalog.load", map[string]interface{}{"path": path, "url": url})
}

func (CatalogTracer) Loaded(path string, records int) {
	logging.Trace("catalog.loaded", map[string]interface{}{"path": path, "records": records})
}

func (CatalogTracer) Failed(path string, err error) {
	logging.Trace("catalog.failed", map[string]interface{}{"path": path, "error": errString(err)})
}

func (CatalogTracer) Stale(path string, gen uint64) {
	logging.Trace("catalog.stale", map[string]interface{}{"path": path, "generation": gen})
}

func (CatalogTracer) RefreshScheduled(path string, lastMillis int64) {
	logging.Trace("catalog.refresh.scheduled", map[string]interface{}{"path": path, "last": lastMillis})
}

func (CatalogTracer) Refreshed(path string, at time.Time) {
	logging.Trace("catalog.refresh.done", map[string]interface{}{"path": path, "at": at.UTC()})
}

func (CatalogTracer) RefreshFailed(path string, err error) {
	logging.Trace("catalog.refresh.failed", map[string]interface{}{"path": path, "error": errString(err)})
}

func (CatalogTracer) StampError(path string, err error) {
	logging.Trace("catalog.stamp.error", map[string]interface{}{"path": path, "error": errString(err)})
}

func (CacheTracer) Hit(url string) {
	logging.Trace("cache.hit", map[string]interface{}{"url": url})
}

func (CacheTracer) Miss(url string) {
	logging.Trace("cache.miss", map[string]interface{}{"url": url})
}

func (CacheTracer) MatchError(url string, err error) {
	logging.Trace("cache.match.error", map[string]interface{}{"url": url, "error": errString(err)})
}

func (CacheTracer) Stored(url string, size, packed int) {
	logging.Trace("cache.stored", map[string]interface{}{"url": url, "size": size, "packed": packed})
}

func (CacheTracer) Purged(rows int64) {
	logging.Trace("cache.purged", map[string]interface{}{"rows": rows})
}
