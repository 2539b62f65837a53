package app

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/atomicstack/ua-popup-control/internal/cache"
	"github.com/atomicstack/ua-popup-control/internal/catalog"
	"github.com/atomicstack/ua-popup-control/internal/logging"
	"github.com/atomicstack/ua-popup-control/internal/logging/events"
	"github.com/atomicstack/ua-popup-control/internal/prefs"
	"github.com/atomicstack/ua-popup-control/internal/remote"
	"github.com/atomicstack/ua-popup-control/internal/storage"
	"go.uber.org/zap"
)

// Services bundles the collaborators shared by the popup and the CLI
// commands.
type Services struct {
	DB     *sql.DB
	Prefs  *prefs.Store
	Cache  cache.Cache
	Loader *catalog.Loader
	Map    catalog.Map

	store *cache.Store
}

// Open prepares storage, preferences, the response cache and the catalog
// loader. The cache falls back to a no-op for the whole run when it is
// disabled or its store cannot be opened.
func Open(cfg Config) (*Services, error) {
	m, err := catalog.LoadMap(cfg.MapPath)
	if err != nil {
		return nil, err
	}
	path := cfg.StatePath
	if strings.TrimSpace(path) == "" {
		path = storage.DefaultPath()
	}
	db, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	svc := &Services{DB: db, Prefs: prefs.New(db), Map: m, Cache: cache.Noop{}}
	client := remote.New(remote.Options{Retries: 2, RatePerSec: 4})

	if cfg.Offline {
		events.App.Degraded("cache", errors.New("disabled by --offline"))
	} else if store, err := cache.Open(db, client); err != nil {
		logging.Warn("response cache unavailable, using no-op cache", zap.Error(err))
		events.App.Degraded("cache", err)
	} else {
		svc.store = store
		svc.Cache = store
	}

	svc.Loader = catalog.NewLoader(catalog.LoaderOptions{
		BaseURL: cfg.BaseURL,
		Cache:   svc.Cache,
		Stamps:  svc.Prefs,
		Fetcher: client,
	})
	return svc, nil
}

// Close releases everything Open acquired.
func (s *Services) Close() {
	if s == nil {
		return
	}
	if s.store != nil {
		s.store.Close()
	}
	if s.Prefs != nil {
		if err := s.Prefs.Close(); err != nil {
			logging.Error(err)
		}
	}
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			logging.Error(err)
		}
	}
}
