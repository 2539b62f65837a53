package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/atomicstack/ua-popup-control/internal/catalog"
	"github.com/atomicstack/ua-popup-control/internal/format/table"
	"github.com/atomicstack/ua-popup-control/internal/logging/events"
	"github.com/dustin/go-humanize"
)

// PrintCatalog writes the catalog for browser and os to w as an aligned
// table, in the given order.
func PrintCatalog(ctx context.Context, cfg Config, browser, os string, order catalog.Order, w io.Writer) error {
	svc, err := Open(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()
	defer svc.Loader.Wait()
	return printCatalog(ctx, svc, browser, os, order, cfg.Refresh, w)
}

func printCatalog(ctx context.Context, svc *Services, browser, os string, order catalog.Order, refresh bool, w io.Writer) error {
	if !svc.Map.Compatible(browser, os) {
		return fmt.Errorf("no catalog for %s on %s", browser, os)
	}
	path := catalog.Path(browser, os)
	if refresh {
		if err := svc.Loader.Refresh(ctx, path); err != nil {
			return err
		}
	}
	records, err := svc.Loader.Load(ctx, path)
	if err != nil {
		return err
	}
	sorted := catalog.Sort(records, order)
	rows := make([][]string, 0, len(sorted)+1)
	rows = append(rows, []string{"BROWSER", "OS", "USER-AGENT"})
	for _, rec := range sorted {
		rows = append(rows, []string{rec.Browser.Label(), rec.OS.Label(), rec.UA})
	}
	for _, line := range table.Format(rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	count := int64(len(sorted))
	summary := fmt.Sprintf("%s %s", humanize.Comma(count), plural(count, "entry", "entries"))
	if at := svc.Loader.LastRefreshed(path); !at.IsZero() {
		summary += ", refreshed " + humanize.Time(at)
	}
	_, err = fmt.Fprintf(w, "\n%s\n", summary)
	return err
}

// ClearCache drops every cached catalog response and reports how many were
// removed.
func ClearCache(ctx context.Context, cfg Config, w io.Writer) error {
	cfg.Offline = false
	svc, err := Open(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()
	return clearCache(ctx, svc, w)
}

func clearCache(ctx context.Context, svc *Services, w io.Writer) error {
	if svc.store == nil {
		return errors.New("response cache is unavailable")
	}
	rows, err := svc.store.Purge(ctx)
	if err != nil {
		return err
	}
	events.Cache.Purged(rows)
	_, err = fmt.Fprintf(w, "removed %s cached %s\n", humanize.Comma(rows), plural(rows, "catalog", "catalogs"))
	return err
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
