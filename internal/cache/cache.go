// Package cache provides the opportunistic response cache consulted before
// catalog files are fetched from the network.
package cache

import (
	"context"
	"errors"
)

// ErrNotCacheable is returned by Add when the response does not look like a
// catalog document.
var ErrNotCacheable = errors.New("response is not cacheable")

// Cache stores responses keyed by URL.
type Cache interface {
	// Match returns the stored body for url; ok is false on a miss.
	Match(ctx context.Context, url string) (body []byte, ok bool, err error)
	// Add fetches url and stores the response.
	Add(ctx context.Context, url string) error
}

// Getter fetches a URL, returning its body and content type.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// Noop is the cache used when no backing store is available: every lookup
// misses and every add succeeds without doing anything.
type Noop struct{}

func (Noop) Match(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Add(context.Context, string) error { return nil }
