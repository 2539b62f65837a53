package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/atomicstack/ua-popup-control/internal/storage"
	"github.com/stretchr/testify/require"
)

type stubGetter struct {
	bodies map[string]string
	types  map[string]string
	err    error
}

func (g stubGetter) Get(_ context.Context, url string) ([]byte, string, error) {
	if g.err != nil {
		return nil, "", g.err
	}
	return []byte(g.bodies[url]), g.types[url], nil
}

func newTestStore(t *testing.T, getter Getter) *Store {
	t.Helper()
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s, err := Open(db, getter)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestStoreAddThenMatch(t *testing.T) {
	const url = "https://cdn.example/browsers/chrome-windows.json"
	s := newTestStore(t, stubGetter{
		bodies: map[string]string{url: `[{"ua":"x"}]`},
		types:  map[string]string{url: "application/json; charset=utf-8"},
	})
	ctx := context.Background()

	_, ok, err := s.Match(ctx, url)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Add(ctx, url))
	body, ok, err := s.Match(ctx, url)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[{"ua":"x"}]`, string(body))
}

func TestStoreSniffsJSONWithoutContentType(t *testing.T) {
	const url = "https://cdn.example/a.json"
	s := newTestStore(t, stubGetter{bodies: map[string]string{url: `{"ok": true}`}})
	require.NoError(t, s.Add(context.Background(), url))
}

func TestStoreRejectsNonJSON(t *testing.T) {
	const url = "https://cdn.example/a.json"
	s := newTestStore(t, stubGetter{
		bodies: map[string]string{url: "<html>nope</html>"},
		types:  map[string]string{url: "text/html"},
	})
	err := s.Add(context.Background(), url)
	require.ErrorIs(t, err, ErrNotCacheable)
	_, ok, err := s.Match(context.Background(), url)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStorePropagatesFetchErrors(t *testing.T) {
	boom := errors.New("offline")
	s := newTestStore(t, stubGetter{err: boom})
	require.ErrorIs(t, s.Add(context.Background(), "https://cdn.example/a.json"), boom)
}

func TestStorePurge(t *testing.T) {
	s := newTestStore(t, stubGetter{
		bodies: map[string]string{"a": `[]`, "b": `[]`},
		types:  map[string]string{"a": "application/json", "b": "application/json"},
	})
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, "a"))
	require.NoError(t, s.Add(ctx, "b"))
	require.NoError(t, s.Add(ctx, "a"))

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	_, ok, _ := s.Match(ctx, "a")
	require.False(t, ok)
}

func TestOpenRequiresDependencies(t *testing.T) {
	_, err := Open(nil, stubGetter{})
	require.Error(t, err)
}

func TestNoopAlwaysMisses(t *testing.T) {
	var c Cache = Noop{}
	require.NoError(t, c.Add(context.Background(), "a"))
	_, ok, err := c.Match(context.Background(), "a")
	require.NoError(t, err)
	require.False(t, ok)
}
