package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSkipsBlankOverrides(t *testing.T) {
	a := New(map[string]string{"c1": "agent/c1", "c2": "  "})
	require.Equal(t, map[string]string{"c1": "agent/c1"}, a.containers)
}

func TestNewCopiesContainers(t *testing.T) {
	src := map[string]string{"c1": "agent/c1"}
	a := New(src)
	src["c1"] = "changed"
	require.Equal(t, "agent/c1", a.containers["c1"])
}

func TestUpdateScopesWindowOverrides(t *testing.T) {
	ctx := context.Background()
	a := New(nil)
	window := 7

	require.NoError(t, a.Update(ctx, "container-ua", nil, DefaultContainer))
	require.NoError(t, a.Update(ctx, "window-ua", &window, DefaultContainer))
	require.Equal(t, map[string]string{DefaultContainer: "container-ua"}, a.containers)
	require.Equal(t, "window-ua", a.windows[windowKey{window: 7, container: DefaultContainer}])

	require.NoError(t, a.Update(ctx, "", &window, DefaultContainer))
	require.Empty(t, a.windows)
	require.Equal(t, "container-ua", a.containers[DefaultContainer])
}

func TestUpdateEmptyClearsContainer(t *testing.T) {
	ctx := context.Background()
	a := New(map[string]string{"c1": "agent/c1"})
	require.NoError(t, a.Update(ctx, "", nil, "c1"))
	require.Empty(t, a.containers)
}

func TestForgetDropsContainer(t *testing.T) {
	a := New(map[string]string{"c1": "agent/c1", "c2": "agent/c2"})
	a.Forget("c1")
	require.Equal(t, map[string]string{"c2": "agent/c2"}, a.containers)
	a.Forget("missing")
	require.Len(t, a.containers, 1)
}

func TestUpdateHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := New(nil)
	require.Error(t, a.Update(ctx, "x", nil, "c1"))
	require.Empty(t, a.containers)
}

func TestParse(t *testing.T) {
	require.Equal(t, Info{}, Parse("   "))

	chrome := Parse("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	require.Equal(t, "Win32", chrome.Platform)
	require.Equal(t, "Google Inc.", chrome.Vendor)
	require.Equal(t, "Gecko", chrome.Product)
	require.Empty(t, chrome.OSCPU)
	require.Equal(t, "5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", chrome.AppVersion)

	firefox := Parse("Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0")
	require.Equal(t, "Linux x86_64", firefox.Platform)
	require.Empty(t, firefox.Vendor)
	require.Equal(t, "X11; Linux x86_64", firefox.OSCPU)
	require.Equal(t, "5.0 (X11)", firefox.AppVersion)

	var c Controller = New(nil)
	require.Equal(t, firefox, c.Parse("Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"))
}
