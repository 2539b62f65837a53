package state

import (
	"testing"
	"time"
)

func TestOverrideStoreCopiesContainers(t *testing.T) {
	store := NewOverrideStore()
	src := map[string]string{"firefox-container-1": "ua-1"}
	store.SetContainers(src)
	src["firefox-container-1"] = "mutated"
	if got := store.ContainerUA("firefox-container-1"); got != "ua-1" {
		t.Fatalf("expected stored copy, got %q", got)
	}
	store.SetActiveUA("ua")
	if store.ActiveUA() != "ua" {
		t.Fatalf("expected active ua to round trip")
	}
}

func TestStampStore(t *testing.T) {
	store := NewStampStore()
	if !store.Stamp("browsers/chrome-windows.json").IsZero() {
		t.Fatalf("expected zero time for unknown path")
	}
	at := time.UnixMilli(1700000000000)
	store.SetStamp("browsers/chrome-windows.json", at.UnixMilli())
	if got := store.Stamp("browsers/chrome-windows.json"); !got.Equal(at) {
		t.Fatalf("expected %v, got %v", at, got)
	}
}
