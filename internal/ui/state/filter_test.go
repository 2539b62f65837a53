package state

import (
	"reflect"
	"testing"
)

func TestSetFilterTracksCursorAndRestoresPosition(t *testing.T) {
	level := newTestLevel("one", "two", "three")
	level.Cursor = 2
	level.SetFilter("two")

	if level.Filter != "two" {
		t.Fatalf("expected filter persisted, got %q", level.Filter)
	}
	if level.Cursor != 0 {
		t.Fatalf("expected filtered cursor at 0, got %d", level.Cursor)
	}
	if len(level.Items) != 1 || level.Items[0].ID != "two" {
		t.Fatalf("expected filtered items to contain only 'two', got %#v", level.Items)
	}

	level.SetFilter("")
	if level.Cursor != 2 {
		t.Fatalf("expected cursor restored to 2, got %d", level.Cursor)
	}
	if level.LastCursor != -1 {
		t.Fatalf("expected last cursor reset, got %d", level.LastCursor)
	}
}

func TestFilterItemsIsCaseInsensitiveSubstring(t *testing.T) {
	items := []Item{
		{ID: "0", Label: "Chrome 120.0 | Windows 10 | Mozilla/5.0 (Windows NT 10.0)"},
		{ID: "1", Label: "Firefox 121.0 | Linux - | Mozilla/5.0 (X11; Linux x86_64)"},
	}
	filtered := FilterItems(items, "WINDOWS nt")
	if len(filtered) != 1 || filtered[0].ID != "0" {
		t.Fatalf("unexpected filtered results %#v", filtered)
	}
	if got := FilterItems(items, "  "); len(got) != 2 {
		t.Fatalf("expected blank filter to keep every row, got %d", len(got))
	}
	if len(FilterItems(items, "fx121")) != 0 {
		t.Fatal("expected no subsequence matches from a substring filter")
	}

	clone := CloneItems(items)
	clone[0].Label = "changed"
	if items[0].Label == "changed" {
		t.Fatal("expected clone to allocate a new backing array")
	}
}

func TestBestMatchIndex(t *testing.T) {
	items := []Item{
		{ID: "one", Label: "Firefox long row"},
		{ID: "two", Label: "Second"},
		{ID: "three", Label: "Firefox"},
	}

	if idx := BestMatchIndex(items, "Second"); idx != 1 {
		t.Fatalf("expected exact label match index 1, got %d", idx)
	}
	if idx := BestMatchIndex(items, "sec"); idx != 1 {
		t.Fatalf("expected prefix match index 1, got %d", idx)
	}
	if idx := BestMatchIndex(items, "fox"); idx != 2 {
		t.Fatalf("expected tightest fuzzy match index 2, got %d", idx)
	}
	if idx := BestMatchIndex(items, "zzz"); idx != 0 {
		t.Fatalf("expected fallback index 0, got %d", idx)
	}
	if idx := BestMatchIndex(nil, "anything"); idx != -1 {
		t.Fatalf("expected -1 for empty slice, got %d", idx)
	}
}

func TestUpdateItemsKeepsFilter(t *testing.T) {
	level := newTestLevel("alpha", "beta")
	level.SetFilter("bet")
	level.UpdateItems([]Item{{ID: "x", Label: "alphabet"}, {ID: "y", Label: "gamma"}, {ID: "z", Label: "beta"}})
	want := []Item{{ID: "x", Label: "alphabet"}, {ID: "z", Label: "beta"}}
	if !reflect.DeepEqual(level.Items, want) {
		t.Fatalf("expected filter reapplied, got %#v", level.Items)
	}
	if len(level.Full) != 3 {
		t.Fatalf("expected full rows retained, got %d", len(level.Full))
	}
}
