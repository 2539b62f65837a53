package state

// Level holds the picker table state: rows, filter, cursor and viewport.
type Level struct {
	ID             string
	Title          string
	Items          []Item
	Full           []Item
	Filter         string
	Cursor         int
	LastCursor     int
	ViewportOffset int
	// Active is the user-agent whose row is marked selected.
	Active string
}

// NewLevel constructs a Level holding items.
func NewLevel(id, title string, items []Item) *Level {
	l := &Level{
		ID:         id,
		Title:      title,
		Cursor:     -1,
		LastCursor: -1,
	}
	l.UpdateItems(items)
	return l
}

// IndexOf returns the visible index of the row with the given id.
func (l *Level) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range l.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// IndexOfUA returns the first visible row carrying ua.
func (l *Level) IndexOfUA(ua string) int {
	if ua == "" {
		return -1
	}
	for i, item := range l.Items {
		if item.UA == ua {
			return i
		}
	}
	return -1
}

// UpdateItems replaces the rows, keeping the filter applied.
func (l *Level) UpdateItems(items []Item) {
	prevOffset := l.ViewportOffset
	l.Full = CloneItems(items)
	l.applyFilter()
	if len(l.Items) == 0 {
		l.ViewportOffset = 0
		return
	}
	if prevOffset < 0 || prevOffset > len(l.Items)-1 {
		l.ViewportOffset = 0
		return
	}
	l.ViewportOffset = prevOffset
}

// Current returns the row under the cursor.
func (l *Level) Current() (Item, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return Item{}, false
	}
	return l.Items[l.Cursor], true
}

// MarkActive records ua as the selected user-agent and moves the cursor onto
// its row when one is visible. It reports whether a row matched.
func (l *Level) MarkActive(ua string) bool {
	l.Active = ua
	idx := l.IndexOfUA(ua)
	if idx < 0 {
		return false
	}
	l.Cursor = idx
	return true
}

// ClearActive drops the selection mark.
func (l *Level) ClearActive() {
	l.Active = ""
}

// IsActive reports whether item is the marked row.
func (l *Level) IsActive(item Item) bool {
	return l.Active != "" && item.UA == l.Active
}
