package state

// MoveCursorUp moves one row up, wrapping to the bottom.
func (l *Level) MoveCursorUp() bool {
	n := len(l.Items)
	if n == 0 {
		return false
	}
	old := l.Cursor
	if l.Cursor > 0 {
		l.Cursor--
	} else {
		l.Cursor = n - 1
	}
	return old != l.Cursor
}

// MoveCursorDown moves one row down, wrapping to the top.
func (l *Level) MoveCursorDown() bool {
	n := len(l.Items)
	if n == 0 {
		return false
	}
	old := l.Cursor
	if l.Cursor < n-1 {
		l.Cursor++
	} else {
		l.Cursor = 0
	}
	return old != l.Cursor
}

// MoveCursorHome moves the cursor to the first row.
func (l *Level) MoveCursorHome() bool {
	return l.moveCursorTo(0)
}

// MoveCursorEnd moves the cursor to the last row.
func (l *Level) MoveCursorEnd() bool {
	return l.moveCursorTo(len(l.Items) - 1)
}

// MoveCursorPageUp moves the cursor up by one page of maxVisible rows.
func (l *Level) MoveCursorPageUp(maxVisible int) bool {
	return l.moveCursorTo(l.Cursor - l.pageSize(maxVisible))
}

// MoveCursorPageDown moves the cursor down by one page of maxVisible rows.
func (l *Level) MoveCursorPageDown(maxVisible int) bool {
	return l.moveCursorTo(l.Cursor + l.pageSize(maxVisible))
}

func (l *Level) moveCursorTo(idx int) bool {
	n := len(l.Items)
	if n == 0 {
		l.Cursor = 0
		return false
	}
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	old := l.Cursor
	l.Cursor = idx
	return old != l.Cursor
}

func (l *Level) pageSize(maxVisible int) int {
	total := len(l.Items)
	if maxVisible <= 0 || maxVisible > total {
		maxVisible = total
	}
	if maxVisible < 1 {
		maxVisible = 1
	}
	return maxVisible
}

// EnsureCursorVisible adjusts the viewport offset so the cursor stays visible.
func (l *Level) EnsureCursorVisible(maxVisible int) {
	if len(l.Items) == 0 {
		l.Cursor = 0
		l.ViewportOffset = 0
		return
	}
	l.moveCursorTo(l.Cursor)
	if maxVisible <= 0 {
		l.ViewportOffset = 0
		return
	}
	maxOffset := len(l.Items) - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	switch {
	case l.Cursor < l.ViewportOffset:
		l.ViewportOffset = l.Cursor
	case l.Cursor > l.ViewportOffset+maxVisible-1:
		l.ViewportOffset = l.Cursor - maxVisible + 1
	}
	if l.ViewportOffset > maxOffset {
		l.ViewportOffset = maxOffset
	}
	if l.ViewportOffset < 0 {
		l.ViewportOffset = 0
	}
}

// Visible returns the rows inside the viewport together with the index of
// the first one.
func (l *Level) Visible(maxVisible int) ([]Item, int) {
	if maxVisible <= 0 || len(l.Items) <= maxVisible {
		return l.Items, 0
	}
	start := l.ViewportOffset
	if start < 0 {
		start = 0
	}
	if start+maxVisible > len(l.Items) {
		start = len(l.Items) - maxVisible
	}
	l.ViewportOffset = start
	return l.Items[start : start+maxVisible], start
}
