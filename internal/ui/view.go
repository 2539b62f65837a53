package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
)

const (
	headerSeparator = "  "
	activeMark      = "✓"
)

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
	raw           bool // text contains ANSI escapes; skip style wrapping, use ANSI-aware truncation
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := make([]styledLine, 0, 32)
	lines = append(lines, styledLine{text: m.controlsHeader(), raw: true})
	lines = append(lines, m.tableLines()...)
	lines = append(lines, styledLine{})
	lines = append(lines, styledLine{text: m.field.View(), raw: true})
	lines = append(lines, m.detailLines()...)
	if m.infoMsg != "" {
		lines = append(lines, styledLine{text: " " + m.infoMsg + " ", style: styles.Toast})
	}
	if m.showFooter {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: m.footerText(), style: styles.Footer})
	}
	lines = limitHeight(lines, m.height-2, m.width)
	lines = applyWidth(lines, m.width)

	bottomLines := []styledLine{
		m.statusLine(),
		{text: m.filter.View(), raw: true},
	}
	bottomLines = applyWidth(bottomLines, m.width)
	lines = append(lines, bottomLines...)
	return renderLines(lines)
}

// controlsHeader renders the browser, OS and sort selectors. An OS without
// a catalog for the chosen browser is shown disabled.
func (m *Model) controlsHeader() string {
	render := func(style *lipgloss.Style, value string) string {
		if style == nil {
			return value
		}
		return style.Render(value)
	}
	osStyle := styles.Control
	if !m.ctx.Map.Compatible(m.browser, m.os) {
		osStyle = styles.Disabled
	}
	segments := []string{
		render(styles.ControlLabel, "browser ") + render(styles.Control, m.browser),
		render(styles.ControlLabel, "os ") + render(osStyle, m.os),
		render(styles.ControlLabel, "sort ") + render(styles.Control, string(m.order)),
	}
	switch {
	case m.agent == nil:
		segments = append(segments, render(styles.Header, "[private]"))
	case m.ctx.InContainer():
		segments = append(segments, render(styles.Header, "[container "+m.ctx.CookieStoreID+"]"))
	}
	return strings.Join(segments, headerSeparator)
}

func (m *Model) tableLines() []styledLine {
	if m.loading && len(m.level.Full) == 0 {
		return []styledLine{{text: "Loading catalog…", style: styles.Loading}}
	}
	if len(m.level.Items) == 0 {
		msg := "(no entries)"
		if strings.TrimSpace(m.level.Filter) != "" {
			msg = fmt.Sprintf("No matches for %q", m.level.Filter)
		}
		return []styledLine{{text: msg, style: styles.Info}}
	}
	m.syncViewport()
	items, start := m.level.Visible(m.maxVisibleItems())
	lines := make([]styledLine, 0, len(items))
	for i, item := range items {
		lines = append(lines, m.buildItemLine(item.Label, m.level.IsActive(item), start+i))
	}
	return lines
}

// buildItemLine constructs a single styledLine for a catalog row. The row
// under the cursor is padded so its background spans the full width.
func (m *Model) buildItemLine(label string, active bool, idx int) styledLine {
	indicator := "▌"
	lineStyle := styles.Item
	indicatorStyle := styles.ItemIndicator
	mark := " "
	if active {
		mark = activeMark
		indicatorStyle = styles.ActiveItemIndicator
	}
	if idx == m.level.Cursor {
		indicatorStyle = styles.SelectedItemIndicator
		lineStyle = styles.SelectedItem
	}
	fullText := indicator + mark + " " + label
	if idx == m.level.Cursor && m.width > 0 {
		if pad := m.width - len([]rune(fullText)); pad > 0 {
			fullText += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          fullText,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 2, // indicator and mark
	}
}

// detailLines shows the navigator fields derived from the field value.
func (m *Model) detailLines() []styledLine {
	d := m.details
	rows := [][2]string{
		{"appVersion", d.AppVersion},
		{"platform", fmt.Sprintf("%s  vendor %s  product %s", orDash(d.Platform), orDash(d.Vendor), orDash(d.Product))},
		{"oscpu", d.OSCPU},
	}
	lines := make([]styledLine, 0, len(rows))
	for _, row := range rows {
		key := row[0]
		if styles.DetailKey != nil {
			key = styles.DetailKey.Render(key)
		}
		value := orDash(row[1])
		if styles.DetailValue != nil {
			value = styles.DetailValue.Render(value)
		}
		lines = append(lines, styledLine{text: key + " " + value, raw: true})
	}
	return lines
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func (m *Model) footerText() string {
	apply, window, reset := "apply", "window", "reset"
	if m.ctx.InContainer() {
		apply, window, reset = "apply (container)", "window (container)", "reset (container)"
	}
	return strings.Join([]string{
		"↑/↓ choose",
		"enter " + apply,
		"^w " + window,
		"^r " + reset,
		"^b browser",
		"^o os",
		"^s sort",
		"^l refresh",
		"^t test",
		"^y copy",
		"tab focus",
		"esc back",
	}, "  ")
}

func (m *Model) statusLine() styledLine {
	if m.errMsg != "" {
		return styledLine{text: fmt.Sprintf("Error: %s", m.errMsg), style: styles.Error}
	}
	if warn, msg := m.hasBackendIssue(); warn {
		return styledLine{text: fmt.Sprintf("Preferences: %s", msg), style: styles.Error}
	}
	if m.loading {
		return styledLine{text: "Loading catalog…", style: styles.Loading}
	}
	refreshed := "not cached yet"
	if stamp := m.stamps.Stamp(m.path); !stamp.IsZero() {
		refreshed = "refreshed " + humanize.Time(stamp)
	}
	return styledLine{
		text:  fmt.Sprintf("%s entries · %s", humanize.Comma(int64(len(m.level.Full))), refreshed),
		style: styles.Status,
	}
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			if lipgloss.Width(text) > width {
				text = truncate.StringWithTail(text, uint(width-1), "…")
			}
		} else {
			text = truncateText(text, width)
		}
		line.text = text
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			out[i] = text
			continue
		}
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

func truncateText(text string, width int) string {
	if width <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + "…"
}
