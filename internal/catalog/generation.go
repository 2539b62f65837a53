package catalog

import "sync/atomic"

// Generation hands out monotonically increasing request numbers. A load result
// is only worth applying when its number is still the current one; anything
// older was overtaken by a later selection.
type Generation struct {
	n atomic.Uint64
}

// Next starts a new generation and returns its number.
func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

// Current returns the most recently started generation.
func (g *Generation) Current() uint64 {
	return g.n.Load()
}

// IsCurrent reports whether gen is still the latest generation.
func (g *Generation) IsCurrent(gen uint64) bool {
	return gen == g.n.Load()
}
