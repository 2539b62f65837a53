package state

// Item is one catalog row as shown in the picker.
type Item struct {
	// ID is unique within a level; rows are keyed by their sorted position.
	ID string
	// Label is the rendered row and the text the filter matches against.
	Label string
	UA    string
}

// CloneItems produces a shallow copy of the provided items.
func CloneItems(items []Item) []Item {
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}
