package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// Order selects the direction the picker lists catalog entries in.
type Order string

const (
	Ascending  Order = "ascending"
	Descending Order = "descending"
)

// ParseOrder accepts "ascending" or "descending" in any case.
func ParseOrder(value string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(value))) {
	case Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	}
	return "", fmt.Errorf("unknown sort order %q", value)
}

// Toggle flips between ascending and descending.
func (o Order) Toggle() Order {
	if o == Ascending {
		return Descending
	}
	return Ascending
}

// Sort orders records by browser version. The ascending order comes from a
// stable sort; descending is that same sequence reversed, so entries with equal
// versions keep a mirrored relative order rather than their input order.
// The input slice is left untouched.
func Sort(records Catalog, order Order) Catalog {
	list := records.Clone()
	slices.SortStableFunc(list, func(a, b Record) int {
		return CompareVersions(a.Browser.Version, b.Browser.Version)
	})
	if order == Descending {
		slices.Reverse(list)
	}
	return list
}
