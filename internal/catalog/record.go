// Package catalog loads the curated list of known user-agent strings, orders it
// by browser version and resolves which browser/OS pairs exist.
package catalog

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// ErrOSNotFound reports a catalog that was fetched and decoded but holds no
// entries for the selected OS.
var ErrOSNotFound = errors.New("OS is not found")

// Component names a browser or an operating system and its version.
type Component struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Label renders "name version", or "-" when either part is unknown.
func (c Component) Label() string {
	if c.Name == "" || c.Version == "" {
		return "-"
	}
	return c.Name + " " + c.Version
}

// Record is a single known user-agent entry.
type Record struct {
	Browser Component `json:"browser"`
	OS      Component `json:"os"`
	UA      string    `json:"ua"`
}

// Catalog is an ordered list of records for one browser/OS selection.
type Catalog []Record

// Decode parses a catalog body. An empty or null catalog yields ErrOSNotFound
// alongside an empty, non-nil result.
func Decode(body []byte) (Catalog, error) {
	var list Catalog
	if err := sonic.Unmarshal(body, &list); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if len(list) == 0 {
		return Catalog{}, ErrOSNotFound
	}
	return list, nil
}

// Clone returns a copy that can be reordered without touching c.
func (c Catalog) Clone() Catalog {
	dup := make(Catalog, len(c))
	copy(dup, c)
	return dup
}

// IndexOf returns the position of the first record whose UA matches ua exactly.
func (c Catalog) IndexOf(ua string) int {
	for i, rec := range c {
		if rec.UA == ua {
			return i
		}
	}
	return -1
}
