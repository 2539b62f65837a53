package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
)

//go:embed map.json
var defaultMap []byte

// Map lists the selectable browsers and operating systems and which pairs
// have a catalog file.
type Map struct {
	Browser  []string            `json:"browser"`
	OS       []string            `json:"os"`
	Matching map[string][]string `json:"matching"`
}

// DefaultMap returns the mapping bundled with the binary.
func DefaultMap() Map {
	m, err := ParseMap(defaultMap)
	if err != nil {
		panic(fmt.Sprintf("bundled map.json is invalid: %v", err))
	}
	return m
}

// LoadMap reads a mapping file. An empty path selects the bundled mapping.
func LoadMap(path string) (Map, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultMap(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Map{}, fmt.Errorf("read map %s: %w", path, err)
	}
	return ParseMap(data)
}

// ParseMap decodes a mapping document.
func ParseMap(data []byte) (Map, error) {
	var m Map
	if err := sonic.Unmarshal(data, &m); err != nil {
		return Map{}, fmt.Errorf("decode map: %w", err)
	}
	if len(m.Browser) == 0 || len(m.OS) == 0 {
		return Map{}, fmt.Errorf("decode map: browser and os lists are required")
	}
	if m.Matching == nil {
		m.Matching = map[string][]string{}
	}
	return m, nil
}

// Compatible reports whether a catalog exists for the browser/OS pair.
func (m Map) Compatible(browser, os string) bool {
	return slices.Contains(m.Matching[strings.ToLower(browser)], strings.ToLower(os))
}

// HasBrowser reports whether name is one of the selectable browsers.
func (m Map) HasBrowser(name string) bool {
	return slices.Contains(m.Browser, name)
}

// HasOS reports whether name is one of the selectable operating systems.
func (m Map) HasOS(name string) bool {
	return slices.Contains(m.OS, name)
}

// NextBrowser cycles through the browser list by delta positions.
func (m Map) NextBrowser(current string, delta int) string {
	return cycle(m.Browser, current, delta)
}

// NextOS cycles through the OS list by delta positions, skipping entries
// that have no catalog for browser. When nothing is compatible it cycles
// through every entry.
func (m Map) NextOS(browser, current string, delta int) string {
	compatible := make([]string, 0, len(m.OS))
	for _, name := range m.OS {
		if m.Compatible(browser, name) || name == current {
			compatible = append(compatible, name)
		}
	}
	if len(compatible) <= 1 {
		return cycle(m.OS, current, delta)
	}
	return cycle(compatible, current, delta)
}

func cycle(list []string, current string, delta int) string {
	if len(list) == 0 {
		return current
	}
	idx := slices.Index(list, current)
	if idx < 0 {
		return list[0]
	}
	n := len(list)
	return list[((idx+delta)%n+n)%n]
}
