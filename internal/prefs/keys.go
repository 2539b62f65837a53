package prefs

import "fmt"

// Preference keys shared with the agent.
const (
	KeyUA           = "ua"
	KeyBrowser      = "popup-browser"
	KeyOS           = "popup-os"
	KeySort         = "popup-sort"
	KeyContainerUAs = "container-uas"
	KeyTest         = "test"

	cacheKeyPrefix = "cache."
)

// Defaults used when a key has never been written.
const (
	DefaultBrowser = "Chrome"
	DefaultOS      = "Windows"
	DefaultSort    = "descending"
	DefaultTestURL = "https://webbrowsertools.com/useragent/?method=normal&verbose=false"
)

// UIState is the picker selection restored when the popup opens. It has no
// effect on the active override.
type UIState struct {
	Browser string
	OS      string
	Sort    string
}

// CacheKey returns the key holding the refresh time of a catalog path.
func CacheKey(path string) string {
	return cacheKeyPrefix + path
}

// UIState loads the persisted picker selection, falling back to defaults for
// keys that were never written.
func (s *Store) UIState() (UIState, error) {
	state := UIState{Browser: DefaultBrowser, OS: DefaultOS, Sort: DefaultSort}
	for key, dst := range map[string]*string{
		KeyBrowser: &state.Browser,
		KeyOS:      &state.OS,
		KeySort:    &state.Sort,
	} {
		if _, err := s.Get(key, dst); err != nil {
			return state, err
		}
	}
	return state, nil
}

// SetBrowser persists the browser selection.
func (s *Store) SetBrowser(name string) error {
	return s.Set(map[string]interface{}{KeyBrowser: name})
}

// SetOS persists the OS selection.
func (s *Store) SetOS(name string) error {
	return s.Set(map[string]interface{}{KeyOS: name})
}

// SetSort persists the sort order.
func (s *Store) SetSort(order string) error {
	return s.Set(map[string]interface{}{KeySort: order})
}

// ActiveUA returns the override applied outside containers, or "" when none
// is set.
func (s *Store) ActiveUA() (string, error) {
	var ua string
	if _, err := s.Get(KeyUA, &ua); err != nil {
		return "", err
	}
	return ua, nil
}

// SetActiveUA writes the default-context override. An empty value disables it.
func (s *Store) SetActiveUA(ua string) error {
	return s.Set(map[string]interface{}{KeyUA: ua})
}

// ContainerUAs returns the per-container overrides keyed by cookie store id.
func (s *Store) ContainerUAs() (map[string]string, error) {
	uas := map[string]string{}
	if _, err := s.Get(KeyContainerUAs, &uas); err != nil {
		return map[string]string{}, err
	}
	if uas == nil {
		uas = map[string]string{}
	}
	return uas, nil
}

// SetContainerUA records the override of one container.
func (s *Store) SetContainerUA(id, ua string) error {
	uas, err := s.ContainerUAs()
	if err != nil {
		return err
	}
	uas[id] = ua
	return s.Set(map[string]interface{}{KeyContainerUAs: uas})
}

// DeleteContainerUA forgets the override of one container.
func (s *Store) DeleteContainerUA(id string) error {
	uas, err := s.ContainerUAs()
	if err != nil {
		return err
	}
	delete(uas, id)
	return s.Set(map[string]interface{}{KeyContainerUAs: uas})
}

// CacheStamp returns when path was last refreshed in milliseconds since the
// epoch, or 0 when it never was.
func (s *Store) CacheStamp(path string) (int64, error) {
	var ms int64
	if _, err := s.Get(CacheKey(path), &ms); err != nil {
		return 0, fmt.Errorf("cache stamp: %w", err)
	}
	return ms, nil
}

// SetCacheStamp records the refresh time of path.
func (s *Store) SetCacheStamp(path string, ms int64) error {
	return s.Set(map[string]interface{}{CacheKey(path): ms})
}

// TestURL returns the diagnostic page opened by the test command.
func (s *Store) TestURL() (string, error) {
	url := DefaultTestURL
	if _, err := s.Get(KeyTest, &url); err != nil {
		return DefaultTestURL, err
	}
	return url, nil
}
