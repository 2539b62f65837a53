package catalog

import "strings"

// Path builds the catalog file path for a browser/OS selection, e.g.
// ("Firefox", "Mac/OS X") becomes "browsers/firefox-mac-os-x.json".
func Path(browser, os string) string {
	b := strings.ToLower(browser)
	o := strings.ReplaceAll(strings.ToLower(os), "/", "-")
	o = strings.ReplaceAll(o, " ", "-")
	return "browsers/" + b + "-" + o + ".json"
}
