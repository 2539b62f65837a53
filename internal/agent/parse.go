package agent

import (
	"strings"

	useragent "github.com/mssola/user_agent"
)

// Info holds the navigator fields a browser reports together with its
// user-agent string.
type Info struct {
	AppVersion string
	Platform   string
	Vendor     string
	Product    string
	OSCPU      string
}

// Parse derives navigator fields from a user-agent string.
func Parse(value string) Info {
	value = strings.TrimSpace(value)
	if value == "" {
		return Info{}
	}
	ua := useragent.New(value)
	browser, _ := ua.Browser()
	engine, _ := ua.Engine()
	osInfo := ua.OSInfo()

	info := Info{
		AppVersion: strings.TrimPrefix(value, "Mozilla/"),
		Platform:   platform(ua.Platform(), osInfo.Name, ua.OS()),
		Vendor:     vendor(browser),
		Product:    "Gecko",
	}
	if engine == "Gecko" || strings.EqualFold(browser, "Firefox") {
		info.OSCPU = oscpu(value)
		info.AppVersion = "5.0 (" + geckoAppPlatform(osInfo.Name) + ")"
	}
	return info
}

func platform(uaPlatform, osName, osFull string) string {
	lower := strings.ToLower(osName + " " + osFull + " " + uaPlatform)
	switch {
	case strings.Contains(lower, "iphone"):
		return "iPhone"
	case strings.Contains(lower, "ipad"):
		return "iPad"
	case strings.Contains(lower, "android"):
		return "Linux armv8l"
	case strings.Contains(lower, "windows"):
		return "Win32"
	case strings.Contains(lower, "mac"):
		return "MacIntel"
	case strings.Contains(lower, "cros"), strings.Contains(lower, "chrome os"):
		return "Linux x86_64"
	case strings.Contains(lower, "linux"), strings.Contains(lower, "x11"):
		if strings.Contains(lower, "i686") {
			return "Linux i686"
		}
		return "Linux x86_64"
	}
	return uaPlatform
}

func vendor(browser string) string {
	switch strings.ToLower(browser) {
	case "chrome", "chromium", "edge", "opera", "yabrowser", "vivaldi", "samsung internet":
		return "Google Inc."
	case "safari":
		return "Apple Computer, Inc."
	}
	return ""
}

// oscpu returns the platform tokens Gecko reports: the first parenthesised
// group minus the revision token.
func oscpu(value string) string {
	start := strings.IndexByte(value, '(')
	end := strings.IndexByte(value, ')')
	if start < 0 || end <= start {
		return ""
	}
	parts := strings.Split(value[start+1:end], ";")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || strings.HasPrefix(part, "rv:") || part == "U" {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "; ")
}

func geckoAppPlatform(osName string) string {
	lower := strings.ToLower(osName)
	switch {
	case strings.Contains(lower, "windows"):
		return "Windows"
	case strings.Contains(lower, "mac"):
		return "Macintosh"
	case strings.Contains(lower, "android"):
		return "Android"
	}
	return "X11"
}
