package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atomicstack/ua-popup-control/internal/app"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

// EnvPrefix is prepended to every flag name (upper-cased, dashes turned into
// underscores) to form its environment variable.
const EnvPrefix = "UA_POPUP_CONTROL"

const (
	flagWidth     = "width"
	flagHeight    = "height"
	flagFooter    = "footer"
	flagVerbose   = "verbose"
	flagTrace     = "trace"
	flagLogFile   = "log-file"
	flagState     = "state"
	flagMap       = "map"
	flagCDN       = "cdn"
	flagDefaultUA = "default-ua"
	flagWindow    = "window"
	flagContainer = "container"
	flagPrivate   = "private"
	flagOffline   = "offline"
	flagRefresh   = "refresh"
)

// BindFlags registers the runtime flags on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.Int(flagWidth, 0, "desired viewport width in cells (0 uses terminal width)")
	fs.Int(flagHeight, 0, "desired viewport height in rows (0 uses terminal height)")
	fs.Bool(flagFooter, false, "enable footer hint row (disabled by default)")
	fs.Bool(flagVerbose, false, "print success messages for actions")
	fs.Bool(flagTrace, false, "enable verbose JSON trace logging")
	fs.String(flagLogFile, "", "path to the log file")
	fs.String(flagState, "", "path to the state database (defaults to the XDG state dir)")
	fs.String(flagMap, "", "path to a browser/OS map.json (defaults to the built-in map)")
	fs.String(flagCDN, "", "base URL the catalog files are fetched from")
	fs.String(flagDefaultUA, app.DefaultUA, "user-agent string reported when no override is active")
	fs.Int(flagWindow, -1, "window id of the current tab (-1 when unknown)")
	fs.String(flagContainer, "", "cookie store id of the current tab's container")
	fs.Bool(flagPrivate, false, "run without the agent, as in a private window")
	fs.Bool(flagOffline, false, "disable the response cache")
	fs.Bool(flagRefresh, false, "refresh the selected catalog even when it is not stale")
}

// Resolve reads the parsed flag set, letting environment variables override
// defaults and explicit flags override both.
func Resolve(fs *pflag.FlagSet, environ []string, args []string) (Config, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}
	env := parseEnv(environ)
	var envErr error
	fs.VisitAll(func(f *pflag.Flag) {
		raw, ok := env[envName(f.Name)]
		if !ok || strings.TrimSpace(raw) == "" {
			return
		}
		value, err := envValue(f, raw)
		if err != nil {
			if envErr == nil {
				envErr = fmt.Errorf("%s: %w", envName(f.Name), err)
			}
			return
		}
		v.SetDefault(f.Name, value)
	})
	if envErr != nil {
		return Config{}, envErr
	}

	width := v.GetInt(flagWidth)
	height := v.GetInt(flagHeight)
	if width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", width)
	}
	if height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", height)
	}

	var windowID *int
	if w := v.GetInt(flagWindow); w >= 0 {
		windowID = &w
	}

	cfg := Config{
		App: app.Config{
			Width:         width,
			Height:        height,
			ShowFooter:    v.GetBool(flagFooter),
			Verbose:       v.GetBool(flagVerbose),
			StatePath:     v.GetString(flagState),
			MapPath:       v.GetString(flagMap),
			BaseURL:       v.GetString(flagCDN),
			DefaultUA:     v.GetString(flagDefaultUA),
			WindowID:      windowID,
			CookieStoreID: v.GetString(flagContainer),
			Private:       v.GetBool(flagPrivate),
			Offline:       v.GetBool(flagOffline),
			Refresh:       v.GetBool(flagRefresh),
		},
		Logging: Logging{
			FilePath: v.GetString(flagLogFile),
			Trace:    v.GetBool(flagTrace),
		},
		Flags: map[string]string{
			"width":     strconv.Itoa(width),
			"height":    strconv.Itoa(height),
			"footer":    strconv.FormatBool(v.GetBool(flagFooter)),
			"trace":     strconv.FormatBool(v.GetBool(flagTrace)),
			"verbose":   strconv.FormatBool(v.GetBool(flagVerbose)),
			"logFile":   v.GetString(flagLogFile),
			"state":     v.GetString(flagState),
			"map":       v.GetString(flagMap),
			"cdn":       v.GetString(flagCDN),
			"window":    strconv.Itoa(v.GetInt(flagWindow)),
			"container": v.GetString(flagContainer),
			"private":   strconv.FormatBool(v.GetBool(flagPrivate)),
			"offline":   strconv.FormatBool(v.GetBool(flagOffline)),
		},
		Args: append([]string(nil), args...),
	}
	return cfg, nil
}

func envName(flag string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

func envValue(f *pflag.Flag, raw string) (interface{}, error) {
	switch f.Value.Type() {
	case "int":
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", raw)
		}
		return n, nil
	case "bool":
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q", raw)
		}
		return b, nil
	}
	return raw, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

// Validate ensures required minimum configuration is present.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.App.DefaultUA) == "" {
		return fmt.Errorf("default-ua must not be empty")
	}
	if cfg.App.Private && cfg.App.CookieStoreID != "" {
		return fmt.Errorf("container cannot be combined with private")
	}
	return nil
}
