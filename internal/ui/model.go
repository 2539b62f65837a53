package ui

import (
	"context"
	"reflect"
	"time"

	"github.com/atomicstack/ua-popup-control/internal/agent"
	"github.com/atomicstack/ua-popup-control/internal/backend"
	"github.com/atomicstack/ua-popup-control/internal/catalog"
	"github.com/atomicstack/ua-popup-control/internal/data/dispatcher"
	"github.com/atomicstack/ua-popup-control/internal/logging"
	"github.com/atomicstack/ua-popup-control/internal/prefs"
	"github.com/atomicstack/ua-popup-control/internal/state"
	"github.com/atomicstack/ua-popup-control/internal/theme"
	"github.com/atomicstack/ua-popup-control/internal/ui/command"
	uistate "github.com/atomicstack/ua-popup-control/internal/ui/state"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type level = uistate.Level

const catalogLevelID = "catalog"

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Preferences is the part of the preference store the popup reads and writes.
type Preferences interface {
	UIState() (prefs.UIState, error)
	SetBrowser(name string) error
	SetOS(name string) error
	SetSort(order string) error
	ActiveUA() (string, error)
	SetActiveUA(ua string) error
	ContainerUAs() (map[string]string, error)
	SetContainerUA(id, ua string) error
	DeleteContainerUA(id string) error
	TestURL() (string, error)
}

// CatalogLoader fetches catalogs for a browser/OS path.
type CatalogLoader interface {
	Load(ctx context.Context, path string) (catalog.Catalog, error)
	Refresh(ctx context.Context, path string) error
	LastRefreshed(path string) time.Time
}

// Context describes the tab the popup was opened for. It is assembled once
// before the model exists and never modified afterwards.
type Context struct {
	WindowID      *int
	CookieStoreID string
	Map           catalog.Map
	DefaultUA     string
	// Refresh forces the first catalog load to bypass the staleness check.
	Refresh bool
}

// InContainer reports whether overrides apply to a container rather than the
// default browsing context.
func (c Context) InContainer() bool {
	return c.CookieStoreID != "" && c.CookieStoreID != agent.DefaultContainer
}

// Options carries everything NewModel needs.
type Options struct {
	Context Context
	Prefs   Preferences
	Loader  CatalogLoader
	// Agent is nil in private windows.
	Agent      agent.Controller
	Watcher    *backend.Watcher
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
}

type focusTarget int

const (
	focusFilter focusTarget = iota
	focusField
)

// Model implements the Bubble Tea model for the user-agent popup.
type Model struct {
	ctx    Context
	prefs  Preferences
	loader CatalogLoader
	agent  agent.Controller

	level   *level
	records catalog.Catalog
	browser string
	os      string
	order   catalog.Order
	path    string
	gen     catalog.Generation
	loading bool

	filter  textinput.Model
	field   textinput.Model
	focus   focusTarget
	details agent.Info

	errMsg   string
	infoMsg  string
	toastSeq int

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool
	verbose     bool

	backend        *backend.Watcher
	backendState   map[backend.Kind]error
	backendLastErr string

	handlers map[reflect.Type]msgHandler

	bus        *command.Bus
	overrides  state.OverrideStore
	stamps     state.StampStore
	dispatcher *dispatcher.Dispatcher

	tick   func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
	copyFn func(string) error
}

// NewModel restores the persisted picker selection and the active override
// and prepares the first catalog load.
func NewModel(opts Options) *Model {
	overrides := state.NewOverrideStore()
	stamps := state.NewStampStore()
	m := &Model{
		ctx:          opts.Context,
		prefs:        opts.Prefs,
		loader:       opts.Loader,
		agent:        opts.Agent,
		level:        uistate.NewLevel(catalogLevelID, "catalog", nil),
		order:        catalog.Descending,
		backend:      opts.Watcher,
		backendState: map[backend.Kind]error{},
		showFooter:   opts.ShowFooter,
		verbose:      opts.Verbose,
		bus:          command.New(),
		overrides:    overrides,
		stamps:       stamps,
		dispatcher:   dispatcher.New(overrides, stamps),
		tick:         tea.Tick,
		copyFn:       clipboard.WriteAll,
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	m.filter = newFilterInput()
	m.field = newFieldInput()
	m.filter.Focus()

	m.restoreSelection()
	m.restoreOverride()
	m.path = catalog.Path(m.browser, m.os)
	m.registerHandlers()
	return m
}

func (m *Model) restoreSelection() {
	st := prefs.UIState{Browser: prefs.DefaultBrowser, OS: prefs.DefaultOS, Sort: prefs.DefaultSort}
	if m.prefs != nil {
		loaded, err := m.prefs.UIState()
		if err != nil {
			logging.Error(err)
		}
		st = loaded
	}
	m.browser = st.Browser
	if !m.ctx.Map.HasBrowser(m.browser) && len(m.ctx.Map.Browser) > 0 {
		m.browser = m.ctx.Map.Browser[0]
	}
	m.os = st.OS
	if !m.ctx.Map.HasOS(m.os) && len(m.ctx.Map.OS) > 0 {
		m.os = m.ctx.Map.NextOS(m.browser, "", 1)
	}
	if order, err := catalog.ParseOrder(st.Sort); err == nil {
		m.order = order
	}
}

func (m *Model) restoreOverride() {
	if m.prefs == nil {
		m.setFieldValue("")
		return
	}
	ua, err := m.prefs.ActiveUA()
	if err != nil {
		logging.Error(err)
	}
	m.overrides.SetActiveUA(ua)
	if m.ctx.InContainer() {
		containers, err := m.prefs.ContainerUAs()
		if err != nil {
			logging.Error(err)
		}
		m.overrides.SetContainers(containers)
	}
	m.setFieldValue(m.currentOverride())
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.loadCatalogCmd(m.ctx.Refresh)}
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, m.updateInputs(msg)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(catalogLoadedMsg{}):  m.handleCatalogLoadedMsg,
		reflect.TypeOf(command.Result{}):    m.handleCommandResultMsg,
		reflect.TypeOf(toastExpiredMsg{}):   m.handleToastExpiredMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}
