package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/atomicstack/ua-popup-control/internal/agent"
	"github.com/atomicstack/ua-popup-control/internal/backend"
	"github.com/atomicstack/ua-popup-control/internal/catalog"
	"github.com/atomicstack/ua-popup-control/internal/prefs"
	"github.com/atomicstack/ua-popup-control/internal/storage"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	testDefaultUA = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	ua119         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"
	ua120         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	ua121         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	uaFirefox     = "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0"
)

var testMap = catalog.Map{
	Browser: []string{"Chrome", "Firefox"},
	OS:      []string{"Windows", "Linux", "Mac/OS X"},
	Matching: map[string][]string{
		"chrome":  {"windows", "linux"},
		"firefox": {"linux", "mac/os x"},
	},
}

func chromeRecord(version, ua string) catalog.Record {
	return catalog.Record{
		Browser: catalog.Component{Name: "Chrome", Version: version},
		OS:      catalog.Component{Name: "Windows", Version: "10"},
		UA:      ua,
	}
}

type fakeLoader struct {
	mu        sync.Mutex
	catalogs  map[string]catalog.Catalog
	errs      map[string]error
	loads     []string
	refreshes []string
	stamps    map[string]time.Time
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		catalogs: map[string]catalog.Catalog{
			catalog.Path("Chrome", "Windows"): {
				chromeRecord("120.0", ua120),
				chromeRecord("119.0", ua119),
				chromeRecord("121.0", ua121),
			},
			catalog.Path("Firefox", "Linux"): {
				{Browser: catalog.Component{Name: "Firefox", Version: "120.0"}, OS: catalog.Component{Name: "Linux"}, UA: uaFirefox},
			},
		},
		errs:   map[string]error{},
		stamps: map[string]time.Time{},
	}
}

func (f *fakeLoader) Load(_ context.Context, path string) (catalog.Catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, path)
	if err := f.errs[path]; err != nil {
		return catalog.Catalog{}, err
	}
	return f.catalogs[path].Clone(), nil
}

func (f *fakeLoader) Refresh(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes = append(f.refreshes, path)
	f.stamps[path] = time.Now()
	return nil
}

func (f *fakeLoader) LastRefreshed(path string) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stamps[path]
}

type agentCall struct {
	value     string
	window    int
	container string
}

type fakeAgent struct {
	updates   []agentCall
	forgotten []string
}

func (a *fakeAgent) Update(_ context.Context, value string, windowID *int, cookieStoreID string) error {
	window := -1
	if windowID != nil {
		window = *windowID
	}
	a.updates = append(a.updates, agentCall{value: value, window: window, container: cookieStoreID})
	return nil
}

func (a *fakeAgent) Parse(value string) agent.Info {
	return agent.Parse(value)
}

func (a *fakeAgent) Forget(cookieStoreID string) {
	a.forgotten = append(a.forgotten, cookieStoreID)
}

type fixture struct {
	h      *Harness
	prefs  *prefs.Store
	loader *fakeLoader
	agent  *fakeAgent
}

type fixtureOption func(*Options, *prefs.Store)

func newFixture(t *testing.T, opts ...fixtureOption) fixture {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store := prefs.New(db)
	loader := newFakeLoader()
	fa := &fakeAgent{}
	o := Options{
		Context: Context{Map: testMap, DefaultUA: testDefaultUA},
		Prefs:   store,
		Loader:  loader,
		Agent:   fa,
		Width:   200,
		Height:  30,
	}
	for _, opt := range opts {
		opt(&o, store)
	}
	h := NewHarness(NewModel(o))
	h.Init()
	return fixture{h: h, prefs: store, loader: loader, agent: fa}
}

func withActiveUA(ua string) fixtureOption {
	return func(_ *Options, s *prefs.Store) {
		if err := s.SetActiveUA(ua); err != nil {
			panic(err)
		}
	}
}

func withContainer(id string) fixtureOption {
	return func(o *Options, _ *prefs.Store) {
		o.Context.CookieStoreID = id
	}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func itemUAs(m *Model) []string {
	out := make([]string, len(m.level.Items))
	for i, item := range m.level.Items {
		out[i] = item.UA
	}
	return out
}

func TestInitLoadsCatalogSortedDescendingAndMarksActive(t *testing.T) {
	f := newFixture(t, withActiveUA(ua120))
	m := f.h.Model()

	got := itemUAs(m)
	want := []string{ua121, ua120, ua119}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected order %v", got)
	}
	if m.field.Value() != ua120 {
		t.Fatalf("expected field to hold the stored override, got %q", m.field.Value())
	}
	if m.level.Active != ua120 || m.level.Cursor != 1 {
		t.Fatalf("expected active row 1, got active=%q cursor=%d", m.level.Active, m.level.Cursor)
	}
	view := f.h.View()
	if !strings.Contains(view, "Chrome 121.0 | Windows 10 | "+ua121) {
		t.Fatalf("expected formatted row in view:\n%s", view)
	}
	if !strings.Contains(view, activeMark+" Chrome 120.0") {
		t.Fatalf("expected active mark on the stored override row:\n%s", view)
	}
	if m.filter.Placeholder != "Filter among 3" {
		t.Fatalf("unexpected placeholder %q", m.filter.Placeholder)
	}
}

func TestFieldFallsBackToDefaultUA(t *testing.T) {
	f := newFixture(t)
	m := f.h.Model()
	if m.field.Value() != testDefaultUA {
		t.Fatalf("expected default UA, got %q", m.field.Value())
	}
	if m.details.Product != "Gecko" || m.details.OSCPU == "" {
		t.Fatalf("expected parsed details, got %#v", m.details)
	}
}

func TestPrivateModeAlwaysShowsDefaultUA(t *testing.T) {
	f := newFixture(t, withActiveUA(ua120), func(o *Options, _ *prefs.Store) { o.Agent = nil })
	m := f.h.Model()
	if m.field.Value() != testDefaultUA {
		t.Fatalf("expected default UA in private mode, got %q", m.field.Value())
	}
	if !strings.Contains(f.h.View(), "[private]") {
		t.Fatalf("expected private marker in header")
	}
}

func TestStaleCatalogResultIsDropped(t *testing.T) {
	f := newFixture(t)
	m := f.h.Model()
	older := m.gen.Next()
	newer := m.gen.Next()
	path := m.path

	f.h.Send(catalogLoadedMsg{gen: newer, path: path, records: catalog.Catalog{chromeRecord("1.0", "new")}})
	f.h.Send(catalogLoadedMsg{gen: older, path: path, records: catalog.Catalog{chromeRecord("2.0", "old")}})

	got := itemUAs(m)
	if len(got) != 1 || got[0] != "new" {
		t.Fatalf("expected only the newest generation to render, got %v", got)
	}
}

func TestToggleSortReordersWithoutReloading(t *testing.T) {
	f := newFixture(t)
	loads := len(f.loader.loads)

	f.h.Send(key(tea.KeyCtrlS))

	m := f.h.Model()
	want := []string{ua119, ua120, ua121}
	if got := itemUAs(m); strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("expected ascending order, got %v", got)
	}
	if len(f.loader.loads) != loads {
		t.Fatalf("sort toggle should not reload the catalog")
	}
	st, err := f.prefs.UIState()
	if err != nil {
		t.Fatalf("ui state: %v", err)
	}
	if st.Sort != "ascending" {
		t.Fatalf("expected persisted sort, got %q", st.Sort)
	}
}

func TestCycleBrowserMovesToCompatibleOS(t *testing.T) {
	f := newFixture(t)

	f.h.Send(key(tea.KeyCtrlB))

	m := f.h.Model()
	if m.browser != "Firefox" || m.os != "Linux" {
		t.Fatalf("expected Firefox/Linux, got %s/%s", m.browser, m.os)
	}
	last := f.loader.loads[len(f.loader.loads)-1]
	if last != catalog.Path("Firefox", "Linux") {
		t.Fatalf("expected firefox catalog load, got %s", last)
	}
	if got := itemUAs(m); len(got) != 1 || got[0] != uaFirefox {
		t.Fatalf("unexpected rows %v", got)
	}
	st, _ := f.prefs.UIState()
	if st.Browser != "Firefox" || st.OS != "Linux" {
		t.Fatalf("expected persisted selection, got %+v", st)
	}
}

func TestCycleOSSkipsIncompatibleEntries(t *testing.T) {
	f := newFixture(t)
	f.h.Send(key(tea.KeyCtrlO))
	if os := f.h.Model().os; os != "Linux" {
		t.Fatalf("expected Linux, got %s", os)
	}
	f.h.Send(key(tea.KeyCtrlO))
	if os := f.h.Model().os; os != "Windows" {
		t.Fatalf("expected wrap to Windows, got %s", os)
	}
}

func TestCatalogFailureRendersEmptyTable(t *testing.T) {
	f := newFixture(t)
	f.loader.errs[catalog.Path("Chrome", "Linux")] = catalog.ErrOSNotFound

	f.h.Send(key(tea.KeyCtrlO))

	m := f.h.Model()
	if len(m.level.Items) != 0 {
		t.Fatalf("expected empty table, got %d rows", len(m.level.Items))
	}
	view := f.h.View()
	if !strings.Contains(view, "(no entries)") || !strings.Contains(view, "No entries for Chrome on Linux") {
		t.Fatalf("expected empty-table and error text:\n%s", view)
	}
}

func TestMovingCursorCopiesUAIntoField(t *testing.T) {
	f := newFixture(t)
	f.h.Send(key(tea.KeyDown))
	m := f.h.Model()
	if m.field.Value() != ua120 {
		t.Fatalf("expected field to follow cursor, got %q", m.field.Value())
	}
	if !strings.Contains(m.details.AppVersion, "Chrome/120") {
		t.Fatalf("expected details for chosen row, got %#v", m.details)
	}
}

func TestApplyStoresActiveOverride(t *testing.T) {
	f := newFixture(t)
	f.h.Send(key(tea.KeyDown))
	f.h.Send(key(tea.KeyEnter))

	ua, err := f.prefs.ActiveUA()
	if err != nil {
		t.Fatalf("active ua: %v", err)
	}
	if ua != ua120 {
		t.Fatalf("expected stored override, got %q", ua)
	}
	if !strings.Contains(f.h.View(), msgApplied) {
		t.Fatalf("expected toast %q", msgApplied)
	}
	if len(f.agent.updates) != 0 {
		t.Fatalf("default-context apply should not call the agent directly")
	}
}

func TestApplyDefaultUAShowsHint(t *testing.T) {
	f := newFixture(t)
	f.h.Send(key(tea.KeyEnter))

	ua, _ := f.prefs.ActiveUA()
	if ua != "" {
		t.Fatalf("default UA must not be stored, got %q", ua)
	}
	if f.h.Model().infoMsg != msgDefaultUA {
		t.Fatalf("expected hint toast, got %q", f.h.Model().infoMsg)
	}
}

func TestContainerApplyAndReset(t *testing.T) {
	f := newFixture(t, withContainer("firefox-container-2"))
	f.h.Send(key(tea.KeyDown))
	f.h.Send(key(tea.KeyEnter))

	uas, err := f.prefs.ContainerUAs()
	if err != nil {
		t.Fatalf("container uas: %v", err)
	}
	if uas["firefox-container-2"] != ua120 {
		t.Fatalf("expected container override, got %v", uas)
	}
	if ua, _ := f.prefs.ActiveUA(); ua != "" {
		t.Fatalf("container apply must not touch the default override, got %q", ua)
	}
	if len(f.agent.updates) != 1 || f.agent.updates[0] != (agentCall{value: ua120, window: -1, container: "firefox-container-2"}) {
		t.Fatalf("unexpected agent calls %+v", f.agent.updates)
	}

	f.h.Send(key(tea.KeyCtrlR))

	uas, _ = f.prefs.ContainerUAs()
	if _, ok := uas["firefox-container-2"]; ok {
		t.Fatalf("expected container override removed, got %v", uas)
	}
	if len(f.agent.forgotten) != 1 || f.agent.updates[len(f.agent.updates)-1].value != "" {
		t.Fatalf("expected agent forget and clear, got %+v / %+v", f.agent.forgotten, f.agent.updates)
	}
	if f.h.Model().infoMsg != msgResetContainer {
		t.Fatalf("unexpected toast %q", f.h.Model().infoMsg)
	}
	if !strings.Contains(f.h.View(), "[container firefox-container-2]") {
		t.Fatalf("expected container marker in header")
	}
}

func TestDefaultContainerBehavesLikeNoContainer(t *testing.T) {
	f := newFixture(t, withContainer(agent.DefaultContainer))
	f.h.Send(key(tea.KeyDown))
	f.h.Send(key(tea.KeyEnter))
	if ua, _ := f.prefs.ActiveUA(); ua != ua120 {
		t.Fatalf("expected default-context override, got %q", ua)
	}
}

func TestResetClearsActiveOverride(t *testing.T) {
	f := newFixture(t, withActiveUA(ua121))
	f.h.Send(key(tea.KeyCtrlR))
	if ua, _ := f.prefs.ActiveUA(); ua != "" {
		t.Fatalf("expected override cleared, got %q", ua)
	}
	m := f.h.Model()
	if m.level.Active != "" {
		t.Fatalf("expected mark cleared, got %q", m.level.Active)
	}
	if m.infoMsg != msgReset {
		t.Fatalf("unexpected toast %q", m.infoMsg)
	}
}

func TestWindowCommandUpdatesAgentOnly(t *testing.T) {
	window := 7
	f := newFixture(t, func(o *Options, _ *prefs.Store) { o.Context.WindowID = &window })
	f.h.Send(key(tea.KeyDown))
	f.h.Send(key(tea.KeyCtrlW))

	if len(f.agent.updates) != 1 || f.agent.updates[0].window != 7 || f.agent.updates[0].value != ua120 {
		t.Fatalf("unexpected agent calls %+v", f.agent.updates)
	}
	if ua, _ := f.prefs.ActiveUA(); ua != "" {
		t.Fatalf("window override must not be persisted, got %q", ua)
	}
}

func TestFilterNarrowsRowsAndEscapeUnwinds(t *testing.T) {
	f := newFixture(t)
	f.h.Send(runes("119"))

	m := f.h.Model()
	if got := itemUAs(m); len(got) != 1 || got[0] != ua119 {
		t.Fatalf("expected filtered rows, got %v", got)
	}
	f.h.Send(key(tea.KeyEscape))
	if len(m.level.Items) != 3 || m.filter.Value() != "" {
		t.Fatalf("expected filter cleared")
	}
	if f.h.Quitting() {
		t.Fatalf("first escape should only clear the filter")
	}
	f.h.Send(key(tea.KeyEscape))
	if !f.h.Quitting() {
		t.Fatalf("expected quit on escape with empty filter")
	}
}

func TestTabMovesFocusToField(t *testing.T) {
	f := newFixture(t)
	f.h.Send(key(tea.KeyTab))
	m := f.h.Model()
	if m.focus != focusField {
		t.Fatalf("expected field focus")
	}
	m.field.SetValue("")
	f.h.Send(runes("custom/1.0"))
	if m.field.Value() != "custom/1.0" || m.level.Active != "custom/1.0" {
		t.Fatalf("expected typed value, got %q", m.field.Value())
	}
	f.h.Send(key(tea.KeyEscape))
	if m.focus != focusFilter || f.h.Quitting() {
		t.Fatalf("escape from the field should return to the filter")
	}
}

func TestBackendEventRefreshesField(t *testing.T) {
	f := newFixture(t)
	f.h.Send(backendEventMsg{event: backend.Event{
		Kind: backend.KindPrefs,
		Data: []prefs.Change{{Key: prefs.KeyUA, Value: []byte(`"` + ua119 + `"`), Revision: 9}},
	}})
	m := f.h.Model()
	if m.field.Value() != ua119 || m.level.Active != ua119 {
		t.Fatalf("expected external override reflected, got %q", m.field.Value())
	}

	f.h.Send(backendEventMsg{event: backend.Event{
		Kind: backend.KindPrefs,
		Data: []prefs.Change{{Key: prefs.KeyUA, Value: []byte(`""`), Revision: 10}},
	}})
	if m.field.Value() != testDefaultUA {
		t.Fatalf("expected default UA after external reset, got %q", m.field.Value())
	}
}

func TestContainerFieldFollowsUAUntilItHasItsOwnOverride(t *testing.T) {
	f := newFixture(t, withActiveUA(ua121), withContainer("firefox-container-2"))
	m := f.h.Model()
	if m.field.Value() != ua121 {
		t.Fatalf("expected container without override to show ua, got %q", m.field.Value())
	}

	f.h.Send(backendEventMsg{event: backend.Event{
		Kind: backend.KindPrefs,
		Data: []prefs.Change{{Key: prefs.KeyUA, Value: []byte(`"` + ua119 + `"`), Revision: 9}},
	}})
	if m.field.Value() != ua119 || m.level.Active != ua119 {
		t.Fatalf("expected ua change reflected inside the container, got %q", m.field.Value())
	}

	f.h.Send(backendEventMsg{event: backend.Event{
		Kind: backend.KindPrefs,
		Data: []prefs.Change{{Key: prefs.KeyContainerUAs, Value: []byte(`{"firefox-container-2":"` + ua120 + `"}`), Revision: 10}},
	}})
	if m.field.Value() != ua120 {
		t.Fatalf("expected container override to win, got %q", m.field.Value())
	}

	f.h.Send(backendEventMsg{event: backend.Event{
		Kind: backend.KindPrefs,
		Data: []prefs.Change{{Key: prefs.KeyUA, Value: []byte(`""`), Revision: 11}},
	}})
	if m.field.Value() != ua120 {
		t.Fatalf("expected container override to survive a ua reset, got %q", m.field.Value())
	}

	f.h.Send(backendEventMsg{event: backend.Event{
		Kind: backend.KindPrefs,
		Data: []prefs.Change{{Key: prefs.KeyContainerUAs, Value: []byte(`{}`), Revision: 12}},
	}})
	if m.field.Value() != testDefaultUA {
		t.Fatalf("expected default UA once both overrides are gone, got %q", m.field.Value())
	}
}

func TestContainerStartsWithItsOwnOverride(t *testing.T) {
	f := newFixture(t, withActiveUA(ua121), withContainer("firefox-container-2"),
		func(_ *Options, s *prefs.Store) {
			if err := s.SetContainerUA("firefox-container-2", ua119); err != nil {
				panic(err)
			}
		})
	if got := f.h.Model().field.Value(); got != ua119 {
		t.Fatalf("expected container override at startup, got %q", got)
	}
}

func TestTypingExactUAScrollsItsRowIntoView(t *testing.T) {
	f := newFixture(t, func(o *Options, _ *prefs.Store) { o.Height = 1 })
	m := f.h.Model()
	if m.maxVisibleItems() != 1 || m.level.ViewportOffset != 0 {
		t.Fatalf("expected a one-row viewport at the top, got %d/%d", m.maxVisibleItems(), m.level.ViewportOffset)
	}
	f.h.Send(key(tea.KeyTab))
	m.field.SetValue(strings.TrimSuffix(ua119, "6"))
	m.field.CursorEnd()
	f.h.Send(runes("6"))

	if m.field.Value() != ua119 || m.level.Active != ua119 {
		t.Fatalf("expected typed value marked, got %q", m.field.Value())
	}
	if m.level.Cursor != 2 || m.level.ViewportOffset != 2 {
		t.Fatalf("expected cursor and viewport on row 2, got cursor=%d offset=%d", m.level.Cursor, m.level.ViewportOffset)
	}
}

func TestBackendErrorSurfacesInStatus(t *testing.T) {
	f := newFixture(t)
	f.h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindPrefs, Err: errors.New("database is locked")}})
	if !strings.Contains(f.h.View(), "database is locked") {
		t.Fatalf("expected backend error in status line")
	}
}

func TestToastExpiresOnlyForLatestSequence(t *testing.T) {
	f := newFixture(t)
	m := f.h.Model()
	m.showToast("first")
	first := m.toastSeq
	m.showToast("second")

	f.h.Send(toastExpiredMsg{seq: first})
	if m.infoMsg != "second" {
		t.Fatalf("stale expiry cleared the toast")
	}
	f.h.Send(toastExpiredMsg{seq: m.toastSeq})
	if m.infoMsg != "" {
		t.Fatalf("expected toast cleared, got %q", m.infoMsg)
	}
}

func TestCopyAndTestCommands(t *testing.T) {
	f := newFixture(t)
	var copied string
	f.h.Model().copyFn = func(s string) error {
		copied = s
		return nil
	}
	f.h.Send(key(tea.KeyCtrlY))
	if copied != testDefaultUA {
		t.Fatalf("expected field copied, got %q", copied)
	}

	f.h.Send(key(tea.KeyCtrlT))
	if !strings.Contains(f.h.Model().infoMsg, prefs.DefaultTestURL) {
		t.Fatalf("expected test URL toast, got %q", f.h.Model().infoMsg)
	}
}

func TestForcedRefreshOnInit(t *testing.T) {
	f := newFixture(t, func(o *Options, _ *prefs.Store) { o.Context.Refresh = true })
	if len(f.loader.refreshes) != 1 {
		t.Fatalf("expected one forced refresh, got %v", f.loader.refreshes)
	}
	if !strings.Contains(f.h.View(), "refreshed") {
		t.Fatalf("expected refresh time in status line:\n%s", f.h.View())
	}
}
