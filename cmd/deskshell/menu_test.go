package main

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/deskshell/cmd/deskshell/x11tray"
	"github.com/codeGROOVE-dev/deskshell/pkg/appsettings"
	"github.com/codeGROOVE-dev/deskshell/pkg/menuaction"
	"github.com/wailsapp/wails/v2/pkg/menu"
)

// newTestApp builds an App whose settings live in a temporary directory.
func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("APPDATA", dir)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := loadSettings(appsettings.NewManager(appName))
	a := newApp(config{noUpdateCheck: true, logDir: dir}, store, logger)
	a.exit = func(int) { t.Error("unexpected process exit") }
	t.Cleanup(a.cancel)
	return a
}

// syncDispatch runs handlers inline so tests can observe their effects.
func syncDispatch(h menuaction.Handler) menu.Callback {
	return func(cd *menu.CallbackData) {
		var ev menuaction.Event
		if cd != nil && cd.MenuItem != nil {
			ev.Item = appMenuItem{item: cd.MenuItem}
		}
		h(context.Background(), ev)
	}
}

func submenu(t *testing.T, m *menu.Menu, label string) *menu.Menu {
	t.Helper()
	for _, item := range m.Items {
		if item.Label == label && item.SubMenu != nil {
			return item.SubMenu
		}
	}
	t.Fatalf("submenu %q not found", label)
	return nil
}

func findItem(t *testing.T, m *menu.Menu, label string) *menu.MenuItem {
	t.Helper()
	for _, item := range m.Items {
		if item.Label == label {
			return item
		}
	}
	t.Fatalf("menu item %q not found", label)
	return nil
}

func labels(m *menu.Menu) []string {
	var out []string
	for _, item := range m.Items {
		out = append(out, item.Label)
	}
	return out
}

func TestBuildAppMenuStructure(t *testing.T) {
	a := newTestApp(t)
	m := a.buildAppMenu(syncDispatch)

	for _, name := range []string{"File", "View", "Window", "Help"} {
		submenu(t, m, name)
	}

	file := submenu(t, m, "File")
	hasQuit := slices.Contains(labels(file), "Quit")
	if wantQuit := runtime.GOOS != "darwin"; hasQuit != wantQuit {
		t.Errorf("File has Quit = %v, want %v", hasQuit, wantQuit)
	}

	view := submenu(t, m, "View")
	hasDock := slices.Contains(labels(view), "Show in Dock")
	if hasDock != (a.dock != nil) {
		t.Errorf("View has Show in Dock = %v, want %v", hasDock, a.dock != nil)
	}

	tray := findItem(t, view, "Show in Tray")
	if tray.Type != menu.CheckboxType {
		t.Errorf("Show in Tray type = %v, want checkbox", tray.Type)
	}
	if !tray.Checked {
		t.Error("Show in Tray should start checked")
	}

	reload := findItem(t, view, "Reload")
	if reload.Accelerator == nil {
		t.Error("Reload should have an accelerator")
	}
}

func TestAppMenuCheckboxPersists(t *testing.T) {
	a := newTestApp(t)
	m := a.buildAppMenu(syncDispatch)
	view := submenu(t, m, "View")

	tests := []struct {
		label string
		get   func(Settings) bool
	}{
		{label: "Always on Top", get: func(s Settings) bool { return s.AlwaysOnTop }},
		{label: "Show Unread Badge", get: func(s Settings) bool { return s.ShowBadge }},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			item := findItem(t, view, tt.label)
			for _, want := range []bool{true, false} {
				// The native menu toggles the item before the callback runs.
				item.Checked = want
				item.Click(&menu.CallbackData{MenuItem: item})
				if got := tt.get(a.settings.Get()); got != want {
					t.Errorf("saved %s = %v, want %v", tt.label, got, want)
				}
			}
		})
	}
}

func TestTrayEntries(t *testing.T) {
	a := newTestApp(t)
	entries := a.trayEntries()
	if len(entries) == 0 {
		t.Fatal("no tray entries")
	}
	if entries[0].label != "Show "+appTitle {
		t.Errorf("first entry = %q", entries[0].label)
	}
	last := entries[len(entries)-1]
	if last.label != "Quit" || last.handler == nil {
		t.Errorf("last entry = %+v, want Quit with a handler", last)
	}
	hasLaunch := false
	for _, e := range entries {
		if !e.separator && e.handler == nil {
			t.Errorf("entry %q has no handler", e.label)
		}
		if e.checkbox && e.pref == "" {
			t.Errorf("checkbox %q saves no preference", e.label)
		}
		hasLaunch = hasLaunch || e.label == "Launch on Startup"
	}
	if want := a.canLaunchAtLogin(); hasLaunch != want {
		t.Errorf("tray has Launch on Startup = %v, want %v", hasLaunch, want)
	}
}

func TestMenuCallbackWithoutWindow(t *testing.T) {
	a := newTestApp(t)
	ran := make(chan menuaction.Event, 1)
	cb := a.menuCallback(func(_ context.Context, ev menuaction.Event) { ran <- ev })

	cb(&menu.CallbackData{MenuItem: &menu.MenuItem{Label: "Reload", Checked: true}})
	ev := <-ran
	if ev.Window != nil {
		t.Error("window should be nil before startup")
	}
	if ev.Item == nil || ev.Item.Label() != "Reload" || !ev.Item.Checked() {
		t.Errorf("item = %+v", ev.Item)
	}

	// A nil handler is ignored.
	a.run(nil, menuaction.Event{})
	a.spawn(nil, menuaction.Event{})
}

func TestSpawnCountsHandlerBeforeStart(t *testing.T) {
	a := newTestApp(t)
	release := make(chan struct{})
	var finished atomic.Bool
	a.spawn(func(context.Context, menuaction.Event) {
		<-release
		finished.Store(true)
	}, menuaction.Event{})

	waited := make(chan struct{})
	go func() {
		a.handlers.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		t.Fatal("Wait returned while a handler was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after the handler finished")
	}
	if !finished.Load() {
		t.Error("handler did not finish")
	}
}

// attachMockTray swaps the app's tray for a mock that runs inline.
func attachMockTray(a *App) *MockSystray {
	mock := &MockSystray{}
	a.tray.tray = mock
	a.tray.runOnMain = func(fn func()) { fn() }
	a.tray.ensure = func(context.Context) (*x11tray.ProxyProcess, error) { return nil, nil }
	a.tray.dispatch = func(h menuaction.Handler, ev menuaction.Event) { a.run(h, ev) }
	return mock
}

func TestCheckboxesStayInStep(t *testing.T) {
	a := newTestApp(t)
	mock := attachMockTray(a)
	m := a.buildAppMenu(syncDispatch)
	appItem := findItem(t, submenu(t, m, "View"), "Show Unread Badge")
	a.tray.Create()
	trayItem := mock.item("Show Unread Badge")
	if trayItem == nil {
		t.Fatal("tray has no Show Unread Badge item")
	}
	if !appItem.Checked || !trayItem.Checked() {
		t.Fatal("both items should start checked")
	}

	clickApp := func() {
		// The native menu toggles the item before the callback runs.
		appItem.Checked = !appItem.Checked
		appItem.Click(&menu.CallbackData{MenuItem: appItem})
	}
	steps := []struct {
		name  string
		click func()
		want  bool
	}{
		{name: "tray off", click: trayItem.click, want: false},
		{name: "app on", click: clickApp, want: true},
		{name: "app off", click: clickApp, want: false},
		{name: "tray on", click: trayItem.click, want: true},
		{name: "tray off again", click: trayItem.click, want: false},
	}
	for _, st := range steps {
		st.click()
		if got := a.settings.Get().ShowBadge; got != st.want {
			t.Errorf("%s: saved ShowBadge = %v, want %v", st.name, got, st.want)
		}
		if appItem.Checked != st.want {
			t.Errorf("%s: app menu item checked = %v, want %v", st.name, appItem.Checked, st.want)
		}
		if trayItem.Checked() != st.want {
			t.Errorf("%s: tray item checked = %v, want %v", st.name, trayItem.Checked(), st.want)
		}
	}
}

func TestLaunchOnStartupHiddenWithoutLauncher(t *testing.T) {
	a := newTestApp(t)
	a.launcher = nil

	file := submenu(t, a.buildAppMenu(syncDispatch), "File")
	if slices.Contains(labels(file), "Launch on Startup") {
		t.Error("File menu offers Launch on Startup without a launcher")
	}
	for _, e := range a.trayEntries() {
		if e.label == "Launch on Startup" {
			t.Error("tray offers Launch on Startup without a launcher")
		}
	}
}

func TestAppMenuItemNil(t *testing.T) {
	var item appMenuItem
	if item.Label() != "" || item.Checked() {
		t.Error("empty adapter should report no label and unchecked")
	}
}

func TestRunRecoversPanic(t *testing.T) {
	a := newTestApp(t)
	ran := false
	a.run(func(context.Context, menuaction.Event) { panic("boom") },
		menuaction.Event{Item: appMenuItem{item: &menu.MenuItem{Label: "Crash"}}})
	// The process survives and later handlers still run.
	a.run(func(context.Context, menuaction.Event) { ran = true }, menuaction.Event{})
	if !ran {
		t.Error("handler after a panic did not run")
	}
	a.handlers.Wait()
}
