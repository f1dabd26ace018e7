package main

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/codeGROOVE-dev/deskshell/cmd/deskshell/x11tray"
	"github.com/codeGROOVE-dev/deskshell/pkg/icon"
	"github.com/codeGROOVE-dev/deskshell/pkg/menuaction"
	"github.com/energye/systray"
)

// TrayManager owns the tray icon and its menu.
//
// The systray loop can only run once per process, so it is started by the
// first Create and ended by Close. Destroy hides the icon by clearing the
// menu and drawing a blank icon; a later Create rebuilds both.
type TrayManager struct {
	tray      SystrayInterface
	icons     *icon.Cache
	log       *slog.Logger
	entries   func() []entry
	dispatch  func(menuaction.Handler, menuaction.Event)
	onClick   func()
	runOnMain func(func())
	ensure    func(context.Context) (*x11tray.ProxyProcess, error)
	end       func()
	proxy     *x11tray.ProxyProcess
	checks    map[string]MenuItem
	tooltip   string
	badge     int
	active    bool
	started   bool
	closed    bool
	ready     bool
	useTitle  bool
	mu        sync.Mutex
}

// newTrayManager returns a TrayManager drawing menus from entries.
// dispatch runs a handler for a clicked item; onClick runs for a bare icon click.
func newTrayManager(tray SystrayInterface, logger *slog.Logger, entries func() []entry,
	dispatch func(menuaction.Handler, menuaction.Event), onClick func(),
) *TrayManager {
	return &TrayManager{
		tray:      tray,
		icons:     icon.NewCache(),
		log:       logger,
		entries:   entries,
		dispatch:  dispatch,
		onClick:   onClick,
		runOnMain: runOnMainThread,
		ensure:    x11tray.EnsureTray,
		checks:    make(map[string]MenuItem),
		tooltip:   appTitle,
		useTitle:  runtime.GOOS == "darwin",
	}
}

// Create shows the tray icon. It does nothing if the icon is already shown
// or the tray has been closed.
func (t *TrayManager) Create() {
	t.mu.Lock()
	if t.active || t.closed {
		t.mu.Unlock()
		return
	}
	t.active = true
	started := t.started
	t.mu.Unlock()

	if started {
		t.log.Info("[TRAY] Showing tray icon")
		t.runOnMain(t.rebuild)
		return
	}

	proxy, err := t.ensure(context.Background())
	if err != nil {
		t.log.Error("[TRAY] System tray unavailable", "error", err,
			"help", "Ensure your desktop environment has a system tray, or install snixembed")
		t.mu.Lock()
		t.active = false
		t.mu.Unlock()
		return
	}

	start, end := t.tray.RunWithExternalLoop(t.onReady, t.onExit)
	t.mu.Lock()
	t.proxy = proxy
	t.end = end
	t.started = true
	t.mu.Unlock()

	t.log.Info("[TRAY] Creating tray icon")
	t.runOnMain(start)
}

// Destroy hides the tray icon and empties its menu. The systray loop keeps
// running so a later Create can show the icon again.
func (t *TrayManager) Destroy() {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.active = false
	started := t.started
	t.mu.Unlock()

	t.log.Info("[TRAY] Hiding tray icon")
	if started {
		t.runOnMain(t.hide)
	}
}

// Close ends the systray loop and stops the tray proxy. It is called once at
// shutdown; the tray cannot be shown again afterwards.
func (t *TrayManager) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.active = false
	end, proxy := t.end, t.proxy
	t.end, t.proxy = nil, nil
	t.mu.Unlock()

	if end != nil {
		t.log.Info("[TRAY] Removing tray icon")
		t.runOnMain(end)
	}
	if proxy != nil {
		if err := proxy.Stop(); err != nil {
			t.log.Warn("[TRAY] Failed to stop tray proxy cleanly", "error", err)
		}
	}
}

// Active reports whether the tray icon is shown.
func (t *TrayManager) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// SetBadge shows count on the tray icon. Zero clears the badge.
func (t *TrayManager) SetBadge(count int) {
	t.mu.Lock()
	t.badge = count
	ready := t.ready
	t.mu.Unlock()
	if ready {
		t.renderBadge(count)
	}
}

// SetChecked updates the check mark of the tray item saving pref.
func (t *TrayManager) SetChecked(pref string, checked bool) {
	t.mu.Lock()
	item := t.checks[pref]
	t.mu.Unlock()
	if item == nil || item.Checked() == checked {
		return
	}
	if checked {
		item.Check()
	} else {
		item.Uncheck()
	}
}

func (t *TrayManager) onReady() {
	t.tray.SetTooltip(t.tooltip)
	t.tray.SetOnClick(func(menu systray.IMenu) {
		if menu != nil {
			if err := menu.ShowMenu(); err != nil {
				t.log.Error("[TRAY] Failed to show menu", "error", err)
			}
			return
		}
		// StatusNotifierItem hosts own the menu; a left click shows the window.
		if t.onClick != nil {
			go t.onClick()
		}
	})
	t.tray.SetOnRClick(func(menu systray.IMenu) {
		if menu == nil {
			return
		}
		if err := menu.ShowMenu(); err != nil {
			t.log.Error("[TRAY] Failed to show menu", "error", err)
		}
	})

	t.rebuild()
	t.log.Info("[TRAY] Tray icon ready")
}

// rebuild replaces the tray menu and redraws the icon. Runs on the main thread.
func (t *TrayManager) rebuild() {
	t.tray.ResetMenu()
	t.mu.Lock()
	clear(t.checks)
	t.mu.Unlock()

	for _, e := range t.entries() {
		if e.separator {
			t.tray.AddSeparator()
			continue
		}
		t.addItem(e)
	}

	t.tray.SetTooltip(t.tooltip)
	t.mu.Lock()
	t.ready = true
	count := t.badge
	t.mu.Unlock()
	t.renderBadge(count)
}

// hide clears the menu and draws a blank icon. Runs on the main thread.
func (t *TrayManager) hide() {
	t.mu.Lock()
	t.ready = false
	clear(t.checks)
	t.mu.Unlock()

	t.tray.ResetMenu()
	t.tray.SetTitle("")
	t.tray.SetTooltip("")
	data, err := icon.Blank()
	if err != nil {
		t.log.Error("[TRAY] Failed to render blank icon", "error", err)
		return
	}
	t.tray.SetIcon(data)
}

func (t *TrayManager) onExit() {
	t.mu.Lock()
	t.ready = false
	t.mu.Unlock()
	t.log.Debug("[TRAY] Tray loop exited")
}

func (t *TrayManager) addItem(e entry) {
	item := t.tray.AddMenuItem(e.label, e.tooltip)
	if e.checkbox && e.checked {
		item.Check()
	}
	if e.pref != "" {
		t.mu.Lock()
		t.checks[e.pref] = item
		t.mu.Unlock()
	}
	label, checkbox, handler := e.label, e.checkbox, e.handler
	item.Click(func() {
		// Tray checkboxes do not toggle themselves.
		if checkbox {
			if item.Checked() {
				item.Uncheck()
			} else {
				item.Check()
			}
		}
		t.log.Debug("[TRAY] Clicked", "label", label)
		ev := menuaction.Event{Item: trayMenuItem{label: label, checked: checkbox && item.Checked()}}
		t.dispatch(handler, ev)
	})
}

// renderBadge draws count as the tray title on macOS and as a badge icon elsewhere.
func (t *TrayManager) renderBadge(count int) {
	if t.useTitle {
		title := ""
		if count > 0 {
			title = icon.Label(count)
		}
		t.tray.SetTitle(title)
		data, err := t.icons.Badge(0)
		if err != nil {
			t.log.Error("[TRAY] Failed to render icon", "error", err)
			return
		}
		t.tray.SetIcon(data)
		return
	}
	data, err := t.icons.Badge(count)
	if err != nil {
		t.log.Error("[TRAY] Failed to render badge", "count", count, "error", err)
		return
	}
	t.tray.SetIcon(data)
}

// trayMenuItem is the item state handed to handlers for a tray click.
type trayMenuItem struct {
	label   string
	checked bool
}

func (i trayMenuItem) Label() string { return i.label }

func (i trayMenuItem) Checked() bool { return i.checked }
