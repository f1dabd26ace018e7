package main

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/codeGROOVE-dev/deskshell/pkg/autolaunch"
	"github.com/codeGROOVE-dev/deskshell/pkg/menuaction"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// entry describes one menu item shared by the application and tray menus.
type entry struct {
	accel   *keys.Accelerator
	handler menuaction.Handler
	label   string
	tooltip string
	// pref is the preference a checkbox saves; items sharing it stay in step.
	pref      string
	checkbox  bool
	checked   bool
	separator bool
}

// section is a top-level application submenu.
type section struct {
	label   string
	entries []entry
}

var separator = entry{separator: true}

// slowHandler is how long a handler may run before it is logged as slow.
// Handlers that wait on a dialog routinely exceed it.
const slowHandler = 5 * time.Second

// checkboxes mirrors the settings that back checkbox items.
type checkboxes struct {
	launchOnStartup bool
	autoUpdate      bool
	alwaysOnTop     bool
	showInTray      bool
	showInDock      bool
	showBadge       bool
}

func (a *App) checkboxes() checkboxes {
	s := a.settings.Get()
	return checkboxes{
		launchOnStartup: s.LaunchOnStartup,
		autoUpdate:      s.AutoUpdate,
		alwaysOnTop:     s.AlwaysOnTop,
		showInTray:      s.ShowInTray,
		showInDock:      s.ShowInDock,
		showBadge:       s.ShowBadge,
	}
}

// toggle returns a checkbox entry that saves pref, mirrors the new state into
// every menu showing pref, then runs apply.
func (a *App) toggle(label, pref string, on bool, apply func(menuaction.BoolFunc) menuaction.Handler) entry {
	checked := menuaction.Checked
	return entry{
		label:    label,
		pref:     pref,
		checkbox: true,
		checked:  on,
		handler:  menuaction.Chain(a.actions.SetPreference(pref, checked), a.mirror(pref), apply(checked)),
	}
}

// link returns an entry opening rawURL in the browser. Links the browser
// opener would refuse are left out of the menu.
func (a *App) link(label, event, rawURL string) (entry, bool) {
	if err := a.shell.CanOpen(rawURL); err != nil {
		a.log.Warn("[MENU] Dropping link that cannot be opened", "label", label, "url", rawURL, "error", err)
		return entry{}, false
	}
	return entry{label: label, handler: a.actions.Track(event, a.actions.OpenURL(rawURL))}, true
}

// canLaunchAtLogin reports whether launch at login can be managed here.
func (a *App) canLaunchAtLogin() bool {
	return a.launcher != nil && autolaunch.Supported()
}

// menuSections lists the application menu.
func (a *App) menuSections() []section {
	act := a.actions
	cb := a.checkboxes()

	file := []entry{
		{label: "Check for Updates...", handler: act.Track("menu_check_updates", act.CheckForUpdates())},
		{label: "Install Update and Restart", handler: act.Track("menu_install_update", act.InstallUpdate())},
		a.toggle("Check for Updates Automatically", prefAutoUpdate, cb.autoUpdate, act.SetAutoUpdate),
	}
	if a.canLaunchAtLogin() {
		file = append(file, separator, a.toggle("Launch on Startup", prefLaunchOnStartup, cb.launchOnStartup, act.LaunchOnStartup))
	}
	if runtime.GOOS != "darwin" {
		file = append(file, separator, entry{label: "Quit", accel: keys.CmdOrCtrl("q"), handler: act.Quit()})
	}

	view := []entry{
		{label: "Reload", accel: keys.CmdOrCtrl("r"), handler: act.Reload()},
		{label: "Reset Window Size", handler: act.ResetWindowSize(defaultWidth, defaultHeight)},
		{label: "Toggle Full Screen", accel: keys.Key("f11"), handler: act.ToggleFullScreen()},
		{label: "Toggle Developer Tools", accel: keys.Combo("i", keys.CmdOrCtrlKey, keys.OptionOrAltKey), handler: act.ToggleDevTools()},
		separator,
		a.toggle("Always on Top", prefAlwaysOnTop, cb.alwaysOnTop, act.SetAlwaysOnTop),
		a.toggle("Show in Tray", prefShowInTray, cb.showInTray, act.ShowInTray),
	}
	if a.dock != nil {
		view = append(view, a.toggle("Show in Dock", prefShowInDock, cb.showInDock, act.ShowInDock))
	}
	view = append(view, a.toggle("Show Unread Badge", prefShowBadge, cb.showBadge, act.ShowBadge))

	window := []entry{
		{label: "Show Main Window", handler: act.Show()},
		{label: "Go Home", accel: keys.CmdOrCtrl("h"), handler: act.SendMessage(channelNavigate, menuaction.Args("/"))},
		{label: "Reload Embedded Content", handler: act.SendToWebview(channelReload, nil)},
	}

	var help []entry
	for _, l := range []struct{ label, event, url string }{
		{"Documentation", "menu_docs", docsURL},
		{"Report an Issue", "menu_issue", issuesURL},
	} {
		if e, ok := a.link(l.label, l.event, l.url); ok {
			help = append(help, e)
		}
	}
	help = append(help,
		separator,
		entry{label: "Enter the Raffle...", handler: act.OpenRaffleDialog()},
		separator,
		entry{label: "Open Logs Folder", handler: act.OpenPath(menuaction.Str(a.logDir))},
		entry{label: "Restart in Debug Mode", handler: act.Track("menu_debug_restart", act.RestartInDebugMode())},
	)

	return []section{
		{label: "File", entries: file},
		{label: "View", entries: view},
		{label: "Window", entries: window},
		{label: "Help", entries: help},
	}
}

// trayEntries lists the tray menu.
func (a *App) trayEntries() []entry {
	act := a.actions
	cb := a.checkboxes()

	badge := a.toggle("Show Unread Badge", prefShowBadge, cb.showBadge, act.ShowBadge)
	badge.tooltip = "Show the unread count on the tray icon"

	entries := []entry{
		{label: "Show " + appTitle, tooltip: "Bring the window forward", handler: act.Show()},
		separator,
		{label: "Check for Updates...", tooltip: "Look for a newer release", handler: act.Track("tray_check_updates", act.CheckForUpdates())},
		{label: "Enter the Raffle...", tooltip: "Show your raffle code", handler: act.OpenRaffleDialog()},
		separator,
		badge,
	}
	if a.canLaunchAtLogin() {
		launch := a.toggle("Launch on Startup", prefLaunchOnStartup, cb.launchOnStartup, act.LaunchOnStartup)
		launch.tooltip = "Start automatically when you log in"
		entries = append(entries, launch)
	}
	return append(entries, separator, entry{label: "Quit", tooltip: "Quit " + appTitle, handler: act.Quit()})
}

// mirror returns a handler copying the clicked item's state to every other
// item saving pref, in both the application and tray menus.
func (a *App) mirror(pref string) menuaction.Handler {
	return func(_ context.Context, ev menuaction.Event) {
		a.setChecked(pref, menuaction.Checked(ev))
	}
}

func (a *App) setChecked(pref string, checked bool) {
	a.mu.Lock()
	changed := false
	for _, item := range a.checkItems[pref] {
		if item.Checked != checked {
			item.Checked = checked
			changed = true
		}
	}
	ctx := a.wailsCtx
	a.mu.Unlock()

	if changed && ctx != nil {
		wailsRuntime.MenuUpdateApplicationMenu(ctx)
	}
	a.tray.SetChecked(pref, checked)
}

// buildAppMenu converts the application menu sections into a native menu and
// remembers its checkbox items so other menus can keep them in step.
func (a *App) buildAppMenu(dispatch func(menuaction.Handler) menu.Callback) *menu.Menu {
	appMenu := menu.NewMenu()
	if runtime.GOOS == "darwin" {
		appMenu.Append(menu.AppMenu())
	}
	// Required for copy and paste shortcuts inside the web view.
	appMenu.Append(menu.EditMenu())

	checks := make(map[string][]*menu.MenuItem)
	for _, s := range a.menuSections() {
		sub := appMenu.AddSubmenu(s.label)
		for _, e := range s.entries {
			switch {
			case e.separator:
				sub.AddSeparator()
			case e.checkbox:
				item := sub.AddCheckbox(e.label, e.checked, e.accel, dispatch(e.handler))
				if e.pref != "" {
					checks[e.pref] = append(checks[e.pref], item)
				}
			default:
				sub.AddText(e.label, e.accel, dispatch(e.handler))
			}
		}
	}

	a.mu.Lock()
	a.checkItems = checks
	a.mu.Unlock()
	return appMenu
}

// appMenuItem adapts a native menu item for handlers.
type appMenuItem struct {
	item *menu.MenuItem
}

func (i appMenuItem) Label() string {
	if i.item == nil {
		return ""
	}
	return i.item.Label
}

func (i appMenuItem) Checked() bool {
	return i.item != nil && i.item.Checked
}

// menuCallback runs h for a native menu click off the UI thread.
func (a *App) menuCallback(h menuaction.Handler) menu.Callback {
	return func(cd *menu.CallbackData) {
		ev := menuaction.Event{Window: a.Main()}
		if cd != nil && cd.MenuItem != nil {
			ev.Item = appMenuItem{item: cd.MenuItem}
			a.log.Debug("[MENU] Clicked", "label", cd.MenuItem.Label, "checked", cd.MenuItem.Checked)
		}
		a.spawn(h, ev)
	}
}

// spawn runs h in its own goroutine. The handler is counted before the
// goroutine starts so shutdown always waits for it.
func (a *App) spawn(h menuaction.Handler, ev menuaction.Event) {
	if h == nil {
		return
	}
	a.handlers.Add(1)
	go func() {
		defer a.handlers.Done()
		a.run(h, ev)
	}()
}

// run invokes h with the application's lifetime context. A panicking
// handler is logged and does not take the process down.
func (a *App) run(h menuaction.Handler, ev menuaction.Event) {
	if h == nil {
		return
	}
	ctx := a.lifetime
	if ctx == nil {
		ctx = context.Background()
	}

	label := ""
	if ev.Item != nil {
		label = ev.Item.Label()
	}
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("[RELIABILITY] Panic recovered in menu handler",
				"item", label,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	start := time.Now()
	h(ctx, ev)
	if d := time.Since(start); d > slowHandler {
		a.log.Warn("[RELIABILITY] Slow menu handler", "item", label, "duration", d)
	}
}
