package menuaction

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// Raffle dialog buttons. Picking raffleEnterButton opens the raffle page.
const (
	raffleCloseButton = iota
	raffleEnterButton
)

// Actions creates menu handlers bound to a set of managers.
type Actions struct {
	deps Deps
	log  *slog.Logger
}

// New returns an Actions using deps. A nil Logger falls back to slog.Default.
func New(deps Deps) *Actions {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Actions{deps: deps, log: logger}
}

// CheckForUpdates runs an interactive update check.
func (a *Actions) CheckForUpdates() Handler {
	return func(ctx context.Context, _ Event) {
		if a.deps.Updates == nil {
			return
		}
		a.log.Info("[MENU] Checking for updates")
		a.deps.Updates.CheckForUpdates(ctx, true)
	}
}

// InstallUpdate quits and installs a downloaded update.
func (a *Actions) InstallUpdate() Handler {
	return func(ctx context.Context, _ Event) {
		if a.deps.Updates == nil {
			return
		}
		a.log.Info("[MENU] Installing update")
		a.deps.Updates.QuitAndInstall(ctx)
	}
}

// SetAutoUpdate turns periodic update checks on or off.
func (a *Actions) SetAutoUpdate(flag BoolFunc) Handler {
	return func(_ context.Context, ev Event) {
		if a.deps.Updates == nil {
			return
		}
		enabled := flag(ev)
		a.log.Info("[MENU] Auto update", "enabled", enabled)
		a.deps.Updates.SetAutoCheck(enabled)
	}
}

// Reload reloads the window's web UI.
func (*Actions) Reload() Handler {
	return func(_ context.Context, ev Event) {
		if ev.Window == nil {
			return
		}
		ev.Window.Reload()
	}
}

// ResetWindowSize resizes the window and centers it on screen.
func (*Actions) ResetWindowSize(width, height int) Handler {
	return func(_ context.Context, ev Event) {
		if ev.Window == nil {
			return
		}
		ev.Window.SetSize(width, height)
		ev.Window.Center()
	}
}

// Show brings the window forward, falling back to the main window.
func (a *Actions) Show() Handler {
	return func(_ context.Context, ev Event) {
		win := ev.Window
		if win == nil && a.deps.Windows != nil {
			win = a.deps.Windows.Main()
		}
		if win == nil {
			a.log.Debug("[MENU] Show requested without a window")
			return
		}
		win.Show()
	}
}

// ToggleFullScreen flips the window's full-screen state.
func (*Actions) ToggleFullScreen() Handler {
	return func(_ context.Context, ev Event) {
		if ev.Window == nil {
			return
		}
		ev.Window.SetFullScreen(!ev.Window.IsFullScreen())
	}
}

// ToggleDevTools opens or closes the web inspector.
func (*Actions) ToggleDevTools() Handler {
	return func(_ context.Context, ev Event) {
		if ev.Window == nil {
			return
		}
		ev.Window.ToggleDevTools()
	}
}

// SetAlwaysOnTop pins the window above others when flag reports true.
func (*Actions) SetAlwaysOnTop(flag BoolFunc) Handler {
	return func(_ context.Context, ev Event) {
		if ev.Window == nil {
			return
		}
		ev.Window.SetAlwaysOnTop(flag(ev))
	}
}

// SendMessage sends a message to the web UI on channel.
func (*Actions) SendMessage(channel string, args ArgsFunc) Handler {
	return func(_ context.Context, ev Event) {
		if ev.Window == nil {
			return
		}
		var payload []any
		if args != nil {
			payload = args(ev)
		}
		ev.Window.Send(channel, payload...)
	}
}

// SendToWebview asks the web UI to relay a message on channel to its embedded web content.
func (*Actions) SendToWebview(channel string, args ArgsFunc) Handler {
	return func(_ context.Context, ev Event) {
		if ev.Window == nil {
			return
		}
		payload := []any{channel}
		if args != nil {
			payload = append(payload, args(ev)...)
		}
		ev.Window.Send(ForwardChannel, payload...)
	}
}

// ShowInTray creates or destroys the tray icon.
func (a *Actions) ShowInTray(flag BoolFunc) Handler {
	return func(_ context.Context, ev Event) {
		if a.deps.Tray == nil {
			return
		}
		if flag(ev) {
			a.deps.Tray.Create()
			return
		}
		a.deps.Tray.Destroy()
	}
}

// ShowInDock shows or hides the dock icon. It does nothing on platforms without a dock.
func (a *Actions) ShowInDock(flag BoolFunc) Handler {
	return func(_ context.Context, ev Event) {
		if a.deps.Dock == nil {
			return
		}
		if flag(ev) {
			a.deps.Dock.Show()
			return
		}
		a.deps.Dock.Hide()
	}
}

// ShowBadge turns the unread badge on or off.
func (a *Actions) ShowBadge(flag BoolFunc) Handler {
	return func(_ context.Context, ev Event) {
		if a.deps.Badge == nil {
			return
		}
		a.deps.Badge.SetEnabled(flag(ev))
	}
}

// LaunchOnStartup registers or unregisters the app as a login item.
//
// The registration runs in its own goroutine on a context that outlives the click.
// Its outcome is only logged: it is never retried and never reported to the caller.
func (a *Actions) LaunchOnStartup(flag BoolFunc) Handler {
	return func(ctx context.Context, ev Event) {
		if a.deps.Launcher == nil {
			return
		}
		enable := flag(ev)
		go a.setLaunchOnStartup(context.WithoutCancel(ctx), enable)
	}
}

func (a *Actions) setLaunchOnStartup(ctx context.Context, enable bool) {
	var err error
	if enable {
		err = a.deps.Launcher.Enable(ctx)
	} else {
		err = a.deps.Launcher.Disable(ctx)
	}
	if err != nil {
		a.log.Error("[LAUNCH] Failed to update login item", "enable", enable, "error", err)
		return
	}
	a.log.Info("[LAUNCH] Updated login item", "enable", enable)
}

// OpenRaffleDialog shows the user's raffle code and opens the raffle page on request.
func (a *Actions) OpenRaffleDialog() Handler {
	return func(ctx context.Context, _ Event) {
		if a.deps.Dialogs == nil {
			return
		}
		code := ""
		if a.deps.Raffle.Code != nil {
			code = a.deps.Raffle.Code()
		}
		box := MessageBox{
			Title:   "Raffle",
			Message: fmt.Sprintf("Your raffle code is %s", code),
			Detail:  "Enter the raffle on our website to take part.",
			Buttons: []string{"Close", "Enter raffle"},
		}
		resp, err := a.deps.Dialogs.ShowMessageBox(ctx, box)
		if err != nil {
			a.log.Error("[MENU] Raffle dialog failed", "error", err)
			return
		}
		a.track(ctx, "raffle_dialog", map[string]string{"response": fmt.Sprint(resp)})
		if resp != raffleEnterButton {
			return
		}
		a.openExternal(ctx, a.deps.Raffle.URL)
	}
}

// RestartInDebugMode relaunches the app with debug logging and exits.
// The restart is not confirmed.
func (a *Actions) RestartInDebugMode() Handler {
	return func(_ context.Context, _ Event) {
		if a.deps.Process == nil {
			return
		}
		args := slices.Clone(a.deps.Process.Args())
		for _, flag := range []string{FlagDebug, FlagNoConsoleLogs} {
			if !slices.Contains(args, flag) {
				args = append(args, flag)
			}
		}
		a.log.Info("[MENU] Restarting in debug mode", "args", args)
		if err := a.deps.Process.Relaunch(args); err != nil {
			a.log.Error("[MENU] Failed to relaunch", "error", err)
			return
		}
		a.deps.Process.Exit(0)
	}
}

// OpenURL opens rawURL in the default browser.
func (a *Actions) OpenURL(rawURL string) Handler {
	return func(ctx context.Context, _ Event) {
		a.openExternal(ctx, rawURL)
	}
}

// OpenPath opens a file or folder with the default application.
func (a *Actions) OpenPath(path StringFunc) Handler {
	return func(ctx context.Context, ev Event) {
		if a.deps.Shell == nil {
			return
		}
		p := path(ev)
		if p == "" {
			return
		}
		if err := a.deps.Shell.OpenPath(ctx, p); err != nil {
			a.log.Error("[MENU] Failed to open path", "path", p, "error", err)
		}
	}
}

// SetPreference stores a boolean preference.
func (a *Actions) SetPreference(key string, flag BoolFunc) Handler {
	return func(_ context.Context, ev Event) {
		if a.deps.Prefs == nil {
			return
		}
		v := flag(ev)
		if err := a.deps.Prefs.SetBool(key, v); err != nil {
			a.log.Error("[MENU] Failed to save preference", "key", key, "error", err)
		}
	}
}

// Track records event and then runs next.
func (a *Actions) Track(event string, next Handler) Handler {
	return func(ctx context.Context, ev Event) {
		props := map[string]string{}
		if ev.Item != nil {
			props["label"] = ev.Item.Label()
		}
		a.track(ctx, event, props)
		if next != nil {
			next(ctx, ev)
		}
	}
}

// Quit exits the application.
func (a *Actions) Quit() Handler {
	return func(_ context.Context, _ Event) {
		if a.deps.Process == nil {
			return
		}
		a.log.Info("[MENU] Quit requested by user")
		a.deps.Process.Quit()
	}
}

func (a *Actions) track(ctx context.Context, event string, props map[string]string) {
	if a.deps.Tracker == nil {
		return
	}
	a.deps.Tracker.Track(ctx, event, props)
}

func (a *Actions) openExternal(ctx context.Context, rawURL string) {
	if a.deps.Shell == nil || rawURL == "" {
		return
	}
	if err := a.deps.Shell.OpenExternal(ctx, rawURL); err != nil {
		a.log.Error("[MENU] Failed to open url", "url", rawURL, "error", err)
	}
}
