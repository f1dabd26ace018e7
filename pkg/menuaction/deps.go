// Package menuaction builds the handlers run when a user picks a menu item.
//
// Every factory returns a Handler that delegates to one of the managers in Deps.
// Handlers never return errors: failures are logged and the click is dropped.
package menuaction

import (
	"context"
	"log/slog"
)

// ForwardChannel is the web UI channel that relays a message to embedded web content.
// The first argument sent on it is the target channel name.
const ForwardChannel = "webview:forward"

// Debug relaunch flags appended by RestartInDebugMode.
const (
	FlagDebug         = "--debug"
	FlagNoConsoleLogs = "--no-console-logs"
)

// MenuItem is the menu entry that triggered a handler.
type MenuItem interface {
	Label() string
	Checked() bool
}

// Window is a native window hosting the web UI.
type Window interface {
	Reload()
	SetSize(width, height int)
	Center()
	Show()
	IsFullScreen() bool
	SetFullScreen(bool)
	ToggleDevTools()
	SetAlwaysOnTop(bool)
	Send(channel string, args ...any)
}

// WindowRegistry tracks the main application window.
type WindowRegistry interface {
	// Main returns nil when no main window exists yet.
	Main() Window
}

// UpdateManager owns the update check lifecycle.
type UpdateManager interface {
	CheckForUpdates(ctx context.Context, interactive bool)
	QuitAndInstall(ctx context.Context)
	SetAutoCheck(enabled bool)
}

// TrayManager creates and removes the tray icon.
type TrayManager interface {
	Create()
	Destroy()
}

// Dock controls the application's dock icon. Only some platforms have one.
type Dock interface {
	Show()
	Hide()
}

// Badge controls the unread badge on the tray or dock icon.
type Badge interface {
	SetEnabled(bool)
}

// AutoLauncher registers the application to start at login.
type AutoLauncher interface {
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
}

// Shell opens URLs and files with the operating system.
type Shell interface {
	OpenExternal(ctx context.Context, rawURL string) error
	OpenPath(ctx context.Context, path string) error
}

// MessageBox describes a native message dialog.
type MessageBox struct {
	Title   string
	Message string
	Detail  string
	Buttons []string
}

// Dialogs shows native dialogs.
type Dialogs interface {
	// ShowMessageBox returns the index of the button the user picked.
	ShowMessageBox(ctx context.Context, box MessageBox) (int, error)
}

// Tracker records analytics events.
type Tracker interface {
	Track(ctx context.Context, event string, props map[string]string)
}

// Preferences persists user settings.
type Preferences interface {
	SetBool(key string, value bool) error
}

// Process controls the running application process.
type Process interface {
	Args() []string
	Relaunch(args []string) error
	Exit(code int)
	Quit()
}

// Raffle configures OpenRaffleDialog.
type Raffle struct {
	// Code returns the user's raffle code at click time.
	Code func() string
	URL  string
}

// Deps bundles the managers handlers delegate to.
// Dock may be nil on platforms without one; other nil managers make their handlers no-ops.
type Deps struct {
	Updates  UpdateManager
	Tray     TrayManager
	Dock     Dock
	Badge    Badge
	Windows  WindowRegistry
	Launcher AutoLauncher
	Shell    Shell
	Dialogs  Dialogs
	Tracker  Tracker
	Prefs    Preferences
	Process  Process
	Logger   *slog.Logger
	Raffle   Raffle
}
