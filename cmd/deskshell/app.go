package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/deskshell/pkg/analytics"
	"github.com/codeGROOVE-dev/deskshell/pkg/appsettings"
	"github.com/codeGROOVE-dev/deskshell/pkg/autolaunch"
	"github.com/codeGROOVE-dev/deskshell/pkg/menuaction"
	"github.com/codeGROOVE-dev/deskshell/pkg/update"
	"github.com/wailsapp/wails/v2/pkg/menu"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// config holds command-line settings.
type config struct {
	updateRepo     string
	analyticsURL   string
	cacheDir       string
	logDir         string
	updateInterval time.Duration
	debug          bool
	noConsoleLogs  bool
	noUpdateCheck  bool
	startHidden    bool
}

// App wires the native window, tray and managers together.
type App struct {
	lifetime  context.Context //nolint:containedctx // cancelled on shutdown
	wailsCtx  context.Context //nolint:containedctx // set once Wails has started
	log       *slog.Logger
	settings  *appsettings.Store[Settings]
	actions   *menuaction.Actions
	tray      *TrayManager
	badge     *badgeController
	dock      menuaction.Dock
	updates   *update.Manager
	analytics *analytics.Client
	launcher  *autolaunch.Launcher
	dialogs   *dialogs
	window    *wailsWindow
	shell     *shell
	// checkItems holds the application menu checkboxes by preference key.
	checkItems map[string][]*menu.MenuItem
	cancel     context.CancelFunc
	exit       func(code int)
	cfg        config
	logDir     string
	handlers   sync.WaitGroup
	mu         sync.RWMutex
}

// newApp builds the application. Nothing native is touched until startup.
func newApp(cfg config, store *appsettings.Store[Settings], logger *slog.Logger) *App {
	lifetime, cancel := context.WithCancel(context.Background())
	a := &App{
		lifetime: lifetime,
		cancel:   cancel,
		log:      logger,
		settings: store,
		cfg:      cfg,
		logDir:   cfg.logDir,
		dock:     newDock(),
		exit:     os.Exit,
	}
	s := store.Get()

	a.analytics = analytics.New(analytics.Config{
		Endpoint: cfg.analyticsURL,
		ClientID: s.AnalyticsID,
		Version:  getVersion(),
		Logger:   logger,
	})
	a.dialogs = newDialogs(a.wailsContext)
	a.shell = newShell(logger)

	if launcher, err := autolaunch.New(appName, autolaunch.WithLogger(logger)); err != nil {
		a.log.Warn("[LAUNCH] Launch at login unavailable", "error", err)
	} else {
		a.launcher = launcher
	}

	if !cfg.noUpdateCheck {
		releaseCache := ""
		if cfg.cacheDir != "" {
			releaseCache = filepath.Join(cfg.cacheDir, "releases")
		}
		um, err := update.New(lifetime, update.Config{
			Repo:     cfg.updateRepo,
			Current:  getVersion(),
			Token:    os.Getenv("GITHUB_TOKEN"),
			Interval: cfg.updateInterval,
			CacheDir: releaseCache,
			Notifier: notifier{log: logger},
			Prompter: a.dialogs,
			Logger:   logger,
			Emit:     a.emit,
			Relaunch: a.relaunchSelf,
		})
		if err != nil {
			a.log.Warn("[UPDATE] Updates disabled", "error", err)
		} else {
			a.updates = um
		}
	}

	a.tray = newTrayManager(&RealSystray{}, logger, a.trayEntries, a.dispatch, a.showMain)
	a.badge = newBadgeController(a.tray, logger, s.ShowBadge)
	a.actions = menuaction.New(a.deps())
	return a
}

// deps collects the managers for menu handlers. Missing managers stay nil interfaces.
func (a *App) deps() menuaction.Deps {
	d := menuaction.Deps{
		Tray:    a.tray,
		Dock:    a.dock,
		Badge:   a.badge,
		Windows: a,
		Shell:   a.shell,
		Dialogs: a.dialogs,
		Tracker: a.analytics,
		Prefs:   preferences{store: a.settings},
		Process: a,
		Logger:  a.log,
		Raffle: menuaction.Raffle{
			Code: func() string { return a.settings.Get().RaffleCode },
			URL:  raffleURL,
		},
	}
	if a.updates != nil {
		d.Updates = a.updates
	}
	if a.launcher != nil {
		d.Launcher = a.launcher
	}
	return d
}

// startup runs once Wails has created the window.
func (a *App) startup(ctx context.Context) {
	a.mu.Lock()
	a.wailsCtx = ctx
	a.window = newWindow(ctx, a.log)
	a.mu.Unlock()

	s := a.settings.Get()
	a.log.Info("Starting "+appTitle, "version", getVersion(), "commit", commit, "date", date)

	go a.analytics.Run(a.lifetime)

	wailsRuntime.EventsOn(ctx, channelBadgeCount, func(data ...any) {
		n, ok := parseCount(data...)
		if !ok {
			a.log.Warn("[BADGE] Ignoring malformed badge event", "data", data)
			return
		}
		a.badge.SetCount(n)
	})

	if s.AlwaysOnTop {
		a.window.SetAlwaysOnTop(true)
	}
	if s.ShowInTray {
		a.tray.Create()
	}
	if a.dock != nil && !s.ShowInDock {
		a.dock.Hide()
	}
	if a.updates != nil && s.AutoUpdate {
		a.updates.SetAutoCheck(true)
	}
	go a.syncLaunchOnStartup(s.LaunchOnStartup)

	a.analytics.Track(a.lifetime, "app_start", map[string]string{"version": getVersion()})
}

// syncLaunchOnStartup makes the login registration match the saved preference.
func (a *App) syncLaunchOnStartup(want bool) {
	if a.launcher == nil {
		return
	}
	got, err := a.launcher.IsEnabled(a.lifetime)
	if err != nil {
		if !errors.Is(err, autolaunch.ErrUnsupported) {
			a.log.Warn("[LAUNCH] Failed to check login item", "error", err)
		}
		return
	}
	if got == want {
		return
	}
	a.log.Info("[LAUNCH] Login item differs from settings, updating", "registered", got, "wanted", want)
	if want {
		err = a.launcher.Enable(a.lifetime)
	} else {
		err = a.launcher.Disable(a.lifetime)
	}
	if err != nil {
		a.log.Error("[LAUNCH] Failed to update login item", "error", err)
	}
}

// shutdown runs when Wails is closing.
func (a *App) shutdown(context.Context) {
	a.log.Info("Shutting down application")
	if a.updates != nil {
		a.updates.SetAutoCheck(false)
	}
	a.tray.Close()
	a.cancel()
	a.handlers.Wait()
}

// beforeClose hides the window instead of quitting while the tray icon exists.
func (a *App) beforeClose(ctx context.Context) bool {
	if !a.tray.Active() {
		return false
	}
	wailsRuntime.WindowHide(ctx)
	return true
}

// Main returns the main window, or nil before startup.
func (a *App) Main() menuaction.Window {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.window == nil {
		return nil
	}
	return a.window
}

func (a *App) wailsContext() context.Context {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.wailsCtx
}

// dispatch runs a tray handler against the main window.
func (a *App) dispatch(h menuaction.Handler, ev menuaction.Event) {
	ev.Window = a.Main()
	a.spawn(h, ev)
}

func (a *App) showMain() {
	if w := a.Main(); w != nil {
		w.Show()
	}
}

func (a *App) emit(event string, data ...any) {
	if ctx := a.wailsContext(); ctx != nil {
		wailsRuntime.EventsEmit(ctx, event, data...)
	}
}

// Args returns the arguments the process was started with.
func (*App) Args() []string {
	return os.Args[1:]
}

// Relaunch starts a new instance of the running executable with args.
func (a *App) Relaunch(args []string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("get executable: %w", err)
	}
	cmd := exec.Command(exe, args...) //nolint:gosec,noctx // relaunching ourselves; must outlive this process
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", exe, err)
	}
	a.log.Info("Relaunched", "pid", cmd.Process.Pid, "args", args)
	return cmd.Process.Release()
}

// Exit ends the process immediately.
func (a *App) Exit(code int) {
	a.log.Info("Exiting", "code", code)
	a.cancel()
	a.exit(code)
}

// Quit asks Wails to close the application.
func (a *App) Quit() {
	ctx := a.wailsContext()
	if ctx == nil {
		a.Exit(0)
		return
	}
	wailsRuntime.Quit(ctx)
}

// relaunchSelf restarts with the current arguments, used after an update.
func (a *App) relaunchSelf() error {
	if err := a.Relaunch(a.Args()); err != nil {
		return err
	}
	a.Quit()
	return nil
}
