// Package main implements a desktop shell that hosts a web UI in a native window,
// keeps a system tray icon with an unread badge, and wires the application and
// tray menus to window, dock, update, launch-at-login and shell actions.
package main

import (
	"embed"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/codeGROOVE-dev/deskshell/pkg/appsettings"
	"github.com/codeGROOVE-dev/deskshell/pkg/logging"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
)

//go:embed all:frontend/dist
var assets embed.FS

// Version information - set during build with -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func getVersion() string {
	if version == "" {
		return "dev"
	}
	return version
}

func main() {
	var cfg config
	var showVersion bool
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&cfg.noConsoleLogs, "no-console-logs", false, "Write logs to the log file only")
	flag.DurationVar(&cfg.updateInterval, "update-interval", defaultUpdateInterval, "How often to check for updates (e.g. 1h, 6h)")
	flag.StringVar(&cfg.updateRepo, "update-repo", defaultReleaseRepo, "GitHub repository (owner/name) that publishes releases")
	flag.BoolVar(&cfg.noUpdateCheck, "no-update-check", false, "Disable update checks")
	flag.StringVar(&cfg.analyticsURL, "analytics-url", "", "Endpoint for anonymous usage events (empty disables analytics)")
	flag.BoolVar(&cfg.startHidden, "start-hidden", false, "Start with the main window hidden")
	flag.BoolVar(&showVersion, "version", false, "Show version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("%s version %s\ncommit: %s\nbuilt: %s\n", appName, getVersion(), commit, date)
		os.Exit(0)
	}

	if cfg.updateInterval < minUpdateInterval {
		slog.Warn("Update interval too short, using minimum", "requested", cfg.updateInterval, "minimum", minUpdateInterval)
		cfg.updateInterval = minUpdateInterval
	}

	if cacheDir, err := os.UserCacheDir(); err != nil {
		slog.Error("Failed to get cache directory, logging to console only", "error", err)
	} else {
		cfg.cacheDir = filepath.Join(cacheDir, appName)
		cfg.logDir = filepath.Join(cfg.cacheDir, "logs")
	}

	logOpts := logging.Options{Dir: cfg.logDir, Debug: cfg.debug}
	if !cfg.noConsoleLogs {
		logOpts.Console = os.Stderr
	}
	logger, err := logging.Setup(logOpts)
	if err != nil {
		// Setup still returns a usable logger; only the file is missing.
		slog.Error("Failed to open log file", "error", err)
	}
	defer func() {
		if err := logger.Close(); err != nil {
			slog.Warn("Failed to close log file", "error", err)
		}
	}()
	slog.SetDefault(logger.Logger)
	if logger.Path != "" {
		slog.Info("Logs are being written to", "path", logger.Path)
		if n, err := logging.Prune(cfg.logDir, logRetention, time.Now()); err != nil {
			slog.Warn("Failed to prune old logs", "error", err)
		} else if n > 0 {
			slog.Info("Pruned old logs", "removed", n)
		}
	}
	slog.Info("Configuration",
		"update_interval", cfg.updateInterval,
		"update_repo", cfg.updateRepo,
		"update_check", !cfg.noUpdateCheck,
		"analytics", cfg.analyticsURL != "")

	store := loadSettings(appsettings.NewManager(appName))
	app := newApp(cfg, store, logger.Logger)

	err = wails.Run(&options.App{
		Title:            appTitle,
		Width:            defaultWidth,
		Height:           defaultHeight,
		MinWidth:         minWidth,
		MinHeight:        minHeight,
		StartHidden:      cfg.startHidden,
		BackgroundColour: &options.RGBA{R: 18, G: 18, B: 20, A: 255},
		Menu:             app.buildAppMenu(app.menuCallback),
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:     app.startup,
		OnBeforeClose: app.beforeClose,
		OnShutdown:    app.shutdown,
		Mac: &mac.Options{
			About: &mac.AboutInfo{
				Title:   appTitle,
				Message: fmt.Sprintf("Version %s\n%s", getVersion(), homepageURL),
			},
		},
	})
	if err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1) //nolint:gocritic // log file is flushed on each write
	}
}
