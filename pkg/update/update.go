// Package update checks GitHub releases for newer builds and replaces the
// running binary with them.
package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/codeGROOVE-dev/deskshell/pkg/filecache"
	"github.com/google/go-github/v57/github"
)

// EventAvailable is emitted to the web UI when a newer release is found.
const EventAvailable = "update:available"

const (
	defaultInterval = 6 * time.Hour
	staleCacheAge   = 30 * 24 * time.Hour
)

// Notifier shows desktop notifications.
type Notifier interface {
	Notify(title, message string) error
}

// Prompter shows a modal message and returns the index of the chosen button.
type Prompter interface {
	Prompt(ctx context.Context, title, message string, buttons ...string) (int, error)
}

// Config configures a Manager.
type Config struct {
	HTTPClient *http.Client
	Notifier   Notifier
	Prompter   Prompter
	Logger     *slog.Logger
	// Emit forwards events to the web UI.
	Emit func(event string, data ...any)
	// Relaunch starts the freshly installed binary and quits this process.
	Relaunch func() error
	// Repo is "owner/name".
	Repo    string
	Current string
	Token   string
	// BaseURL overrides the GitHub API endpoint.
	BaseURL string
	// CacheDir holds the last API answer for background checks. Empty disables caching.
	CacheDir   string
	Interval   time.Duration
	RetryDelay time.Duration
}

// Manager drives update checks and installs. Safe for concurrent use.
type Manager struct {
	ctx        context.Context //nolint:containedctx // lifetime of background checks
	client     *github.Client
	cache      *filecache.Cache[github.RepositoryRelease]
	download   *http.Client
	current    *semver.Version
	notifier   Notifier
	prompter   Prompter
	log        *slog.Logger
	emit       func(string, ...any)
	relaunch   func() error
	apply      func(ctx context.Context, r *Release) error
	latest     *Release
	stopAuto   context.CancelFunc
	notified   string
	owner      string
	repo       string
	goos       string
	goarch     string
	interval   time.Duration
	retryDelay time.Duration
	mu         sync.Mutex
	checking   atomic.Bool
}

// New returns a Manager. ctx bounds background checks started by SetAutoCheck.
func New(ctx context.Context, cfg Config) (*Manager, error) {
	owner, repo, ok := strings.Cut(cfg.Repo, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return nil, fmt.Errorf("invalid release repository %q, want owner/name", cfg.Repo)
	}
	current, err := semver.NewVersion(cfg.Current)
	if err != nil {
		return nil, fmt.Errorf("parse current version %q: %w", cfg.Current, err)
	}
	client, err := newGitHubClient(ctx, cfg.HTTPClient, cfg.Token, cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		ctx:        ctx,
		client:     client,
		download:   cfg.HTTPClient,
		current:    current,
		notifier:   cfg.Notifier,
		prompter:   cfg.Prompter,
		log:        cfg.Logger,
		emit:       cfg.Emit,
		relaunch:   cfg.Relaunch,
		owner:      owner,
		repo:       repo,
		goos:       runtime.GOOS,
		goarch:     runtime.GOARCH,
		interval:   cfg.Interval,
		retryDelay: cfg.RetryDelay,
	}
	if m.download == nil {
		m.download = &http.Client{Timeout: 10 * time.Minute}
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	if m.interval <= 0 {
		m.interval = defaultInterval
	}
	if m.retryDelay <= 0 {
		m.retryDelay = time.Second
	}
	if cfg.CacheDir != "" {
		m.cache = filecache.New[github.RepositoryRelease](cfg.CacheDir)
		if cleaned, errs := m.cache.Cleanup(staleCacheAge); cleaned > 0 || errs > 0 {
			m.log.Info("[UPDATE] Cleaned release cache", "removed", cleaned, "errors", errs)
		}
	}
	m.apply = m.install
	return m, nil
}

// Check returns the newest release above the running version, or ErrNoUpdate.
func (m *Manager) Check(ctx context.Context) (*Release, error) {
	return m.check(ctx, false)
}

func (m *Manager) check(ctx context.Context, allowCached bool) (*Release, error) {
	rel, err := m.cachedRelease(ctx, allowCached)
	if err != nil {
		return nil, err
	}
	r, err := newer(rel, m.current, m.goos, m.goarch)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.latest = r
	m.mu.Unlock()
	return r, nil
}

// Latest returns the most recent release found by Check, if any.
func (m *Manager) Latest() *Release {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest
}

// CheckForUpdates looks for a newer release. Interactive checks report every
// outcome in a dialog and offer to install; background checks only announce
// a release the first time it is seen.
func (m *Manager) CheckForUpdates(ctx context.Context, interactive bool) {
	if !m.checking.CompareAndSwap(false, true) {
		m.log.Debug("[UPDATE] Check already in progress")
		return
	}
	defer m.checking.Store(false)

	m.log.Info("[UPDATE] Checking for updates", "current", m.current.String(), "interactive", interactive)
	r, err := m.check(ctx, !interactive)
	switch {
	case errors.Is(err, ErrNoUpdate):
		m.log.Info("[UPDATE] Already running the latest version", "version", m.current.String())
		if interactive {
			m.prompt(ctx, "No Updates", fmt.Sprintf("You are running the latest version (%s).", m.current), "OK")
		}
		return
	case err != nil:
		m.log.Error("[UPDATE] Update check failed", "error", err)
		if interactive {
			m.prompt(ctx, "Update Check Failed", err.Error(), "OK")
		}
		return
	}

	m.log.Info("[UPDATE] Update available", "version", r.Version.String(), "asset", r.AssetName)
	m.announce(r)

	if !interactive {
		return
	}
	msg := fmt.Sprintf("Version %s is available. You are running %s.", r.Version, m.current)
	if r.AssetURL == "" {
		m.prompt(ctx, "Update Available", msg+"\n\nNo download is published for this platform.", "OK")
		return
	}
	if m.prompt(ctx, "Update Available", msg, "Later", "Install and Relaunch") == 1 {
		m.QuitAndInstall(ctx)
	}
}

// QuitAndInstall downloads the latest release, replaces the running binary
// and relaunches. Failures are reported and the current process keeps running.
func (m *Manager) QuitAndInstall(ctx context.Context) {
	r := m.Latest()
	if r == nil {
		var err error
		r, err = m.Check(ctx)
		if errors.Is(err, ErrNoUpdate) {
			m.log.Info("[UPDATE] Nothing to install")
			m.prompt(ctx, "No Updates", fmt.Sprintf("You are running the latest version (%s).", m.current), "OK")
			return
		}
		if err != nil {
			m.log.Error("[UPDATE] Update check failed", "error", err)
			m.prompt(ctx, "Update Failed", err.Error(), "OK")
			return
		}
	}

	m.log.Info("[UPDATE] Installing update", "version", r.Version.String(), "asset", r.AssetName)
	if err := m.apply(ctx, r); err != nil {
		m.log.Error("[UPDATE] Install failed", "error", err)
		m.prompt(ctx, "Update Failed", err.Error(), "OK")
		return
	}
	if m.relaunch == nil {
		m.log.Info("[UPDATE] Update installed, restart to use it", "version", r.Version.String())
		return
	}
	if err := m.relaunch(); err != nil {
		m.log.Error("[UPDATE] Relaunch failed", "error", err)
		m.prompt(ctx, "Update Installed", "Restart the application to finish updating.", "OK")
	}
}

// SetAutoCheck starts or stops periodic background checks.
func (m *Manager) SetAutoCheck(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !enabled {
		if m.stopAuto != nil {
			m.stopAuto()
			m.stopAuto = nil
			m.log.Info("[UPDATE] Automatic update checks disabled")
		}
		return
	}
	if m.stopAuto != nil {
		return
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.stopAuto = cancel
	m.log.Info("[UPDATE] Automatic update checks enabled", "interval", m.interval)
	go m.autoCheck(ctx)
}

func (m *Manager) autoCheck(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.CheckForUpdates(ctx, false)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckForUpdates(ctx, false)
		}
	}
}

// announce tells the UI and the desktop about r, once per version.
func (m *Manager) announce(r *Release) {
	m.mu.Lock()
	seen := m.notified == r.Tag
	m.notified = r.Tag
	m.mu.Unlock()
	if seen {
		return
	}

	if m.emit != nil {
		m.emit(EventAvailable, map[string]string{
			"version": r.Version.String(),
			"url":     r.URL,
			"notes":   r.Notes,
		})
	}
	if m.notifier != nil {
		if err := m.notifier.Notify("Update Available", fmt.Sprintf("Version %s is ready to install.", r.Version)); err != nil {
			m.log.Warn("[UPDATE] Failed to show notification", "error", err)
		}
	}
}

// prompt shows a dialog and returns the chosen button, or -1.
func (m *Manager) prompt(ctx context.Context, title, message string, buttons ...string) int {
	if m.prompter == nil {
		return -1
	}
	resp, err := m.prompter.Prompt(ctx, title, message, buttons...)
	if err != nil {
		m.log.Warn("[UPDATE] Failed to show dialog", "title", title, "error", err)
		return -1
	}
	return resp
}
