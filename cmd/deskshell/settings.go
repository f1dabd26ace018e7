package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/codeGROOVE-dev/deskshell/pkg/analytics"
	"github.com/codeGROOVE-dev/deskshell/pkg/appsettings"
	"github.com/google/uuid"
)

// Preference keys, matching the JSON names in the settings file.
const (
	prefShowInTray      = "show_in_tray"
	prefShowInDock      = "show_in_dock"
	prefShowBadge       = "show_badge"
	prefAlwaysOnTop     = "always_on_top"
	prefAutoUpdate      = "auto_update"
	prefLaunchOnStartup = "launch_on_startup"
)

// Settings represents persistent user settings.
type Settings struct {
	AnalyticsID     string `json:"analytics_id"`
	RaffleCode      string `json:"raffle_code"`
	ShowInTray      bool   `json:"show_in_tray"`
	ShowInDock      bool   `json:"show_in_dock"`
	ShowBadge       bool   `json:"show_badge"`
	AlwaysOnTop     bool   `json:"always_on_top"`
	AutoUpdate      bool   `json:"auto_update"`
	LaunchOnStartup bool   `json:"launch_on_startup"`
}

func defaultSettings() Settings {
	return Settings{
		ShowInTray: true,
		ShowInDock: true,
		ShowBadge:  true,
		AutoUpdate: true,
	}
}

// loadSettings opens the settings store, filling in generated identifiers on first run.
func loadSettings(manager *appsettings.Manager) *appsettings.Store[Settings] {
	store, err := appsettings.Open(manager, defaultSettings())
	if err != nil {
		slog.Error("Failed to load settings, using defaults", "error", err)
	}

	s := store.Get()
	if s.AnalyticsID != "" && s.RaffleCode != "" {
		slog.Info("Loaded settings",
			"show_in_tray", s.ShowInTray,
			"show_badge", s.ShowBadge,
			"auto_update", s.AutoUpdate,
			"launch_on_startup", s.LaunchOnStartup)
		return store
	}

	if err := store.Update(func(s *Settings) {
		if s.AnalyticsID == "" {
			s.AnalyticsID = analytics.NewClientID()
		}
		if s.RaffleCode == "" {
			s.RaffleCode = newRaffleCode()
		}
	}); err != nil {
		slog.Error("Failed to save settings", "error", err)
	}
	return store
}

// newRaffleCode returns an eight character code that is easy to read aloud.
func newRaffleCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// preferences stores checkbox state in the settings file.
type preferences struct {
	store *appsettings.Store[Settings]
}

func (p preferences) SetBool(key string, value bool) error {
	var field func(*Settings) *bool
	switch key {
	case prefShowInTray:
		field = func(s *Settings) *bool { return &s.ShowInTray }
	case prefShowInDock:
		field = func(s *Settings) *bool { return &s.ShowInDock }
	case prefShowBadge:
		field = func(s *Settings) *bool { return &s.ShowBadge }
	case prefAlwaysOnTop:
		field = func(s *Settings) *bool { return &s.AlwaysOnTop }
	case prefAutoUpdate:
		field = func(s *Settings) *bool { return &s.AutoUpdate }
	case prefLaunchOnStartup:
		field = func(s *Settings) *bool { return &s.LaunchOnStartup }
	default:
		return fmt.Errorf("unknown preference %q", key)
	}

	if err := p.store.Update(func(s *Settings) { *field(s) = value }); err != nil {
		return fmt.Errorf("save preference %s: %w", key, err)
	}
	slog.Info("Saved preference", "key", key, "value", value)
	return nil
}
