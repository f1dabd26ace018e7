// Package appsettings persists user preferences as JSON in the user config directory.
package appsettings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Manager reads and writes the settings file for one application.
type Manager struct {
	appName string
}

// NewManager creates a settings manager for the given application name.
func NewManager(appName string) *Manager {
	return &Manager{appName: appName}
}

// Path returns the path to the settings file.
func (m *Manager) Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(configDir, m.appName, "settings.json"), nil
}

// Load decodes the settings file into v.
// Returns false if the file doesn't exist (not an error).
func (m *Manager) Load(v any) (bool, error) {
	path, err := m.Path()
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read settings file: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse settings: %w", err)
	}
	return true, nil
}

// Save writes v to the settings file, replacing it atomically.
func (m *Manager) Save(v any) error {
	path, err := m.Path()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close() //nolint:errcheck,gosec // chmod error takes precedence
		return fmt.Errorf("chmod settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

// Store keeps settings of type T in memory and writes every change to disk.
// Safe for concurrent use.
type Store[T any] struct {
	manager *Manager
	value   T
	mu      sync.RWMutex
}

// Open loads settings for manager, starting from defaults.
// A missing file yields defaults; a corrupt file yields defaults and an error.
func Open[T any](manager *Manager, defaults T) (*Store[T], error) {
	s := &Store[T]{manager: manager, value: defaults}
	loaded := defaults
	found, err := manager.Load(&loaded)
	if err != nil {
		return s, err
	}
	if found {
		s.value = loaded
	}
	return s, nil
}

// Get returns a copy of the current settings.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Update applies fn to the settings and saves them.
// The in-memory value is kept even if the save fails.
func (s *Store[T]) Update(fn func(*T)) error {
	s.mu.Lock()
	fn(&s.value)
	snapshot := s.value
	s.mu.Unlock()

	return s.manager.Save(&snapshot)
}
