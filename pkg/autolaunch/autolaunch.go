// Package autolaunch registers the application to start when the user logs in.
//
// macOS uses a System Events login item. Linux and the BSDs use an XDG
// autostart entry and Windows a Startup folder shortcut, both written by
// go-autostart. Every other platform reports ErrUnsupported.
package autolaunch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned where launch at login cannot be managed.
var ErrUnsupported = errors.New("launch at login is not supported here")

// registrar is the platform mechanism that starts a program at login.
type registrar interface {
	enable(ctx context.Context) error
	disable(ctx context.Context) error
	enabled(ctx context.Context) (bool, error)
}

// Launcher manages the login registration of one application.
type Launcher struct {
	log      *slog.Logger
	reg      registrar
	name     string
	execPath string
	args     []string
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithExecutable sets the command started at login. Defaults to the running binary.
func WithExecutable(path string, args ...string) Option {
	return func(l *Launcher) {
		l.execPath = path
		l.args = args
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(l *Launcher) { l.log = log }
}

// New returns a Launcher for the application called name.
func New(name string, opts ...Option) (*Launcher, error) {
	if !validName(name) {
		return nil, fmt.Errorf("invalid application name %q", name)
	}
	l := &Launcher{name: name, log: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	if l.execPath == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("get executable: %w", err)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		l.execPath = exe
	}
	l.reg = newRegistrar(l)
	return l, nil
}

// Enable starts the application at login.
func (l *Launcher) Enable(ctx context.Context) error {
	if err := l.reg.enable(ctx); err != nil {
		return fmt.Errorf("enable launch at login: %w", err)
	}
	l.log.Info("[LAUNCH] Enabled launch at login", "app", l.name)
	return nil
}

// Disable stops the application from starting at login. Disabling an
// application that is not registered succeeds.
func (l *Launcher) Disable(ctx context.Context) error {
	if err := l.reg.disable(ctx); err != nil {
		return fmt.Errorf("disable launch at login: %w", err)
	}
	l.log.Info("[LAUNCH] Disabled launch at login", "app", l.name)
	return nil
}

// IsEnabled reports whether the application starts at login.
func (l *Launcher) IsEnabled(ctx context.Context) (bool, error) {
	ok, err := l.reg.enabled(ctx)
	if err != nil {
		return false, fmt.Errorf("check launch at login: %w", err)
	}
	return ok, nil
}

// Supported reports whether this platform can manage launch at login.
func Supported() bool {
	return supported
}

// slug returns the file name stem for an application name.
func slug(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

func validName(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') && r != ' ' && r != '.' &&
			r != '-' && r != '_' {
			return false
		}
	}
	return true
}
