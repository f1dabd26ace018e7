//go:build linux || freebsd || openbsd || netbsd || dragonfly || (windows && cgo)

package autolaunch

import (
	"context"

	"github.com/emersion/go-autostart"
)

const supported = true

// autostartApp is the part of autostart.App used here.
type autostartApp interface {
	IsEnabled() bool
	Enable() error
	Disable() error
}

// startupEntry registers through an XDG autostart entry or a Windows
// Startup folder shortcut.
type startupEntry struct {
	app autostartApp
}

func newRegistrar(l *Launcher) registrar {
	return startupEntry{app: &autostart.App{
		Name:        slug(l.name),
		DisplayName: l.name,
		Exec:        append([]string{l.execPath}, l.args...),
	}}
}

func (e startupEntry) enable(context.Context) error {
	return e.app.Enable()
}

// disable succeeds when no entry exists; go-autostart reports a missing file as an error.
func (e startupEntry) disable(context.Context) error {
	if !e.app.IsEnabled() {
		return nil
	}
	return e.app.Disable()
}

func (e startupEntry) enabled(context.Context) (bool, error) {
	return e.app.IsEnabled(), nil
}
