//go:build !linux && !freebsd && !openbsd && !netbsd && !dragonfly && !solaris && !illumos && !aix

package x11tray

import "context"

// HealthCheck always succeeds; macOS and Windows always have a tray.
func HealthCheck() error {
	return nil
}

// ProxyProcess is never started on this platform.
type ProxyProcess struct{}

// Stop does nothing.
func (*ProxyProcess) Stop() error {
	return nil
}

// TryProxy returns an idle proxy.
func TryProxy(context.Context) (*ProxyProcess, error) {
	return &ProxyProcess{}, nil
}

// EnsureTray always succeeds without a proxy.
func EnsureTray(context.Context) (*ProxyProcess, error) {
	return nil, nil //nolint:nilnil // no proxy is needed here
}

// ShowContextMenu does nothing; the systray library shows menus itself here.
func ShowContextMenu() {}
