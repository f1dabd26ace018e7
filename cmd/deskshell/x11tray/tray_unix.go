//go:build linux || freebsd || openbsd || netbsd || dragonfly || solaris || illumos || aix

package x11tray

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	proxyStartupTimeout = 2 * time.Second
	proxyPollInterval   = 100 * time.Millisecond
)

// busNames lists the names currently owned on the session bus.
func busNames() ([]string, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to D-Bus session bus: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Debug("[X11TRAY] Failed to close D-Bus connection", "error", err)
		}
	}()

	var names []string
	if err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return nil, fmt.Errorf("list D-Bus names: %w", err)
	}
	return names, nil
}

// HealthCheck returns nil when a StatusNotifierWatcher is available on the session bus.
func HealthCheck() error {
	names, err := busNames()
	if err != nil {
		return err
	}
	if !hasWatcher(names) {
		return fmt.Errorf("no system tray found: %s service not available", statusNotifierWatcher)
	}
	slog.Debug("[X11TRAY] StatusNotifierWatcher found")
	return nil
}

// ProxyProcess is a running snixembed bridge.
type ProxyProcess struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
}

// Stop terminates the bridge.
func (p *ProxyProcess) Stop() error {
	if p == nil {
		return nil
	}
	if p.cancel != nil {
		p.cancel()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("kill snixembed: %w", err)
		}
	}
	return nil
}

// TryProxy starts snixembed and waits for it to register as the tray watcher.
func TryProxy(ctx context.Context) (*ProxyProcess, error) {
	path, err := exec.LookPath("snixembed")
	if err != nil {
		return nil, errors.New("snixembed not found in PATH: install it with your package manager " +
			"(e.g., 'apt install snixembed' or 'yay -S snixembed')")
	}

	slog.Info("[X11TRAY] Starting snixembed proxy", "path", path)
	proxyCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(proxyCtx, path)
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start snixembed: %w", err)
	}
	proxy := &ProxyProcess{cmd: cmd, cancel: cancel}

	deadline := time.Now().Add(proxyStartupTimeout)
	for {
		err = HealthCheck()
		if err == nil {
			slog.Info("[X11TRAY] snixembed proxy started")
			return proxy, nil
		}
		if time.Now().After(deadline) {
			break
		}
		time.Sleep(proxyPollInterval)
	}

	if stopErr := proxy.Stop(); stopErr != nil {
		slog.Debug("[X11TRAY] Failed to stop proxy after failed health check", "error", stopErr)
	}
	return nil, fmt.Errorf("snixembed started but system tray still unavailable: %w", err)
}

// EnsureTray returns nil, nil when a native tray exists, or a started proxy
// the caller must Stop on exit.
func EnsureTray(ctx context.Context) (*ProxyProcess, error) {
	if err := HealthCheck(); err == nil {
		return nil, nil //nolint:nilnil // no proxy needed when a native tray exists
	}
	slog.Warn("[X11TRAY] No native system tray found, attempting to start proxy")
	proxy, err := TryProxy(ctx)
	if err != nil {
		return nil, fmt.Errorf("system tray unavailable and proxy failed: %w", err)
	}
	return proxy, nil
}

// ShowContextMenu asks the tray host to open this process's tray menu.
// Click handlers receive no menu on StatusNotifierItem hosts, so the menu is
// requested over D-Bus instead.
func ShowContextMenu() {
	names, err := busNames()
	if err != nil {
		slog.Warn("[X11TRAY] Failed to list D-Bus names", "error", err)
		return
	}
	service := itemService(names, os.Getpid())
	if service == "" {
		slog.Warn("[X11TRAY] StatusNotifierItem service not found", "pid", os.Getpid())
		return
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		slog.Warn("[X11TRAY] Failed to connect to session bus", "error", err)
		return
	}
	defer conn.Close() //nolint:errcheck // best effort

	obj := conn.Object(service, "/StatusNotifierItem")
	for _, method := range []string{"ContextMenu", "SecondaryActivate"} {
		call := obj.Call(statusNotifierItem+"."+method, 0, int32(0), int32(0))
		if call.Err == nil {
			slog.Debug("[X11TRAY] Opened tray menu", "method", method)
			return
		}
		slog.Debug("[X11TRAY] Tray menu request failed", "method", method, "error", call.Err)
	}
	slog.Warn("[X11TRAY] Could not open tray menu over D-Bus")
}
