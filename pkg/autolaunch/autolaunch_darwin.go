//go:build darwin

package autolaunch

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const supported = true

// loginItem registers through System Events, which needs an app bundle.
type loginItem struct {
	l *Launcher
}

func newRegistrar(l *Launcher) registrar { return loginItem{l: l} }

func (l *Launcher) osascript(ctx context.Context, script string) (string, error) {
	l.log.Debug("[LAUNCH] Executing command", "cmd", "osascript", "script", script)
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("osascript: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

func (li loginItem) enable(ctx context.Context) error {
	l := li.l
	app, err := bundlePath(l.execPath)
	if err != nil {
		return err
	}
	script, err := loginItemAddScript(app)
	if err != nil {
		return err
	}
	_, err = l.osascript(ctx, script)
	return err
}

func (li loginItem) disable(ctx context.Context) error {
	l := li.l
	app, err := bundlePath(l.execPath)
	if err != nil {
		return err
	}
	script, err := loginItemDeleteScript(app)
	if err != nil {
		return err
	}
	out, err := l.osascript(ctx, script)
	if err != nil && !strings.Contains(out, "Can't get login item") {
		return err
	}
	return nil
}

func (li loginItem) enabled(ctx context.Context) (bool, error) {
	l := li.l
	app, err := bundlePath(l.execPath)
	if err != nil {
		return false, err
	}
	script, err := loginItemQueryScript(app)
	if err != nil {
		return false, err
	}
	out, err := l.osascript(ctx, script)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}
