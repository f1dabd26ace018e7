package autolaunch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const bundleMarker = ".app/Contents/MacOS/"

// bundlePath returns the .app bundle containing execPath.
func bundlePath(execPath string) (string, error) {
	before, _, ok := strings.Cut(execPath, bundleMarker)
	if !ok || before == "" {
		return "", fmt.Errorf("%w: not running from an app bundle", ErrUnsupported)
	}
	return before + ".app", nil
}

// escapeAppleScript validates s for use inside an AppleScript string literal.
func escapeAppleScript(s string) (string, error) {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') && r != ' ' && r != '.' &&
			r != '/' && r != '-' && r != '_' {
			return "", fmt.Errorf("invalid character %q for AppleScript in %s", r, s)
		}
	}
	if s == "" {
		return "", errors.New("empty AppleScript string")
	}
	return s, nil
}

func loginItemQueryScript(appPath string) (string, error) {
	p, err := escapeAppleScript(appPath)
	if err != nil {
		return "", err
	}
	//nolint:gocritic // already validated
	return fmt.Sprintf(`tell application "System Events" to get the name of every login item where path is "%s"`, p), nil
}

func loginItemAddScript(appPath string) (string, error) {
	p, err := escapeAppleScript(appPath)
	if err != nil {
		return "", err
	}
	//nolint:gocritic // already validated
	return fmt.Sprintf(`tell application "System Events" to make login item at end with properties {path:"%s", hidden:false}`, p), nil
}

func loginItemDeleteScript(appPath string) (string, error) {
	name, err := escapeAppleScript(strings.TrimSuffix(filepath.Base(appPath), ".app"))
	if err != nil {
		return "", err
	}
	//nolint:gocritic // already validated
	return fmt.Sprintf(`tell application "System Events" to delete login item "%s"`, name), nil
}
