// Package x11tray makes sure a StatusNotifierItem tray host is reachable on
// Unix desktops, starting the snixembed bridge for legacy X11 trays if needed.
package x11tray

import (
	"fmt"
	"slices"
	"strings"
)

const (
	statusNotifierWatcher = "org.kde.StatusNotifierWatcher"
	statusNotifierItem    = "org.kde.StatusNotifierItem"
)

// hasWatcher reports whether a StatusNotifierWatcher owns a name on the bus.
func hasWatcher(names []string) bool {
	return slices.Contains(names, statusNotifierWatcher)
}

// itemService returns the StatusNotifierItem bus name registered by pid, or "".
func itemService(names []string, pid int) string {
	prefix := fmt.Sprintf("%s-%d-", statusNotifierItem, pid)
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			return name
		}
	}
	return ""
}
