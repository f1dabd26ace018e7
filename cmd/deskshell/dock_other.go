//go:build !darwin

package main

import "github.com/codeGROOVE-dev/deskshell/pkg/menuaction"

// newDock returns nil: only macOS has a dock icon to manage.
func newDock() menuaction.Dock {
	return nil
}
