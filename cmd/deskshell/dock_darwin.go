//go:build darwin

package main

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa

#import <Cocoa/Cocoa.h>

static void setDockVisible(int visible) {
	dispatch_async(dispatch_get_main_queue(), ^{
		if (visible) {
			[NSApp setActivationPolicy:NSApplicationActivationPolicyRegular];
			[NSApp activateIgnoringOtherApps:YES];
		} else {
			[NSApp setActivationPolicy:NSApplicationActivationPolicyAccessory];
		}
	});
}
*/
import "C"

import (
	"log/slog"

	"github.com/codeGROOVE-dev/deskshell/pkg/menuaction"
)

// dock switches the activation policy, which shows or hides the Dock icon.
type dock struct{}

func newDock() menuaction.Dock {
	return dock{}
}

func (dock) Show() {
	slog.Info("[DOCK] Showing dock icon")
	C.setDockVisible(1)
}

func (dock) Hide() {
	slog.Info("[DOCK] Hiding dock icon")
	C.setDockVisible(0)
}
