//go:build darwin

package main

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Foundation

#include <dispatch/dispatch.h>

extern void deskshellRunQueued(void *);

static void dispatchQueued(void) {
	dispatch_async_f(dispatch_get_main_queue(), NULL, deskshellRunQueued);
}
*/
import "C"

import "sync"

var (
	mainQueueMu sync.Mutex
	mainQueue   []func()
)

// runOnMainThread schedules fn on the Cocoa main thread. NSStatusItem and
// NSMenu must only be touched there.
func runOnMainThread(fn func()) {
	mainQueueMu.Lock()
	mainQueue = append(mainQueue, fn)
	mainQueueMu.Unlock()
	C.dispatchQueued()
}

// nextQueued pops the oldest scheduled function.
func nextQueued() func() {
	mainQueueMu.Lock()
	defer mainQueueMu.Unlock()
	if len(mainQueue) == 0 {
		return nil
	}
	fn := mainQueue[0]
	mainQueue = mainQueue[1:]
	return fn
}
