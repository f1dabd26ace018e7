//go:build !darwin

package main

// runOnMainThread runs fn directly; the tray libraries on these platforms
// manage their own threads.
func runOnMainThread(fn func()) {
	fn()
}
