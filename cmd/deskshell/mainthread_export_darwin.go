//go:build darwin

package main

import "C"

import "unsafe"

//export deskshellRunQueued
func deskshellRunQueued(_ unsafe.Pointer) {
	if fn := nextQueued(); fn != nil {
		fn()
	}
}
