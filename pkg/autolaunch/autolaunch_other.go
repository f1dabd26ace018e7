//go:build !darwin && !linux && !freebsd && !openbsd && !netbsd && !dragonfly && !(windows && cgo)

package autolaunch

import "context"

const supported = false

type unsupported struct{}

func newRegistrar(*Launcher) registrar { return unsupported{} }

func (unsupported) enable(context.Context) error { return ErrUnsupported }

func (unsupported) disable(context.Context) error { return ErrUnsupported }

func (unsupported) enabled(context.Context) (bool, error) { return false, ErrUnsupported }
