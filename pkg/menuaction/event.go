package menuaction

import "context"

// Event is passed to a Handler when a menu item is selected.
// Item and Window may be nil.
type Event struct {
	Item   MenuItem
	Window Window
}

// Handler runs when a menu item is selected.
type Handler func(ctx context.Context, ev Event)

// BoolFunc computes a flag at click time.
type BoolFunc func(ev Event) bool

// StringFunc computes a string at click time.
type StringFunc func(ev Event) string

// ArgsFunc computes message arguments at click time.
type ArgsFunc func(ev Event) []any

// Checked reports the triggering item's check state, false without an item.
func Checked(ev Event) bool {
	if ev.Item == nil {
		return false
	}
	return ev.Item.Checked()
}

// Const returns a BoolFunc that always reports v.
func Const(v bool) BoolFunc {
	return func(Event) bool { return v }
}

// Str returns a StringFunc that always reports s.
func Str(s string) StringFunc {
	return func(Event) string { return s }
}

// Args returns an ArgsFunc that always reports args.
func Args(args ...any) ArgsFunc {
	return func(Event) []any { return args }
}

// Chain runs handlers in order.
func Chain(handlers ...Handler) Handler {
	return func(ctx context.Context, ev Event) {
		for _, h := range handlers {
			if h != nil {
				h(ctx, ev)
			}
		}
	}
}
