package main

import (
	"context"
	"log/slog"
	"sync"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// eventDevTools asks the web UI to open or close its inspector.
const eventDevTools = "devtools:toggle"

// wailsWindow drives the main window through the Wails runtime.
type wailsWindow struct {
	ctx      context.Context //nolint:containedctx // Wails runtime calls are keyed by this context
	log      *slog.Logger
	devTools bool
	mu       sync.Mutex
}

func newWindow(ctx context.Context, logger *slog.Logger) *wailsWindow {
	return &wailsWindow{ctx: ctx, log: logger}
}

func (w *wailsWindow) Reload() {
	wailsRuntime.WindowReload(w.ctx)
}

func (w *wailsWindow) SetSize(width, height int) {
	wailsRuntime.WindowSetSize(w.ctx, width, height)
}

func (w *wailsWindow) Center() {
	wailsRuntime.WindowCenter(w.ctx)
}

func (w *wailsWindow) Show() {
	wailsRuntime.Show(w.ctx)
	wailsRuntime.WindowShow(w.ctx)
	wailsRuntime.WindowUnminimise(w.ctx)
}

func (w *wailsWindow) IsFullScreen() bool {
	return wailsRuntime.WindowIsFullscreen(w.ctx)
}

func (w *wailsWindow) SetFullScreen(on bool) {
	if on {
		wailsRuntime.WindowFullscreen(w.ctx)
		return
	}
	wailsRuntime.WindowUnfullscreen(w.ctx)
}

// ToggleDevTools flips the inspector state tracked here and tells the web UI.
func (w *wailsWindow) ToggleDevTools() {
	w.mu.Lock()
	w.devTools = !w.devTools
	open := w.devTools
	w.mu.Unlock()
	w.log.Debug("[WINDOW] Toggling developer tools", "open", open)
	wailsRuntime.EventsEmit(w.ctx, eventDevTools, open)
}

func (w *wailsWindow) SetAlwaysOnTop(on bool) {
	wailsRuntime.WindowSetAlwaysOnTop(w.ctx, on)
}

func (w *wailsWindow) Send(channel string, args ...any) {
	wailsRuntime.EventsEmit(w.ctx, channel, args...)
}
