package main

import (
	"log/slog"
	"sync"

	"github.com/energye/systray"
)

// SystrayInterface abstracts systray operations for testing.
type SystrayInterface interface {
	RunWithExternalLoop(onReady, onExit func()) (start, end func())
	ResetMenu()
	AddMenuItem(title, tooltip string) MenuItem
	AddSeparator()
	SetTitle(title string)
	SetTooltip(tooltip string)
	SetIcon(iconBytes []byte)
	SetOnClick(fn func(menu systray.IMenu))
	SetOnRClick(fn func(menu systray.IMenu))
}

// RealSystray implements SystrayInterface using the actual systray library.
type RealSystray struct{}

func (*RealSystray) RunWithExternalLoop(onReady, onExit func()) (start, end func()) {
	return systray.RunWithExternalLoop(onReady, onExit)
}

func (*RealSystray) ResetMenu() {
	slog.Debug("[SYSTRAY] ResetMenu called")
	systray.ResetMenu()
}

func (*RealSystray) AddMenuItem(title, tooltip string) MenuItem {
	slog.Debug("[SYSTRAY] AddMenuItem called", "title", title)
	return &RealMenuItem{MenuItem: systray.AddMenuItem(title, tooltip)}
}

func (*RealSystray) AddSeparator() {
	systray.AddSeparator()
}

func (*RealSystray) SetTitle(title string) {
	slog.Debug("[SYSTRAY] SetTitle called", "title", title)
	systray.SetTitle(title)
}

func (*RealSystray) SetTooltip(tooltip string) {
	systray.SetTooltip(tooltip)
}

func (*RealSystray) SetIcon(iconBytes []byte) {
	systray.SetIcon(iconBytes)
}

func (*RealSystray) SetOnClick(fn func(menu systray.IMenu)) {
	systray.SetOnClick(fn)
}

func (*RealSystray) SetOnRClick(fn func(menu systray.IMenu)) {
	systray.SetOnRClick(fn)
}

// MockSystray implements SystrayInterface for testing. Like the real tray it
// keeps its menu until ResetMenu, and ending the loop only takes effect once.
type MockSystray struct {
	title     string
	tooltip   string
	icon      []byte
	items     []*MockMenuItem
	menuItems []string
	starts    int
	ends      int
	resets    int
	quit      bool
	mu        sync.Mutex
}

func (m *MockSystray) RunWithExternalLoop(onReady, onExit func()) (start, end func()) {
	start = func() {
		m.mu.Lock()
		m.starts++
		m.mu.Unlock()
		onReady()
	}
	end = func() {
		m.mu.Lock()
		if m.quit {
			m.mu.Unlock()
			return
		}
		m.quit = true
		m.ends++
		m.mu.Unlock()
		onExit()
	}
	return start, end
}

func (m *MockSystray) ResetMenu() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	m.items = nil
	m.menuItems = nil
}

func (m *MockSystray) AddMenuItem(title, tooltip string) MenuItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := &MockMenuItem{title: title, tooltip: tooltip}
	m.items = append(m.items, item)
	m.menuItems = append(m.menuItems, title)
	return item
}

func (m *MockSystray) AddSeparator() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.menuItems = append(m.menuItems, "---")
}

func (m *MockSystray) SetTitle(title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.title = title
}

func (m *MockSystray) SetTooltip(tooltip string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tooltip = tooltip
}

func (m *MockSystray) SetIcon(iconBytes []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.icon = iconBytes
}

func (*MockSystray) SetOnClick(_ func(menu systray.IMenu)) {
	// No-op for testing
}

func (*MockSystray) SetOnRClick(_ func(menu systray.IMenu)) {
	// No-op for testing
}

// labels returns the current menu, with "---" for separators.
func (m *MockSystray) labels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.menuItems...)
}

// item returns the mock menu item titled title, or nil.
func (m *MockSystray) item(title string) *MockMenuItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.title == title {
			return it
		}
	}
	return nil
}
