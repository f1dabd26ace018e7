package main

import (
	"sync"

	"github.com/energye/systray"
)

// MenuItem is an interface for tray menu items that can be implemented by both
// real systray menu items and mock menu items for testing.
type MenuItem interface {
	Check()
	Uncheck()
	Checked() bool
	SetTitle(string)
	Click(func())
}

// RealMenuItem wraps a real systray.MenuItem to implement our MenuItem interface.
type RealMenuItem struct {
	*systray.MenuItem
}

var _ MenuItem = (*RealMenuItem)(nil)

// Click sets the click handler.
func (r *RealMenuItem) Click(handler func()) {
	r.MenuItem.Click(handler)
}

// MockMenuItem implements MenuItem for testing without calling systray functions.
type MockMenuItem struct {
	clickHandler func()
	title        string
	tooltip      string
	checked      bool
	mu           sync.Mutex
}

var _ MenuItem = (*MockMenuItem)(nil)

// Check marks the item as checked.
func (m *MockMenuItem) Check() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checked = true
}

// Uncheck marks the item as unchecked.
func (m *MockMenuItem) Uncheck() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checked = false
}

// Checked reports the check state.
func (m *MockMenuItem) Checked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checked
}

// SetTitle sets the title.
func (m *MockMenuItem) SetTitle(title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.title = title
}

// Click sets the click handler.
func (m *MockMenuItem) Click(handler func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clickHandler = handler
}

// click simulates the user selecting the item.
func (m *MockMenuItem) click() {
	m.mu.Lock()
	h := m.clickHandler
	m.mu.Unlock()
	if h != nil {
		h()
	}
}
