package menuaction

import (
	"context"
	"errors"
	"sync"
)

type mockItem struct {
	label   string
	checked bool
}

func (m *mockItem) Label() string { return m.label }
func (m *mockItem) Checked() bool { return m.checked }

// mockWindow records every call made on it.
type mockWindow struct {
	calls      []string
	sent       [][]any
	width      int
	height     int
	fullScreen bool
	onTop      bool
}

func (m *mockWindow) Reload() { m.calls = append(m.calls, "Reload") }

func (m *mockWindow) SetSize(width, height int) {
	m.calls = append(m.calls, "SetSize")
	m.width, m.height = width, height
}

func (m *mockWindow) Center() { m.calls = append(m.calls, "Center") }
func (m *mockWindow) Show()   { m.calls = append(m.calls, "Show") }

func (m *mockWindow) IsFullScreen() bool {
	m.calls = append(m.calls, "IsFullScreen")
	return m.fullScreen
}

func (m *mockWindow) SetFullScreen(v bool) {
	m.calls = append(m.calls, "SetFullScreen")
	m.fullScreen = v
}

func (m *mockWindow) ToggleDevTools() { m.calls = append(m.calls, "ToggleDevTools") }

func (m *mockWindow) SetAlwaysOnTop(v bool) {
	m.calls = append(m.calls, "SetAlwaysOnTop")
	m.onTop = v
}

func (m *mockWindow) Send(channel string, args ...any) {
	m.calls = append(m.calls, "Send")
	m.sent = append(m.sent, append([]any{channel}, args...))
}

type mockRegistry struct{ main Window }

func (m *mockRegistry) Main() Window { return m.main }

type mockUpdates struct {
	checks      int
	interactive bool
	installs    int
	autoCheck   []bool
}

func (m *mockUpdates) CheckForUpdates(_ context.Context, interactive bool) {
	m.checks++
	m.interactive = interactive
}

func (m *mockUpdates) QuitAndInstall(context.Context) { m.installs++ }
func (m *mockUpdates) SetAutoCheck(v bool)            { m.autoCheck = append(m.autoCheck, v) }

// mockToggle serves as both TrayManager and Dock.
type mockToggle struct {
	shown  int
	hidden int
}

func (m *mockToggle) Create()  { m.shown++ }
func (m *mockToggle) Destroy() { m.hidden++ }
func (m *mockToggle) Show()    { m.shown++ }
func (m *mockToggle) Hide()    { m.hidden++ }

type mockBadge struct{ values []bool }

func (m *mockBadge) SetEnabled(v bool) { m.values = append(m.values, v) }

type launchCall struct {
	enable bool
	ctxErr error
}

type mockLauncher struct {
	calls chan launchCall
	err   error
}

func (m *mockLauncher) Enable(ctx context.Context) error {
	m.calls <- launchCall{enable: true, ctxErr: ctx.Err()}
	return m.err
}

func (m *mockLauncher) Disable(ctx context.Context) error {
	m.calls <- launchCall{enable: false, ctxErr: ctx.Err()}
	return m.err
}

type mockShell struct {
	urls  []string
	paths []string
	err   error
}

func (m *mockShell) OpenExternal(_ context.Context, rawURL string) error {
	m.urls = append(m.urls, rawURL)
	return m.err
}

func (m *mockShell) OpenPath(_ context.Context, path string) error {
	m.paths = append(m.paths, path)
	return m.err
}

type mockDialogs struct {
	boxes    []MessageBox
	response int
	err      error
}

func (m *mockDialogs) ShowMessageBox(_ context.Context, box MessageBox) (int, error) {
	m.boxes = append(m.boxes, box)
	return m.response, m.err
}

type trackedEvent struct {
	name  string
	props map[string]string
}

type mockTracker struct{ events []trackedEvent }

func (m *mockTracker) Track(_ context.Context, event string, props map[string]string) {
	m.events = append(m.events, trackedEvent{name: event, props: props})
}

type mockPrefs struct {
	mu     sync.Mutex
	values map[string]bool
	err    error
}

func (m *mockPrefs) SetBool(key string, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.values == nil {
		m.values = make(map[string]bool)
	}
	m.values[key] = value
	return nil
}

type mockProcess struct {
	relaunchErr error
	args        []string
	relaunched  [][]string
	exits       []int
	order       []string
	quits       int
}

func (m *mockProcess) Args() []string { return m.args }

func (m *mockProcess) Relaunch(args []string) error {
	m.order = append(m.order, "relaunch")
	m.relaunched = append(m.relaunched, args)
	return m.relaunchErr
}

func (m *mockProcess) Exit(code int) {
	m.order = append(m.order, "exit")
	m.exits = append(m.exits, code)
}

func (m *mockProcess) Quit() { m.quits++ }

var errMock = errors.New("mock failure")
