package menuaction

import (
	"context"
	"reflect"
	"slices"
	"testing"
	"time"
)

func TestWindowHandlersWithoutWindow(t *testing.T) {
	a := New(Deps{Windows: &mockRegistry{}})
	ctx := context.Background()

	handlers := map[string]Handler{
		"Reload":           a.Reload(),
		"ResetWindowSize":  a.ResetWindowSize(1024, 768),
		"Show":             a.Show(),
		"ToggleFullScreen": a.ToggleFullScreen(),
		"ToggleDevTools":   a.ToggleDevTools(),
		"SetAlwaysOnTop":   a.SetAlwaysOnTop(Const(true)),
		"SendMessage":      a.SendMessage("navigate", Args("home")),
		"SendToWebview":    a.SendToWebview("reload", nil),
	}

	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			// Must not panic.
			h(ctx, Event{Item: &mockItem{label: name}})
		})
	}
}

func TestWindowHandlersCallWindow(t *testing.T) {
	a := New(Deps{})
	ctx := context.Background()

	tests := []struct {
		name    string
		handler Handler
		want    []string
	}{
		{name: "reload", handler: a.Reload(), want: []string{"Reload"}},
		{name: "reset size", handler: a.ResetWindowSize(800, 600), want: []string{"SetSize", "Center"}},
		{name: "show", handler: a.Show(), want: []string{"Show"}},
		{name: "devtools", handler: a.ToggleDevTools(), want: []string{"ToggleDevTools"}},
		{name: "always on top", handler: a.SetAlwaysOnTop(Checked), want: []string{"SetAlwaysOnTop"}},
		{name: "send", handler: a.SendMessage("x", nil), want: []string{"Send"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			win := &mockWindow{}
			tt.handler(ctx, Event{Window: win, Item: &mockItem{checked: true}})
			if !reflect.DeepEqual(win.calls, tt.want) {
				t.Errorf("calls = %v, want %v", win.calls, tt.want)
			}
		})
	}
}

func TestResetWindowSize(t *testing.T) {
	win := &mockWindow{}
	New(Deps{}).ResetWindowSize(1280, 720)(context.Background(), Event{Window: win})
	if win.width != 1280 || win.height != 720 {
		t.Errorf("size = %dx%d, want 1280x720", win.width, win.height)
	}
}

func TestShowFallsBackToMainWindow(t *testing.T) {
	main := &mockWindow{}
	a := New(Deps{Windows: &mockRegistry{main: main}})

	a.Show()(context.Background(), Event{})

	if !reflect.DeepEqual(main.calls, []string{"Show"}) {
		t.Errorf("main window calls = %v, want [Show]", main.calls)
	}

	// An explicit window wins over the main window.
	other := &mockWindow{}
	a.Show()(context.Background(), Event{Window: other})
	if len(main.calls) != 1 {
		t.Errorf("main window called again: %v", main.calls)
	}
	if len(other.calls) != 1 {
		t.Errorf("event window calls = %v, want [Show]", other.calls)
	}
}

func TestToggleFullScreen(t *testing.T) {
	h := New(Deps{}).ToggleFullScreen()
	win := &mockWindow{}

	for i, want := range []bool{true, false, true} {
		before := win.fullScreen
		h(context.Background(), Event{Window: win})
		if win.fullScreen != want || win.fullScreen == before {
			t.Fatalf("toggle %d: fullScreen = %v, want %v", i, win.fullScreen, want)
		}
	}

	sets := 0
	for _, c := range win.calls {
		if c == "SetFullScreen" {
			sets++
		}
	}
	if sets != 3 {
		t.Errorf("SetFullScreen called %d times, want 3", sets)
	}
}

func TestSendMessage(t *testing.T) {
	win := &mockWindow{}
	a := New(Deps{})
	payload := func(ev Event) []any { return []any{ev.Item.Label(), 42} }

	a.SendMessage("open-settings", payload)(context.Background(), Event{Window: win, Item: &mockItem{label: "Settings"}})

	want := [][]any{{"open-settings", "Settings", 42}}
	if !reflect.DeepEqual(win.sent, want) {
		t.Errorf("sent = %v, want %v", win.sent, want)
	}
}

func TestSendToWebview(t *testing.T) {
	win := &mockWindow{}
	a := New(Deps{})

	a.SendToWebview("zoom", Args(1.5))(context.Background(), Event{Window: win})
	a.SendToWebview("reload", nil)(context.Background(), Event{Window: win})

	want := [][]any{
		{ForwardChannel, "zoom", 1.5},
		{ForwardChannel, "reload"},
	}
	if !reflect.DeepEqual(win.sent, want) {
		t.Errorf("sent = %v, want %v", win.sent, want)
	}
}

func TestShowInTray(t *testing.T) {
	tests := []struct {
		name        string
		flag        bool
		wantCreate  int
		wantDestroy int
	}{
		{name: "show", flag: true, wantCreate: 1},
		{name: "hide", flag: false, wantDestroy: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tray := &mockToggle{}
			New(Deps{Tray: tray}).ShowInTray(Checked)(context.Background(), Event{Item: &mockItem{checked: tt.flag}})
			if tray.shown != tt.wantCreate || tray.hidden != tt.wantDestroy {
				t.Errorf("create=%d destroy=%d, want create=%d destroy=%d",
					tray.shown, tray.hidden, tt.wantCreate, tt.wantDestroy)
			}
		})
	}
}

func TestShowInDock(t *testing.T) {
	dock := &mockToggle{}
	a := New(Deps{Dock: dock})

	a.ShowInDock(Const(false))(context.Background(), Event{})
	if dock.hidden != 1 || dock.shown != 0 {
		t.Errorf("after hide: shown=%d hidden=%d, want 0/1", dock.shown, dock.hidden)
	}

	a.ShowInDock(Const(true))(context.Background(), Event{})
	if dock.shown != 1 || dock.hidden != 1 {
		t.Errorf("after show: shown=%d hidden=%d, want 1/1", dock.shown, dock.hidden)
	}

	// No dock on this platform.
	New(Deps{}).ShowInDock(Const(true))(context.Background(), Event{})
}

func TestShowBadge(t *testing.T) {
	badge := &mockBadge{}
	h := New(Deps{Badge: badge}).ShowBadge(Checked)

	h(context.Background(), Event{Item: &mockItem{checked: true}})
	h(context.Background(), Event{Item: &mockItem{checked: false}})

	if !reflect.DeepEqual(badge.values, []bool{true, false}) {
		t.Errorf("badge values = %v", badge.values)
	}
}

func TestUpdateHandlers(t *testing.T) {
	updates := &mockUpdates{}
	a := New(Deps{Updates: updates})
	ctx := context.Background()

	a.CheckForUpdates()(ctx, Event{})
	a.InstallUpdate()(ctx, Event{})
	a.SetAutoUpdate(Checked)(ctx, Event{Item: &mockItem{checked: true}})

	if updates.checks != 1 || !updates.interactive {
		t.Errorf("checks=%d interactive=%v, want 1/true", updates.checks, updates.interactive)
	}
	if updates.installs != 1 {
		t.Errorf("installs = %d, want 1", updates.installs)
	}
	if !reflect.DeepEqual(updates.autoCheck, []bool{true}) {
		t.Errorf("autoCheck = %v, want [true]", updates.autoCheck)
	}
}

func TestLaunchOnStartup(t *testing.T) {
	for _, tc := range []struct {
		name   string
		enable bool
		err    error
	}{
		{name: "enable", enable: true},
		{name: "disable", enable: false},
		{name: "failure is swallowed", enable: true, err: errMock},
	} {
		t.Run(tc.name, func(t *testing.T) {
			launcher := &mockLauncher{calls: make(chan launchCall, 1), err: tc.err}
			ctx, cancel := context.WithCancel(context.Background())

			New(Deps{Launcher: launcher}).LaunchOnStartup(Const(tc.enable))(ctx, Event{})
			cancel()

			select {
			case call := <-launcher.calls:
				if call.enable != tc.enable {
					t.Errorf("enable = %v, want %v", call.enable, tc.enable)
				}
				if call.ctxErr != nil {
					t.Errorf("launcher saw cancelled context: %v", call.ctxErr)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("launcher was never called")
			}
		})
	}
}

func TestOpenRaffleDialog(t *testing.T) {
	const raffleURL = "https://example.com/raffle"

	tests := []struct {
		name     string
		response int
		err      error
		wantURLs int
	}{
		{name: "enter", response: 1, wantURLs: 1},
		{name: "close", response: 0},
		{name: "dismissed", response: -1},
		{name: "unknown button", response: 2},
		{name: "dialog error", response: 1, err: errMock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shell := &mockShell{}
			dialogs := &mockDialogs{response: tt.response, err: tt.err}
			a := New(Deps{
				Shell:   shell,
				Dialogs: dialogs,
				Raffle:  Raffle{URL: raffleURL, Code: func() string { return "ABC123" }},
			})

			a.OpenRaffleDialog()(context.Background(), Event{})

			if len(dialogs.boxes) != 1 {
				t.Fatalf("dialog shown %d times, want 1", len(dialogs.boxes))
			}
			if len(dialogs.boxes[0].Buttons) != 2 {
				t.Errorf("buttons = %v, want two", dialogs.boxes[0].Buttons)
			}
			if got := dialogs.boxes[0].Message; got != "Your raffle code is ABC123" {
				t.Errorf("message = %q", got)
			}
			if len(shell.urls) != tt.wantURLs {
				t.Fatalf("opened %v, want %d opens", shell.urls, tt.wantURLs)
			}
			if tt.wantURLs == 1 && shell.urls[0] != raffleURL {
				t.Errorf("opened %q, want %q", shell.urls[0], raffleURL)
			}
		})
	}
}

func TestRestartInDebugMode(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "plain",
			args: []string{"--start-hidden"},
			want: []string{"--start-hidden", FlagDebug, FlagNoConsoleLogs},
		},
		{
			name: "already debug",
			args: []string{FlagDebug},
			want: []string{FlagDebug, FlagNoConsoleLogs},
		},
		{
			name: "no args",
			want: []string{FlagDebug, FlagNoConsoleLogs},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &mockProcess{args: tt.args}
			original := slices.Clone(tt.args)

			New(Deps{Process: proc}).RestartInDebugMode()(context.Background(), Event{})

			if len(proc.relaunched) != 1 {
				t.Fatalf("relaunched %d times, want 1", len(proc.relaunched))
			}
			if !reflect.DeepEqual(proc.relaunched[0], tt.want) {
				t.Errorf("args = %v, want %v", proc.relaunched[0], tt.want)
			}
			if !reflect.DeepEqual(proc.order, []string{"relaunch", "exit"}) {
				t.Errorf("order = %v, want relaunch then exit", proc.order)
			}
			if !slices.Equal(proc.args, original) {
				t.Errorf("process args mutated: %v", proc.args)
			}
		})
	}
}

func TestRestartInDebugModeRelaunchFailure(t *testing.T) {
	proc := &mockProcess{relaunchErr: errMock}
	New(Deps{Process: proc}).RestartInDebugMode()(context.Background(), Event{})
	if len(proc.exits) != 0 {
		t.Errorf("exited %v after failed relaunch", proc.exits)
	}
}

func TestOpenURLAndPath(t *testing.T) {
	shell := &mockShell{err: errMock}
	a := New(Deps{Shell: shell})
	ctx := context.Background()

	a.OpenURL("https://example.com/help")(ctx, Event{})
	a.OpenURL("")(ctx, Event{})
	a.OpenPath(Str("/tmp/logs"))(ctx, Event{})
	a.OpenPath(Str(""))(ctx, Event{})

	if !reflect.DeepEqual(shell.urls, []string{"https://example.com/help"}) {
		t.Errorf("urls = %v", shell.urls)
	}
	if !reflect.DeepEqual(shell.paths, []string{"/tmp/logs"}) {
		t.Errorf("paths = %v", shell.paths)
	}
}

func TestSetPreference(t *testing.T) {
	prefs := &mockPrefs{}
	a := New(Deps{Prefs: prefs})

	a.SetPreference("show_badge", Checked)(context.Background(), Event{Item: &mockItem{checked: true}})
	if !prefs.values["show_badge"] {
		t.Errorf("show_badge = false, want true")
	}

	prefs.err = errMock
	a.SetPreference("show_badge", Const(false))(context.Background(), Event{})
	if !prefs.values["show_badge"] {
		t.Errorf("failed write changed value")
	}
}

func TestTrackAndChain(t *testing.T) {
	tracker := &mockTracker{}
	win := &mockWindow{}
	a := New(Deps{Tracker: tracker})

	h := a.Track("reload_clicked", Chain(a.Reload(), nil, a.ToggleDevTools()))
	h(context.Background(), Event{Window: win, Item: &mockItem{label: "Reload"}})

	if len(tracker.events) != 1 || tracker.events[0].name != "reload_clicked" {
		t.Fatalf("events = %v", tracker.events)
	}
	if tracker.events[0].props["label"] != "Reload" {
		t.Errorf("label prop = %q", tracker.events[0].props["label"])
	}
	if !reflect.DeepEqual(win.calls, []string{"Reload", "ToggleDevTools"}) {
		t.Errorf("calls = %v", win.calls)
	}
}

func TestQuit(t *testing.T) {
	proc := &mockProcess{}
	New(Deps{Process: proc}).Quit()(context.Background(), Event{})
	if proc.quits != 1 {
		t.Errorf("quits = %d, want 1", proc.quits)
	}
}

func TestNilManagersAreNoOps(t *testing.T) {
	a := New(Deps{})
	ctx := context.Background()
	for _, h := range []Handler{
		a.CheckForUpdates(),
		a.InstallUpdate(),
		a.SetAutoUpdate(Const(true)),
		a.ShowInTray(Const(true)),
		a.ShowBadge(Const(true)),
		a.LaunchOnStartup(Const(true)),
		a.OpenRaffleDialog(),
		a.RestartInDebugMode(),
		a.OpenURL("https://example.com"),
		a.OpenPath(Str("/tmp")),
		a.SetPreference("k", Const(true)),
		a.Track("e", nil),
		a.Quit(),
	} {
		h(ctx, Event{})
	}
}
