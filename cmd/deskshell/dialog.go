package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codeGROOVE-dev/deskshell/pkg/menuaction"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var errNoWindow = errors.New("main window is not ready")

// messageDialog shows a native dialog and returns the label of the chosen button.
type messageDialog func(ctx context.Context, opts wailsRuntime.MessageDialogOptions) (string, error)

// dialogs shows native message boxes over the main window.
type dialogs struct {
	wailsCtx func() context.Context
	show     messageDialog
}

func newDialogs(wailsCtx func() context.Context) *dialogs {
	return &dialogs{wailsCtx: wailsCtx, show: wailsRuntime.MessageDialog}
}

// ShowMessageBox returns the index of the picked button, or -1 if it cannot tell.
func (d *dialogs) ShowMessageBox(_ context.Context, box menuaction.MessageBox) (int, error) {
	ctx := d.wailsCtx()
	if ctx == nil {
		return -1, errNoWindow
	}

	opts := wailsRuntime.MessageDialogOptions{
		Type:    wailsRuntime.InfoDialog,
		Title:   box.Title,
		Message: box.Message,
		Buttons: box.Buttons,
	}
	if box.Detail != "" {
		opts.Message = box.Message + "\n\n" + box.Detail
	}
	if len(box.Buttons) > 1 {
		opts.Type = wailsRuntime.QuestionDialog
		opts.DefaultButton = box.Buttons[len(box.Buttons)-1]
		opts.CancelButton = box.Buttons[0]
	}

	label, err := d.show(ctx, opts)
	if err != nil {
		return -1, fmt.Errorf("show %q dialog: %w", box.Title, err)
	}
	return buttonIndex(box.Buttons, label), nil
}

// Prompt shows a message with buttons, for the update manager.
func (d *dialogs) Prompt(ctx context.Context, title, message string, buttons ...string) (int, error) {
	return d.ShowMessageBox(ctx, menuaction.MessageBox{Title: title, Message: message, Buttons: buttons})
}

// buttonIndex maps the returned label onto buttons. Some platforms ignore
// custom labels and answer with their stock Yes/No/OK/Cancel instead.
func buttonIndex(buttons []string, label string) int {
	for i, b := range buttons {
		if b == label {
			return i
		}
	}
	if len(buttons) == 0 {
		return -1
	}
	switch strings.ToLower(label) {
	case "yes", "ok":
		return len(buttons) - 1
	case "no", "cancel":
		return 0
	}
	return -1
}
