package main

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// notifier shows desktop notifications.
type notifier struct {
	log *slog.Logger
}

func (n notifier) Notify(title, message string) error {
	n.log.Info("[NOTIFY] Showing notification", "title", title)
	return beeep.Notify(title, message, "")
}
