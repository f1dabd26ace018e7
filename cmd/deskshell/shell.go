package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/codeGROOVE-dev/deskshell/pkg/ratelimit"
	"github.com/codeGROOVE-dev/deskshell/pkg/safebrowse"
	"github.com/skratchdot/open-golang/open"
)

// shell opens validated URLs in the browser and local paths with their default application.
type shell struct {
	opener *safebrowse.Opener
	log    *slog.Logger
	start  func(path string) error
}

func newShell(logger *slog.Logger) *shell {
	return &shell{
		log: logger,
		opener: safebrowse.New(
			safebrowse.WithAllowedHosts(allowedHosts...),
			safebrowse.WithLimiter(ratelimit.New(maxBrowserOpensMinute, maxBrowserOpensDay)),
		),
		start: open.Start,
	}
}

func (s *shell) OpenExternal(ctx context.Context, rawURL string) error {
	if err := s.opener.Open(ctx, rawURL); err != nil {
		return fmt.Errorf("open %s: %w", rawURL, err)
	}
	s.log.Info("[SHELL] Opened URL", "url", rawURL)
	return nil
}

// CanOpen reports why OpenExternal would refuse rawURL.
func (s *shell) CanOpen(rawURL string) error {
	return s.opener.Check(rawURL)
}

// OpenPath opens an existing absolute path.
func (s *shell) OpenPath(_ context.Context, path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("path does not exist: %s", path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := s.start(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	s.log.Info("[SHELL] Opened path", "path", path)
	return nil
}
