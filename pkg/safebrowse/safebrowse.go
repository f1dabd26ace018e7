// Package safebrowse validates URLs before handing them to the system browser.
// The rules are the same on every platform so a URL accepted on one OS is
// never interpreted as a command on another.
package safebrowse

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/deskshell/pkg/ratelimit"
)

const maxURLLength = 2048

// ErrRateLimited is returned when too many URLs were opened recently.
var ErrRateLimited = errors.New("too many browser opens, try again later")

// Opener validates URLs and launches the system browser.
type Opener struct {
	limiter *ratelimit.Limiter
	hosts   map[string]bool
	launch  func(ctx context.Context, rawURL string) error
}

// Option configures an Opener.
type Option func(*Opener)

// WithAllowedHosts restricts the opener to the given hosts (case-insensitive).
func WithAllowedHosts(hosts ...string) Option {
	return func(o *Opener) {
		o.hosts = make(map[string]bool, len(hosts))
		for _, h := range hosts {
			o.hosts[strings.ToLower(h)] = true
		}
	}
}

// WithLimiter caps how often URLs may be opened.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(o *Opener) { o.limiter = l }
}

// New returns an Opener that launches the platform browser.
func New(opts ...Option) *Opener {
	o := &Opener{launch: launch}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open validates rawURL and opens it in the system browser.
func (o *Opener) Open(ctx context.Context, rawURL string) error {
	if err := o.Check(rawURL); err != nil {
		return err
	}
	if o.limiter != nil && !o.limiter.Allow(time.Now()) {
		return ErrRateLimited
	}
	return o.launch(ctx, rawURL)
}

// Check reports why Open would refuse rawURL, ignoring the rate limit.
func (o *Opener) Check(rawURL string) error {
	u, err := parse(rawURL)
	if err != nil {
		return err
	}
	if len(o.hosts) > 0 && !o.hosts[u.Hostname()] {
		return fmt.Errorf("host not allowed: %s", u.Hostname())
	}
	return nil
}

// parse validates rawURL and returns it with a lower-cased host.
func parse(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, errors.New("URL cannot be empty")
	}
	if len(rawURL) > maxURLLength {
		return nil, fmt.Errorf("URL exceeds maximum length of %d", maxURLLength)
	}

	for i, r := range rawURL {
		if r < 0x20 || r == 0x7F || r > 127 {
			return nil, fmt.Errorf("invalid character at position %d", i)
		}
		if r == '%' {
			return nil, errors.New("percent-encoding not allowed")
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch {
	case u.Scheme != "https":
		return nil, errors.New("must use HTTPS")
	case u.User != nil:
		return nil, errors.New("user info not allowed")
	case u.Fragment != "":
		return nil, errors.New("fragments (#) not allowed")
	case u.Port() != "":
		return nil, errors.New("custom ports not allowed")
	case u.Host == "":
		return nil, errors.New("host required")
	}

	u.Host = strings.ToLower(u.Host)
	if err := checkChars(u.Host, isPathChar); err != nil {
		return nil, fmt.Errorf("invalid host: %w", err)
	}
	if err := checkChars(u.Path, isPathChar); err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if strings.Contains(u.Path, "..") {
		return nil, errors.New("path traversal (..) not allowed")
	}
	if strings.Contains(u.Path, "//") {
		return nil, errors.New("empty path segments (//) not allowed")
	}
	if err := checkQuery(u.RawQuery); err != nil {
		return nil, err
	}
	return u, nil
}

// checkQuery accepts key=value pairs joined by '&' made of word characters.
func checkQuery(raw string) error {
	if raw == "" {
		return nil
	}
	for _, pair := range strings.Split(raw, "&") {
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			return errors.New("empty query parameter name")
		}
		if err := checkChars(key, isParamChar); err != nil {
			return fmt.Errorf("invalid query parameter %q: %w", key, err)
		}
		if err := checkChars(value, isParamChar); err != nil {
			return fmt.Errorf("invalid query value for %q: %w", key, err)
		}
	}
	return nil
}

func checkChars(s string, ok func(rune) bool) error {
	for _, r := range s {
		if !ok(r) {
			return fmt.Errorf("unsafe character %q", r)
		}
	}
	return nil
}

// isParamChar excludes everything a shell or cmd.exe treats specially.
func isParamChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '-' || r == '_'
}

// isPathChar also excludes ':' to avoid port and scheme confusion.
func isPathChar(r rune) bool {
	return isParamChar(r) || r == '.' || r == '/'
}

func launch(ctx context.Context, rawURL string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "/usr/bin/open", "-u", rawURL)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32.exe", "url.dll,FileProtocolHandler", rawURL)
	default:
		xdgOpen, err := findXDGOpen()
		if err != nil {
			return err
		}
		cmd = exec.CommandContext(ctx, xdgOpen, rawURL)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	go cmd.Wait() //nolint:errcheck // reap the child; its exit status is irrelevant
	return nil
}

func findXDGOpen() (string, error) {
	if path, err := exec.LookPath("xdg-open"); err == nil {
		return path, nil
	}
	for _, path := range []string{
		"/usr/local/bin/xdg-open",
		"/usr/bin/xdg-open",
		"/usr/pkg/bin/xdg-open",
		"/opt/local/bin/xdg-open",
	} {
		if _, err := exec.LookPath(path); err == nil {
			return path, nil
		}
	}
	return "", errors.New("xdg-open not found")
}
