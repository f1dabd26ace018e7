// Package analytics sends anonymous usage events to a collection endpoint.
//
// Events are queued by Track and delivered by Run, so menu handlers never wait
// on the network. A client without an endpoint drops everything.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/deskshell/pkg/dedup"
	"github.com/codeGROOVE-dev/retry"
	"github.com/google/uuid"
)

const (
	defaultQueueSize   = 64
	defaultAttempts    = 3
	defaultDedupWindow = 2 * time.Second
	maxTrackedKeys     = 500
	requestTimeout     = 10 * time.Second
)

// Event is the JSON body posted for each tracked event.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Props     map[string]string `json:"props,omitempty"`
	ClientID  string            `json:"client_id"`
	Name      string            `json:"event"`
	Version   string            `json:"version"`
	OS        string            `json:"os"`
}

// Config configures a Client.
type Config struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	// Endpoint receives POSTed events. Empty disables the client.
	Endpoint string
	ClientID string
	Version  string
	// RetryDelay is the base backoff between delivery attempts.
	RetryDelay time.Duration
	// DedupWindow drops identical events tracked within this interval.
	DedupWindow time.Duration
	QueueSize   int
	Attempts    uint
}

// Client queues and delivers events.
type Client struct {
	http     *http.Client
	log      *slog.Logger
	seen     *dedup.Filter
	queue    chan Event
	now      func() time.Time
	endpoint string
	clientID string
	version  string
	delay    time.Duration
	attempts uint
}

// NewClientID returns a fresh anonymous client identifier.
func NewClientID() string {
	return uuid.NewString()
}

// New returns a Client. Call Run to start delivery.
func New(cfg Config) *Client {
	c := &Client{
		http:     cfg.HTTPClient,
		log:      cfg.Logger,
		endpoint: cfg.Endpoint,
		clientID: cfg.ClientID,
		version:  cfg.Version,
		delay:    cfg.RetryDelay,
		attempts: cfg.Attempts,
		now:      time.Now,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: requestTimeout}
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.clientID == "" {
		c.clientID = NewClientID()
	}
	if c.delay <= 0 {
		c.delay = time.Second
	}
	if c.attempts == 0 {
		c.attempts = defaultAttempts
	}
	window := cfg.DedupWindow
	if window <= 0 {
		window = defaultDedupWindow
	}
	c.seen = dedup.New(window, maxTrackedKeys)
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	c.queue = make(chan Event, size)
	return c
}

// Enabled reports whether events are delivered anywhere.
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

// Track queues an event. It never blocks: duplicates, events on a disabled
// client, and events arriving while the queue is full are dropped.
func (c *Client) Track(_ context.Context, name string, props map[string]string) {
	if !c.Enabled() || name == "" {
		return
	}
	now := c.now()
	if !c.seen.Accept(dedupKey(name, props), now) {
		c.log.Debug("[ANALYTICS] Dropping duplicate event", "event", name)
		return
	}
	ev := Event{
		Timestamp: now.UTC(),
		Props:     maps.Clone(props),
		ClientID:  c.clientID,
		Name:      name,
		Version:   c.version,
		OS:        runtime.GOOS,
	}
	select {
	case c.queue <- ev:
	default:
		c.log.Warn("[ANALYTICS] Queue full, dropping event", "event", name)
	}
}

// Run delivers queued events until ctx is cancelled.
func (c *Client) Run(ctx context.Context) {
	if !c.Enabled() {
		c.log.Debug("[ANALYTICS] No endpoint configured, analytics disabled")
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.queue:
			if err := c.deliver(ctx, ev); err != nil {
				c.log.Warn("[ANALYTICS] Failed to deliver event", "event", ev.Name, "error", err)
			}
		}
	}
}

func (c *Client) deliver(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return retry.Do(func() error {
		return c.post(ctx, body)
	},
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxDelay(4*c.delay),
		retry.MaxJitter(c.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug("[ANALYTICS] Retrying event delivery", "attempt", n+1, "event", ev.Name, "error", err)
		}),
		retry.Context(ctx),
	)
}

func (c *Client) post(ctx context.Context, body []byte) error {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()               //nolint:errcheck // best effort
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("collector returned %s", resp.Status)
	default:
		return retry.Unrecoverable(errors.New("collector rejected event: " + resp.Status))
	}
}

func dedupKey(name string, props map[string]string) string {
	var b strings.Builder
	b.WriteString(name)
	for _, k := range slices.Sorted(maps.Keys(props)) {
		b.WriteByte('\x00')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(props[k])
	}
	return b.String()
}
