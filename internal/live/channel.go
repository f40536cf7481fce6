// Package live keeps the inbox current by following the backend's
// server-sent event stream.
package live

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/welldanyogia/webrana-inbox-viewer/internal/errors"
)

// Event names sent by the backend
const (
	EventConnectionEstablished = "connection-established"
	EventEmailReceived         = "email-received"
)

// DefaultReconnectDelay is the pause between a failure and the next attempt
const DefaultReconnectDelay = 5 * time.Second

var errStreamEnded = errors.New("event stream ended")

// State is the connection state of a Channel
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
	StateError
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateError:
		return "error"
	default:
		return "closed"
	}
}

// Invalidator marks the cached list pages stale
type Invalidator interface {
	InvalidateList()
}

// Options configures a Channel
type Options struct {
	URL            string
	HTTPClient     *http.Client
	Authorization  string
	Invalidator    Invalidator
	ReconnectDelay time.Duration
	Logger         *slog.Logger
	// OnEmailReceived runs after the list has been invalidated
	OnEmailReceived func(id string)
	// Current reports whether the channel is still its owner's handle.
	// A pending reconnect is dropped once it returns false.
	Current func(*Channel) bool
}

// Channel is one logical live-update connection. It reconnects by itself
// after failures until closed.
type Channel struct {
	opts   Options
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	closed bool
	cancel context.CancelFunc
	timer  *time.Timer
	armed  uint64
	lastID string
}

// NewChannel creates a closed channel
func NewChannel(opts Options) *Channel {
	if opts.HTTPClient == nil {
		// streams are long-lived; a client timeout would cut them
		opts.HTTPClient = &http.Client{}
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{opts: opts, logger: logger.With(slog.String("component", "live"))}
}

// State returns the connection state
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Open starts connecting. It is a no-op while connecting, open or after
// Close.
func (c *Channel) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state == StateConnecting || c.state == StateOpen {
		return
	}
	c.stopTimerLocked()
	c.connectLocked()
}

// Close tears the connection down and cancels any pending reconnect.
// A closed channel never reopens.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopTimerLocked()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = StateClosed
	c.logger.Info("live channel closed")
}

// ReconnectPending reports whether a reconnect timer is armed
func (c *Channel) ReconnectPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

func (c *Channel) connectLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = StateConnecting
	go c.run(ctx)
}

// stopTimerLocked also disarms a callback that already fired but has not
// yet taken the lock
func (c *Channel) stopTimerLocked() {
	c.armed++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Channel) run(ctx context.Context) {
	err := c.stream(ctx)
	if ctx.Err() != nil {
		return
	}
	c.fail(ctx, err)
}

func (c *Channel) stream(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.URL, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if c.opts.Authorization != "" {
		req.Header.Set("Authorization", c.opts.Authorization)
	}
	c.mu.Lock()
	if c.lastID != "" {
		req.Header.Set("Last-Event-ID", c.lastID)
	}
	c.mu.Unlock()

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return apperrors.Transport(err)
	}
	defer resp.Body.Close()

	if statusErr := apperrors.FromStatus(http.MethodGet, c.opts.URL, resp.StatusCode); statusErr != nil {
		return statusErr
	}

	c.mu.Lock()
	if ctx.Err() == nil {
		c.state = StateOpen
	}
	c.mu.Unlock()

	r := NewReader(resp.Body)
	for {
		ev, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errStreamEnded
			}
			return apperrors.Transport(err)
		}
		if !c.advance(ctx, r.LastEventID()) {
			return context.Canceled
		}
		c.dispatch(ev)
	}
}

// advance records the stream position of an event about to be dispatched.
// It reports false once the channel is closed or its connection cancelled.
func (c *Channel) advance(ctx context.Context, lastID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || ctx.Err() != nil {
		return false
	}
	c.lastID = lastID
	return true
}

func (c *Channel) dispatch(ev Event) {
	switch ev.Name {
	case EventConnectionEstablished:
		c.logger.Info("live channel connected", slog.String("message", ev.Data))
	case EventEmailReceived:
		c.logger.Debug("email received", slog.String("id", ev.Data))
		if c.opts.Invalidator != nil {
			c.opts.Invalidator.InvalidateList()
		}
		if c.opts.OnEmailReceived != nil {
			c.opts.OnEmailReceived(ev.Data)
		}
	default:
		c.logger.Debug("ignoring event", slog.String("event", ev.Name))
	}
}

func (c *Channel) fail(ctx context.Context, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || ctx.Err() != nil {
		return
	}
	c.state = StateError
	c.logger.Warn("live channel failed",
		slog.Any("error", err),
		slog.Duration("retry_in", c.opts.ReconnectDelay))

	c.stopTimerLocked()
	seq := c.armed
	c.timer = time.AfterFunc(c.opts.ReconnectDelay, func() { c.reconnect(seq) })
}

func (c *Channel) reconnect(seq uint64) {
	// Current takes the owner's lock, so ask before taking ours
	current := c.opts.Current == nil || c.opts.Current(c)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.armed {
		return
	}
	c.timer = nil
	if !current || c.closed || c.state != StateError {
		return
	}
	c.logger.Info("live channel reconnecting")
	c.connectLocked()
}
