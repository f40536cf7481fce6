package live

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/auth"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
)

// Source is the part of the inbox client the manager needs
type Source interface {
	Invalidator
	EventsURL() string
	GetMetaData(ctx context.Context) (*models.MetaData, error)
}

// ManagerOptions configures a Manager
type ManagerOptions struct {
	Source         Source
	Auth           *auth.Store
	HTTPClient     *http.Client
	ReconnectDelay time.Duration
	Logger         *slog.Logger
}

// Manager owns the single live channel of the process and keeps it in
// step with the authentication state.
type Manager struct {
	opts   ManagerOptions
	logger *slog.Logger

	// syncMu orders Sync calls; mu guards the fields below
	syncMu      sync.Mutex
	mu          sync.Mutex
	current     *Channel
	currentKey  string
	subscribers map[int]func(id string)
	nextID      int
}

// NewManager creates a manager with no open channel
func NewManager(opts ManagerOptions) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		opts:        opts,
		logger:      logger,
		subscribers: make(map[int]func(string)),
	}
}

// Subscribe registers fn for every email-received event. fn runs on the
// channel's reader goroutine and must not block.
func (m *Manager) Subscribe(fn func(id string)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

// Current returns the live handle, or nil
func (m *Manager) Current() *Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// State returns the state of the live handle
func (m *Manager) State() State {
	if ch := m.Current(); ch != nil {
		return ch.State()
	}
	return StateClosed
}

// Sync opens or closes the channel for the given metadata and auth state.
// It is called on every auth transition; a transition to different
// credentials replaces the channel and any pending reconnect is cancelled.
//
// Store listeners run outside the store lock and may be delivered out of
// order, so with a store configured the state is re-read here and st only
// serves callers without one.
func (m *Manager) Sync(meta models.MetaData, st models.AuthState) {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()
	if m.opts.Auth != nil {
		st = m.opts.Auth.State()
	}
	if !st.CanConnect(meta) {
		m.Close()
		return
	}
	key := ""
	if meta.AuthenticationEnabled && st.Credentials != nil {
		key = st.Credentials.BasicAuth()
	}
	m.open(key)
}

// Open opens the channel with the store's current credentials. It is a
// no-op when a healthy channel already exists.
func (m *Manager) Open() {
	key := ""
	if m.opts.Auth != nil {
		key, _ = m.opts.Auth.Authorization()
	}
	m.open(key)
}

// Close closes the channel and clears the handle
func (m *Manager) Close() {
	m.mu.Lock()
	old := m.current
	m.current = nil
	m.currentKey = ""
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

// Run keeps the channel in step with the auth store until ctx ends
func (m *Manager) Run(ctx context.Context) error {
	meta, err := m.opts.Source.GetMetaData(ctx)
	if err != nil {
		return err
	}
	m.opts.Auth.SetAuthenticationRequired(meta.AuthenticationEnabled)

	unsubscribe := m.opts.Auth.Subscribe(func(st models.AuthState) {
		m.Sync(*meta, st)
	})
	defer unsubscribe()

	m.Sync(*meta, m.opts.Auth.State())

	<-ctx.Done()
	m.Close()
	return nil
}

func (m *Manager) open(key string) {
	m.mu.Lock()
	old := m.current
	if old != nil && m.currentKey == key {
		switch old.State() {
		case StateConnecting, StateOpen:
			m.mu.Unlock()
			return
		}
	}

	ch := NewChannel(Options{
		URL:             m.opts.Source.EventsURL(),
		HTTPClient:      m.opts.HTTPClient,
		Authorization:   key,
		Invalidator:     m.opts.Source,
		ReconnectDelay:  m.opts.ReconnectDelay,
		Logger:          m.logger,
		OnEmailReceived: m.notify,
		Current:         m.isCurrent,
	})
	m.current = ch
	m.currentKey = key
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}
	ch.Open()
}

func (m *Manager) isCurrent(ch *Channel) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current == ch
}

func (m *Manager) notify(id string) {
	m.mu.Lock()
	subs := make([]func(string), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(id)
	}
}
