package engine

import (
	"sync"
	"time"

	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/pricesim"
	"github.com/OM-MUDDAPUR/Stock-broker-app/internal/store"
)

// Manager keeps at most one running session engine per user. Sessions
// open lazily on first use and stay alive until logout or shutdown.
type Manager struct {
	store store.HoldingStore
	tick  time.Duration

	mu       sync.Mutex
	sessions map[string]*Engine
}

// NewManager creates a session manager over the given store.
func NewManager(st store.HoldingStore, tick time.Duration) *Manager {
	return &Manager{
		store:    st,
		tick:     tick,
		sessions: make(map[string]*Engine),
	}
}

// Session returns the user's running session, opening one if needed.
// A failed Load caches nothing, so the next call retries from scratch.
func (m *Manager) Session(userID string) (*Engine, error) {
	m.mu.Lock()
	if e, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		return e, nil
	}
	m.mu.Unlock()

	// Load runs outside the manager lock: a slow store must not block
	// other users' sessions.
	e := New(m.store, pricesim.New(), userID, m.tick)
	if err := e.Load(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[userID]; ok {
		// Lost the race to a concurrent open; keep the winner.
		return existing, nil
	}
	e.Start()
	m.sessions[userID] = e
	return e, nil
}

// CloseSession tears down the user's session, if any.
func (m *Manager) CloseSession(userID string) {
	m.mu.Lock()
	e := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if e != nil {
		e.Close()
	}
}

// CloseAll tears down every session. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Engine)
	m.mu.Unlock()

	for _, e := range sessions {
		e.Close()
	}
}
