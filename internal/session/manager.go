package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rshade/sequestra/internal/carbon"
	"github.com/rshade/sequestra/internal/flow"
	"github.com/rshade/sequestra/internal/store"
)

// Manager owns the sessions of a long-running host.
//
// Sessions are opened lazily on first use. Actions on one session run one at
// a time under that session's lock; different sessions proceed in parallel.
// The estimator, and through it the biomass table, is the only shared value.
type Manager struct {
	flow   *flow.Flow
	store  store.Store
	est    *carbon.Estimator
	logger zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session *Session
}

// NewManager returns a manager whose sessions run f.
func NewManager(f *flow.Flow, st store.Store, est *carbon.Estimator, logger zerolog.Logger) *Manager {
	return &Manager{
		flow:     f,
		store:    st,
		est:      est,
		logger:   logger,
		sessions: make(map[string]*entry),
	}
}

func (m *Manager) entry(id string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		e = &entry{}
		m.sessions[id] = e
	}
	return e
}

// With runs fn on session id while holding its lock, opening it if needed.
func (m *Manager) With(ctx context.Context, id string, fn func(*Session) error) error {
	e := m.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		e.session = Open(ctx, id, m.flow, m.store, m.est, m.logger)
	}
	return fn(e.session)
}

// Len returns the number of sessions opened so far.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
