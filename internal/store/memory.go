package store

import (
	"context"
	"sync"
	"time"
)

// Memory keeps answers in process memory.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string][]string
	updated  map[string]time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string][]string),
		updated:  make(map[string]time.Time),
	}
}

// Save stores a copy of answers.
func (m *Memory) Save(ctx context.Context, id string, answers []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = cloneAnswers(answers)
	m.updated[id] = time.Now().UTC()
	return nil
}

// Load returns a copy of the stored answers.
func (m *Memory) Load(ctx context.Context, id string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	answers, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAnswers(answers), nil
}

// Clear removes the session.
func (m *Memory) Clear(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.updated, id)
	return nil
}

// Sessions returns the update time of every stored session.
func (m *Memory) Sessions(ctx context.Context) (map[string]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]time.Time, len(m.updated))
	for id, at := range m.updated {
		out[id] = at
	}
	return out, nil
}
