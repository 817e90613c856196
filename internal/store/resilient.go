package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Resilient writes through to a durable store and a memory mirror.
//
// The first durable Save or Load failure switches it to memory-only mode for
// the rest of the process; the session stays usable without durable storage.
// Clear is not degraded: a failed durable clear is returned unchanged so a
// reset never leaves persisted and in-memory answers out of step.
type Resilient struct {
	durable Store
	memory  *Memory
	logger  zerolog.Logger

	mu       sync.RWMutex
	degraded bool
}

// NewResilient wraps durable.
func NewResilient(durable Store, logger zerolog.Logger) *Resilient {
	return &Resilient{
		durable: durable,
		memory:  NewMemory(),
		logger:  logger.With().Str("component", "store").Logger(),
	}
}

// newUnavailable returns a Resilient that starts in memory-only mode, for a
// durable backend that could not be opened at all.
func newUnavailable(logger zerolog.Logger) *Resilient {
	r := NewResilient(nil, logger)
	r.degraded = true
	return r
}

// Degraded reports whether the store has fallen back to memory only.
func (r *Resilient) Degraded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.degraded
}

func (r *Resilient) degrade(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.degraded {
		return
	}
	r.degraded = true
	r.logger.Warn().Err(err).Str("operation", op).
		Msg("durable answer store failed, continuing in memory only")
}

// Save stores answers in memory and, unless degraded, durably.
func (r *Resilient) Save(ctx context.Context, id string, answers []string) error {
	if err := r.memory.Save(ctx, id, answers); err != nil {
		return err
	}
	if r.Degraded() {
		return nil
	}
	if err := r.durable.Save(ctx, id, answers); err != nil {
		if ctx.Err() != nil {
			return err
		}
		r.degrade("save", err)
	}
	return nil
}

// Load prefers the durable copy and mirrors it into memory.
func (r *Resilient) Load(ctx context.Context, id string) ([]string, error) {
	if r.Degraded() {
		return r.memory.Load(ctx, id)
	}
	answers, err := r.durable.Load(ctx, id)
	switch {
	case err == nil:
		_ = r.memory.Save(ctx, id, answers)
		return answers, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidSessionID), ctx.Err() != nil:
		return nil, err
	default:
		r.degrade("load", err)
		return r.memory.Load(ctx, id)
	}
}

// Clear removes the session durably first, then from memory.
func (r *Resilient) Clear(ctx context.Context, id string) error {
	if !r.Degraded() {
		if err := r.durable.Clear(ctx, id); err != nil {
			return err
		}
	}
	return r.memory.Clear(ctx, id)
}

// Sessions lists the durable sessions, or the in-memory ones once degraded.
func (r *Resilient) Sessions(ctx context.Context) (map[string]time.Time, error) {
	if r.Degraded() {
		return r.memory.Sessions(ctx)
	}
	return List(ctx, r.durable)
}

// Close closes the durable store when it holds resources.
func (r *Resilient) Close() error {
	if c, ok := r.durable.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
