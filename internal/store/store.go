// Package store persists in-progress answer sets keyed by session id.
//
// Every backend round-trips the ordered string slice exactly, including empty
// slots. Backends are safe for concurrent use; callers serialize operations on
// a single session.
package store

import (
	"context"
	"strings"
	"time"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrNotFound indicates no answers are stored for the session.
	ErrNotFound = constError("no stored answers for session")

	// ErrStoreCorrupted indicates the backing data exists but cannot be decoded.
	ErrStoreCorrupted = constError("answer store corrupted")

	// ErrInvalidSessionID indicates an empty or unsupported session id.
	ErrInvalidSessionID = constError("invalid session id")

	// ErrListUnsupported indicates the backend cannot enumerate its sessions.
	ErrListUnsupported = constError("answer store cannot list sessions")
)

// Store is the persistence capability of the question flow.
type Store interface {
	// Save replaces the answers of session id.
	Save(ctx context.Context, id string, answers []string) error

	// Load returns the answers of session id, or ErrNotFound.
	Load(ctx context.Context, id string) ([]string, error)

	// Clear removes the answers of session id. Clearing an unknown session succeeds.
	Clear(ctx context.Context, id string) error
}

// Lister is implemented by backends that can enumerate stored sessions.
type Lister interface {
	// Sessions returns the last update time of every stored session.
	Sessions(ctx context.Context) (map[string]time.Time, error)
}

// List returns the sessions of st, or ErrListUnsupported.
func List(ctx context.Context, st Store) (map[string]time.Time, error) {
	l, ok := st.(Lister)
	if !ok {
		return nil, ErrListUnsupported
	}
	return l.Sessions(ctx)
}

// Degraded reports whether st was opened over a durable backend but now keeps
// answers in memory only.
func Degraded(st Store) bool {
	d, ok := st.(interface{ Degraded() bool })
	return ok && d.Degraded()
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendFirebase = "firebase"
)

func checkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidSessionID
	}
	return nil
}

func cloneAnswers(answers []string) []string {
	if answers == nil {
		return []string{}
	}
	out := make([]string, len(answers))
	copy(out, answers)
	return out
}
