package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Path     string
	Firebase FirebaseOptions
}

// Open builds the configured backend. Durable backends are wrapped in a
// Resilient store; a backend that cannot even be opened yields a Resilient
// already in memory-only mode, with a warning, instead of failing the session.
func Open(ctx context.Context, opts Options, logger zerolog.Logger) (Store, error) {
	var (
		durable Store
		err     error
	)
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		durable, err = NewFile(opts.Path)
	case BackendSQLite:
		durable, err = OpenSQLite(ctx, opts.Path)
	case BackendFirebase:
		durable, err = NewFirebase(ctx, opts.Firebase)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
	if err != nil {
		logger.Warn().Err(err).Str("component", "store").Str("backend", opts.Backend).
			Msg("answer store unavailable, answers will not survive this process")
		return newUnavailable(logger), nil
	}
	return NewResilient(durable, logger), nil
}
