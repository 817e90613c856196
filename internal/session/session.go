// Package session binds one question-flow state to a persistence key and an
// estimator. It is the presentation boundary every host (CLI, TUI, Telegram)
// drives.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/rshade/sequestra/internal/carbon"
	"github.com/rshade/sequestra/internal/flow"
	"github.com/rshade/sequestra/internal/store"
)

// MemoryOnlyNotice is what hosts show once answers stop reaching the durable
// store.
const MemoryOnlyNotice = "The answer store is unavailable. Answers are kept in memory only and are lost when sequestra exits."

// Session is one user's walk through a catalog.
//
// A Session is not safe for concurrent use; Manager serializes access.
type Session struct {
	id     string
	flow   *flow.Flow
	store  store.Store
	est    *carbon.Estimator
	logger zerolog.Logger

	state  flow.State
	result *carbon.Result
}

// NewID returns a new session id.
func NewID() string {
	return ulid.Make().String()
}

// Open restores session id from st, or starts it fresh.
//
// A load failure other than store.ErrNotFound is logged and the session starts
// from defaults; the flow stays usable without durable storage.
func Open(
	ctx context.Context,
	id string,
	f *flow.Flow,
	st store.Store,
	est *carbon.Estimator,
	logger zerolog.Logger,
) *Session {
	if id == "" {
		id = NewID()
	}
	s := &Session{
		id:    id,
		flow:  f,
		store: st,
		est:   est,
		logger: logger.With().
			Str("component", "session").
			Str("session_id", id).
			Str("catalog", f.Catalog().Name).
			Logger(),
	}

	persisted, err := st.Load(ctx, id)
	switch {
	case err == nil:
		s.logger.Debug().Int("answers", len(persisted)).Msg("restored answers")
	case errors.Is(err, store.ErrNotFound):
	default:
		s.logger.Warn().Err(err).Msg("could not load saved answers, starting fresh")
		persisted = nil
	}
	s.state = f.Initialize(persisted)
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Flow returns the flow the session runs.
func (s *Session) Flow() *flow.Flow { return s.flow }

// State returns a snapshot of the flow state.
func (s *Session) State() flow.State {
	st := s.state
	st.Answers = append([]string(nil), st.Answers...)
	st.Path = append([]int(nil), st.Path...)
	return st
}

// Current returns the question being asked. A position the catalog does not
// know is logged and the session restarts at the first question, keeping its
// answers.
func (s *Session) Current() flow.Question {
	q, ok := s.flow.Current(s.state)
	if ok {
		return q
	}
	s.logger.Warn().Int("question_id", s.state.CurrentID).
		Msg("position not in catalog, returning to the first question")
	s.state = s.flow.Initialize(s.state.Answers)
	s.result = nil
	q, _ = s.flow.Current(s.state)
	return q
}

// CurrentAnswer returns the stored answer of the current question.
func (s *Session) CurrentAnswer() string {
	return s.flow.Answer(s.state)
}

// MemoryOnly reports whether the durable store has failed and answers now
// live only in this process.
func (s *Session) MemoryOnly() bool {
	return store.Degraded(s.store)
}

// LastError returns the reason the last action was rejected, or "".
func (s *Session) LastError() string {
	return s.state.LastError
}

// IsComplete reports whether Calculate can succeed on the flow side.
func (s *Session) IsComplete() bool {
	return s.flow.IsComplete(s.state)
}

// Result returns the last successful estimate, or nil.
func (s *Session) Result() *carbon.Result {
	return s.result
}

// Submit answers the current question and persists the answers on success.
// It returns false when the answer was rejected; LastError holds the reason.
func (s *Session) Submit(ctx context.Context, raw string) bool {
	q := s.Current()
	next := s.flow.Submit(s.state, q.ResolveOption(raw))
	s.state = next
	s.result = nil
	if next.LastError != "" {
		s.logger.Debug().Int("question_id", q.ID).Str("reason", next.LastError).Msg("answer rejected")
		return false
	}
	s.save(ctx)
	return true
}

// Back returns to the previous question on the path taken.
func (s *Session) Back() {
	s.state = s.flow.Back(s.state)
	s.result = nil
}

// Calculate is the explicit calculate trigger. It completes the flow, builds
// estimator inputs from the answers on the active path and runs the estimate.
//
// On any error the state stays incomplete, LastError holds the message and no
// result is exposed.
func (s *Session) Calculate(ctx context.Context) (carbon.Result, error) {
	s.result = nil

	done, err := s.flow.Finish(s.state)
	if err != nil {
		s.state = done
		return carbon.Result{}, err
	}

	in, err := s.flow.BuildInputs(done.Answers)
	if err == nil {
		var res carbon.Result
		res, err = s.est.Estimate(in)
		if err == nil {
			s.state = done
			s.result = &res
			s.logger.Info().
				Str("mode", res.Mode.String()).
				Str("region", res.Region).
				Float64("tons_co2", res.TonsCO2).
				Msg("estimate calculated")
			return res, nil
		}
	}

	s.state.Complete = false
	s.state.LastError = err.Error()
	s.logger.Warn().Err(err).Msg("estimate failed")
	return carbon.Result{}, fmt.Errorf("calculating estimate: %w", err)
}

// Reset discards the persisted and in-memory answers together. If the store
// cannot clear them, nothing changes and the error is returned.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.store.Clear(ctx, s.id); err != nil {
		s.logger.Error().Err(err).Msg("reset failed, answers kept")
		return fmt.Errorf("clearing answers: %w", err)
	}
	s.state = s.flow.Initialize(nil)
	s.result = nil
	s.logger.Info().Msg("session reset")
	return nil
}

// save persists the answers. Failures are logged and never reach the flow.
func (s *Session) save(ctx context.Context) {
	if err := s.store.Save(ctx, s.id, s.state.Answers); err != nil {
		s.logger.Warn().Err(err).Msg("could not save answers")
	}
}
