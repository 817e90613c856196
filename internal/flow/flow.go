package flow

import (
	"errors"
	"fmt"
	"slices"
)

// State is one session's position and answers.
type State struct {
	// CurrentID is the question being shown.
	CurrentID int `json:"current_id"`

	// Answers holds one raw slot per catalog question, by position.
	Answers []string `json:"answers"`

	// LastError is the reason the most recent submit or calculate was rejected.
	LastError string `json:"last_error,omitempty"`

	// Path is the stack of visited question ids, first question at the bottom.
	Path []int `json:"path"`

	// Complete is set by Finish.
	Complete bool `json:"complete"`
}

// clone returns a deep copy so transitions never alias the caller's slices.
func (s State) clone() State {
	s.Answers = slices.Clone(s.Answers)
	s.Path = slices.Clone(s.Path)
	return s
}

// Flow runs the state machine of one validated catalog.
// It is immutable and safe for concurrent use.
type Flow struct {
	catalog *Catalog
}

// New validates c and returns a Flow over it.
func New(c *Catalog) (*Flow, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil catalog", ErrInvalidCatalog)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Flow{catalog: c}, nil
}

// Catalog returns the catalog the flow runs.
func (f *Flow) Catalog() *Catalog {
	return f.catalog
}

// Initialize starts a session at the first question.
//
// Persisted answers of the right length are adopted verbatim, default-valued
// slots included. Otherwise a fresh answer set is built with defaults
// pre-filled.
func (f *Flow) Initialize(persisted []string) State {
	var answers []string
	if persisted != nil && len(persisted) == f.catalog.Len() {
		answers = slices.Clone(persisted)
	} else {
		answers = f.Defaults()
	}
	first := f.catalog.First()
	return State{
		CurrentID: first,
		Answers:   answers,
		Path:      []int{first},
	}
}

// Defaults returns a fresh answer set with question defaults pre-filled.
func (f *Flow) Defaults() []string {
	answers := make([]string, f.catalog.Len())
	for i, q := range f.catalog.Questions {
		answers[i] = q.Default
	}
	return answers
}

// Current returns the question at the state's position. It reports false
// when CurrentID names no question of the catalog.
func (f *Flow) Current(s State) (Question, bool) {
	return f.catalog.Question(s.CurrentID)
}

// Answer returns the raw slot of the current question.
func (f *Flow) Answer(s State) string {
	pos, ok := f.catalog.Position(s.CurrentID)
	if !ok || pos >= len(s.Answers) {
		return ""
	}
	return s.Answers[pos]
}

// Submit validates raw for the current question.
//
// On success the slot is written (Information questions leave it untouched),
// LastError is cleared and the position advances to the successor; a terminal
// question keeps its position. On failure only LastError changes.
func (f *Flow) Submit(s State, raw string) State {
	next := s.clone()
	next.Complete = false

	q, ok := f.Current(next)
	if !ok {
		next.LastError = fmt.Sprintf("no question %d in catalog %s", s.CurrentID, f.catalog.Name)
		return next
	}
	if err := Validate(q, raw); err != nil {
		next.LastError = reason(err)
		return next
	}

	pos, _ := f.catalog.Position(q.ID)
	if q.Kind != KindInformation && pos < len(next.Answers) {
		next.Answers[pos] = raw
	}
	next.LastError = ""

	if id, ok := f.catalog.Next(q.ID, raw); ok {
		next.CurrentID = id
		next.Path = append(next.Path, id)
	}
	return next
}

// Back returns to the previous question on the path actually taken.
// It is a no-op at the first question and always clears LastError. Backing out
// of a completed state returns to the terminal question.
func (f *Flow) Back(s State) State {
	next := s.clone()
	next.LastError = ""
	if next.Complete {
		next.Complete = false
		return next
	}
	if len(next.Path) <= 1 {
		return next
	}
	next.Path = next.Path[:len(next.Path)-1]
	next.CurrentID = next.Path[len(next.Path)-1]
	return next
}

// IsComplete reports whether the state is at a terminal question whose
// answer validates.
func (f *Flow) IsComplete(s State) bool {
	if !f.catalog.Terminal(s.CurrentID) {
		return false
	}
	if len(s.Answers) != f.catalog.Len() {
		return false
	}
	q, ok := f.Current(s)
	return ok && Validate(q, f.Answer(s)) == nil
}

// Finish is the explicit calculate trigger. It marks the state complete or
// fails with ErrIncomplete, recording the reason in LastError.
func (f *Flow) Finish(s State) (State, error) {
	next := s.clone()
	if !f.IsComplete(next) {
		next.Complete = false
		next.LastError = ErrIncomplete.Error()
		return next, ErrIncomplete
	}
	next.Complete = true
	next.LastError = ""
	return next, nil
}

// ActivePath replays the routes from the first question using answers and
// returns the question ids whose answers were actually used.
//
// The replay stops at the first slot that does not validate, after a terminal
// question, or on a revisit. Answers left behind on abandoned branches are
// never part of the path.
func (f *Flow) ActivePath(answers []string) []int {
	if len(answers) != f.catalog.Len() {
		return nil
	}
	var path []int
	seen := make(map[int]bool)
	id := f.catalog.First()
	for id != 0 && !seen[id] {
		seen[id] = true
		pos, ok := f.catalog.Position(id)
		if !ok {
			break
		}
		q := f.catalog.Questions[pos]
		answer := answers[pos]
		if Validate(q, answer) != nil {
			break
		}
		path = append(path, id)
		next, more := f.catalog.Next(id, answer)
		if !more {
			break
		}
		id = next
	}
	return path
}

func reason(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return err.Error()
}
