// Package flow is the question-flow engine: an ordered, optionally branching
// catalog of questions, per-answer validation, back navigation that follows
// the route actually taken, and the answer set that hosts persist.
//
// Flow values are immutable after construction. Every transition takes a State
// and returns a new State; the caller owns the State and serializes access.
package flow

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the answer shape a question expects.
type Kind int

const (
	// KindNumber expects a finite decimal number.
	KindNumber Kind = iota
	// KindSelect expects exactly one of the question's options.
	KindSelect
	// KindInformation carries no answer and always advances.
	KindInformation
)

// String returns the catalog name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindSelect:
		return "select"
	case KindInformation:
		return "information"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// ParseKind converts a catalog name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "number":
		return KindNumber, nil
	case "select":
		return KindSelect, nil
	case "information", "info":
		return KindInformation, nil
	default:
		return KindNumber, fmt.Errorf("unknown question kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Question is one step of a catalog.
type Question struct {
	// ID is unique within the catalog and >= 1.
	ID     int    `json:"id"`
	Prompt string `json:"prompt"`
	Kind   Kind   `json:"kind"`

	// Options are the accepted answers of a Select question, in display order.
	Options []string `json:"options,omitempty"`

	// Default pre-fills the answer slot of a fresh session. Empty means none.
	Default string `json:"default,omitempty"`

	// Info is the body of an Information question.
	Info string `json:"info,omitempty"`

	// Field binds the answer to an estimator input. Empty for unbound questions.
	Field Field `json:"field,omitempty"`

	// Fraction restricts a Number answer to the closed interval [0, 1].
	Fraction bool `json:"fraction,omitempty"`

	// NonNegative restricts a Number answer to values >= 0.
	NonNegative bool `json:"non_negative,omitempty"`

	// Unit is a display hint such as "ha" or "t/ha".
	Unit string `json:"unit,omitempty"`
}

// OptionIndex returns the position of answer in Options, or -1.
func (q Question) OptionIndex(answer string) int {
	for i, o := range q.Options {
		if o == answer {
			return i
		}
	}
	return -1
}

// ResolveOption maps host input onto a Select option.
//
// An exact option match wins; otherwise a 1-based option number is accepted.
// Anything else is returned unchanged so validation can reject it.
func (q Question) ResolveOption(input string) string {
	if q.Kind != KindSelect {
		return input
	}
	if q.OptionIndex(input) >= 0 {
		return input
	}
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > len(q.Options) {
		return input
	}
	return q.Options[n-1]
}
