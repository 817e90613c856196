package flow

import (
	"math"
	"strconv"
	"strings"
)

// Validate checks raw against q without coercing it.
//
// Number answers must parse as finite numbers after trimming whitespace;
// Fraction questions accept exactly the closed interval [0, 1] and
// NonNegative questions reject values below zero. Select answers must equal
// one of the options. Information questions always pass.
func Validate(q Question, raw string) error {
	switch q.Kind {
	case KindInformation:
		return nil
	case KindSelect:
		if q.OptionIndex(raw) < 0 {
			return &ValidationError{QuestionID: q.ID, Reason: "choose one of the listed options"}
		}
		return nil
	case KindNumber:
		v, err := ParseNumber(raw)
		if err != nil {
			return &ValidationError{QuestionID: q.ID, Reason: "enter a number"}
		}
		if q.Fraction && (v < 0 || v > 1) {
			return &ValidationError{QuestionID: q.ID, Reason: "enter a fraction between 0 and 1"}
		}
		if q.NonNegative && v < 0 {
			return &ValidationError{QuestionID: q.ID, Reason: "enter a value of 0 or more"}
		}
		return nil
	default:
		return &ValidationError{QuestionID: q.ID, Reason: "unsupported question kind"}
	}
}

// ParseNumber parses a trimmed decimal and rejects NaN and infinities.
func ParseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrInvalidAnswer
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAnswer
	}
	return v, nil
}
