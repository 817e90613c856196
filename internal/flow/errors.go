package flow

import "fmt"

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrInvalidAnswer indicates an answer that failed question validation.
	ErrInvalidAnswer = constError("invalid answer")

	// ErrIncomplete indicates a calculate trigger before the terminal question
	// holds a valid answer.
	ErrIncomplete = constError("question flow is not complete")

	// ErrInvalidCatalog indicates a catalog that fails structural validation.
	ErrInvalidCatalog = constError("invalid question catalog")

	// ErrUnknownCatalog indicates a catalog name that is not registered.
	ErrUnknownCatalog = constError("unknown question catalog")

	// ErrAnswerCount indicates an answer set whose length differs from the catalog.
	ErrAnswerCount = constError("answer count does not match catalog")
)

// ValidationError describes why an answer was rejected.
type ValidationError struct {
	QuestionID int
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %d: %s", e.QuestionID, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidAnswer.
func (e *ValidationError) Unwrap() error { return ErrInvalidAnswer }
