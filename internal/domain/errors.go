package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when catalog records are missing or malformed
	ErrInvalidInput = errors.New("invalid catalog input")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrScoreCacheMiss is returned when a code has no cached score
	ErrScoreCacheMiss = errors.New("score cache miss")

	// ErrScoringFailure is returned when the scoring API request fails
	ErrScoringFailure = errors.New("scoring API request failed")

	// ErrInvalidScore is returned when the scoring API reply is not a digit between 1 and 5
	ErrInvalidScore = errors.New("invalid chronicity score")
)

// ValidationError describes a malformed catalog record.
// Row is 1-based and counts data rows only; 0 means the header.
type ValidationError struct {
	Row    int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("%s: header: %s %s", ErrInvalidInput, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: row %d: %s %s", ErrInvalidInput, e.Row, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
