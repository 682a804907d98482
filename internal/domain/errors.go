package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the quiz does not exist in the data source.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrMalformedSummaryData is returned when questions and statistics cannot be aligned.
	ErrMalformedSummaryData = errors.New("malformed summary data")
	// ErrStaleLoad indicates a newer load superseded this one on the same view.
	ErrStaleLoad = errors.New("summary load superseded by a newer request")
	// ErrViewClosed indicates the view was torn down before the load finished.
	ErrViewClosed = errors.New("view closed")
	// ErrSessionNotFound is returned for unknown or expired session tokens.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidAttempt indicates a submitted selection does not fit the quiz.
	ErrInvalidAttempt = errors.New("invalid attempt")
	// ErrForbidden is returned when the requester may not read a resource.
	ErrForbidden = errors.New("forbidden")
)

// MalformedSummaryDataError describes where the question and statistics lists disagree.
// Question is the zero-based question index, or -1 for list-level mismatches.
type MalformedSummaryDataError struct {
	QuizID   string
	Question int
	Reason   string
}

func (e *MalformedSummaryDataError) Error() string {
	if e.Question < 0 {
		return fmt.Sprintf("%s for quiz %q: %s", ErrMalformedSummaryData, e.QuizID, e.Reason)
	}
	return fmt.Sprintf("%s for quiz %q question %d: %s", ErrMalformedSummaryData, e.QuizID, e.Question+1, e.Reason)
}

func (e *MalformedSummaryDataError) Is(target error) bool {
	return target == ErrMalformedSummaryData
}
