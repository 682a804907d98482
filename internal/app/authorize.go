package app

import "quiz-summary-service/internal/domain"

// Decision is the outcome of the summary authorization gate.
type Decision int

const (
	Denied Decision = iota
	Authorized
)

func (d Decision) String() string {
	if d == Authorized {
		return "authorized"
	}
	return "denied"
}

// Authorize allows only the creator of an existing quiz to view its summary.
// A nil quiz means it was not found; that is denied the same way as a foreign quiz.
func Authorize(currentUserID string, quiz *domain.Quiz) Decision {
	if quiz == nil || quiz.CreatorID != currentUserID {
		return Denied
	}
	return Authorized
}
