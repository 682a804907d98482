package domain

import (
	"math"
	"strings"
)

// DefaultDescription replaces an empty quiz description in summaries.
const DefaultDescription = "No description"

// HomePath is where denied requesters are sent.
const HomePath = "/"

// User is the authenticated requester.
type User struct {
	ID string `json:"id"`
}

// Quiz is the quiz metadata record.
type Quiz struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description"`
	CreatorID   string `json:"creatorId" yaml:"creatorId"`
	NumAttempts int    `json:"numAttempts" yaml:"numAttempts"`
}

// Question is a prompt with ordered options. An option's index is its identity.
type Question struct {
	Text    string   `json:"text" yaml:"text"`
	Options []string `json:"options" yaml:"options"`
}

// QuestionStatistics is the aggregate answer data for one question, positionally
// matched to the question list of the same quiz.
type QuestionStatistics struct {
	CorrectOption int       `json:"correctOption"`
	Percentages   []float64 `json:"percentages"`
}

// NewQuestionStatistics turns per-option answer counts into selection percentages
// rounded to two decimals. A question nobody answered yields all zeros.
func NewQuestionStatistics(correctOption int, counts []int) QuestionStatistics {
	total := 0
	for _, c := range counts {
		total += c
	}
	percentages := make([]float64, len(counts))
	if total > 0 {
		for i, c := range counts {
			percentages[i] = math.Round(float64(c)*10000/float64(total)) / 100
		}
	}
	return QuestionStatistics{CorrectOption: correctOption, Percentages: percentages}
}

// OptionSummary pairs an option's text with its selection percentage.
type OptionSummary struct {
	Option     string  `json:"option"`
	Percentage float64 `json:"percentage"`
}

// QuestionSummary is one merged row of the creator summary.
type QuestionSummary struct {
	QuestionNumber int             `json:"questionNumber"`
	Text           string          `json:"text"`
	Options        []OptionSummary `json:"options"`
	CorrectOption  int             `json:"correctOption"`
}

// QuizSummary is the creator-facing report for a quiz.
type QuizSummary struct {
	QuizID       string            `json:"quizId"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	NumAttempts  int               `json:"numAttempts"`
	Questions    []QuestionSummary `json:"questions"`
	SharableLink string            `json:"sharableLink"`
}

// SharableLink formats the public link of a quiz.
func SharableLink(origin, quizID string) string {
	return strings.TrimRight(origin, "/") + "/quiz/" + quizID
}

// Status is the lifecycle of a single view's summary load.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusLoading    Status = "loading"
	StatusReady      Status = "ready"
	StatusRedirected Status = "redirected"
	StatusFailed     Status = "failed"
)

// ViewState is the published state of a view, tagged with the quiz it was computed for.
type ViewState struct {
	QuizID   string       `json:"quizId"`
	Status   Status       `json:"status"`
	Summary  *QuizSummary `json:"summary,omitempty"`
	Error    string       `json:"error,omitempty"`
	Redirect string       `json:"redirect,omitempty"`
}

// QuestionDefinition is the authored form of a question, including its answer.
type QuestionDefinition struct {
	Question      `yaml:",inline"`
	CorrectOption int `json:"correctOption" yaml:"correctOption"`
}

// QuizDefinition is a quiz together with its authored questions, as persisted.
type QuizDefinition struct {
	Quiz      Quiz                 `json:"quiz" yaml:"quiz"`
	Questions []QuestionDefinition `json:"questions" yaml:"questions"`
}

// Attempt is one submitted run through a quiz.
type Attempt struct {
	ID       string `json:"id"`
	QuizID   string `json:"quizId"`
	UserID   string `json:"userId"`
	Selected []int  `json:"selected"`
	Score    int    `json:"score"`
}

// ScoreAttempt validates a selection against a quiz definition and counts correct answers.
func ScoreAttempt(def QuizDefinition, selected []int) (int, error) {
	if len(selected) != len(def.Questions) {
		return 0, ErrInvalidAttempt
	}
	score := 0
	for i, q := range def.Questions {
		if selected[i] < 0 || selected[i] >= len(q.Options) {
			return 0, ErrInvalidAttempt
		}
		if selected[i] == q.CorrectOption {
			score++
		}
	}
	return score, nil
}
