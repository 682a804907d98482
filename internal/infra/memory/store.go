package memory

import (
	"context"
	"strconv"
	"sync"

	"quiz-summary-service/internal/domain"
)

// Store keeps quiz definitions and answer tallies in process memory (useful for tests/demos).
type Store struct {
	mu       sync.RWMutex
	quizzes  map[string]domain.QuizDefinition
	tallies  map[string][][]int
	attempts int
}

func NewStore(defs ...domain.QuizDefinition) *Store {
	s := &Store{
		quizzes: make(map[string]domain.QuizDefinition),
		tallies: make(map[string][][]int),
	}
	for _, def := range defs {
		_ = s.CreateQuiz(context.Background(), def)
	}
	return s
}

// CreateQuiz stores or replaces a quiz definition and resets its tallies.
func (s *Store) CreateQuiz(_ context.Context, def domain.QuizDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tallies := make([][]int, len(def.Questions))
	for i, q := range def.Questions {
		tallies[i] = make([]int, len(q.Options))
	}
	s.quizzes[def.Quiz.ID] = def
	s.tallies[def.Quiz.ID] = tallies
	return nil
}

func (s *Store) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return def.Quiz, nil
}

func (s *Store) GetQuestions(_ context.Context, quizID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.quizzes[quizID]
	if !ok {
		return nil, domain.ErrQuizNotFound
	}
	questions := make([]domain.Question, len(def.Questions))
	for i, q := range def.Questions {
		questions[i] = domain.Question{Text: q.Text, Options: append([]string(nil), q.Options...)}
	}
	return questions, nil
}

func (s *Store) GetStatistics(_ context.Context, quizID string) ([]domain.QuestionStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.quizzes[quizID]
	if !ok {
		return nil, domain.ErrQuizNotFound
	}
	tallies := s.tallies[quizID]
	stats := make([]domain.QuestionStatistics, len(def.Questions))
	for i, q := range def.Questions {
		stats[i] = domain.NewQuestionStatistics(q.CorrectOption, tallies[i])
	}
	return stats, nil
}

// SubmitAttempt scores the selection, counts one attempt and adds it to the tallies.
func (s *Store) SubmitAttempt(_ context.Context, quizID, userID string, selected []int) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.quizzes[quizID]
	if !ok {
		return domain.Attempt{}, domain.ErrQuizNotFound
	}
	score, err := domain.ScoreAttempt(def, selected)
	if err != nil {
		return domain.Attempt{}, err
	}

	tallies := s.tallies[quizID]
	for i, opt := range selected {
		tallies[i][opt]++
	}
	def.Quiz.NumAttempts++
	s.quizzes[quizID] = def
	s.attempts++

	return domain.Attempt{
		ID:       strconv.Itoa(s.attempts),
		QuizID:   quizID,
		UserID:   userID,
		Selected: append([]int(nil), selected...),
		Score:    score,
	}, nil
}
