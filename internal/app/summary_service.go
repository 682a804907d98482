package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quiz-summary-service/internal/domain"
)

// QuizSource is the quiz data API the summary pipeline reads from.
// GetQuiz returns domain.ErrQuizNotFound for unknown ids.
type QuizSource interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	GetQuestions(ctx context.Context, quizID string) ([]domain.Question, error)
	GetStatistics(ctx context.Context, quizID string) ([]domain.QuestionStatistics, error)
}

// AttemptRecorder stores submitted attempts so statistics can be derived from them.
type AttemptRecorder interface {
	SubmitAttempt(ctx context.Context, quizID, userID string, selected []int) (domain.Attempt, error)
}

// SessionStore resolves session tokens to users.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Lookup(ctx context.Context, token string) (domain.User, error)
}

// SummaryService builds creator summaries.
type SummaryService struct {
	source QuizSource
	origin string
	logger *zap.Logger
}

// NewSummaryService wires the pipeline. origin is the public base used for sharable links.
func NewSummaryService(source QuizSource, origin string, logger *zap.Logger) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{source: source, origin: origin, logger: logger}
}

// Load fetches, authorizes and merges the summary of quizID for requester into view.
// The loading reporter sees false then true exactly once per call. A denied
// requester is redirected home without the statistics ever being fetched.
func (s *SummaryService) Load(ctx context.Context, view *View, requester domain.User, quizID string) (domain.ViewState, error) {
	view.loading.SetLoadingComplete(false)
	defer view.loading.SetLoadingComplete(true)

	log := s.logger.With(zap.String("quiz_id", quizID), zap.String("user_id", requester.ID))

	gen, err := view.begin(quizID)
	if err != nil {
		return domain.ViewState{QuizID: quizID, Status: domain.StatusIdle}, err
	}

	quiz, questions, err := s.fetchQuizAndQuestions(ctx, quizID)
	if err != nil {
		log.Warn("summary fetch failed", zap.Error(err))
		return s.fail(view, gen, quizID, err)
	}

	if Authorize(requester.ID, quiz) == Denied {
		log.Info("summary denied", zap.Bool("quiz_found", quiz != nil))
		return s.settle(view, gen, log, domain.ViewState{
			QuizID:   quizID,
			Status:   domain.StatusRedirected,
			Redirect: domain.HomePath,
		})
	}

	statistics, err := s.source.GetStatistics(ctx, quizID)
	if err != nil {
		log.Warn("statistics fetch failed", zap.Error(err))
		return s.fail(view, gen, quizID, fmt.Errorf("get statistics: %w", err))
	}

	summary, err := Merge(*quiz, questions, statistics)
	if err != nil {
		log.Error("summary merge failed", zap.Error(err))
		return s.fail(view, gen, quizID, err)
	}
	summary.SharableLink = domain.SharableLink(s.origin, quizID)

	log.Info("summary ready", zap.Int("questions", len(summary.Questions)))
	return s.settle(view, gen, log, domain.ViewState{
		QuizID:  quizID,
		Status:  domain.StatusReady,
		Summary: &summary,
	})
}

// fetchQuizAndQuestions runs both independent fetches concurrently; the first
// failure cancels the other. A missing quiz is returned as nil, not an error.
func (s *SummaryService) fetchQuizAndQuestions(ctx context.Context, quizID string) (*domain.Quiz, []domain.Question, error) {
	var (
		quiz      *domain.Quiz
		questions []domain.Question
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := s.source.GetQuiz(gctx, quizID)
		if errors.Is(err, domain.ErrQuizNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get quiz: %w", err)
		}
		quiz = &q
		return nil
	})
	g.Go(func() error {
		qs, err := s.source.GetQuestions(gctx, quizID)
		if errors.Is(err, domain.ErrQuizNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get questions: %w", err)
		}
		questions = qs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return quiz, questions, nil
}

func (s *SummaryService) fail(view *View, gen uint64, quizID string, cause error) (domain.ViewState, error) {
	state := domain.ViewState{QuizID: quizID, Status: domain.StatusFailed, Error: cause.Error()}
	if _, err := view.settle(gen, state); err != nil {
		s.logger.Debug("discarded failed summary", zap.String("quiz_id", quizID), zap.Error(err))
		return state, err
	}
	return state, fmt.Errorf("load summary for quiz %q: %w", quizID, cause)
}

func (s *SummaryService) settle(view *View, gen uint64, log *zap.Logger, state domain.ViewState) (domain.ViewState, error) {
	settled, err := view.settle(gen, state)
	if err != nil {
		log.Debug("discarded summary result", zap.String("status", string(state.Status)), zap.Error(err))
	}
	return settled, err
}
