package redis

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-summary-service/internal/domain"
	"quiz-summary-service/internal/infra/memory"
)

func TestCachedSourceCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	source := &countingSource{Store: memory.NewStore(sampleDefinition())}
	cache := NewCachedSource(newClient(mr), source, time.Minute, time.Minute, nil)
	ctx := context.Background()

	quiz, err := cache.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.CreatorID != "u1" {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	if !mr.Exists("quiz:quiz-1:meta") {
		t.Fatalf("expected meta key to be cached")
	}

	// Second call should hit cache, source not incremented.
	again, _ := cache.GetQuiz(ctx, "quiz-1")
	if source.quizCalls.Load() != 1 {
		t.Fatalf("expected cache hit, source calls=%d", source.quizCalls.Load())
	}
	if again != quiz {
		t.Fatalf("cached quiz differs: %+v vs %+v", again, quiz)
	}

	questions, err := cache.GetQuestions(ctx, "quiz-1")
	if err != nil || len(questions) != 1 || questions[0].Options[1] != "4" {
		t.Fatalf("unexpected questions %+v err=%v", questions, err)
	}
	stats, err := cache.GetStatistics(ctx, "quiz-1")
	if err != nil || len(stats) != 1 || stats[0].CorrectOption != 1 {
		t.Fatalf("unexpected statistics %+v err=%v", stats, err)
	}
}

func TestCachedSourceStatisticsTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	source := &countingSource{Store: memory.NewStore(sampleDefinition())}
	cache := NewCachedSource(newClient(mr), source, time.Hour, time.Second, nil)
	ctx := context.Background()

	_, _ = cache.GetStatistics(ctx, "quiz-1")
	mr.FastForward(2 * time.Second)
	_, _ = cache.GetStatistics(ctx, "quiz-1")
	if source.statsCalls.Load() != 2 {
		t.Fatalf("expected statistics refetch after ttl, got %d", source.statsCalls.Load())
	}

	if err := cache.Invalidate(ctx, "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("quiz:quiz-1:statistics") {
		t.Fatalf("expected statistics key removed")
	}
}

func TestCachedSourceSkipsNotFound(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewCachedSource(newClient(mr), memory.NewStore(), time.Minute, time.Minute, nil)
	if _, err := cache.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists("quiz:missing:meta") {
		t.Fatalf("not found must not be cached")
	}
}

type countingSource struct {
	*memory.Store
	quizCalls  atomic.Int32
	statsCalls atomic.Int32
}

func (s *countingSource) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	s.quizCalls.Add(1)
	return s.Store.GetQuiz(ctx, quizID)
}

func (s *countingSource) GetStatistics(ctx context.Context, quizID string) ([]domain.QuestionStatistics, error) {
	s.statsCalls.Add(1)
	return s.Store.GetStatistics(ctx, quizID)
}

func sampleDefinition() domain.QuizDefinition {
	return domain.QuizDefinition{
		Quiz: domain.Quiz{ID: "quiz-1", Title: "Arithmetic", CreatorID: "u1", NumAttempts: 3},
		Questions: []domain.QuestionDefinition{
			{Question: domain.Question{Text: "What is 2 + 2?", Options: []string{"3", "4"}}, CorrectOption: 1},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
