package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"quiz-summary-service/internal/app"
	"quiz-summary-service/internal/domain"
)

// CachedSource caches quiz reads in Redis as JSON and falls back to the wrapped source on miss.
// Keys:
//
//	quiz:{quizID}:meta        domain.Quiz
//	quiz:{quizID}:questions   []domain.Question
//	quiz:{quizID}:statistics  []domain.QuestionStatistics
//
// Redis errors degrade to a direct read from the source.
type CachedSource struct {
	client   *redis.Client
	source   app.QuizSource
	ttl      time.Duration
	statsTTL time.Duration
	logger   *zap.Logger
	sf       singleflight.Group
}

func NewCachedSource(client *redis.Client, source app.QuizSource, ttl, statsTTL time.Duration, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{
		client:   client,
		source:   source,
		ttl:      ttl,
		statsTTL: statsTTL,
		logger:   logger,
	}
}

func (c *CachedSource) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return cached(ctx, c, metaKey(quizID), c.ttl, func() (domain.Quiz, error) {
		return c.source.GetQuiz(ctx, quizID)
	})
}

func (c *CachedSource) GetQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	return cached(ctx, c, questionsKey(quizID), c.ttl, func() ([]domain.Question, error) {
		return c.source.GetQuestions(ctx, quizID)
	})
}

func (c *CachedSource) GetStatistics(ctx context.Context, quizID string) ([]domain.QuestionStatistics, error) {
	return cached(ctx, c, statisticsKey(quizID), c.statsTTL, func() ([]domain.QuestionStatistics, error) {
		return c.source.GetStatistics(ctx, quizID)
	})
}

// Invalidate drops every cached read of quizID.
func (c *CachedSource) Invalidate(ctx context.Context, quizID string) error {
	return c.client.Del(ctx, metaKey(quizID), questionsKey(quizID), statisticsKey(quizID)).Err()
}

func cached[T any](ctx context.Context, c *CachedSource, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if ttl <= 0 {
		return load()
	}
	if v, ok := readCache[T](ctx, c, key); ok {
		return v, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if v, ok := readCache[T](ctx, c, key); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return v, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return v, nil
		}
		if err := c.client.Set(ctx, key, raw, withJitter(ttl)).Err(); err != nil {
			c.logger.Warn("quiz cache write failed", zap.String("key", key), zap.Error(err))
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

func readCache[T any](ctx context.Context, c *CachedSource, key string) (T, bool) {
	var v T
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("quiz cache read failed", zap.String("key", key), zap.Error(err))
		}
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.Warn("quiz cache entry corrupt", zap.String("key", key), zap.Error(err))
		return v, false
	}
	return v, true
}

func metaKey(quizID string) string {
	return "quiz:" + quizID + ":meta"
}

func questionsKey(quizID string) string {
	return "quiz:" + quizID + ":questions"
}

func statisticsKey(quizID string) string {
	return "quiz:" + quizID + ":statistics"
}

func withJitter(ttl time.Duration) time.Duration {
	jitterMax := int64(ttl) / 10
	return ttl + time.Duration(rand.Int64N(jitterMax+1))
}
