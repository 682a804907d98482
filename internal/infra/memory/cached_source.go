package memory

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-summary-service/internal/app"
	"quiz-summary-service/internal/domain"
)

// CachedSource caches quiz reads with TTL to avoid repeated backing store hits.
// Statistics use their own, usually shorter, TTL since attempts keep changing them.
type CachedSource struct {
	source   app.QuizSource
	ttl      time.Duration
	statsTTL time.Duration
	clock    func() time.Time
	sf       singleflight.Group

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

func NewCachedSource(source app.QuizSource, ttl, statsTTL time.Duration) *CachedSource {
	return &CachedSource{
		source:   source,
		ttl:      ttl,
		statsTTL: statsTTL,
		clock:    time.Now,
		cache:    make(map[string]cacheEntry),
	}
}

func (c *CachedSource) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return cached(c, "meta:"+quizID, c.ttl, func() (domain.Quiz, error) {
		return c.source.GetQuiz(ctx, quizID)
	})
}

func (c *CachedSource) GetQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	return cached(c, "questions:"+quizID, c.ttl, func() ([]domain.Question, error) {
		return c.source.GetQuestions(ctx, quizID)
	})
}

func (c *CachedSource) GetStatistics(ctx context.Context, quizID string) ([]domain.QuestionStatistics, error) {
	return cached(c, "statistics:"+quizID, c.statsTTL, func() ([]domain.QuestionStatistics, error) {
		return c.source.GetStatistics(ctx, quizID)
	})
}

// Invalidate drops every cached read of quizID.
func (c *CachedSource) Invalidate(_ context.Context, quizID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, "meta:"+quizID)
	delete(c.cache, "questions:"+quizID)
	delete(c.cache, "statistics:"+quizID)
	return nil
}

func cached[T any](c *CachedSource, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if ttl <= 0 {
		return load()
	}
	if v, ok := c.lookup(key); ok {
		return v.(T), nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		c.cache[key] = cacheEntry{value: v, expiresAt: c.clock().Add(withJitter(ttl))}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

func (c *CachedSource) lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[key]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return entry.value, true
}

// withJitter adds up to 10% to spread expirations.
func withJitter(ttl time.Duration) time.Duration {
	jitterMax := int64(ttl) / 10
	return ttl + time.Duration(rand.Int64N(jitterMax+1))
}
