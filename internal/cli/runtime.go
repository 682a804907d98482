package cli

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"quiz-summary-service/internal/app"
	"quiz-summary-service/internal/config"
	"quiz-summary-service/internal/domain"
	"quiz-summary-service/internal/infra/memory"
	"quiz-summary-service/internal/infra/postgres"
	"quiz-summary-service/internal/infra/quizapi"
	rediscache "quiz-summary-service/internal/infra/redis"
)

// runtime holds the wired components shared by start and the one-shot commands.
type runtime struct {
	cfg      config.Config
	source   app.QuizSource
	recorder app.AttemptRecorder
	sessions app.SessionStore
	service  *app.SummaryService
	closers  []func()
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

func buildRuntime(ctx context.Context, cfg config.Config, logger *zap.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { _ = redisClient.Close() })
	}

	var origin app.QuizSource
	switch {
	case cfg.Upstream.BaseURL != "":
		timeout := config.TTLDuration(cfg.Upstream.Timeout, 5*time.Second)
		origin = quizapi.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Token, &http.Client{Timeout: timeout})
		logger.Info("reading quizzes from upstream api", zap.String("base_url", cfg.Upstream.BaseURL))
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			rt.Close()
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, pool.Close)
		store := postgres.NewStore(pool)
		origin, rt.recorder = store, store
		logger.Info("reading quizzes from postgres")
	default:
		defs, err := seedDefinitions(cfg.Quiz.SeedFile)
		if err != nil {
			rt.Close()
			return nil, err
		}
		store := memory.NewStore(defs...)
		origin, rt.recorder = store, store
		logger.Info("serving in-memory quizzes", zap.Int("quizzes", len(defs)))
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	statsTTL := config.TTLDuration(cfg.Quiz.StatisticsTTL, 30*time.Second)
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 72*time.Hour)

	if redisClient != nil {
		rt.source = rediscache.NewCachedSource(redisClient, origin, quizTTL, statsTTL, logger)
		sessions := rediscache.NewSessionStore(redisClient, sessionTTL)
		if err := sessions.Seed(ctx, cfg.Auth.Tokens); err != nil {
			rt.Close()
			return nil, err
		}
		rt.sessions = sessions
	} else {
		rt.source = memory.NewCachedSource(origin, quizTTL, statsTTL)
		sessions := memory.NewSessionStore(sessionTTL)
		sessions.Seed(cfg.Auth.Tokens)
		rt.sessions = sessions
	}

	rt.service = app.NewSummaryService(rt.source, cfg.Server.PublicOrigin, logger)
	return rt, nil
}

// seedDefinitions reads quiz definitions from a YAML file, falling back to a
// single built-in quiz when no file is configured or present.
func seedDefinitions(path string) ([]domain.QuizDefinition, error) {
	if path != "" {
		defs, err := readDefinitions(path)
		if err == nil {
			return defs, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return []domain.QuizDefinition{{
		Quiz: domain.Quiz{ID: "quiz-1", Title: "Arithmetic basics", CreatorID: "u1"},
		Questions: []domain.QuestionDefinition{
			{Question: domain.Question{Text: "What is 2 + 2?", Options: []string{"3", "4", "5"}}, CorrectOption: 1},
		},
	}}, nil
}

func readDefinitions(path string) ([]domain.QuizDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var defs []domain.QuizDefinition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}
