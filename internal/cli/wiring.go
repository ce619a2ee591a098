package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"quiz-runner/internal/app"
	"quiz-runner/internal/config"
	"quiz-runner/internal/infra/file"
	"quiz-runner/internal/infra/memory"
	pgloader "quiz-runner/internal/infra/postgres"
	redisstore "quiz-runner/internal/infra/redis"
)

// backends holds the storage chosen from config and how to release it.
type backends struct {
	loader   memory.QuizLoader
	quizzes  app.QuizRepository
	sessions app.SessionRepository
	closers  []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// newLoader picks the question source: Postgres, then a YAML bank, then the built-in quiz.
func newLoader(ctx context.Context, cfg config.Config) (memory.QuizLoader, func(), error) {
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info().Msg("loading quizzes from postgres")
		return pgloader.NewQuizLoader(pool), pool.Close, nil
	case cfg.Quiz.QuestionsPath != "":
		loader, err := file.NewQuizLoader(cfg.Quiz.QuestionsPath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.Quiz.QuestionsPath).Msg("loading quizzes from question bank")
		return loader, func() {}, nil
	default:
		return memory.NewStaticQuizLoader(memory.DefaultQuizzes()), func() {}, nil
	}
}

func newBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	loader, closeLoader, err := newLoader(ctx, cfg)
	if err != nil {
		return nil, err
	}
	b := &backends{loader: loader, closers: []func(){closeLoader}}

	if cfg.Redis.Addr == "" {
		b.quizzes = memory.NewQuizRepository(loader, cfg.Quiz.CacheTTL)
		b.sessions = memory.NewSessionStore()
		return b, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		b.Close()
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	b.closers = append(b.closers, func() { _ = client.Close() })
	b.quizzes = redisstore.NewQuizRepository(client, loader, cfg.Quiz.CacheTTL)
	b.sessions = redisstore.NewSessionStore(client, cfg.Redis.TTL)
	return b, nil
}
