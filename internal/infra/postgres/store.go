package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-summary-service/internal/domain"
)

// Store reads quizzes and derives answer statistics from Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func (s *Store) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return getQuiz(ctx, s.pool, quizID)
}

func getQuiz(ctx context.Context, q querier, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := q.QueryRow(ctx,
		`SELECT id, title, description, creator_id, num_attempts FROM quizzes WHERE id=$1`, quizID,
	).Scan(&quiz.ID, &quiz.Title, &quiz.Description, &quiz.CreatorID, &quiz.NumAttempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return quiz, nil
}

func (s *Store) GetQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	defs, err := getQuestionDefinitions(ctx, s.pool, quizID)
	if err != nil {
		return nil, err
	}
	questions := make([]domain.Question, len(defs))
	for i, d := range defs {
		questions[i] = d.Question
	}
	return questions, nil
}

func getQuestionDefinitions(ctx context.Context, q querier, quizID string) ([]domain.QuestionDefinition, error) {
	rows, err := q.Query(ctx,
		`SELECT text, options, correct_option FROM quiz_questions WHERE quiz_id=$1 ORDER BY position`, quizID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var defs []domain.QuestionDefinition
	for rows.Next() {
		var d domain.QuestionDefinition
		if err := rows.Scan(&d.Text, &d.Options, &d.CorrectOption); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(defs) == 0 {
		if err := requireQuiz(ctx, q, quizID); err != nil {
			return nil, err
		}
		return []domain.QuestionDefinition{}, nil
	}
	return defs, nil
}

// GetStatistics counts answers per option and converts them to percentages.
func (s *Store) GetStatistics(ctx context.Context, quizID string) ([]domain.QuestionStatistics, error) {
	defs, err := getQuestionDefinitions(ctx, s.pool, quizID)
	if err != nil {
		return nil, err
	}

	counts := make([][]int, len(defs))
	for i, d := range defs {
		counts[i] = make([]int, len(d.Options))
	}

	rows, err := s.pool.Query(ctx,
		`SELECT position, selected_option, COUNT(*) FROM quiz_answers WHERE quiz_id=$1 GROUP BY position, selected_option`, quizID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var position, selected, n int
		if err := rows.Scan(&position, &selected, &n); err != nil {
			return nil, fmt.Errorf("scan answers: %w", err)
		}
		if position < 0 || position >= len(counts) || selected < 0 || selected >= len(counts[position]) {
			continue
		}
		counts[position][selected] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}

	stats := make([]domain.QuestionStatistics, len(defs))
	for i, d := range defs {
		stats[i] = domain.NewQuestionStatistics(d.CorrectOption, counts[i])
	}
	return stats, nil
}

// SubmitAttempt scores and stores an attempt with its answers and bumps the attempt counter.
func (s *Store) SubmitAttempt(ctx context.Context, quizID, userID string, selected []int) (domain.Attempt, error) {
	var attempt domain.Attempt
	err := s.withinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		quiz, err := getQuiz(ctx, tx, quizID)
		if err != nil {
			return err
		}
		questions, err := getQuestionDefinitions(ctx, tx, quizID)
		if err != nil {
			return err
		}
		score, err := domain.ScoreAttempt(domain.QuizDefinition{Quiz: quiz, Questions: questions}, selected)
		if err != nil {
			return err
		}

		var id int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO quiz_attempts (quiz_id, user_id, score) VALUES ($1, $2, $3) RETURNING id`,
			quizID, userID, score,
		).Scan(&id); err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}

		options := make([]int32, len(selected))
		for i, opt := range selected {
			options[i] = int32(opt)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO quiz_answers (attempt_id, quiz_id, position, selected_option)
			 SELECT $1, $2, t.ord - 1, t.opt FROM unnest($3::int[]) WITH ORDINALITY AS t(opt, ord)`,
			id, quizID, options,
		); err != nil {
			return fmt.Errorf("insert answers: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE quizzes SET num_attempts = num_attempts + 1 WHERE id=$1`, quizID); err != nil {
			return fmt.Errorf("count attempt: %w", err)
		}

		attempt = domain.Attempt{
			ID:       strconv.FormatInt(id, 10),
			QuizID:   quizID,
			UserID:   userID,
			Selected: append([]int(nil), selected...),
			Score:    score,
		}
		return nil
	})
	return attempt, err
}

// CreateQuiz upserts a quiz and replaces its questions. Replacing questions drops their answers.
func (s *Store) CreateQuiz(ctx context.Context, def domain.QuizDefinition) error {
	return s.withinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		q := def.Quiz
		if _, err := tx.Exec(ctx,
			`INSERT INTO quizzes (id, title, description, creator_id, num_attempts) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
			 creator_id=EXCLUDED.creator_id, num_attempts=EXCLUDED.num_attempts`,
			q.ID, q.Title, q.Description, q.CreatorID, q.NumAttempts,
		); err != nil {
			return fmt.Errorf("upsert quiz: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM quiz_questions WHERE quiz_id=$1`, q.ID); err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}
		for i, question := range def.Questions {
			if _, err := tx.Exec(ctx,
				`INSERT INTO quiz_questions (quiz_id, position, text, options, correct_option) VALUES ($1, $2, $3, $4, $5)`,
				q.ID, i, question.Text, question.Options, question.CorrectOption,
			); err != nil {
				return fmt.Errorf("insert question %d: %w", i+1, err)
			}
		}
		return nil
	})
}

func (s *Store) withinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func requireQuiz(ctx context.Context, q querier, quizID string) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quizzes WHERE id=$1)`, quizID).Scan(&exists); err != nil {
		return fmt.Errorf("check quiz: %w", err)
	}
	if !exists {
		return domain.ErrQuizNotFound
	}
	return nil
}
