package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return execAll(ctx, db,
				`CREATE TABLE IF NOT EXISTS quiz_attempts (
					id         BIGSERIAL PRIMARY KEY,
					quiz_id    TEXT NOT NULL REFERENCES quizzes (id) ON DELETE CASCADE,
					user_id    TEXT NOT NULL,
					score      INTEGER NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT now()
				)`,
				`CREATE TABLE IF NOT EXISTS quiz_answers (
					attempt_id      BIGINT NOT NULL REFERENCES quiz_attempts (id) ON DELETE CASCADE,
					quiz_id         TEXT NOT NULL,
					position        INTEGER NOT NULL,
					selected_option INTEGER NOT NULL,
					PRIMARY KEY (attempt_id, position),
					FOREIGN KEY (quiz_id, position) REFERENCES quiz_questions (quiz_id, position) ON DELETE CASCADE
				)`,
			)
		},
		func(ctx context.Context, db *bun.DB) error {
			return execAll(ctx, db,
				`DROP TABLE IF EXISTS quiz_answers`,
				`DROP TABLE IF EXISTS quiz_attempts`,
			)
		},
	)
}
