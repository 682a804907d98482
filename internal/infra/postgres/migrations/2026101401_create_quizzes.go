package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return execAll(ctx, db,
				`CREATE TABLE IF NOT EXISTS quizzes (
					id           TEXT PRIMARY KEY,
					title        TEXT NOT NULL,
					description  TEXT NOT NULL DEFAULT '',
					creator_id   TEXT NOT NULL,
					num_attempts INTEGER NOT NULL DEFAULT 0 CHECK (num_attempts >= 0),
					created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
				)`,
				`CREATE INDEX IF NOT EXISTS quizzes_creator_id_idx ON quizzes (creator_id)`,
				`CREATE TABLE IF NOT EXISTS quiz_questions (
					quiz_id        TEXT NOT NULL REFERENCES quizzes (id) ON DELETE CASCADE,
					position       INTEGER NOT NULL,
					text           TEXT NOT NULL,
					options        TEXT[] NOT NULL,
					correct_option INTEGER NOT NULL,
					PRIMARY KEY (quiz_id, position)
				)`,
			)
		},
		func(ctx context.Context, db *bun.DB) error {
			return execAll(ctx, db,
				`DROP TABLE IF EXISTS quiz_questions`,
				`DROP TABLE IF EXISTS quizzes`,
			)
		},
	)
}
