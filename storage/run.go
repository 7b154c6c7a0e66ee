package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/highfieldroadinc-art/fluency-admin/model"
)

type PostgresRunRepository struct {
	db *sql.DB
}

func NewPostgresRunRepository(db *sql.DB) *PostgresRunRepository {
	return &PostgresRunRepository{db: db}
}

func (r *PostgresRunRepository) Save(ctx context.Context, run *model.Run) error {
	if _, err := r.db.ExecContext(ctx, `INSERT INTO pipeline_runs
(run_id, source, status, stage, error, content_id, question_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (run_id) DO UPDATE SET
status = EXCLUDED.status,
stage = EXCLUDED.stage,
error = EXCLUDED.error,
content_id = EXCLUDED.content_id,
question_count = EXCLUDED.question_count,
updated_at = EXCLUDED.updated_at`,
		run.ID, run.Source, run.Status, run.Stage, run.Error,
		run.ContentID, run.QuestionCount, run.CreatedAt, run.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

func (r *PostgresRunRepository) Find(ctx context.Context, id uuid.UUID) (*model.Run, error) {
	run := &model.Run{}
	row := r.db.QueryRowContext(ctx, `SELECT run_id, source, status, stage, error, content_id, question_count, created_at, updated_at
FROM pipeline_runs
WHERE run_id = $1`, id)
	if err := row.Scan(&run.ID, &run.Source, &run.Status, &run.Stage, &run.Error,
		&run.ContentID, &run.QuestionCount, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to find run: %w", err)
	}

	return run, nil
}
