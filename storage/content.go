package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/highfieldroadinc-art/fluency-admin/model"
)

type PostgresContentRepository struct {
	db *sql.DB
}

func NewPostgresContentRepository(db *sql.DB) *PostgresContentRepository {
	return &PostgresContentRepository{db: db}
}

// Store wraps the content insert and its question inserts in one transaction,
// so a failure halfway never leaves a content record without its questions.
// The assigned id is written back to content.ID.
func (r *PostgresContentRepository) Store(ctx context.Context, content *model.Content, questions []model.Question) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `INSERT INTO content_library
(video_url, title, transcript_text, category, sub_category, duration_seconds)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`,
		content.VideoURL, content.Title, content.TranscriptText,
		content.Category, content.SubCategory, content.DurationSeconds)
	if err := row.Scan(&content.ID); err != nil {
		return fmt.Errorf("failed to insert content: %w", err)
	}

	for _, q := range questions {
		if _, err := tx.ExecContext(ctx, `INSERT INTO questions
(video_id, difficulty_phase, question_text, correct_answer, wrong_options)
VALUES ($1, $2, $3, $4, $5)`,
			content.ID, q.Stage, q.Text, q.Correct, pq.Array(q.Wrong)); err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *PostgresContentRepository) FindAll(ctx context.Context) ([]*model.Content, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, video_url, title, category, sub_category, duration_seconds
FROM content_library
ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}
	defer rows.Close()

	contents := []*model.Content{}
	for rows.Next() {
		content := &model.Content{}
		if err := rows.Scan(&content.ID, &content.VideoURL, &content.Title,
			&content.Category, &content.SubCategory, &content.DurationSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read content rows: %w", err)
	}

	return contents, nil
}
