package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/highfieldroadinc-art/fluency-admin/model"
)

func TestRunRepositorySave(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRunRepository(db)

	now := time.Now()
	run := &model.Run{
		ID:        uuid.New(),
		Source:    "https://example.com/watch?v=abc",
		Status:    model.RunStatusRunning,
		Stage:     "acquiring",
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec(`INSERT INTO pipeline_runs`).
		WithArgs(run.ID, run.Source, run.Status, run.Stage, "", nil, 0, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryFind(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRunRepository(db)

	id := uuid.New()
	now := time.Now()
	contentID := int64(42)
	mock.ExpectQuery(`SELECT run_id, source, status, stage, error, content_id, question_count`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"run_id", "source", "status", "stage", "error", "content_id", "question_count", "created_at", "updated_at"}).
			AddRow(id.String(), "upload.mp4", "succeeded", "done", "", contentID, 5, now, now))

	run, err := repo.Find(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.Equal(t, model.RunStatusSucceeded, run.Status)
	assert.Equal(t, "done", run.Stage)
	require.NotNil(t, run.ContentID)
	assert.Equal(t, contentID, *run.ContentID)
	assert.Equal(t, 5, run.QuestionCount)

	t.Run("unknown id", func(t *testing.T) {
		unknown := uuid.New()
		mock.ExpectQuery(`SELECT run_id, source, status, stage, error, content_id, question_count`).
			WithArgs(unknown).
			WillReturnRows(sqlmock.NewRows([]string{"run_id", "source", "status", "stage", "error", "content_id", "question_count", "created_at", "updated_at"}))

		_, err := repo.Find(context.Background(), unknown)
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
