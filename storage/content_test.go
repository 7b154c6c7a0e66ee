package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/highfieldroadinc-art/fluency-admin/model"
)

func setupContentRepository(t *testing.T) (*PostgresContentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPostgresContentRepository(db), mock
}

func testContent() *model.Content {
	return &model.Content{
		VideoURL:        "https://storage.googleapis.com/videos/Gravity.mp4",
		Title:           "Gravity",
		TranscriptText:  "This is a valid transcript about gravity and motion in classical mechanics.",
		Category:        "Science",
		DurationSeconds: 30,
	}
}

func TestContentRepositoryStore(t *testing.T) {
	t.Run("content insert precedes question inserts", func(t *testing.T) {
		repo, mock := setupContentRepository(t)
		content := testContent()
		questions := []model.Question{
			{Stage: 0, Text: "Q0?", Correct: "A0", Wrong: []string{"a", "b", "c"}},
			{Stage: 1, Text: "Q1?", Correct: "A1", Wrong: []string{"d", "e", "f"}},
		}

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO content_library`).
			WithArgs(content.VideoURL, content.Title, content.TranscriptText, content.Category, nil, content.DurationSeconds).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
		mock.ExpectExec(`INSERT INTO questions`).
			WithArgs(int64(42), 0, "Q0?", "A0", pq.Array([]string{"a", "b", "c"})).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO questions`).
			WithArgs(int64(42), 1, "Q1?", "A1", pq.Array([]string{"d", "e", "f"})).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Store(context.Background(), content, questions)
		require.NoError(t, err)
		assert.Equal(t, int64(42), content.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero questions still commits the content record", func(t *testing.T) {
		repo, mock := setupContentRepository(t)
		content := testContent()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO content_library`).
			WithArgs(content.VideoURL, content.Title, content.TranscriptText, content.Category, nil, content.DurationSeconds).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
		mock.ExpectCommit()

		err := repo.Store(context.Background(), content, nil)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("question failure rolls back the content insert", func(t *testing.T) {
		repo, mock := setupContentRepository(t)
		content := testContent()
		questions := []model.Question{
			{Stage: 0, Text: "Q0?", Correct: "A0", Wrong: []string{"a", "b", "c"}},
		}

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO content_library`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
		mock.ExpectExec(`INSERT INTO questions`).
			WillReturnError(errors.New("constraint violation"))
		mock.ExpectRollback()

		err := repo.Store(context.Background(), content, questions)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("content failure aborts before questions", func(t *testing.T) {
		repo, mock := setupContentRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO content_library`).
			WillReturnError(errors.New("connection lost"))
		mock.ExpectRollback()

		err := repo.Store(context.Background(), testContent(), []model.Question{
			{Stage: 0, Text: "Q0?", Correct: "A0", Wrong: []string{"a", "b", "c"}},
		})
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContentRepositoryFindAll(t *testing.T) {
	repo, mock := setupContentRepository(t)

	subCat := "Physics"
	mock.ExpectQuery(`SELECT id, video_url, title, category, sub_category, duration_seconds`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "video_url", "title", "category", "sub_category", "duration_seconds"}).
			AddRow(int64(1), "https://storage.googleapis.com/videos/A.mp4", "A", "Science", subCat, 30).
			AddRow(int64(2), "https://storage.googleapis.com/videos/B.mp4", "B", "General", nil, 90))

	contents, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, contents, 2)
	assert.Equal(t, "A", contents[0].Title)
	require.NotNil(t, contents[0].SubCategory)
	assert.Equal(t, "Physics", *contents[0].SubCategory)
	assert.Nil(t, contents[1].SubCategory)
	assert.NoError(t, mock.ExpectationsWereMet())
}
