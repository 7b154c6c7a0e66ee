package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/highfieldroadinc-art/fluency-admin/model"
)

type ContentRepository interface {
	// Store inserts the content record and its questions atomically. The
	// content insert runs first so the questions can reference its id.
	Store(ctx context.Context, content *model.Content, questions []model.Question) error
	FindAll(ctx context.Context) ([]*model.Content, error)
}

type RunRepository interface {
	Save(ctx context.Context, run *model.Run) error
	Find(ctx context.Context, id uuid.UUID) (*model.Run, error)
}
