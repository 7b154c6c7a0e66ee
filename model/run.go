package model

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusAborted   RunStatus = "aborted"
)

// Run is the durable status record of one pipeline run, written on submission
// and updated on every stage transition so failures stay queryable after the
// trigger request has returned.
type Run struct {
	ID            uuid.UUID
	Source        string
	Status        RunStatus
	Stage         string
	Error         string
	ContentID     *int64
	QuestionCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
