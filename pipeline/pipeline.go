package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/highfieldroadinc-art/fluency-admin/model"
	"github.com/highfieldroadinc-art/fluency-admin/storage"
)

// Stage names the strictly linear states of a run. No stage is ever
// revisited; every non-terminal stage can fall through to aborted.
type Stage string

const (
	StageAcquiring       Stage = "acquiring"
	StageExtractingAudio Stage = "extracting_audio"
	StageTranscribing    Stage = "transcribing"
	StageSynthesizing    Stage = "synthesizing"
	StagePublishing      Stage = "publishing"
	StagePersisting      Stage = "persisting"
	StageDone            Stage = "done"
)

// One error kind per stage. Each wraps the underlying cause and is terminal
// for the run.
var (
	ErrAcquisition   = errors.New("acquisition failed")
	ErrMedia         = errors.New("media processing failed")
	ErrTranscription = errors.New("transcription failed")
	ErrSynthesis     = errors.New("synthesis failed")
	ErrPublish       = errors.New("publish failed")
	ErrPersistence   = errors.New("persistence failed")
)

type Acquirer interface {
	Acquire(ctx context.Context, sub *model.Submission) (videoPath, title string, err error)
}

type AudioExtractor interface {
	ExtractAudio(ctx context.Context, videoPath string) (audioPath string, durationSeconds int, err error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, transcript string) (model.Metadata, []model.Question, error)
}

type Publisher interface {
	Publish(ctx context.Context, videoPath, title string) (url string, err error)
}

// Runner executes submitted items one pipeline run each. Runs are independent
// and only share the backing stores.
type Runner struct {
	in          chan *job
	acquirer    Acquirer
	extractor   AudioExtractor
	transcriber Transcriber
	synthesizer Synthesizer
	publisher   Publisher
	contentRepo storage.ContentRepository
	runRepo     storage.RunRepository
	logger      *slog.Logger
}

type job struct {
	run *model.Run
	sub *model.Submission
}

func NewRunner(acquirer Acquirer, extractor AudioExtractor, transcriber Transcriber, synthesizer Synthesizer, publisher Publisher, contentRepo storage.ContentRepository, runRepo storage.RunRepository, logger *slog.Logger) *Runner {
	return &Runner{
		in:          make(chan *job, 10),
		acquirer:    acquirer,
		extractor:   extractor,
		transcriber: transcriber,
		synthesizer: synthesizer,
		publisher:   publisher,
		contentRepo: contentRepo,
		runRepo:     runRepo,
		logger:      logger,
	}
}

// Submit records a new run and enqueues the submission. It returns as soon as
// the run record exists; processing happens in the background.
func (r *Runner) Submit(ctx context.Context, sub *model.Submission) (uuid.UUID, error) {
	now := time.Now()
	run := &model.Run{
		ID:        uuid.New(),
		Source:    sub.Source(),
		Status:    model.RunStatusRunning,
		Stage:     string(StageAcquiring),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.runRepo.Save(ctx, run); err != nil {
		return uuid.Nil, fmt.Errorf("failed to record run: %w", err)
	}

	r.in <- &job{run: run, sub: sub}

	return run.ID, nil
}

// Run consumes submissions and processes each in its own goroutine.
func (r *Runner) Run() {
	r.logger.Info("started pipeline runner")
	for job := range r.in {
		go r.Process(context.Background(), job.run, job.sub)
	}
}

// Process drives one submission through acquiring, extracting audio,
// transcribing, synthesizing, publishing and persisting. Temporary files are
// removed on every exit path.
func (r *Runner) Process(ctx context.Context, run *model.Run, sub *model.Submission) {
	logger := r.logger.With(slog.String("run", run.ID.String()), slog.String("source", run.Source))
	logger.Info("pipeline started")

	var tempFiles []string
	defer func() {
		for _, path := range tempFiles {
			if err := os.Remove(path); err != nil {
				logger.Error("failed to remove temp file", err, slog.String("path", path))
				continue
			}
			logger.Info("removed temp file", slog.String("path", path))
		}
	}()

	videoPath, sourceTitle, err := r.acquirer.Acquire(ctx, sub)
	if err != nil {
		r.abort(ctx, run, StageAcquiring, ErrAcquisition, err, logger)
		return
	}
	tempFiles = append(tempFiles, videoPath)

	r.enter(ctx, run, StageExtractingAudio, logger)
	audioPath, duration, err := r.extractor.ExtractAudio(ctx, videoPath)
	if err != nil {
		r.abort(ctx, run, StageExtractingAudio, ErrMedia, err, logger)
		return
	}
	tempFiles = append(tempFiles, audioPath)

	r.enter(ctx, run, StageTranscribing, logger)
	transcript, err := r.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		r.abort(ctx, run, StageTranscribing, ErrTranscription, err, logger)
		return
	}

	r.enter(ctx, run, StageSynthesizing, logger)
	meta, questions, err := r.synthesizer.Synthesize(ctx, transcript)
	if err != nil {
		r.abort(ctx, run, StageSynthesizing, ErrSynthesis, err, logger)
		return
	}

	title, category, subCategory := resolveMetadata(sub, meta)
	logger.Info("synthesized content", slog.String("title", title), slog.String("source_title", sourceTitle))

	r.enter(ctx, run, StagePublishing, logger)
	videoURL, err := r.publisher.Publish(ctx, videoPath, title)
	if err != nil {
		r.abort(ctx, run, StagePublishing, ErrPublish, err, logger)
		return
	}

	r.enter(ctx, run, StagePersisting, logger)
	content := &model.Content{
		VideoURL:        videoURL,
		Title:           title,
		TranscriptText:  transcript,
		Category:        category,
		SubCategory:     subCategory,
		DurationSeconds: duration,
	}
	if err := r.contentRepo.Store(ctx, content, questions); err != nil {
		r.abort(ctx, run, StagePersisting, ErrPersistence, err, logger)
		return
	}

	run.Status = model.RunStatusSucceeded
	run.Stage = string(StageDone)
	run.ContentID = &content.ID
	run.QuestionCount = len(questions)
	run.UpdatedAt = time.Now()
	if err := r.runRepo.Save(ctx, run); err != nil {
		logger.Error("failed to update run record", err)
	}

	logger.Info("pipeline complete",
		slog.Int64("content_id", content.ID),
		slog.Int("questions", len(questions)))
}

func (r *Runner) enter(ctx context.Context, run *model.Run, stage Stage, logger *slog.Logger) {
	run.Stage = string(stage)
	run.UpdatedAt = time.Now()
	if err := r.runRepo.Save(ctx, run); err != nil {
		logger.Error("failed to update run record", err, slog.String("stage", string(stage)))
	}
	logger.Info("entering stage", slog.String("stage", string(stage)))
}

func (r *Runner) abort(ctx context.Context, run *model.Run, stage Stage, kind, cause error, logger *slog.Logger) {
	err := fmt.Errorf("%w: %v", kind, cause)
	run.Status = model.RunStatusAborted
	run.Stage = string(stage)
	run.Error = err.Error()
	run.UpdatedAt = time.Now()
	if saveErr := r.runRepo.Save(ctx, run); saveErr != nil {
		logger.Error("failed to update run record", saveErr)
	}

	logger.Error("pipeline aborted", err, slog.String("stage", string(stage)))
}

// resolveMetadata picks the final title, category and sub-category: operator
// hints win, synthesized metadata (already carrying the documented defaults)
// fills the gaps. Category and sub-category stay separate columns.
func resolveMetadata(sub *model.Submission, meta model.Metadata) (string, string, *string) {
	title := sub.Title
	if title == "" {
		title = meta.Title
	}

	category := sub.Category
	if category == "" {
		category = meta.Category
	}

	subCat := sub.SubCategory
	if subCat == "" {
		subCat = meta.SubCategory
	}
	var subCategory *string
	if subCat != "" {
		subCategory = &subCat
	}

	return title, category, subCategory
}
