package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/highfieldroadinc-art/fluency-admin/storage"
)

type RunAPI struct {
	runRepo storage.RunRepository
	logger  *slog.Logger
}

func NewRunAPI(runRepo storage.RunRepository, logger *slog.Logger) *RunAPI {
	return &RunAPI{
		runRepo: runRepo,
		logger:  logger,
	}
}

func (a *RunAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rawID, _ := ShiftPath(r.URL.Path)
	if r.Method != http.MethodGet || rawID == "" {
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the run api", r.Method, rawID))
		return
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid run id", err)
		return
	}

	run, err := a.runRepo.Find(r.Context(), id)
	if err != nil {
		Error(w, http.StatusNotFound, "unknown run", err)
		return
	}

	response := struct {
		ID            string `json:"id"`
		Source        string `json:"source"`
		Status        string `json:"status"`
		Stage         string `json:"stage"`
		Error         string `json:"error,omitempty"`
		ContentID     *int64 `json:"content_id,omitempty"`
		QuestionCount int    `json:"question_count"`
	}{
		ID:            run.ID.String(),
		Source:        run.Source,
		Status:        string(run.Status),
		Stage:         run.Stage,
		Error:         run.Error,
		ContentID:     run.ContentID,
		QuestionCount: run.QuestionCount,
	}
	body, err := json.Marshal(response)
	if err != nil {
		a.logger.Error("could not marshal run", err, slog.String("id", rawID))
		Error(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
