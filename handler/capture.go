package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/highfieldroadinc-art/fluency-admin/model"
)

// Submitter accepts a submission for asynchronous processing and returns the
// id under which its run status can be queried.
type Submitter interface {
	Submit(ctx context.Context, sub *model.Submission) (uuid.UUID, error)
}

type CaptureAPI struct {
	submitter Submitter
	logger    *slog.Logger
}

func NewCaptureAPI(submitter Submitter, logger *slog.Logger) *CaptureAPI {
	return &CaptureAPI{
		submitter: submitter,
		logger:    logger,
	}
}

func (c *CaptureAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		Error(w, http.StatusMethodNotAllowed, "method not allowed", fmt.Errorf("method %s is not supported on capture", r.Method))
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "could not decode request", err)
		return
	}
	if req.URL == "" {
		Error(w, http.StatusBadRequest, "missing url", fmt.Errorf("url must not be empty"))
		return
	}

	id, err := c.submitter.Submit(r.Context(), &model.Submission{URL: req.URL})
	if err != nil {
		c.logger.Error("could not submit capture", err, slog.String("url", req.URL))
		Error(w, http.StatusInternalServerError, "could not submit", err)
		return
	}

	accepted(w, id)
}

func accepted(w http.ResponseWriter, id uuid.UUID) {
	w.WriteHeader(http.StatusAccepted)
	response := struct {
		Status  string `json:"status"`
		RunID   string `json:"run_id"`
		Message string `json:"message"`
	}{
		Status:  "processing",
		RunID:   id.String(),
		Message: "Fluency is curating this video...",
	}
	body, err := json.Marshal(response)
	if err != nil {
		fmt.Fprintf(w, `{"status": "processing", "run_id": %q}`, id.String())
		return
	}
	w.Write(body)
}
