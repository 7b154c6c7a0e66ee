package handler

import (
	"fmt"
	"io"
	"net/http"

	"golang.org/x/exp/slog"

	"github.com/highfieldroadinc-art/fluency-admin/model"
)

// maxUploadSize bounds how much of an uploaded video is held in memory before
// the pipeline writes it to disk.
const maxUploadSize = 512 << 20

type UploadAPI struct {
	submitter Submitter
	logger    *slog.Logger
}

func NewUploadAPI(submitter Submitter, logger *slog.Logger) *UploadAPI {
	return &UploadAPI{
		submitter: submitter,
		logger:    logger,
	}
}

func (u *UploadAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		Error(w, http.StatusMethodNotAllowed, "method not allowed", fmt.Errorf("method %s is not supported on upload", r.Method))
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		Error(w, http.StatusBadRequest, "could not parse form", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		Error(w, http.StatusBadRequest, "missing file", err)
		return
	}
	defer file.Close()

	title := r.FormValue("title")
	if title == "" {
		Error(w, http.StatusBadRequest, "missing title", fmt.Errorf("title must not be empty"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		Error(w, http.StatusBadRequest, "could not read file", err)
		return
	}

	sub := &model.Submission{
		Data:        data,
		FileName:    header.Filename,
		Title:       title,
		Category:    r.FormValue("category"),
		SubCategory: r.FormValue("sub_category"),
	}
	id, err := u.submitter.Submit(r.Context(), sub)
	if err != nil {
		u.logger.Error("could not submit upload", err, slog.String("file", header.Filename))
		Error(w, http.StatusInternalServerError, "could not submit", err)
		return
	}

	accepted(w, id)
}
