package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/exp/slog"

	"github.com/highfieldroadinc-art/fluency-admin/storage"
)

type ContentAPI struct {
	contentRepo storage.ContentRepository
	logger      *slog.Logger
}

func NewContentAPI(contentRepo storage.ContentRepository, logger *slog.Logger) *ContentAPI {
	return &ContentAPI{
		contentRepo: contentRepo,
		logger:      logger,
	}
}

func (c *ContentAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Error(w, http.StatusMethodNotAllowed, "method not allowed", fmt.Errorf("method %s is not supported on content", r.Method))
		return
	}

	contents, err := c.contentRepo.FindAll(r.Context())
	if err != nil {
		c.logger.Error("could not list content", err)
		Error(w, http.StatusInternalServerError, "could not list content", err)
		return
	}

	type respContent struct {
		ID              int64   `json:"id"`
		VideoURL        string  `json:"video_url"`
		Title           string  `json:"title"`
		Category        string  `json:"category"`
		SubCategory     *string `json:"sub_category"`
		DurationSeconds int     `json:"duration_seconds"`
	}
	resp := []respContent{}
	for _, content := range contents {
		resp = append(resp, respContent{
			ID:              content.ID,
			VideoURL:        content.VideoURL,
			Title:           content.Title,
			Category:        content.Category,
			SubCategory:     content.SubCategory,
			DurationSeconds: content.DurationSeconds,
		})
	}

	body, err := json.Marshal(resp)
	if err != nil {
		Error(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
