package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore publishes video files to a Google Cloud Storage bucket. Writing an
// existing key overwrites it, which gives re-published titles upsert
// semantics instead of duplicates.
type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSStore, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: bucket,
	}, nil
}

// Publish uploads the video under a key derived from the title and returns
// its public address.
func (s *GCSStore) Publish(ctx context.Context, videoPath, title string) (string, error) {
	key := ObjectKey(title)

	f, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open video: %w", err)
	}
	defer f.Close()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "video/mp4"
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload video: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key), nil
}

// ObjectKey derives a storage key from a display title: everything but
// letters, digits, spaces, hyphens and underscores is stripped, spaces become
// underscores. The derivation is deterministic, so equal titles map to the
// same key.
func ObjectKey(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}

	key := strings.ReplaceAll(b.String(), " ", "_")
	if key == "" {
		key = "Video"
	}

	return key + ".mp4"
}
