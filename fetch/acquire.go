package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/highfieldroadinc-art/fluency-admin/model"
)

// bestFormat prefers a combined mp4 video + m4a audio stream and falls back
// to the best single combined stream.
const bestFormat = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"

// Acquirer materializes a submission as a local video file. Remote locators
// are resolved with yt-dlp, uploads are written verbatim to a temp file.
type Acquirer struct {
	bin     string
	workDir string
	logger  *slog.Logger
}

func NewAcquirer(workDir string, logger *slog.Logger) *Acquirer {
	return &Acquirer{
		bin:     "yt-dlp",
		workDir: workDir,
		logger:  logger,
	}
}

// Acquire returns the path of the downloaded or saved video file and a
// best-effort source title.
func (a *Acquirer) Acquire(ctx context.Context, sub *model.Submission) (string, string, error) {
	if sub.URL != "" {
		return a.download(ctx, sub.URL)
	}
	return a.saveUpload(sub)
}

// downloadInfo is the subset of the yt-dlp JSON output we need. The output
// file is named after the source-assigned id, so concurrent runs never share
// a path.
type downloadInfo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Filename string `json:"_filename"`
}

func (a *Acquirer) download(ctx context.Context, url string) (string, string, error) {
	a.logger.Info("downloading video", slog.String("url", url))

	outTmpl := filepath.Join(a.workDir, "temp_%(id)s.%(ext)s")
	cmd := exec.CommandContext(ctx, a.bin,
		"--no-playlist",
		"--quiet",
		"--print-json",
		"-f", bestFormat,
		"-o", outTmpl,
		url)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", "", fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var info downloadInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return "", "", fmt.Errorf("failed to decode yt-dlp output: %w", err)
	}
	if info.Filename == "" {
		return "", "", fmt.Errorf("yt-dlp reported no output file for %s", url)
	}

	title := info.Title
	if title == "" {
		title = "Unknown"
	}

	a.logger.Info("downloaded video", slog.String("url", url), slog.String("path", info.Filename))

	return info.Filename, title, nil
}

func (a *Acquirer) saveUpload(sub *model.Submission) (string, string, error) {
	path := filepath.Join(a.workDir, fmt.Sprintf("upload_%s.mp4", uuid.New()))
	if err := os.WriteFile(path, sub.Data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to save upload: %w", err)
	}

	title := sub.Title
	if title == "" {
		title = strings.TrimSuffix(sub.FileName, filepath.Ext(sub.FileName))
	}

	a.logger.Info("saved upload", slog.String("file", sub.FileName), slog.String("path", path))

	return path, title, nil
}
