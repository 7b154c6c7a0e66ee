package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// MinDuration guards against downloads that produced an interstitial page or
// an otherwise truncated capture instead of real content.
const MinDuration = 5 * time.Second

var ErrTooShort = errors.New("video too short")

// Extractor demuxes the audio track of a video file into an mp3 using the
// ffmpeg and ffprobe binaries.
type Extractor struct {
	ffmpeg  string
	ffprobe string
}

func NewExtractor() *Extractor {
	return &Extractor{
		ffmpeg:  "ffmpeg",
		ffprobe: "ffprobe",
	}
}

// ExtractAudio writes the audio track of videoPath to a sibling mp3 file and
// returns its path together with the integer-truncated duration in seconds.
func (e *Extractor) ExtractAudio(ctx context.Context, videoPath string) (string, int, error) {
	duration, err := e.probeDuration(ctx, videoPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to probe duration: %w", err)
	}
	if duration < MinDuration {
		return "", 0, fmt.Errorf("%w: %.1fs", ErrTooShort, duration.Seconds())
	}

	audioPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".mp3"
	cmd := exec.CommandContext(ctx, e.ffmpeg, "-y", "-i", videoPath, "-vn", "-q:a", "2", audioPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(audioPath) // do not leave a partially written track behind
		return "", 0, fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return audioPath, int(duration.Seconds()), nil
}

func (e *Extractor) probeDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, e.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseDuration(string(out))
}

func parseDuration(out string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse ffprobe duration %q: %w", strings.TrimSpace(out), err)
	}

	return time.Duration(secs * float64(time.Second)), nil
}
