package synth

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
)

// MinTranscriptChars is the shortest transcript worth processing. Anything
// below it means silence, a wrong audio track or an unsupported language.
const MinTranscriptChars = 20

var ErrTranscriptTooShort = errors.New("transcript too short")

type Transcriber struct {
	client *openai.Client
}

func NewTranscriber(client *openai.Client) *Transcriber {
	return &Transcriber{client: client}
}

// Transcribe submits the audio file to Whisper and returns the plain text
// transcription verbatim.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create transcription: %w", err)
	}

	if err := checkTranscript(resp.Text); err != nil {
		return "", err
	}

	return resp.Text, nil
}

func checkTranscript(text string) error {
	// characters, not bytes, so multibyte scripts are not over-counted
	if utf8.RuneCountInString(text) < MinTranscriptChars {
		return fmt.Errorf("%w: %q", ErrTranscriptTooShort, text)
	}

	return nil
}
