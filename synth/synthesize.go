package synth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/highfieldroadinc-art/fluency-admin/model"
)

const (
	// TranscriptPromptLimit bounds the transcript prefix sent to the model so
	// long recordings stay within request-size limits.
	TranscriptPromptLimit = 15000

	// DefaultTitle and DefaultCategory substitute metadata fields the model
	// omitted. The pipeline never blocks on missing metadata.
	DefaultTitle    = "Untitled"
	DefaultCategory = "General"

	// ErrorSentinel marks question fields the model left out, so the number
	// of persisted questions always equals the number it returned.
	ErrorSentinel = "Error"

	wrongOptionCount = 3
	maxStage         = 4
)

const systemPrompt = `You are a database entry bot. Output ONLY valid JSON.`

const promptTemplate = `Analyze this transcript. Output Valid JSON.

REQUIRED JSON STRUCTURE:
{
  "metadata": {
    "title": "Short Descriptive Title",
    "speaker": "Name or Unknown",
    "category": "Broad Category (e.g. Psychology)",
    "sub_category": "Specific Niche (e.g. Behavior)"
  },
  "questions": [
    {
      "stage": 0,
      "q": "Question text?",
      "correct": "Correct Answer",
      "wrong": ["Wrong1", "Wrong2", "Wrong3"]
    }
  ]
}

CRITICAL RULES: Difficulty HARD. Exactly one multiple choice question per stage, stages 0 through 4.

TRANSCRIPT: %s`

// Synthesizer turns a transcript into descriptive metadata and a set of
// assessment questions via a chat completion in JSON mode. The model is
// treated as unreliable input: the response structure is validated, field
// values are taken as opaque strings.
type Synthesizer struct {
	client *openai.Client
}

func NewSynthesizer(client *openai.Client) *Synthesizer {
	return &Synthesizer{client: client}
}

func (s *Synthesizer) Synthesize(ctx context.Context, transcript string) (model.Metadata, []model.Question, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(promptTemplate, transcriptPrefix(transcript)),
			},
		},
	})
	if err != nil {
		return model.Metadata{}, nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.Metadata{}, nil, fmt.Errorf("chat completion returned no choices")
	}

	return decodeResponse([]byte(resp.Choices[0].Message.Content))
}

// transcriptPrefix returns the first TranscriptPromptLimit characters. It
// cuts on a rune boundary, never inside one.
func transcriptPrefix(transcript string) string {
	count := 0
	for i := range transcript {
		if count == TranscriptPromptLimit {
			return transcript[:i]
		}
		count++
	}

	return transcript
}

type synthMetadata struct {
	Title       string `json:"title"`
	Speaker     string `json:"speaker"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
}

type synthQuestion struct {
	Stage   *int     `json:"stage"`
	Q       string   `json:"q"`
	Correct string   `json:"correct"`
	Wrong   []string `json:"wrong"`
}

type synthResponse struct {
	Metadata  *synthMetadata  `json:"metadata"`
	Questions []synthQuestion `json:"questions"`
}

// decodeResponse decodes the model output. Malformed JSON aborts the run, a
// missing metadata object or questions array does not: metadata falls back to
// defaults and questions to an empty set.
func decodeResponse(raw []byte) (model.Metadata, []model.Question, error) {
	var resp synthResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return model.Metadata{}, nil, fmt.Errorf("failed to decode synthesizer response: %w", err)
	}

	meta := model.Metadata{
		Title:    DefaultTitle,
		Category: DefaultCategory,
	}
	if resp.Metadata != nil {
		if resp.Metadata.Title != "" {
			meta.Title = resp.Metadata.Title
		}
		if resp.Metadata.Category != "" {
			meta.Category = resp.Metadata.Category
		}
		meta.Speaker = resp.Metadata.Speaker
		meta.SubCategory = resp.Metadata.SubCategory
	}

	questions := make([]model.Question, 0, len(resp.Questions))
	for _, q := range resp.Questions {
		questions = append(questions, normalizeQuestion(q))
	}

	return meta, questions, nil
}

func normalizeQuestion(q synthQuestion) model.Question {
	stage := 0
	if q.Stage != nil && *q.Stage >= 0 && *q.Stage <= maxStage {
		stage = *q.Stage
	}

	text := q.Q
	if text == "" {
		text = ErrorSentinel
	}
	correct := q.Correct
	if correct == "" {
		correct = ErrorSentinel
	}

	wrong := make([]string, 0, wrongOptionCount)
	for _, w := range q.Wrong {
		if len(wrong) == wrongOptionCount {
			break
		}
		wrong = append(wrong, w)
	}
	for len(wrong) < wrongOptionCount {
		wrong = append(wrong, ErrorSentinel)
	}

	return model.Question{
		Stage:   stage,
		Text:    text,
		Correct: correct,
		Wrong:   wrong,
	}
}
