package model

// Submission is the ephemeral input to a single pipeline run. Exactly one of
// URL or Data is set. Title, Category and SubCategory are optional operator
// hints that take precedence over synthesized metadata.
type Submission struct {
	URL      string
	Data     []byte
	FileName string

	Title       string
	Category    string
	SubCategory string
}

// Source identifies the submission in logs and run records.
func (s *Submission) Source() string {
	if s.URL != "" {
		return s.URL
	}
	return s.FileName
}

type Metadata struct {
	Title       string
	Speaker     string
	Category    string
	SubCategory string
}

// Question is one synthesized assessment question. Stage is always in [0,4]
// and Wrong always holds exactly three options after normalization.
type Question struct {
	Stage   int
	Text    string
	Correct string
	Wrong   []string
}

type Content struct {
	ID              int64
	VideoURL        string
	Title           string
	TranscriptText  string
	Category        string
	SubCategory     *string
	DurationSeconds int
}
