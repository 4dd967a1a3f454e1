package extract

import (
	"encoding/json"
	"strings"
)

// Metadata is supplied by the caller and copied onto every record.
type Metadata struct {
	Category string `json:"category" yaml:"category"`
	Duration int    `json:"duration,omitempty" yaml:"duration"`
	Subject  string `json:"subject,omitempty" yaml:"subject"`
}

// Tag is the value stored in subject_or_duration: the subject when one is
// set, otherwise the duration.
func (m Metadata) Tag() any {
	if s := strings.TrimSpace(m.Subject); s != "" {
		return s
	}
	return m.Duration
}

// QuestionRecord is one extracted question.
type QuestionRecord struct {
	Question      string
	Options       []string
	CorrectAnswer *string
	Image         *string
	Metadata
}

type recordJSON struct {
	Question          string   `json:"question"`
	Options           []string `json:"options"`
	CorrectAnswer     *string  `json:"correct_answer"`
	Image             *string  `json:"image"`
	Category          string   `json:"category"`
	SubjectOrDuration any      `json:"subject_or_duration"`
}

func (r QuestionRecord) MarshalJSON() ([]byte, error) {
	options := r.Options
	if options == nil {
		options = []string{}
	}
	return json.Marshal(recordJSON{
		Question:          r.Question,
		Options:           options,
		CorrectAnswer:     r.CorrectAnswer,
		Image:             r.Image,
		Category:          r.Category,
		SubjectOrDuration: r.Tag(),
	})
}
