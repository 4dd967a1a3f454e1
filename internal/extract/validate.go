package extract

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dgallion1/quizgest/internal/quizdoc"
)

// DefaultDurations are the quiz durations, in minutes, accepted when the
// caller does not configure its own set.
var DefaultDurations = []int{30, 60, 90}

const maxCategoryLen = 100

// ValidateMetadata checks the caller-supplied tags that every record of an
// invocation carries. A record needs a category and either a subject or a
// duration from durations.
func ValidateMetadata(m Metadata, durations []int) error {
	category := strings.TrimSpace(m.Category)
	if category == "" {
		return &quizdoc.MetadataError{Field: "category", Reason: "is required"}
	}
	if len(category) > maxCategoryLen {
		return &quizdoc.MetadataError{Field: "category", Reason: fmt.Sprintf("longer than %d characters", maxCategoryLen)}
	}
	if strings.TrimSpace(m.Subject) != "" {
		return nil
	}
	if m.Duration == 0 {
		return &quizdoc.MetadataError{Field: "duration", Reason: "duration or subject is required"}
	}
	if len(durations) == 0 {
		durations = DefaultDurations
	}
	if !slices.Contains(durations, m.Duration) {
		return &quizdoc.MetadataError{Field: "duration", Reason: fmt.Sprintf("%d is not one of %v", m.Duration, durations)}
	}
	return nil
}
