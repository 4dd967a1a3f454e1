package extract

import (
	"regexp"
	"strings"

	"github.com/dgallion1/quizgest/internal/quizdoc"
)

// Kind is the role of one block in the question stream.
type Kind int

const (
	Ignorable Kind = iota
	QuestionStart
	OptionLine
	ContinuationLine
)

func (k Kind) String() string {
	switch k {
	case QuestionStart:
		return "question_start"
	case OptionLine:
		return "option"
	case ContinuationLine:
		return "continuation"
	default:
		return "ignorable"
	}
}

// OptionMarkers are the literal prefixes of answer options.
var OptionMarkers = []string{"A)", "B)", "C)", "D)"}

// enumeratedQuestion matches "12." style question numbering in HTML exports.
var enumeratedQuestion = regexp.MustCompile(`^\d+\.`)

// Classify decides the role of b. open reports whether a question is
// currently being accumulated; Classify never changes that state.
func Classify(format quizdoc.Format, b quizdoc.Block, open bool) Kind {
	switch {
	case b.Text == "":
		return Ignorable
	case IsOption(b.Text):
		return OptionLine
	case !open:
		return QuestionStart
	case format == quizdoc.FormatHTML && enumeratedQuestion.MatchString(b.Text):
		return QuestionStart
	default:
		return ContinuationLine
	}
}

// IsOption reports whether text starts with one of the option markers.
func IsOption(text string) bool {
	for _, m := range OptionMarkers {
		if strings.HasPrefix(text, m) {
			return true
		}
	}
	return false
}
