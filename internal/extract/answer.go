package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/quizgest/internal/quizdoc"
)

// DetectAnswer extracts the text marked as the correct answer in b.
// classes are the HTML answer marker classes; DOCX ignores them.
func DetectAnswer(format quizdoc.Format, b quizdoc.Block, classes []string) (string, bool) {
	if format == quizdoc.FormatHTML {
		return htmlAnswer(b, classes)
	}
	return docxAnswer(b)
}

// docxAnswer returns the text of the last red run, exactly as authored.
func docxAnswer(b quizdoc.Block) (string, bool) {
	for i := len(b.Runs) - 1; i >= 0; i-- {
		if isRed(b.Runs[i]) {
			return b.Runs[i].Text, true
		}
	}
	return "", false
}

func isRed(r quizdoc.Run) bool {
	return r.Color != nil && *r.Color == quizdoc.Red
}

// htmlAnswer returns the leading character of the first marked span,
// which is the option letter in exported quizzes.
func htmlAnswer(b quizdoc.Block, classes []string) (string, bool) {
	if len(classes) == 0 {
		return "", false
	}
	for _, s := range b.Spans {
		if !s.HasClass(classes...) {
			continue
		}
		t := strings.TrimSpace(s.Text)
		if t == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(t)
		return string(r), true
	}
	return "", false
}
