package extract

import "github.com/dgallion1/quizgest/internal/quizdoc"

// QuestionBlock is the question currently being accumulated.
type QuestionBlock struct {
	Question string
	Options  []string
	Answer   *string
	Image    *string
}

// Record freezes the block with the caller's metadata.
func (q *QuestionBlock) Record(meta Metadata) QuestionRecord {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return QuestionRecord{
		Question:      q.Question,
		Options:       options,
		CorrectAnswer: q.Answer,
		Image:         q.Image,
		Metadata:      meta,
	}
}

// Accumulator folds classified blocks into questions. It is either empty or
// holds one open QuestionBlock.
type Accumulator struct {
	// DOCX closes an open question on a continuation line once the question
	// has an image or an answer. HTML never does.
	reopenOnContinuation bool
	cur                  *QuestionBlock
}

func NewAccumulator(format quizdoc.Format) *Accumulator {
	return &Accumulator{reopenOnContinuation: format == quizdoc.FormatDOCX}
}

// Open reports whether a question is being accumulated.
func (a *Accumulator) Open() bool {
	return a.cur != nil
}

// Current returns the open question, or nil.
func (a *Accumulator) Current() *QuestionBlock {
	return a.cur
}

// Feed applies one block and returns the question it closed, if any.
// A non-nil answer is stored on whichever question is open afterwards.
func (a *Accumulator) Feed(kind Kind, text string, answer *string) *QuestionBlock {
	var done *QuestionBlock
	switch kind {
	case QuestionStart:
		done = a.close()
		a.cur = &QuestionBlock{Question: text}
	case OptionLine:
		if a.cur == nil {
			return nil
		}
		a.cur.Options = append(a.cur.Options, text)
	case ContinuationLine:
		switch {
		case a.cur == nil:
			a.cur = &QuestionBlock{Question: text}
		case a.reopenOnContinuation && (a.cur.Image != nil || a.cur.Answer != nil):
			done = a.close()
			a.cur = &QuestionBlock{Question: text}
		default:
			a.absorb(text)
		}
	}

	if answer != nil && a.cur != nil {
		v := *answer
		a.cur.Answer = &v
	}
	return done
}

// AttachImage sets the image location on the open question. It returns false
// when there is no open question or it already has an image.
func (a *Accumulator) AttachImage(location string) bool {
	if a.cur == nil || a.cur.Image != nil {
		return false
	}
	a.cur.Image = &location
	return true
}

// Finish closes the open question at end of input.
func (a *Accumulator) Finish() *QuestionBlock {
	return a.close()
}

func (a *Accumulator) close() *QuestionBlock {
	cur := a.cur
	a.cur = nil
	if cur == nil || cur.Question == "" {
		return nil
	}
	return cur
}

// absorb treats text as a wrapped line of the last option, or of the stem
// when no option has been seen yet.
func (a *Accumulator) absorb(text string) {
	if n := len(a.cur.Options); n > 0 {
		a.cur.Options[n-1] += " " + text
		return
	}
	if a.cur.Question == "" {
		a.cur.Question = text
		return
	}
	a.cur.Question += " " + text
}
