package extract

import (
	"testing"

	"github.com/dgallion1/quizgest/internal/quizdoc"
)

func strp(s string) *string { return &s }

func TestAccumulatorOptionsInOrder(t *testing.T) {
	a := NewAccumulator(quizdoc.FormatHTML)
	a.Feed(QuestionStart, "Q", nil)
	for _, o := range []string{"A) 1", "B) 2", "C) 3", "D) 4"} {
		a.Feed(OptionLine, o, nil)
	}
	q := a.Finish()
	if q == nil {
		t.Fatal("expected a question")
	}
	want := []string{"A) 1", "B) 2", "C) 3", "D) 4"}
	if len(q.Options) != len(want) {
		t.Fatalf("got %d options, want %d", len(q.Options), len(want))
	}
	for i := range want {
		if q.Options[i] != want[i] {
			t.Errorf("option %d = %q, want %q", i, q.Options[i], want[i])
		}
	}
	if a.Open() {
		t.Error("accumulator should be empty after Finish")
	}
}

func TestAccumulatorContinuationAbsorbs(t *testing.T) {
	a := NewAccumulator(quizdoc.FormatDOCX)
	a.Feed(QuestionStart, "Which city", nil)
	a.Feed(ContinuationLine, "is largest?", nil)
	a.Feed(OptionLine, "A) Lagos", nil)
	a.Feed(ContinuationLine, "(Nigeria)", nil)
	q := a.Finish()
	if q.Question != "Which city is largest?" {
		t.Errorf("question = %q", q.Question)
	}
	if q.Options[0] != "A) Lagos (Nigeria)" {
		t.Errorf("option = %q", q.Options[0])
	}
}

func TestAccumulatorDOCXReopensAfterAnswer(t *testing.T) {
	a := NewAccumulator(quizdoc.FormatDOCX)
	a.Feed(QuestionStart, "Q1", nil)
	a.Feed(OptionLine, "A) x", strp("x"))
	done := a.Feed(ContinuationLine, "Q2", nil)
	if done == nil || done.Question != "Q1" {
		t.Fatalf("expected Q1 closed, got %+v", done)
	}
	if a.Current().Question != "Q2" {
		t.Errorf("open question = %q, want Q2", a.Current().Question)
	}
}

func TestAccumulatorDOCXReopensAfterImage(t *testing.T) {
	a := NewAccumulator(quizdoc.FormatDOCX)
	a.Feed(QuestionStart, "Q1", nil)
	if !a.AttachImage("img.png") {
		t.Fatal("AttachImage returned false")
	}
	done := a.Feed(ContinuationLine, "Q2", nil)
	if done == nil || *done.Image != "img.png" {
		t.Fatalf("expected Q1 closed with image, got %+v", done)
	}
}

func TestAccumulatorHTMLNeverReopensOnContinuation(t *testing.T) {
	a := NewAccumulator(quizdoc.FormatHTML)
	a.Feed(QuestionStart, "Q1", nil)
	a.Feed(OptionLine, "A) x", strp("A"))
	if done := a.Feed(ContinuationLine, "more", nil); done != nil {
		t.Fatalf("unexpected close: %+v", done)
	}
	q := a.Finish()
	if q.Options[0] != "A) x more" {
		t.Errorf("option = %q", q.Options[0])
	}
}

func TestAccumulatorHTMLContinuationBeforeOptions(t *testing.T) {
	a := NewAccumulator(quizdoc.FormatHTML)
	a.Feed(QuestionStart, "1. Which river", nil)
	if done := a.Feed(ContinuationLine, "is longest?", nil); done != nil {
		t.Fatalf("unexpected close: %+v", done)
	}
	a.Feed(OptionLine, "A) Nile", nil)
	q := a.Finish()
	if q.Question != "1. Which river is longest?" {
		t.Errorf("question = %q", q.Question)
	}
	if len(q.Options) != 1 || q.Options[0] != "A) Nile" {
		t.Errorf("options = %q", q.Options)
	}
}

func TestAccumulatorAnswerLastWins(t *testing.T) {
	a := NewAccumulator(quizdoc.FormatHTML)
	a.Feed(QuestionStart, "Q", nil)
	a.Feed(OptionLine, "A) x", strp("A"))
	a.Feed(OptionLine, "B) y", strp("B"))
	q := a.Finish()
	if q.Answer == nil || *q.Answer != "B" {
		t.Errorf("answer = %v, want B", q.Answer)
	}
}

func TestAccumulatorOptionWithoutQuestionDropped(t *testing.T) {
	a := NewAccumulator(quizdoc.FormatDOCX)
	if done := a.Feed(OptionLine, "A) stray", strp("stray")); done != nil {
		t.Fatalf("unexpected record: %+v", done)
	}
	if a.Open() {
		t.Fatal("option must not open a question")
	}
	if a.Finish() != nil {
		t.Fatal("expected no record")
	}
}

func TestAccumulatorAttachImageRequiresOpenQuestion(t *testing.T) {
	a := NewAccumulator(quizdoc.FormatDOCX)
	if a.AttachImage("x.png") {
		t.Fatal("AttachImage succeeded with no open question")
	}
	a.Feed(QuestionStart, "Q", nil)
	a.AttachImage("first.png")
	if a.AttachImage("second.png") {
		t.Fatal("second AttachImage should fail")
	}
	if got := *a.Finish().Image; got != "first.png" {
		t.Errorf("image = %q, want first.png", got)
	}
}
