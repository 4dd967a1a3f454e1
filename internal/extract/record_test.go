package extract

import (
	"encoding/json"
	"testing"
)

func TestQuestionRecordJSON(t *testing.T) {
	rec := QuestionRecord{
		Question:      "Q1 stem",
		Options:       []string{"A) opt1", "B) opt2"},
		CorrectAnswer: strp("opt2"),
		Metadata:      Metadata{Category: "science", Duration: 60},
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"question":"Q1 stem","options":["A) opt1","B) opt2"],"correct_answer":"opt2","image":null,"category":"science","subject_or_duration":60}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}
}

func TestQuestionRecordJSONSubjectAndEmptyOptions(t *testing.T) {
	rec := QuestionRecord{
		Question: "Q",
		Image:    strp("media/q_image_1.png"),
		Metadata: Metadata{Category: "history", Subject: "rome"},
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"question":"Q","options":[],"correct_answer":null,"image":"media/q_image_1.png","category":"history","subject_or_duration":"rome"}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}
}
