package domain

import (
	"errors"
	"testing"
)

func validQuestion() Question {
	return Question{ID: "q1", Prompt: "2 + 2?", Options: []string{"3", "4", "5", "6"}, CorrectIndex: 1}
}

func TestQuestionValidate(t *testing.T) {
	cases := map[string]func(q *Question){
		"empty prompt":     func(q *Question) { q.Prompt = "  " },
		"three options":    func(q *Question) { q.Options = q.Options[:3] },
		"empty option":     func(q *Question) { q.Options[2] = "" },
		"duplicate option": func(q *Question) { q.Options[3] = "3" },
		"negative index":   func(q *Question) { q.CorrectIndex = -1 },
		"index too large":  func(q *Question) { q.CorrectIndex = 4 },
	}
	for name, mutate := range cases {
		q := validQuestion()
		mutate(&q)
		if err := q.Validate(); !errors.Is(err, ErrInvalidQuiz) {
			t.Fatalf("%s: expected ErrInvalidQuiz, got %v", name, err)
		}
	}

	if err := validQuestion().Validate(); err != nil {
		t.Fatalf("valid question rejected: %v", err)
	}
}

func TestQuizValidate(t *testing.T) {
	if err := (Quiz{ID: "empty"}).Validate(); !errors.Is(err, ErrInvalidQuiz) {
		t.Fatalf("expected empty quiz rejected, got %v", err)
	}
	bad := validQuestion()
	bad.CorrectIndex = 9
	if err := (Quiz{ID: "x", Questions: []Question{validQuestion(), bad}}).Validate(); !errors.Is(err, ErrInvalidQuiz) {
		t.Fatalf("expected bad question rejected, got %v", err)
	}
}

func TestSnapshotAnswered(t *testing.T) {
	var snap Snapshot
	if snap.Answered() {
		t.Fatalf("zero snapshot should not be answered")
	}
	opt := 0
	snap.SelectedOption = &opt
	if !snap.Answered() {
		t.Fatalf("expected answered with option 0 selected")
	}
}
