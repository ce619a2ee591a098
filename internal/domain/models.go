package domain

import (
	"fmt"
	"strings"
)

// OptionsPerQuestion is the fixed number of choices every question carries.
const OptionsPerQuestion = 4

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID           string   `json:"id" yaml:"id"`
	Prompt       string   `json:"prompt" yaml:"prompt"`
	Options      []string `json:"options" yaml:"options"`
	CorrectIndex int      `json:"correctIndex" yaml:"correct"`
}

// Validate checks the option count, option text and the correct index.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("%w: question %q has empty prompt", ErrInvalidQuiz, q.ID)
	}
	if len(q.Options) != OptionsPerQuestion {
		return fmt.Errorf("%w: question %q has %d options, want %d", ErrInvalidQuiz, q.ID, len(q.Options), OptionsPerQuestion)
	}
	seen := make(map[string]struct{}, len(q.Options))
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: question %q option %d is empty", ErrInvalidQuiz, q.ID, i)
		}
		if _, dup := seen[opt]; dup {
			return fmt.Errorf("%w: question %q repeats option %q", ErrInvalidQuiz, q.ID, opt)
		}
		seen[opt] = struct{}{}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("%w: question %q correct index %d out of range", ErrInvalidQuiz, q.ID, q.CorrectIndex)
	}
	return nil
}

// Quiz is an ordered, non-empty collection of questions.
type Quiz struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Validate reports the first structural problem in the quiz.
func (q Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: quiz %q has no questions", ErrInvalidQuiz, q.ID)
	}
	for _, question := range q.Questions {
		if err := question.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Phase is the coarse stage of a session.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseActive     Phase = "active"
	PhaseFinished   Phase = "finished"
)

// OptionState is the feedback shown for a single option.
type OptionState string

const (
	OptionIdle            OptionState = "idle"
	OptionSelectedCorrect OptionState = "selected-correct"
	OptionSelectedWrong   OptionState = "selected-wrong"
	OptionRevealCorrect   OptionState = "reveal-correct"
	OptionDimmed          OptionState = "dimmed"
)

// QuestionView is the render-safe form of a question: no correct index.
type QuestionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// Snapshot is an immutable, consistent view of a session for rendering.
type Snapshot struct {
	QuizID           string        `json:"quizId"`
	Phase            Phase         `json:"phase"`
	CurrentIndex     int           `json:"currentIndex"`
	QuestionNumber   int           `json:"questionNumber"`
	TotalQuestions   int           `json:"totalQuestions"`
	SelectedOption   *int          `json:"selectedOption,omitempty"`
	Score            int           `json:"score"`
	RemainingSeconds int           `json:"remainingSeconds"`
	InitialSeconds   int           `json:"initialSeconds"`
	LowTime          bool          `json:"lowTime"`
	Question         *QuestionView `json:"question,omitempty"`
	OptionStates     []OptionState `json:"optionStates,omitempty"`
}

// Answered reports whether an option is selected for the current question.
func (s Snapshot) Answered() bool {
	return s.SelectedOption != nil
}

// AnswerResult summarizes the outcome of one submission.
type AnswerResult struct {
	QuestionIndex int  `json:"questionIndex"`
	Option        int  `json:"option"`
	Correct       bool `json:"correct"`
	Score         int  `json:"score"`
}
