package file

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"quiz-runner/internal/domain"
)

// QuizBank is the on-disk YAML layout: a list of quizzes.
//
//	quizzes:
//	  - id: general
//	    title: General Knowledge
//	    questions:
//	      - id: q1
//	        prompt: What is the capital of France?
//	        options: [Paris, London, Berlin, Madrid]
//	        correct: 0
type QuizBank struct {
	Quizzes []domain.Quiz `yaml:"quizzes"`
}

// QuizLoader reads quizzes from a YAML question bank. The file is parsed once.
type QuizLoader struct {
	quizzes map[string]domain.Quiz
	order   []string
}

// NewQuizLoader parses the bank at path and validates every quiz in it.
func NewQuizLoader(path string) (*QuizLoader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return ParseQuizBank(data)
}

// ParseQuizBank builds a loader from raw YAML.
func ParseQuizBank(data []byte) (*QuizLoader, error) {
	var bank QuizBank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	quizzes := make(map[string]domain.Quiz, len(bank.Quizzes))
	order := make([]string, 0, len(bank.Quizzes))
	for _, quiz := range bank.Quizzes {
		if quiz.ID == "" {
			return nil, fmt.Errorf("%w: quiz without id", domain.ErrInvalidQuiz)
		}
		if _, dup := quizzes[quiz.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate quiz id %q", domain.ErrInvalidQuiz, quiz.ID)
		}
		if err := quiz.Validate(); err != nil {
			return nil, err
		}
		quizzes[quiz.ID] = quiz
		order = append(order, quiz.ID)
	}
	return &QuizLoader{quizzes: quizzes, order: order}, nil
}

func (l *QuizLoader) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	quiz, ok := l.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

// Quizzes returns every quiz in the order the bank lists them.
func (l *QuizLoader) Quizzes() []domain.Quiz {
	out := make([]domain.Quiz, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.quizzes[id])
	}
	return out
}
