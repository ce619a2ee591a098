package memory

import (
	"context"

	"quiz-runner/internal/domain"
)

// DefaultQuizID names the built-in quiz served when no other source is configured.
const DefaultQuizID = "general"

// QuizLoader fetches quiz content from a backing store (file, Postgres, static map).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// StaticQuizLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticQuizLoader struct {
	quizzes map[string]domain.Quiz
}

func NewStaticQuizLoader(quizzes map[string]domain.Quiz) *StaticQuizLoader {
	return &StaticQuizLoader{quizzes: quizzes}
}

func (l *StaticQuizLoader) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := l.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// DefaultQuizzes returns the built-in quiz set keyed by ID.
func DefaultQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{DefaultQuizID: DefaultQuiz()}
}

// DefaultQuiz is the five-question general knowledge quiz.
// Correct indices in order: 0, 1, 1, 0, 0.
func DefaultQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    DefaultQuizID,
		Title: "General Knowledge",
		Questions: []domain.Question{
			{
				ID:           "q1",
				Prompt:       "What is the capital of France?",
				Options:      []string{"Paris", "London", "Berlin", "Madrid"},
				CorrectIndex: 0,
			},
			{
				ID:           "q2",
				Prompt:       "Which planet is known as the Red Planet?",
				Options:      []string{"Venus", "Mars", "Jupiter", "Saturn"},
				CorrectIndex: 1,
			},
			{
				ID:           "q3",
				Prompt:       "What is 7 x 8?",
				Options:      []string{"54", "56", "58", "64"},
				CorrectIndex: 1,
			},
			{
				ID:           "q4",
				Prompt:       "Which language does the Go toolchain compile?",
				Options:      []string{"Go", "Rust", "Java", "Python"},
				CorrectIndex: 0,
			},
			{
				ID:           "q5",
				Prompt:       "What is the largest ocean on Earth?",
				Options:      []string{"Pacific", "Atlantic", "Indian", "Arctic"},
				CorrectIndex: 0,
			},
		},
	}
}
