package domain

import "errors"

var (
	// ErrInvalidInput is returned when an answer index is outside the current question's options.
	ErrInvalidInput = errors.New("invalid answer option")
	// ErrInvalidTransition marks a command with no effect in the current phase; callers ignore it.
	ErrInvalidTransition = errors.New("command not valid in current phase")
	// ErrSessionNotFound is returned when a quiz session has not been opened.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionClosed is returned for commands against a closed session.
	ErrSessionClosed = errors.New("quiz session closed")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuiz indicates loaded quiz content breaks the question invariants.
	ErrInvalidQuiz = errors.New("invalid quiz")
)
