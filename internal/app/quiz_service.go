package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"quiz-runner/internal/domain"
)

// SessionRepository abstracts where open sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(session *Controller)
	Get(sessionID string) (*Controller, bool)
	Delete(sessionID string)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizService opens and tracks single-player quiz sessions.
type QuizService struct {
	sessions SessionRepository
	quizzes  QuizRepository
	settings Settings
	clock    clockwork.Clock
	newID    func() string
}

func NewQuizService(store SessionRepository, quizzes QuizRepository, settings Settings) *QuizService {
	return &QuizService{
		sessions: store,
		quizzes:  quizzes,
		settings: settings,
		clock:    clockwork.NewRealClock(),
		newID:    uuid.NewString,
	}
}

// WithClock swaps the clock handed to new sessions. Intended for tests.
func (s *QuizService) WithClock(clock clockwork.Clock) *QuizService {
	s.clock = clock
	return s
}

// OpenSession loads the quiz and registers a fresh NotStarted session for it.
func (s *QuizService) OpenSession(ctx context.Context, quizID string) (*Controller, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("open session for quiz %q: %w", quizID, err)
	}

	session, err := NewController(s.newID(), quiz, s.settings, s.clock)
	if err != nil {
		return nil, fmt.Errorf("open session for quiz %q: %w", quizID, err)
	}
	s.sessions.Put(session)
	log.Info().Str("session_id", session.ID()).Str("quiz_id", quizID).Msg("session opened")
	return session, nil
}

// Session returns an open session.
func (s *QuizService) Session(sessionID string) (*Controller, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// CloseSession stops the session's timers and forgets it.
func (s *QuizService) CloseSession(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	final := session.Snapshot()
	session.Close()
	s.sessions.Delete(sessionID)
	log.Info().
		Str("session_id", sessionID).
		Str("phase", string(final.Phase)).
		Int("score", final.Score).
		Int("total", final.TotalQuestions).
		Msg("session closed")
}
