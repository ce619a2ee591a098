package app

import (
	"quiz-runner/internal/domain"
)

// Session is the quiz state machine. It has no clock and no locking; the
// Controller serializes calls and schedules the deferred transitions.
//
// Every command checks the current phase before mutating so that late or
// duplicated deliveries fall through as ErrInvalidTransition.
type Session struct {
	quiz           domain.Quiz
	initialSeconds int
	lowTime        int

	phase     domain.Phase
	index     int
	selected  *int
	score     int
	remaining int

	// epoch changes whenever the current question changes or the session is
	// reset; a pending advance only applies to the epoch it was scheduled in.
	epoch uint64
}

// NewSession builds a session in the NotStarted phase. The quiz must already be validated.
func NewSession(quiz domain.Quiz, initialSeconds, lowTimeThreshold int) *Session {
	s := &Session{
		quiz:           quiz,
		initialSeconds: initialSeconds,
		lowTime:        lowTimeThreshold,
	}
	s.reset(domain.PhaseNotStarted)
	return s
}

func (s *Session) reset(phase domain.Phase) {
	s.phase = phase
	s.index = 0
	s.selected = nil
	s.score = 0
	s.remaining = s.initialSeconds
	s.epoch++
}

// Start enters play from NotStarted.
func (s *Session) Start() error {
	if s.phase != domain.PhaseNotStarted {
		return domain.ErrInvalidTransition
	}
	s.reset(domain.PhaseActive)
	return nil
}

// Restart resets to question 0 with a full timer and re-enters play from any phase.
func (s *Session) Restart() {
	s.reset(domain.PhaseActive)
}

// SubmitAnswer records the first answer for the current question and returns
// the epoch the follow-up advance must carry.
func (s *Session) SubmitAnswer(option int) (domain.AnswerResult, uint64, error) {
	if s.phase != domain.PhaseActive || s.selected != nil {
		return domain.AnswerResult{}, 0, domain.ErrInvalidTransition
	}
	question := s.quiz.Questions[s.index]
	if option < 0 || option >= len(question.Options) {
		return domain.AnswerResult{}, 0, domain.ErrInvalidInput
	}

	selected := option
	s.selected = &selected
	correct := option == question.CorrectIndex
	if correct {
		s.score++
	}
	return domain.AnswerResult{
		QuestionIndex: s.index,
		Option:        option,
		Correct:       correct,
		Score:         s.score,
	}, s.epoch, nil
}

// Advance moves to the next question, or finishes after the last one.
func (s *Session) Advance(epoch uint64) error {
	if s.phase != domain.PhaseActive || s.selected == nil || epoch != s.epoch {
		return domain.ErrInvalidTransition
	}
	if s.index == len(s.quiz.Questions)-1 {
		s.phase = domain.PhaseFinished
		return nil
	}
	s.index++
	s.selected = nil
	s.epoch++
	return nil
}

// Tick consumes one second. Reaching zero finishes the session at once.
func (s *Session) Tick() error {
	if s.phase != domain.PhaseActive {
		return domain.ErrInvalidTransition
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		s.phase = domain.PhaseFinished
	}
	return nil
}

// Phase returns the current phase.
func (s *Session) Phase() domain.Phase { return s.phase }

// Epoch returns the current question epoch.
func (s *Session) Epoch() uint64 { return s.epoch }

// Snapshot copies the state into a render-safe value.
func (s *Session) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		QuizID:           s.quiz.ID,
		Phase:            s.phase,
		CurrentIndex:     s.index,
		QuestionNumber:   s.index + 1,
		TotalQuestions:   len(s.quiz.Questions),
		Score:            s.score,
		RemainingSeconds: s.remaining,
		InitialSeconds:   s.initialSeconds,
	}
	if s.selected != nil {
		selected := *s.selected
		snap.SelectedOption = &selected
	}
	if s.phase != domain.PhaseActive {
		return snap
	}

	snap.LowTime = s.remaining <= s.lowTime
	question := s.quiz.Questions[s.index]
	options := make([]string, len(question.Options))
	copy(options, question.Options)
	snap.Question = &domain.QuestionView{
		ID:      question.ID,
		Prompt:  question.Prompt,
		Options: options,
	}
	snap.OptionStates = optionStates(question, s.selected)
	return snap
}

func optionStates(question domain.Question, selected *int) []domain.OptionState {
	states := make([]domain.OptionState, len(question.Options))
	for i := range states {
		switch {
		case selected == nil:
			states[i] = domain.OptionIdle
		case i == *selected && i == question.CorrectIndex:
			states[i] = domain.OptionSelectedCorrect
		case i == *selected:
			states[i] = domain.OptionSelectedWrong
		case i == question.CorrectIndex:
			states[i] = domain.OptionRevealCorrect
		default:
			states[i] = domain.OptionDimmed
		}
	}
	return states
}
