package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"quiz-runner/internal/domain"
)

// sessionPort is what the terminal view needs from a running session.
type sessionPort interface {
	Start() error
	Restart() error
	SubmitAnswer(option int) (domain.AnswerResult, bool, error)
	Subscribe() (<-chan domain.Snapshot, func())
}

type snapshotMsg domain.Snapshot

type closedMsg struct{}

// Model renders one session. It keeps no answer state of its own: every
// frame is drawn from the latest snapshot pushed by the session.
type Model struct {
	session sessionPort
	title   string
	updates <-chan domain.Snapshot
	cancel  func()

	snap   domain.Snapshot
	status string
	width  int
}

// NewModel subscribes to the session; the subscription ends when the program quits.
func NewModel(session sessionPort, title string) Model {
	updates, cancel := session.Subscribe()
	m := Model{session: session, title: title, updates: updates, cancel: cancel}
	// The subscription always delivers the current state first.
	if snap, ok := <-updates; ok {
		m.snap = snap
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.updates)
}

func waitForSnapshot(updates <-chan domain.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg(snap)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = domain.Snapshot(msg)
		return m, waitForSnapshot(m.updates)
	case closedMsg:
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		m.cancel()
		return m, tea.Quit
	case "enter", "s":
		if err := m.session.Start(); err != nil {
			m.status = err.Error()
		}
	case "r":
		if err := m.session.Restart(); err != nil {
			m.status = err.Error()
		}
	case "1", "2", "3", "4":
		option := int(key[0] - '1')
		if _, _, err := m.session.SubmitAnswer(option); err != nil {
			log.Debug().Err(err).Int("option", option).Msg("answer rejected")
			m.status = err.Error()
		}
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	switch m.snap.Phase {
	case domain.PhaseActive:
		body = m.viewQuestion()
	case domain.PhaseFinished:
		body = m.viewGameOver()
	default:
		body = m.viewStart()
	}
	if m.status != "" {
		body += "\n" + Hot.Render(m.status)
	}
	card := Card
	if m.width > 0 {
		card = card.MaxWidth(m.width)
	}
	return card.Render(body) + "\n"
}

func (m Model) viewStart() string {
	var b strings.Builder
	b.WriteString(Title.Render(m.title) + "\n\n")
	fmt.Fprintf(&b, "%d questions, %d seconds on the clock.\n\n", m.snap.TotalQuestions, m.snap.InitialSeconds)
	b.WriteString(Muted.Render("press enter to start · q to quit"))
	return b.String()
}

func (m Model) viewQuestion() string {
	s := m.snap
	var b strings.Builder

	timer := Timer
	if s.LowTime {
		timer = TimerLo
	}
	b.WriteString(timer.Render(fmt.Sprintf("%ds", s.RemainingSeconds)) + "\n\n")
	b.WriteString(Title.Render(fmt.Sprintf("Question %d of %d", s.QuestionNumber, s.TotalQuestions)) + "\n")
	if s.Question != nil {
		b.WriteString(s.Question.Prompt + "\n\n")
		for i, option := range s.Question.Options {
			line := fmt.Sprintf("%d. %s", i+1, option)
			b.WriteString(optionStyle(s.OptionStates, i).Render(line) + "\n")
		}
	}
	fmt.Fprintf(&b, "\nScore: %d/%d\n", s.Score, s.TotalQuestions)
	if !s.Answered() {
		b.WriteString(Muted.Render("press 1-4 to answer · r to restart · q to quit"))
	}
	return b.String()
}

func (m Model) viewGameOver() string {
	s := m.snap
	var b strings.Builder
	b.WriteString(Title.Render("Quiz complete!") + "\n\n")
	if s.RemainingSeconds == 0 {
		b.WriteString(Hot.Render("Time's up.") + "\n")
	}
	fmt.Fprintf(&b, "Final score: %d / %d\n\n", s.Score, s.TotalQuestions)
	b.WriteString(Muted.Render("press r to play again · q to quit"))
	return b.String()
}

func optionStyle(states []domain.OptionState, i int) lipgloss.Style {
	if i >= len(states) {
		return OptionIdle
	}
	switch states[i] {
	case domain.OptionSelectedCorrect, domain.OptionRevealCorrect:
		return OptionCorrect
	case domain.OptionSelectedWrong:
		return OptionWrong
	case domain.OptionDimmed:
		return OptionDimmed
	default:
		return OptionIdle
	}
}
