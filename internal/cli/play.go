package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"quiz-runner/internal/app"
	"quiz-runner/internal/config"
	"quiz-runner/internal/logging"
	"quiz-runner/internal/tui"
)

// NewPlayCmd runs a single quiz session in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the configured quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *configPath, logFile)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file instead of discarding them")
	return cmd
}

func runPlay(ctx context.Context, configPath, logFile string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI; logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logging.Configure(cfg.Log, out)

	b, err := newBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	quiz, err := b.quizzes.GetQuiz(ctx, cfg.Quiz.ID)
	if err != nil {
		return err
	}
	service := app.NewQuizService(b.sessions, b.quizzes, cfg.Quiz.Settings())
	session, err := service.OpenSession(ctx, cfg.Quiz.ID)
	if err != nil {
		return err
	}
	defer service.CloseSession(session.ID())

	title := quiz.Title
	if title == "" {
		title = quiz.ID
	}
	_, err = tea.NewProgram(tui.NewModel(session, title), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
