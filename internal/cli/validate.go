package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quiz-runner/internal/config"
	"quiz-runner/internal/logging"
)

// NewValidateCmd loads the configured quiz and reports whether it is playable.
func NewValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the configured quiz loads and is well formed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logging.Configure(cfg.Log, cmd.ErrOrStderr())

			loader, closeLoader, err := newLoader(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeLoader()

			quiz, err := loader.LoadQuiz(cmd.Context(), cfg.Quiz.ID)
			if err != nil {
				return err
			}
			if err := quiz.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "quiz %q ok: %d questions, %ds timer\n", quiz.ID, len(quiz.Questions), cfg.Quiz.TimerSeconds)
			return nil
		},
	}
}
