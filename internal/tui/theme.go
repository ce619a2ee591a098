package tui

import "github.com/charmbracelet/lipgloss"

var (
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Surface1 = lipgloss.Color("#45475a")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Red      = lipgloss.Color("#f38ba8")
	Peach    = lipgloss.Color("#fab387")

	Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Foreground(Text).
		Padding(1, 2)

	Title   = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted   = lipgloss.NewStyle().Foreground(Subtext0)
	Timer   = lipgloss.NewStyle().Foreground(Text).Bold(true)
	TimerLo = lipgloss.NewStyle().Foreground(Red).Bold(true)
	Hot     = lipgloss.NewStyle().Foreground(Peach).Bold(true)

	OptionIdle    = lipgloss.NewStyle().Foreground(Text)
	OptionCorrect = lipgloss.NewStyle().Foreground(Green).Bold(true)
	OptionWrong   = lipgloss.NewStyle().Foreground(Red).Bold(true)
	OptionDimmed  = lipgloss.NewStyle().Foreground(Surface1)
)
