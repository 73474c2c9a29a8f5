package ui

import "github.com/charmbracelet/lipgloss"

// Chat view palette.
const (
	colorAccent = "86"  // cyan
	colorUser   = "213" // pink
	colorDim    = "241" // grey
	colorError  = "203" // red
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorAccent)).
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorUser)).
			Bold(true)

	answerStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	restrictedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorDim)).
			Italic(true).
			PaddingLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError)).
			PaddingLeft(2)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorDim))
)
