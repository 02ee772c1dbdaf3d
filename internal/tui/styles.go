package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/phrazzld/filetrack/internal/domain"
)

const statusWidth = 10

var (
	primaryColor   = lipgloss.Color("#5FAFAF")
	secondaryColor = lipgloss.Color("#666666")
	successColor   = lipgloss.Color("#87AF87")
	errorColor     = lipgloss.Color("#AF5F5F")
	warnColor      = lipgloss.Color("#D7AF5F")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)

	focusedBoxStyle = boxStyle.
			BorderForeground(primaryColor)

	statusStyles = map[domain.Status]lipgloss.Style{
		domain.StatusPending:   lipgloss.NewStyle().Foreground(warnColor),
		domain.StatusCompleted: lipgloss.NewStyle().Foreground(successColor),
		domain.StatusFailed:    lipgloss.NewStyle().Foreground(errorColor),
		domain.StatusCancelled: lipgloss.NewStyle().Foreground(secondaryColor),
	}
)

func renderStatus(s domain.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		style = subtleStyle
	}
	return style.Width(statusWidth).Render(s.String())
}
