package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorRed     = lipgloss.Color("#FF5F5F")
	colorGreen   = lipgloss.Color("#5FD75F")
	colorYellow  = lipgloss.Color("#FFD75F")
	colorCyan    = lipgloss.Color("#5FD7FF")
	colorGray    = lipgloss.Color("#808080")
	colorDimGray = lipgloss.Color("#4E4E4E")
	colorWhite   = lipgloss.Color("#FFFFFF")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	listeningStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	interimStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Italic(true)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	footerDescStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	dividerStyle = lipgloss.NewStyle().
			Foreground(colorDimGray)
)

// confidenceStyle colors the confidence percentage like a level meter.
func confidenceStyle(percent int) lipgloss.Style {
	switch {
	case percent >= 85:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case percent >= 60:
		return lipgloss.NewStyle().Foreground(colorYellow)
	default:
		return lipgloss.NewStyle().Foreground(colorRed)
	}
}
