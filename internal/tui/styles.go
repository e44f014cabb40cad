package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorText    lipgloss.Color = "#cdd6f4"
	colorMuted   lipgloss.Color = "#a6adc8"
	colorBorder  lipgloss.Color = "#585b70"
	colorAccent  lipgloss.Color = "#89b4fa"
	colorSuccess lipgloss.Color = "#a6e3a1"
	colorError   lipgloss.Color = "#f38ba8"
	colorWarn    lipgloss.Color = "#f9e2af"
	colorSurface lipgloss.Color = "#313244"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	rowStyle      = lipgloss.NewStyle().Foreground(colorText)
	cursorStyle   = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(colorAccent)
	amountStyle   = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	proofStyle    = lipgloss.NewStyle().Foreground(colorWarn)

	toastStyle    = lipgloss.NewStyle().Foreground(colorSuccess).Background(colorSurface).Padding(0, 1)
	toastErrStyle = lipgloss.NewStyle().Foreground(colorError).Background(colorSurface).Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)
	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Padding(1, 2)
	modalTitleStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	alertTitleStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	keyStyle        = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	borderStyle     = lipgloss.NewStyle().Foreground(colorBorder)
)
