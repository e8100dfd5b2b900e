package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	ColorWhite  = lipgloss.Color("15")
	ColorGray   = lipgloss.Color("8")
	ColorBlue   = lipgloss.Color("12")
	ColorGreen  = lipgloss.Color("10")
	ColorRed    = lipgloss.Color("9")
	ColorOrange = lipgloss.Color("214")
	ColorPink   = lipgloss.Color("205")
	ColorNavy   = lipgloss.Color("#1B2B4B")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPink)

	dimStyle  = lipgloss.NewStyle().Faint(true)
	boldStyle = lipgloss.NewStyle().Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(ColorRed)
	okStyle   = lipgloss.NewStyle().Foreground(ColorGreen)
	warnStyle = lipgloss.NewStyle().Foreground(ColorOrange)

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(ColorOrange).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	focusedCardStyle = cardStyle.
				BorderForeground(ColorPink)

	linkStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBlue)

	sectionHeaderStyle = lipgloss.NewStyle().Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Reverse(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorBlue).
			Padding(0, 1)

	disabledButtonStyle = lipgloss.NewStyle().
				Foreground(ColorGray).
				Padding(0, 1)

	toastSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(ColorGreen).
				Padding(0, 1)

	toastErrorStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorRed).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(ColorWhite)
)
