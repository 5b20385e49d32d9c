package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(1)
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))
	cellStyle     = lipgloss.NewStyle()
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Reverse(true)
	emptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	noStyle       = lipgloss.NewStyle()
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle     = blurredStyle.MarginLeft(1)
	focusedButton = focusedStyle.Render("[ Save ]")
	blurredButton = "[ " + blurredStyle.Render("Save") + " ]"
)

const (
	fieldColumnWidth = 30
	flagColumnWidth  = 10
)
