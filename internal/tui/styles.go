package tui

import "github.com/charmbracelet/lipgloss"

// Colors shared by the browser and the CLI's static tables.
var (
	ColorHeader    = lipgloss.Color("39")
	ColorLabel     = lipgloss.Color("245")
	ColorMuted     = lipgloss.Color("241")
	ColorHighlight = lipgloss.Color("212")
	ColorError     = lipgloss.Color("196")
)

var (
	TitleStyle         = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true).MarginBottom(1)
	FooterStyle        = lipgloss.NewStyle().Foreground(ColorLabel)
	HelpStyle          = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
	ErrorStyle         = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	TableSelectedStyle = lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
)

// TableHeaderStyle underlines table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Foreground(ColorHeader).
	Bold(true).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true)
