package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "#D9006C", Dark: "205"}
	subtle = lipgloss.AdaptiveColor{Light: "#A0A0A0", Dark: "240"}

	tabBorder = lipgloss.RoundedBorder()

	activeTabStyle = lipgloss.NewStyle().
			Border(tabBorder, true, true, false, true).
			BorderForeground(accent).
			Foreground(accent).
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Border(tabBorder, true, true, false, true).
				BorderForeground(subtle).
				Foreground(subtle).
				Padding(0, 1)

	dangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)
