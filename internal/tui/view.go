package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.state {
	case StateForm:
		b.WriteString(m.form.View())
	case StateConfirm:
		b.WriteString(dangerStyle.Render(m.confirmPrompt))
		b.WriteString("\n\n(y/n)")
	default:
		b.WriteString(m.activeView())
	}

	b.WriteString("\n")
	switch {
	case m.errorMsg != "":
		b.WriteString(dangerStyle.Render("Error: " + m.errorMsg))
	case m.status != "":
		b.WriteString(successStyle.Render(m.status))
	case m.state == StateHabits && len(m.habitsModel.Items()) > 0 && m.interestsModel.Len() == 0:
		b.WriteString(warningStyle.Render("Tip: add interests to file habits under them"))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m))

	return docStyle.Render(b.String())
}

func (m Model) activeView() string {
	switch m.state {
	case StateCounters:
		return m.countersModel.View()
	case StateInterests:
		return m.interestsModel.View()
	default:
		return m.habitsModel.View()
	}
}

func (m Model) renderTabs() string {
	current := m.state
	if current == StateForm || current == StateConfirm {
		current = m.previousState
	}

	tabs := make([]string, len(tabTitles))
	for i, title := range tabTitles {
		if SessionState(i) == current {
			tabs[i] = activeTabStyle.Render(title)
		} else {
			tabs[i] = inactiveTabStyle.Render(title)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
