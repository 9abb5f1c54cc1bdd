package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitd/internal/tui/components/counters"
	"github.com/julianstephens/habitd/internal/tui/components/habits"
	"github.com/julianstephens/habitd/internal/tui/components/interests"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	switch m.state {
	case StateForm:
		return m.updateForm(msg)
	case StateConfirm:
		return m.updateConfirm(msg)
	}

	switch msg := msg.(type) {
	case habits.AddHabitMsg:
		m.openHabitForm()
		return m, m.form.Init()
	case habits.MarkHabitMsg:
		c, err := m.app.Habits.MarkDone(context.Background(), m.app.Owner, msg.ID)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		status := fmt.Sprintf("Marked done for %s, streak %d", c.Day, c.Streak)
		if c.Done {
			status = fmt.Sprintf("Habit complete! %d day streak reached", c.Streak)
		}
		m.errorMsg, m.status = "", status
		m.refresh()
		return m, nil
	case habits.DeleteHabitMsg:
		m.askConfirm(fmt.Sprintf("Delete habit %q?", msg.Name), "Habit deleted", func() error {
			return m.app.Habits.Delete(context.Background(), m.app.Owner, msg.ID)
		})
		return m, nil

	case counters.AddCounterMsg:
		m.openCounterForm()
		return m, m.form.Init()
	case counters.ResetCounterMsg:
		m.run("Counter reset", func() error {
			_, err := m.app.Counters.Reset(context.Background(), m.app.Owner, msg.ID)
			return err
		})
		return m, nil
	case counters.DeleteCounterMsg:
		m.askConfirm(fmt.Sprintf("Delete counter %q?", msg.Name), "Counter deleted", func() error {
			return m.app.Counters.Delete(context.Background(), m.app.Owner, msg.ID)
		})
		return m, nil

	case interests.AddInterestsMsg:
		m.openInterestsForm()
		return m, m.form.Init()
	case interests.RemoveInterestMsg:
		m.askConfirm(fmt.Sprintf("Remove interest %q?", msg.Name), "Interest removed", func() error {
			return m.app.Interests.Remove(context.Background(), m.app.Owner, msg.ID)
		})
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state + SessionState(len(tabTitles)) - 1) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.errorMsg, m.status = "", ""
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateHabits:
		m.habitsModel, cmd = m.habitsModel.Update(msg)
	case StateCounters:
		m.countersModel, cmd = m.countersModel.Update(msg)
	case StateInterests:
		m.interestsModel, cmd = m.interestsModel.Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.closeForm()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		submit := m.submit
		m.closeForm()
		m.run("Saved", submit)
		return m, nil
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	}
	return m, cmd
}

func (m *Model) closeForm() {
	m.form = nil
	m.submit = nil
	m.state = m.previousState
}

func (m *Model) askConfirm(prompt, success string, fn func() error) {
	m.previousState = m.state
	m.state = StateConfirm
	m.confirmPrompt = prompt
	m.confirmSuccess = success
	m.confirmed = fn
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "y", "Y":
		fn, success := m.confirmed, m.confirmSuccess
		m.clearConfirm()
		m.run(success, fn)
	case "n", "N", "esc":
		m.clearConfirm()
	}
	return m, nil
}

func (m *Model) clearConfirm() {
	m.confirmPrompt = ""
	m.confirmSuccess = ""
	m.confirmed = nil
	m.state = m.previousState
}

func (m *Model) resize() {
	h, v := docStyle.GetFrameSize()
	// tabs, status line and help
	listHeight := m.height - v - 6
	if listHeight < 0 {
		listHeight = 0
	}
	m.habitsModel.SetSize(m.width-h, listHeight)
	m.countersModel.SetSize(m.width-h, listHeight)
	m.interestsModel.SetSize(m.width-h, listHeight)
}
