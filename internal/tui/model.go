// Package tui is the interactive dashboard over the habit, counter and
// interest services.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitd/internal/cli"
	"github.com/julianstephens/habitd/internal/tui/components/counters"
	"github.com/julianstephens/habitd/internal/tui/components/habits"
	"github.com/julianstephens/habitd/internal/tui/components/interests"
)

type SessionState int

// Tab states come first, in display order
const (
	StateHabits SessionState = iota
	StateCounters
	StateInterests
	StateForm
	StateConfirm
)

var tabTitles = []string{"Habits", "Counters", "Interests"}

type Model struct {
	app            *cli.Context
	state          SessionState
	previousState  SessionState
	keys           KeyMap
	help           help.Model
	habitsModel    habits.Model
	countersModel  counters.Model
	interestsModel interests.Model

	form *huh.Form
	// submit runs when the active form completes
	submit func() error

	confirmPrompt  string
	confirmSuccess string
	// confirmed runs when the user answers yes
	confirmed func() error

	status   string
	errorMsg string
	quitting bool
	width    int
	height   int
}

func NewModel(app *cli.Context) Model {
	m := Model{
		app:            app,
		state:          StateHabits,
		keys:           DefaultKeyMap(),
		help:           help.New(),
		habitsModel:    habits.New(0, 0),
		countersModel:  counters.New(0, 0),
		interestsModel: interests.New(0, 0),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// refresh reloads every tab from the services
func (m *Model) refresh() {
	bg := context.Background()

	habitList, err := m.app.Habits.List(bg, m.app.Owner)
	if err != nil {
		m.errorMsg = err.Error()
		return
	}
	m.habitsModel.SetHabits(habitList)

	counterList, err := m.app.Counters.List(bg, m.app.Owner)
	if err != nil {
		m.errorMsg = err.Error()
		return
	}
	m.countersModel.SetCounters(counterList)

	interestList, err := m.app.Interests.List(bg, m.app.Owner)
	if err != nil {
		m.errorMsg = err.Error()
		return
	}
	m.interestsModel.SetInterests(interestList)
}

// run performs a mutation, then reports its outcome and refreshes
func (m *Model) run(success string, fn func() error) {
	if err := fn(); err != nil {
		m.fail(err)
		return
	}
	m.errorMsg = ""
	m.status = success
	m.refresh()
}

func (m *Model) fail(err error) {
	m.errorMsg = err.Error()
	m.status = ""
}
