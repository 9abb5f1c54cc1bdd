package counters

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitd/internal/counters"
)

type AddCounterMsg struct{}

type ResetCounterMsg struct {
	ID string
}

type DeleteCounterMsg struct {
	ID   string
	Name string
}

type Item struct {
	Counter counters.View
}

func (i Item) Title() string {
	icon := i.Counter.Icon
	if icon == "" {
		icon = "⏱"
	}
	return icon + " " + i.Counter.Name
}

func (i Item) Description() string {
	d := time.Duration(i.Counter.ElapsedSeconds) * time.Second
	return fmt.Sprintf("%dd %dh %dm since %s", i.Counter.Days, int(d.Hours())%24, int(d.Minutes())%60,
		i.Counter.StartedAt.Local().Format("2006-01-02 15:04"))
}

func (i Item) FilterValue() string { return i.Counter.Name }

type KeyMap struct {
	Add    key.Binding
	Reset  key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Counters"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Reset, keys.Delete}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys}
}

func (m *Model) SetCounters(views []counters.View) {
	items := make([]list.Item, len(views))
	for i, v := range views {
		items[i] = Item{Counter: v}
	}
	m.list.SetItems(items)
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddCounterMsg{} }
		case key.Matches(msg, m.keys.Reset):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ResetCounterMsg{ID: i.Counter.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteCounterMsg{ID: i.Counter.ID, Name: i.Counter.Name} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No counters yet.\n  Press 'a' to start one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
