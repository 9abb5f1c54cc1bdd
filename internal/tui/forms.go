package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitd/internal/counters"
	"github.com/julianstephens/habitd/internal/habits"
)

type habitFormModel struct {
	Name        string
	Days        string
	Description string
	Interest    string
}

type counterFormModel struct {
	Name        string
	Description string
}

func validateDays(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number of days")
	}
	return nil
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func (m *Model) openHabitForm() {
	f := &habitFormModel{Days: "21"}

	interestOptions := []huh.Option[string]{huh.NewOption("None", "")}
	for _, it := range m.interestsModel.Items() {
		label := it.Interest.SubcategoryIcon + " " + it.Interest.SubcategoryName
		interestOptions = append(interestOptions, huh.NewOption(label, it.Interest.SubcategoryName))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&f.Name).Validate(notBlank),
			huh.NewInput().Title("Target days").Value(&f.Days).Validate(validateDays),
			huh.NewInput().Title("Description").Value(&f.Description),
			huh.NewSelect[string]().Title("Interest").Options(interestOptions...).Value(&f.Interest),
		),
	)
	m.submit = func() error {
		bg := context.Background()
		days, _ := strconv.Atoi(strings.TrimSpace(f.Days))
		in := habits.Input{Name: f.Name, Description: f.Description, DurationDays: days}
		if f.Interest != "" {
			subID, err := m.app.ResolveSubcategory(bg, f.Interest)
			if err != nil {
				return err
			}
			in.SubcategoryID = subID
		}
		_, err := m.app.Habits.Create(bg, m.app.Owner, in)
		return err
	}
	m.enterForm()
}

func (m *Model) openCounterForm() {
	f := &counterFormModel{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&f.Name).Validate(notBlank),
			huh.NewInput().Title("Description").Value(&f.Description),
		),
	)
	m.submit = func() error {
		_, err := m.app.Counters.Create(context.Background(), m.app.Owner, counters.Input{Name: f.Name, Description: f.Description})
		return err
	}
	m.enterForm()
}

func (m *Model) openInterestsForm() {
	selected := make(map[string]bool)
	for _, it := range m.interestsModel.Items() {
		selected[it.Interest.SubcategoryName] = true
	}

	var options []huh.Option[string]
	for _, entry := range m.app.Interests.Options() {
		if selected[entry.Subcategory] {
			continue
		}
		label := fmt.Sprintf("%s %s  (%s)", entry.SubcategoryIcon, entry.Subcategory, entry.Category)
		options = append(options, huh.NewOption(label, entry.Subcategory))
	}

	var names []string
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Add interests").
				Options(options...).
				Filterable(true).
				Height(12).
				Value(&names),
		),
	)
	m.submit = func() error {
		_, err := m.app.Interests.Select(context.Background(), m.app.Owner, names)
		return err
	}
	m.enterForm()
}

func (m *Model) enterForm() {
	m.previousState = m.state
	m.state = StateForm
	m.errorMsg = ""
	m.status = ""
}
