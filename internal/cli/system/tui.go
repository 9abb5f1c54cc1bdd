package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitd/internal/cli"
	"github.com/julianstephens/habitd/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	// Automatic backup on startup, after the store loaded
	ctx.PerformAutomaticBackup()

	p := tea.NewProgram(tui.NewModel(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
