package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/studylog/internal/cli"
	"github.com/julianstephens/studylog/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	p := tea.NewProgram(tui.NewModel(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
