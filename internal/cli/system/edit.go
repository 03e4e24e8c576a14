package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/shareplan/internal/cli"
	"github.com/julianstephens/shareplan/internal/session"
	"github.com/julianstephens/shareplan/internal/tui"
)

// EditCmd opens an interactive edit session. Undo history lives only for
// the length of the session.
type EditCmd struct {
	User string `help:"User whose schedules to edit." required:""`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	if err := ctx.Directory.CheckCanEdit(c.User); err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	sess := session.New(ctx.Manager, ctx.Directory)
	p := tea.NewProgram(tui.NewModel(sess, c.User), tea.WithAltScreen())
	_, runErr := p.Run()

	sess.Clear()
	if err := ctx.SaveState(); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("edit session failed: %w", runErr)
	}
	ctx.Println("✓ Changes saved")
	return nil
}
