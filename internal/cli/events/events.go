package events

import (
	"fmt"

	"github.com/julianstephens/shareplan/internal/cli"
)

type EventAddCmd struct {
	ID    string `arg:"" help:"Schedule ID."`
	Name  string `arg:"" help:"Event name."`
	Start string `arg:"" help:"Start time (daily \"HH:mm\", weekly \"MM DD HH:mm\", monthly \"DD HH:mm\")."`
	End   string `arg:"" help:"End time, same layout as the start."`
	User  string `help:"Acting user; must own the schedule." required:""`
}

func (c *EventAddCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.CheckOwner(c.User, c.ID); err != nil {
		return err
	}
	if err := ctx.Manager.AddEvent(c.ID, c.Name, c.Start, c.End); err != nil {
		return err
	}
	if err := ctx.SaveState(); err != nil {
		return err
	}
	ctx.Printf("✓ Added %q to schedule %s\n", c.Name, c.ID)
	return nil
}

type EventDeleteCmd struct {
	ID    string `arg:"" help:"Schedule ID."`
	Name  string `arg:"" help:"Event name."`
	Start string `arg:"" help:"Start time of the interval to delete."`
	End   string `arg:"" help:"End time of the interval to delete."`
	User  string `help:"Acting user; must own the schedule." required:""`
}

func (c *EventDeleteCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.CheckOwner(c.User, c.ID); err != nil {
		return err
	}
	ok, err := ctx.Manager.DeleteEvent(c.ID, c.Name, c.Start, c.End)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no %q event from %s to %s in schedule %s", c.Name, c.Start, c.End, c.ID)
	}
	if err := ctx.SaveState(); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted %q from schedule %s\n", c.Name, c.ID)
	return nil
}
