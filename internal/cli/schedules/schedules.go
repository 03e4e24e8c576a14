package schedules

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/shareplan/internal/cli"
	"github.com/julianstephens/shareplan/internal/ics"
	"github.com/julianstephens/shareplan/internal/models"
)

var ErrNotVisible = errors.New("schedule is not visible to this user")

type ScheduleCreateCmd struct {
	User     string `help:"Owner of the new schedule." required:""`
	Template int    `help:"Template ID the schedule follows." required:""`
	Date     string `arg:"" help:"Date key: \"YYYY MM DD\" for daily and weekly, \"YYYY MM\" for monthly."`
	Name     string `arg:"" help:"Schedule name."`
	Status   string `help:"Visibility." enum:"public,private,friend-only" default:"public"`
}

func (c *ScheduleCreateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Directory.CheckCanEdit(c.User); err != nil {
		return err
	}
	status := models.Status(c.Status)
	id, err := ctx.Manager.CreateSchedule(c.User, status, c.Name, c.Date, c.Template)
	if err != nil {
		return err
	}
	if status == models.StatusFriendOnly {
		if err := ctx.Manager.ShareToFriends(id, ctx.Directory); err != nil {
			return err
		}
	}
	if err := ctx.SaveState(); err != nil {
		return err
	}
	ctx.Printf("✓ Created schedule %s\n", id)
	return nil
}

type ScheduleListCmd struct {
	All        bool   `help:"List every schedule (default)." xor:"scope"`
	Public     bool   `help:"List public schedules only." xor:"scope"`
	Owner      string `help:"List the schedules of one owner." xor:"scope"`
	SharedWith string `help:"List the friend-only schedules shared with a user." xor:"scope"`
}

func (c *ScheduleListCmd) Run(ctx *cli.Context) error {
	var list []*models.Schedule
	switch {
	case c.Owner != "":
		owned, err := ctx.Manager.ListForOwner(c.Owner)
		if err != nil {
			return err
		}
		list = owned
	case c.SharedWith != "":
		list = ctx.Manager.ListFriendShared(c.SharedWith)
	case c.Public:
		list = ctx.Manager.ListPublic()
	default:
		list = ctx.Manager.AllSchedules()
	}

	if len(list) == 0 {
		ctx.Println("No schedules found.")
		return nil
	}
	for _, s := range list {
		ctx.Println(s.String())
	}
	return nil
}

type ScheduleShowCmd struct {
	ID   string `arg:"" help:"Schedule ID."`
	User string `help:"Show the schedule as this user sees it."`
}

func (c *ScheduleShowCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Manager.Get(c.ID)
	if err != nil {
		return err
	}
	if !ctx.CanView(c.User, s) {
		return fmt.Errorf("%w: %s", ErrNotVisible, c.ID)
	}

	ctx.Println(s.String())
	if templateID, ok := ctx.Manager.TemplateOf(s.ID); ok {
		ctx.Printf("Template: %d\n", templateID)
	}
	if len(s.Events) == 0 {
		ctx.Println("No events.")
		return nil
	}
	for _, o := range s.Occurrences() {
		ctx.Printf("  %s  %s\n", cli.FormatInterval(o.Interval), o.Name)
	}
	return nil
}

type ScheduleStatusCmd struct {
	ID     string `arg:"" help:"Schedule ID."`
	Status string `arg:"" help:"New visibility." enum:"public,private,friend-only"`
	User   string `help:"Acting user; must own the schedule." required:""`
}

func (c *ScheduleStatusCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.CheckOwner(c.User, c.ID); err != nil {
		return err
	}
	status := models.Status(c.Status)
	if err := ctx.Manager.ChangeStatus(c.ID, status); err != nil {
		return err
	}
	if status == models.StatusFriendOnly {
		if err := ctx.Manager.ShareToFriends(c.ID, ctx.Directory); err != nil {
			return err
		}
	}
	if err := ctx.SaveState(); err != nil {
		return err
	}
	ctx.Printf("✓ Schedule %s is now %s\n", c.ID, status)
	return nil
}

type ScheduleDeleteCmd struct {
	ID   string `arg:"" help:"Schedule ID."`
	User string `help:"Acting user; must own the schedule." required:""`
	Yes  bool   `help:"Skip confirmation." short:"y"`
}

func (c *ScheduleDeleteCmd) Run(ctx *cli.Context) error {
	s, err := ctx.CheckOwner(c.User, c.ID)
	if err != nil {
		return err
	}
	if !c.Yes && !ctx.Confirm(fmt.Sprintf("Delete schedule %q (%s)?", s.Name, s.ID)) {
		ctx.Println("Delete cancelled.")
		return nil
	}

	ctx.PerformAutomaticBackup()
	ctx.Manager.DeleteSchedule(c.ID)
	if err := ctx.SaveState(); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted schedule %s\n", c.ID)
	return nil
}

type ScheduleShareCmd struct {
	ID   string `arg:"" help:"Schedule ID."`
	User string `help:"Acting user; must own the schedule." required:""`
}

func (c *ScheduleShareCmd) Run(ctx *cli.Context) error {
	s, err := ctx.CheckOwner(c.User, c.ID)
	if err != nil {
		return err
	}
	if s.Status != models.StatusFriendOnly {
		return fmt.Errorf("only friend-only schedules are shared; %s is %s", c.ID, s.Status)
	}
	if err := ctx.Manager.ShareToFriends(c.ID, ctx.Directory); err != nil {
		return err
	}
	if err := ctx.SaveState(); err != nil {
		return err
	}
	ctx.Printf("✓ Shared schedule %s with %d friend(s)\n", c.ID, len(ctx.Directory.FriendIDs(s.Owner)))
	return nil
}

type ScheduleExportCmd struct {
	ID     string `arg:"" help:"Schedule ID."`
	User   string `help:"Export the schedule as this user sees it."`
	Output string `help:"Write the calendar to this file instead of stdout." short:"o" type:"path"`
}

func (c *ScheduleExportCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Manager.Get(c.ID)
	if err != nil {
		return err
	}
	if !ctx.CanView(c.User, s) {
		return fmt.Errorf("%w: %s", ErrNotVisible, c.ID)
	}

	if c.Output == "" {
		return ics.Export(ctx.Out, s, ctx.Now())
	}
	f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", c.Output, err)
	}
	if err := ics.Export(f, s, ctx.Now()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Output, err)
	}
	ctx.Printf("✓ Exported schedule %s to %s\n", c.ID, c.Output)
	return nil
}
