package templates

import (
	"fmt"

	"github.com/julianstephens/shareplan/internal/cli"
	"github.com/julianstephens/shareplan/internal/models"
)

type TemplateListCmd struct{}

func (c *TemplateListCmd) Run(ctx *cli.Context) error {
	templates := ctx.Manager.Templates().List()
	if len(templates) == 0 {
		ctx.Println("No templates found. Run 'shareplan init' or 'shareplan template create'.")
		return nil
	}
	for _, tmpl := range templates {
		ctx.Println(tmpl.String())
	}
	return nil
}

type TemplateCreateCmd struct {
	Type     string   `arg:"" help:"Schedule type: daily, weekly, or monthly."`
	MinGap   *float64 `help:"Minimum hours between events (-1 disables the check)."`
	MinEvent *float64 `help:"Minimum event length in hours."`
	MaxEvent *float64 `help:"Maximum event length in hours."`
}

func (c *TemplateCreateCmd) Run(ctx *cli.Context) error {
	t, err := models.ParseScheduleType(c.Type)
	if err != nil {
		return err
	}
	policy := models.NewTemplate(0, t)
	if err := applyPolicy(&policy, c.MinGap, c.MinEvent, c.MaxEvent); err != nil {
		return err
	}

	tmpl := ctx.Manager.Templates().Create(t)
	tmpl.MinGapHours = policy.MinGapHours
	tmpl.MinEventHours = policy.MinEventHours
	tmpl.MaxEventHours = policy.MaxEventHours
	if err := ctx.SaveState(); err != nil {
		return err
	}
	ctx.Printf("✓ Created template %d\n", tmpl.ID)
	ctx.Println(tmpl.String())
	return nil
}

type TemplateEditCmd struct {
	ID       int      `arg:"" help:"Template ID."`
	MinGap   *float64 `help:"Minimum hours between events (-1 disables the check)."`
	MinEvent *float64 `help:"Minimum event length in hours."`
	MaxEvent *float64 `help:"Maximum event length in hours."`
}

func (c *TemplateEditCmd) Run(ctx *cli.Context) error {
	tmpl, err := ctx.Manager.Templates().Get(c.ID)
	if err != nil {
		return err
	}
	if c.MinGap == nil && c.MinEvent == nil && c.MaxEvent == nil {
		return fmt.Errorf("nothing to change: pass --min-gap, --min-event, or --max-event")
	}

	updated := *tmpl
	if err := applyPolicy(&updated, c.MinGap, c.MinEvent, c.MaxEvent); err != nil {
		return err
	}
	*tmpl = updated
	if err := ctx.SaveState(); err != nil {
		return err
	}
	ctx.Printf("✓ Updated template %d\n", tmpl.ID)
	ctx.Println(tmpl.String())
	return nil
}

// applyPolicy sets the given fields on tmpl and checks the result.
func applyPolicy(tmpl *models.Template, minGap, minEvent, maxEvent *float64) error {
	if minGap != nil {
		tmpl.MinGapHours = *minGap
	}
	if minEvent != nil {
		tmpl.MinEventHours = *minEvent
	}
	if maxEvent != nil {
		tmpl.MaxEventHours = *maxEvent
	}

	if tmpl.MinGapHours < 0 && tmpl.MinGapHours != models.NoGapCheck {
		return fmt.Errorf("minimum gap must be zero or more, or %g to disable it", models.NoGapCheck)
	}
	if tmpl.MinEventHours < 0 {
		return fmt.Errorf("minimum event length cannot be negative")
	}
	if tmpl.MinEventHours > tmpl.MaxEventHours {
		return fmt.Errorf("minimum event length (%gh) is greater than the maximum (%gh)", tmpl.MinEventHours, tmpl.MaxEventHours)
	}
	return nil
}

type TemplateDeleteCmd struct {
	ID int `arg:"" help:"Template ID."`
}

func (c *TemplateDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Manager.Templates().Delete(c.ID); err != nil {
		return err
	}
	bound := 0
	for _, templateID := range ctx.Manager.Bindings() {
		if templateID == c.ID {
			bound++
		}
	}
	if err := ctx.SaveState(); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted template %d\n", c.ID)
	if bound > 0 {
		ctx.Printf("  Warning: %d schedule(s) still use it and can no longer take new events.\n", bound)
	}
	return nil
}
