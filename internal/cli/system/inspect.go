package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/shareplan/internal/cli"
	"github.com/julianstephens/shareplan/internal/models"
)

type InspectStoragePathCmd struct{}

func (cmd *InspectStoragePathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{"path": ctx.Store.GetConfigPath()})
}

type InspectDumpScheduleCmd struct {
	ID string `arg:"" help:"ID of the schedule to dump."`
}

type scheduleDump struct {
	*models.Schedule
	TemplateID *int     `json:"template_id"`
	SharedWith []string `json:"shared_with"`
}

func (cmd *InspectDumpScheduleCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Manager.Get(cmd.ID)
	if err != nil {
		return err
	}
	dump := scheduleDump{Schedule: s, SharedWith: []string{}}
	if id, ok := ctx.Manager.TemplateOf(s.ID); ok {
		dump.TemplateID = &id
	}
	for _, viewer := range viewers(ctx) {
		for _, shared := range ctx.Manager.ListFriendShared(viewer) {
			if shared == s {
				dump.SharedWith = append(dump.SharedWith, viewer)
				break
			}
		}
	}
	return printJSON(ctx, dump)
}

func printJSON(ctx *cli.Context, v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}
