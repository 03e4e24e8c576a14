package templates

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/shareplan/internal/cli"
	"github.com/julianstephens/shareplan/internal/config"
	"github.com/julianstephens/shareplan/internal/constants"
	"github.com/julianstephens/shareplan/internal/models"
	"github.com/julianstephens/shareplan/internal/scheduler"
	"github.com/julianstephens/shareplan/internal/storage"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := cli.NewContext(store, config.DefaultConfig())
	out := &bytes.Buffer{}
	ctx.Out = out
	return ctx, out
}

func reload(t *testing.T, ctx *cli.Context) *cli.Context {
	t.Helper()
	fresh := cli.NewContext(ctx.Store, ctx.Config)
	if err := fresh.LoadState(); err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	return fresh
}

func float(v float64) *float64 { return &v }

func TestTemplateCreateCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&TemplateCreateCmd{Type: "weekly", MaxEvent: float(100), MinGap: float(models.NoGapCheck)}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.Contains(out.String(), "Created template 10000") {
		t.Errorf("unexpected output: %q", out.String())
	}

	tmpl, err := reload(t, ctx).Manager.Templates().Get(constants.FirstTemplateID)
	if err != nil {
		t.Fatalf("template not persisted: %v", err)
	}
	if tmpl.Type != models.ScheduleWeekly || tmpl.MaxEventHours != 100 || tmpl.ChecksGap() {
		t.Errorf("persisted template = %+v", tmpl)
	}
}

func TestTemplateCreateCmd_Invalid(t *testing.T) {
	ctx, _ := setupTestContext(t)

	tests := []struct {
		name string
		cmd  TemplateCreateCmd
	}{
		{"unknown type", TemplateCreateCmd{Type: "yearly"}},
		{"min above max", TemplateCreateCmd{Type: "daily", MinEvent: float(5), MaxEvent: float(2)}},
		{"negative gap", TemplateCreateCmd{Type: "daily", MinGap: float(-2)}},
		{"negative min", TemplateCreateCmd{Type: "daily", MinEvent: float(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Run(ctx); err == nil {
				t.Error("expected an error")
			}
		})
	}
	if got := ctx.Manager.Templates().NextID(); got != constants.FirstTemplateID {
		t.Errorf("rejected creates consumed ids: NextID() = %d", got)
	}
}

func TestTemplateEditCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	ctx.Manager.Templates().SeedDefaults()

	if err := (&TemplateEditCmd{ID: constants.FirstTemplateID}).Run(ctx); err == nil {
		t.Error("expected an error when nothing changes")
	}
	if err := (&TemplateEditCmd{ID: constants.FirstTemplateID, MinEvent: float(30)}).Run(ctx); err == nil {
		t.Error("expected an error when min exceeds max")
	}
	if err := (&TemplateEditCmd{ID: 42, MinGap: float(1)}).Run(ctx); !errors.Is(err, scheduler.ErrTemplateNotFound) {
		t.Errorf("edit of unknown template error = %v, want ErrTemplateNotFound", err)
	}

	if err := (&TemplateEditCmd{ID: constants.FirstTemplateID, MinGap: float(0.5), MaxEvent: float(8)}).Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	tmpl, _ := reload(t, ctx).Manager.Templates().Get(constants.FirstTemplateID)
	if tmpl.MinGapHours != 0.5 || tmpl.MaxEventHours != 8 || tmpl.MinEventHours != 0.5 {
		t.Errorf("edited template = %+v", tmpl)
	}
}

func TestTemplateDeleteCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	ctx.Manager.Templates().SeedDefaults()
	if _, err := ctx.Manager.CreateSchedule("alice", models.StatusPublic, "A", "2024 03 04", constants.FirstTemplateID); err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}

	if err := (&TemplateDeleteCmd{ID: constants.FirstTemplateID}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !strings.Contains(out.String(), "1 schedule(s) still use it") {
		t.Errorf("missing bound-schedule warning: %q", out.String())
	}
	if err := (&TemplateDeleteCmd{ID: constants.FirstTemplateID}).Run(ctx); !errors.Is(err, scheduler.ErrTemplateNotFound) {
		t.Errorf("second delete error = %v, want ErrTemplateNotFound", err)
	}

	fresh := reload(t, ctx)
	if fresh.Manager.Templates().Exists(constants.FirstTemplateID) {
		t.Error("deleted template came back after reload")
	}
	if got := fresh.Manager.Templates().NextID(); got != constants.FirstTemplateID+3 {
		t.Errorf("NextID() after reload = %d, want %d", got, constants.FirstTemplateID+3)
	}
}

func TestTemplateListCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := (&TemplateListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No templates found") {
		t.Errorf("unexpected empty output: %q", out.String())
	}

	out.Reset()
	ctx.Manager.Templates().SeedDefaults()
	if err := (&TemplateListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "ID: 10000, Type: Daily") {
		t.Errorf("list output = %q", out.String())
	}
}
