package system

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/shareplan/internal/constants"
	"github.com/julianstephens/shareplan/internal/identity"
	"github.com/julianstephens/shareplan/internal/models"
)

func TestDoctorCmd_Healthy(t *testing.T) {
	ctx, _, out := setupTestInitDB(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	out.Reset()

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed: %v\n%s", err, out.String())
	}
	got := out.String()
	for _, want := range []string{
		"✓ Storage reachable: OK",
		"✓ Schema version: OK",
		"⚠ Backups present: WARNING",
		"✓ Data validation: OK",
		"All diagnostics passed!",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestDoctorCmd_Uninitialized(t *testing.T) {
	ctx, _, out := setupTestInitDB(t)

	err := (&DoctorCmd{}).Run(ctx)
	if !errors.Is(err, errChecksFailed) {
		t.Fatalf("Run() error = %v, want errChecksFailed", err)
	}
	if !strings.Contains(out.String(), "⊘ Data validation: SKIPPED") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestDoctorCmd_BadClock(t *testing.T) {
	ctx, _, out := setupTestInitDB(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	ctx.Now = func() time.Time { return time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC) }

	if err := (&DoctorCmd{}).Run(ctx); !errors.Is(err, errChecksFailed) {
		t.Fatalf("Run() error = %v, want errChecksFailed", err)
	}
	if !strings.Contains(out.String(), "❌ Clock: FAIL") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestValidateCmd(t *testing.T) {
	ctx, _, out := setupTestInitDB(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	id, err := ctx.Manager.CreateSchedule("alice", models.StatusPublic, "Work", "2024 03 04", constants.FirstTemplateID)
	if err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}
	if err := ctx.Manager.AddEvent(id, "Standup", "09:00", "10:00"); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}
	tmpl, _ := ctx.Manager.Templates().Get(constants.FirstTemplateID)
	tmpl.MinEventHours = 2
	out.Reset()

	if err := (&ValidateCmd{}).Run(ctx); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out.String(), "Conflicts detected:") || !strings.Contains(out.String(), "Standup") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestInspectDumpScheduleCmd(t *testing.T) {
	ctx, _, out := setupTestInitDB(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	ctx.Directory = identity.NewDirectory(map[string][]string{"alice": {"bob"}}, nil)
	id, err := ctx.Manager.CreateSchedule("alice", models.StatusFriendOnly, "Trips", "2024 03 04", constants.FirstTemplateID)
	if err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}
	if err := ctx.Manager.ShareToFriends(id, ctx.Directory); err != nil {
		t.Fatalf("ShareToFriends() error = %v", err)
	}
	out.Reset()

	if err := (&InspectDumpScheduleCmd{ID: id}).Run(ctx); err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	var dump struct {
		ID         string   `json:"id"`
		Owner      string   `json:"owner"`
		TemplateID int      `json:"template_id"`
		SharedWith []string `json:"shared_with"`
	}
	if err := json.Unmarshal(out.Bytes(), &dump); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if dump.ID != id || dump.Owner != "alice" || dump.TemplateID != constants.FirstTemplateID {
		t.Errorf("unexpected dump: %+v", dump)
	}
	if len(dump.SharedWith) != 1 || dump.SharedWith[0] != "bob" {
		t.Errorf("SharedWith = %v, want [bob]", dump.SharedWith)
	}

	if err := (&InspectDumpScheduleCmd{ID: "missing"}).Run(ctx); err == nil {
		t.Error("expected error for unknown schedule")
	}
}

func TestInspectStoragePathCmd(t *testing.T) {
	ctx, dbPath, out := setupTestInitDB(t)
	if err := (&InspectStoragePathCmd{}).Run(ctx); err != nil {
		t.Fatalf("storage-path failed: %v", err)
	}
	if !strings.Contains(out.String(), dbPath) {
		t.Errorf("output %q does not contain %s", out.String(), dbPath)
	}
}
