package session

import (
	"fmt"
	"testing"

	"github.com/julianstephens/shareplan/internal/models"
	"github.com/julianstephens/shareplan/internal/scheduler"
)

type friendMap map[string][]string

func (f friendMap) FriendIDs(userID string) []string {
	return f[userID]
}

func newTestSession(t *testing.T) (*EditSession, int) {
	t.Helper()
	n := 0
	factory := &scheduler.Factory{NewID: func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}}
	templates := scheduler.NewTemplates()
	daily := templates.Create(models.ScheduleDaily)
	m := scheduler.NewManager(templates, factory)
	return New(m, friendMap{"alice": {"bob", "carol"}}), daily.ID
}

func TestDeleteAndRecoverSchedule(t *testing.T) {
	sess, daily := newTestSession(t)
	m := sess.Manager()
	id, _ := m.CreateSchedule("alice", models.StatusPublic, "Workday", "2024 03 04", daily)
	_ = m.AddEvent(id, "Standup", "09:00", "09:30")

	if err := sess.DeleteSchedule(id); err != nil {
		t.Fatalf("DeleteSchedule failed: %v", err)
	}
	if _, err := m.Get(id); err == nil {
		t.Fatal("schedule still present after delete")
	}

	s, ok := sess.RecoverLast()
	if !ok {
		t.Fatal("RecoverLast returned false")
	}
	if s.ID != id || s.Name != "Workday" || len(s.Events["Standup"]) != 1 {
		t.Errorf("recovered schedule = %v, events %v", s, s.Events)
	}
	if tmpl, ok := m.TemplateOf(id); !ok || tmpl != daily {
		t.Errorf("TemplateOf = %d, %v, want %d", tmpl, ok, daily)
	}

	// Both stacks were popped together.
	if _, ok := sess.RecoverLast(); ok {
		t.Error("second RecoverLast returned true")
	}
	if err := sess.DeleteSchedule("missing"); err == nil {
		t.Error("DeleteSchedule(missing) returned nil error")
	}
}

func TestRecoverLast_LIFO(t *testing.T) {
	sess, daily := newTestSession(t)
	m := sess.Manager()
	a, _ := m.CreateSchedule("alice", models.StatusPublic, "A", "2024 03 04", daily)
	b, _ := m.CreateSchedule("alice", models.StatusPublic, "B", "2024 03 05", daily)
	_ = sess.DeleteSchedule(a)
	_ = sess.DeleteSchedule(b)

	first, _ := sess.RecoverLast()
	second, _ := sess.RecoverLast()
	if first.ID != b || second.ID != a {
		t.Errorf("recovered %s then %s, want %s then %s", first.ID, second.ID, b, a)
	}
}

func TestChangeStatusAndRestore(t *testing.T) {
	sess, daily := newTestSession(t)
	m := sess.Manager()
	id, _ := m.CreateSchedule("alice", models.StatusPublic, "Trip", "2024 03 04", daily)

	if err := sess.ChangeStatus(id, models.StatusFriendOnly); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if got := len(m.ListFriendShared("bob")); got != 1 {
		t.Fatalf("bob sees %d schedules, want 1", got)
	}

	if err := sess.ChangeStatus(id, models.StatusPrivate); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if got := len(m.ListFriendShared("bob")); got != 0 {
		t.Fatalf("bob sees %d schedules after private, want 0", got)
	}

	status, ok, err := sess.RestoreLast(id)
	if err != nil || !ok || status != models.StatusFriendOnly {
		t.Fatalf("RestoreLast = %v, %v, %v", status, ok, err)
	}
	if got := len(m.ListFriendShared("carol")); got != 1 {
		t.Errorf("carol sees %d schedules after restore, want 1", got)
	}

	status, ok, err = sess.RestoreLast(id)
	if err != nil || !ok || status != models.StatusPublic {
		t.Fatalf("RestoreLast = %v, %v, %v", status, ok, err)
	}
	s, _ := m.Get(id)
	if s.Status != models.StatusPublic {
		t.Errorf("status = %s, want public", s.Status)
	}

	if _, ok, _ := sess.RestoreLast(id); ok {
		t.Error("RestoreLast on empty stack returned true")
	}
}

func TestRestoreLast_SharedAcrossSchedules(t *testing.T) {
	sess, daily := newTestSession(t)
	m := sess.Manager()
	a, _ := m.CreateSchedule("alice", models.StatusPublic, "A", "2024 03 04", daily)
	b, _ := m.CreateSchedule("alice", models.StatusPrivate, "B", "2024 03 05", daily)

	_ = sess.ChangeStatus(a, models.StatusPrivate)

	// The stack is not keyed by schedule: B receives A's previous status.
	status, ok, err := sess.RestoreLast(b)
	if err != nil || !ok || status != models.StatusPublic {
		t.Fatalf("RestoreLast = %v, %v, %v", status, ok, err)
	}
	sb, _ := m.Get(b)
	sa, _ := m.Get(a)
	if sb.Status != models.StatusPublic || sa.Status != models.StatusPrivate {
		t.Errorf("statuses a=%s b=%s", sa.Status, sb.Status)
	}
}

func TestRestoreLast_SameStatusIsConsumed(t *testing.T) {
	sess, daily := newTestSession(t)
	m := sess.Manager()
	a, _ := m.CreateSchedule("alice", models.StatusPublic, "A", "2024 03 04", daily)
	b, _ := m.CreateSchedule("alice", models.StatusPrivate, "B", "2024 03 05", daily)

	_ = sess.ChangeStatus(a, models.StatusFriendOnly)
	_ = sess.ChangeStatus(b, models.StatusPublic)

	// Top of the stack is private; A is friend-only so it changes.
	if status, ok, err := sess.RestoreLast(a); err != nil || !ok || status != models.StatusPrivate {
		t.Fatalf("RestoreLast = %v, %v, %v", status, ok, err)
	}
	// Next is public; B already is, which is not an error.
	if status, ok, err := sess.RestoreLast(b); err != nil || !ok || status != models.StatusPublic {
		t.Fatalf("RestoreLast = %v, %v, %v", status, ok, err)
	}
	if _, statuses, _ := sess.Pending(); statuses != 0 {
		t.Errorf("pending statuses = %d, want 0", statuses)
	}
}

func TestDeleteAndRecoverEvent(t *testing.T) {
	sess, daily := newTestSession(t)
	m := sess.Manager()
	id, _ := m.CreateSchedule("alice", models.StatusPublic, "Day", "2024 03 04", daily)
	_ = m.AddEvent(id, "Gym", "07:00", "08:00")
	_ = m.AddEvent(id, "Gym", "18:00", "19:00")

	for _, r := range [][2]string{{"07:00", "08:00"}, {"18:00", "19:00"}} {
		ok, err := sess.DeleteEvent(id, "Gym", r[0], r[1])
		if err != nil || !ok {
			t.Fatalf("DeleteEvent(%s) = %v, %v", r[0], ok, err)
		}
	}

	got, ok, err := sess.RecoverLastEvent(id)
	if err != nil || !ok {
		t.Fatalf("RecoverLastEvent = %v, %v", ok, err)
	}
	if got.Name != "Gym" || got.Interval.Start.Hour() != 18 {
		t.Errorf("recovered %v", got)
	}

	// Only the latest interval per name is buffered, so the morning session
	// is gone for good.
	if _, ok, _ := sess.RecoverLastEvent(id); ok {
		t.Error("second RecoverLastEvent returned true")
	}
	events, _ := m.Events(id)
	if len(events["Gym"]) != 1 || events["Gym"][0].Start.Hour() != 18 {
		t.Errorf("events = %v", events)
	}
}

func TestRecoverLastEvent_SkipsValidation(t *testing.T) {
	sess, daily := newTestSession(t)
	m := sess.Manager()
	id, _ := m.CreateSchedule("alice", models.StatusPublic, "Day", "2024 03 04", daily)
	_ = m.AddEvent(id, "Call", "09:00", "10:00")
	_, _ = sess.DeleteEvent(id, "Call", "09:00", "10:00")

	tmpl, _ := m.Templates().Get(daily)
	tmpl.MaxEventHours = 0.75

	if _, ok, err := sess.RecoverLastEvent(id); err != nil || !ok {
		t.Fatalf("RecoverLastEvent = %v, %v", ok, err)
	}
	events, _ := m.Events(id)
	if len(events["Call"]) != 1 {
		t.Errorf("events = %v", events)
	}
}

func TestClear(t *testing.T) {
	sess, daily := newTestSession(t)
	m := sess.Manager()
	a, _ := m.CreateSchedule("alice", models.StatusPublic, "A", "2024 03 04", daily)
	b, _ := m.CreateSchedule("alice", models.StatusPublic, "B", "2024 03 05", daily)
	_ = m.AddEvent(b, "Gym", "07:00", "08:00")

	_ = sess.ChangeStatus(b, models.StatusPrivate)
	_, _ = sess.DeleteEvent(b, "Gym", "07:00", "08:00")
	_ = sess.DeleteSchedule(a)

	schedules, statuses, events := sess.Pending()
	if schedules != 1 || statuses != 1 || events != 1 {
		t.Fatalf("pending = %d, %d, %d", schedules, statuses, events)
	}

	sess.Clear()

	schedules, statuses, events = sess.Pending()
	if schedules != 0 || statuses != 0 || events != 0 {
		t.Errorf("pending after Clear = %d, %d, %d", schedules, statuses, events)
	}
	if _, found, _ := m.DeletedEvent(b, "Gym"); found {
		t.Error("deleted-event buffer survived Clear")
	}
	if _, ok := sess.RecoverLast(); ok {
		t.Error("RecoverLast after Clear returned true")
	}
}
