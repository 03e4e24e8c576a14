package storage

import (
	"github.com/julianstephens/shareplan/internal/logger"
	"github.com/julianstephens/shareplan/internal/models"
	"github.com/julianstephens/shareplan/internal/scheduler"
)

// Snapshot is everything that survives a restart. Friend-visible lists
// hold schedule ids; Restore turns them back into the shared schedules.
type Snapshot struct {
	Templates        []models.Template             `json:"templates"`
	NextTemplateID   int                           `json:"next_template_id"`
	SchedulesByOwner map[string][]*models.Schedule `json:"schedules_by_owner"`
	Bindings         map[string]int                `json:"bindings"`
	FriendVisible    map[string][]string           `json:"friend_visible"`
}

// Capture copies the manager's collections into a snapshot. Schedules are
// shared, not cloned.
func Capture(m *scheduler.Manager) Snapshot {
	snap := Snapshot{
		Templates:        m.Templates().List(),
		NextTemplateID:   m.Templates().NextID(),
		SchedulesByOwner: make(map[string][]*models.Schedule),
		Bindings:         make(map[string]int, len(m.Bindings())),
		FriendVisible:    make(map[string][]string),
	}
	for owner, list := range m.SchedulesByOwner() {
		if len(list) == 0 {
			continue
		}
		snap.SchedulesByOwner[owner] = append([]*models.Schedule(nil), list...)
	}
	for id, tmpl := range m.Bindings() {
		snap.Bindings[id] = tmpl
	}
	for friend, list := range m.FriendVisible() {
		if len(list) == 0 {
			continue
		}
		ids := make([]string, len(list))
		for i, s := range list {
			ids[i] = s.ID
		}
		snap.FriendVisible[friend] = ids
	}
	return snap
}

// Restore replaces the manager's state with snap. Shared ids that no
// longer name a schedule are dropped.
func Restore(snap Snapshot, m *scheduler.Manager) {
	m.Templates().Replace(snap.Templates, snap.NextTemplateID)

	byOwner := make(map[string][]*models.Schedule, len(snap.SchedulesByOwner))
	byID := make(map[string]*models.Schedule)
	for owner, list := range snap.SchedulesByOwner {
		for _, s := range list {
			if s.Events == nil {
				s.Events = make(map[string][]models.Interval)
			}
			s.DeletedEvents = make(map[string]models.Interval)
			byID[s.ID] = s
		}
		byOwner[owner] = list
	}
	m.SetSchedulesByOwner(byOwner)

	bindings := make(map[string]int, len(snap.Bindings))
	for id, tmpl := range snap.Bindings {
		bindings[id] = tmpl
	}
	m.SetBindings(bindings)

	visible := make(map[string][]*models.Schedule, len(snap.FriendVisible))
	for friend, ids := range snap.FriendVisible {
		for _, id := range ids {
			s, ok := byID[id]
			if !ok {
				logger.Warn("Dropping share of unknown schedule", "friend", friend, "schedule", id)
				continue
			}
			visible[friend] = append(visible[friend], s)
		}
	}
	m.SetFriendVisible(visible)
}
