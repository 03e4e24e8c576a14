package scheduler

import (
	"fmt"
	"sort"

	"github.com/julianstephens/shareplan/internal/logger"
	"github.com/julianstephens/shareplan/internal/models"
)

// FriendDirectory answers friend lookups for sharing.
type FriendDirectory interface {
	FriendIDs(userID string) []string
}

// Manager owns the authoritative schedule collections.
//
// Manager is not safe for concurrent use; confine it to one session or
// synchronize externally.
type Manager struct {
	templates *Templates
	factory   *Factory

	// schedulesByOwner keeps each owner's schedules in insertion order.
	schedulesByOwner map[string][]*models.Schedule
	// bindings maps schedule id to the template it was created from.
	bindings map[string]int
	// friendVisible is derived: friend id to the friend-only schedules shared
	// with them. The schedule itself is the source of truth.
	friendVisible map[string][]*models.Schedule
}

func NewManager(templates *Templates, factory *Factory) *Manager {
	if factory == nil {
		factory = NewFactory()
	}
	return &Manager{
		templates:        templates,
		factory:          factory,
		schedulesByOwner: make(map[string][]*models.Schedule),
		bindings:         make(map[string]int),
		friendVisible:    make(map[string][]*models.Schedule),
	}
}

func (m *Manager) Templates() *Templates {
	return m.templates
}

// CreateSchedule builds a schedule from templateID and stores it under owner.
func (m *Manager) CreateSchedule(owner string, status models.Status, name, date string, templateID int) (string, error) {
	tmpl, err := m.templates.Get(templateID)
	if err != nil {
		return "", err
	}
	s, err := m.factory.Create(tmpl.Type, date, name, owner, status)
	if err != nil {
		return "", err
	}
	m.schedulesByOwner[owner] = append(m.schedulesByOwner[owner], s)
	m.bindings[s.ID] = templateID
	logger.Debug("Schedule created", "schedule", s.ID, "owner", owner, "template", templateID, "type", tmpl.Type)
	return s.ID, nil
}

// Get finds a schedule by id among all owners.
func (m *Manager) Get(scheduleID string) (*models.Schedule, error) {
	for _, list := range m.schedulesByOwner {
		for _, s := range list {
			if s.ID == scheduleID {
				return s, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrScheduleNotFound, scheduleID)
}

func (m *Manager) BelongsTo(owner, scheduleID string) bool {
	for _, s := range m.schedulesByOwner[owner] {
		if s.ID == scheduleID {
			return true
		}
	}
	return false
}

// TemplateOf returns the template id a schedule was created from.
func (m *Manager) TemplateOf(scheduleID string) (int, bool) {
	id, ok := m.bindings[scheduleID]
	return id, ok
}

func (m *Manager) templateFor(s *models.Schedule) (*models.Template, error) {
	id, ok := m.bindings[s.ID]
	if !ok {
		return nil, fmt.Errorf("%w: no template bound to schedule %s", ErrTemplateNotFound, s.ID)
	}
	return m.templates.Get(id)
}

// owners returns owner ids in lexical order so listings are stable.
func (m *Manager) owners() []string {
	owners := make([]string, 0, len(m.schedulesByOwner))
	for owner := range m.schedulesByOwner {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners
}

// AllSchedules lists every stored schedule, grouped by owner.
func (m *Manager) AllSchedules() []*models.Schedule {
	var out []*models.Schedule
	for _, owner := range m.owners() {
		out = append(out, m.schedulesByOwner[owner]...)
	}
	return out
}

func (m *Manager) ListPublic() []*models.Schedule {
	var out []*models.Schedule
	for _, s := range m.AllSchedules() {
		if s.Status == models.StatusPublic {
			out = append(out, s)
		}
	}
	return out
}

// ListForOwner fails with ErrScheduleNotFound when owner has no schedules.
func (m *Manager) ListForOwner(owner string) ([]*models.Schedule, error) {
	list := m.schedulesByOwner[owner]
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s has no schedules", ErrScheduleNotFound, owner)
	}
	out := make([]*models.Schedule, len(list))
	copy(out, list)
	return out, nil
}

// ListFriendShared never fails; a friend with no shares gets an empty list.
func (m *Manager) ListFriendShared(friendID string) []*models.Schedule {
	list := m.friendVisible[friendID]
	out := make([]*models.Schedule, len(list))
	copy(out, list)
	return out
}

// ChangeStatus sets a new visibility. Leaving friend-only retracts the
// schedule from every friend's view; entering friend-only does not share it,
// callers do that with ShareToFriends.
func (m *Manager) ChangeStatus(scheduleID string, status models.Status) error {
	s, err := m.Get(scheduleID)
	if err != nil {
		return err
	}
	if s.Status == status {
		return fmt.Errorf("%w: %s", ErrSameStatus, status)
	}
	if s.Status == models.StatusFriendOnly {
		m.retract(s)
	}
	old := s.Status
	s.Status = status
	logger.Debug("Schedule status changed", "schedule", s.ID, "from", old, "to", status)
	return nil
}

func (m *Manager) retract(s *models.Schedule) {
	for friend, list := range m.friendVisible {
		kept := list[:0]
		for _, shared := range list {
			if shared != s {
				kept = append(kept, shared)
			}
		}
		m.friendVisible[friend] = kept
	}
}

// DeleteSchedule removes a schedule and its template binding. It reports
// false when no schedule has that id.
func (m *Manager) DeleteSchedule(scheduleID string) bool {
	for owner, list := range m.schedulesByOwner {
		for i, s := range list {
			if s.ID != scheduleID {
				continue
			}
			m.schedulesByOwner[owner] = append(list[:i:i], list[i+1:]...)
			delete(m.bindings, scheduleID)
			logger.Debug("Schedule deleted", "schedule", scheduleID, "owner", owner)
			return true
		}
	}
	return false
}

// Reinsert appends s to its owner's list and rebinds its template. Used to
// recover a deleted schedule; its earlier list position is not restored.
func (m *Manager) Reinsert(s *models.Schedule, templateID int) {
	m.schedulesByOwner[s.Owner] = append(m.schedulesByOwner[s.Owner], s)
	m.bindings[s.ID] = templateID
	logger.Debug("Schedule reinserted", "schedule", s.ID, "owner", s.Owner, "template", templateID)
}

// ShareToFriends appends the schedule to each of its owner's friends'
// views. Repeated calls add duplicate references.
func (m *Manager) ShareToFriends(scheduleID string, friends FriendDirectory) error {
	s, err := m.Get(scheduleID)
	if err != nil {
		return err
	}
	for _, friend := range friends.FriendIDs(s.Owner) {
		m.friendVisible[friend] = append(m.friendVisible[friend], s)
	}
	logger.Debug("Schedule shared", "schedule", s.ID, "owner", s.Owner)
	return nil
}

// ShareOwnerFriendOnly shares every friend-only schedule of owner with one
// friend, skipping schedules the friend already sees. Used when a
// friendship is added.
func (m *Manager) ShareOwnerFriendOnly(owner, friendID string) int {
	n := 0
	for _, s := range m.schedulesByOwner[owner] {
		if s.Status != models.StatusFriendOnly || m.visibleTo(friendID, s) {
			continue
		}
		m.friendVisible[friendID] = append(m.friendVisible[friendID], s)
		n++
	}
	return n
}

func (m *Manager) visibleTo(friendID string, s *models.Schedule) bool {
	for _, shared := range m.friendVisible[friendID] {
		if shared == s {
			return true
		}
	}
	return false
}

// Unshare removes every schedule of owner from friendID's view and reports
// how many references were dropped. Used when a friendship ends.
func (m *Manager) Unshare(friendID, owner string) int {
	list := m.friendVisible[friendID]
	kept := list[:0]
	for _, shared := range list {
		if shared.Owner != owner {
			kept = append(kept, shared)
		}
	}
	n := len(list) - len(kept)
	if len(kept) == 0 {
		delete(m.friendVisible, friendID)
	} else {
		m.friendVisible[friendID] = kept
	}
	return n
}

// ClearDeletedEvents empties every schedule's deleted-event buffer.
func (m *Manager) ClearDeletedEvents() {
	for _, list := range m.schedulesByOwner {
		for _, s := range list {
			s.DeletedEvents = make(map[string]models.Interval)
		}
	}
}

// Whole-collection accessors for the persistence layer.

func (m *Manager) SchedulesByOwner() map[string][]*models.Schedule {
	return m.schedulesByOwner
}

func (m *Manager) SetSchedulesByOwner(byOwner map[string][]*models.Schedule) {
	if byOwner == nil {
		byOwner = make(map[string][]*models.Schedule)
	}
	m.schedulesByOwner = byOwner
}

func (m *Manager) Bindings() map[string]int {
	return m.bindings
}

func (m *Manager) SetBindings(bindings map[string]int) {
	if bindings == nil {
		bindings = make(map[string]int)
	}
	m.bindings = bindings
}

func (m *Manager) FriendVisible() map[string][]*models.Schedule {
	return m.friendVisible
}

func (m *Manager) SetFriendVisible(friendVisible map[string][]*models.Schedule) {
	if friendVisible == nil {
		friendVisible = make(map[string][]*models.Schedule)
	}
	m.friendVisible = friendVisible
}
