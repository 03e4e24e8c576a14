// Package validation checks stored schedules against the rules that were
// enforced when they were written. Templates can be edited or deleted after
// events were added, and friendships can change after schedules were
// shared, so stored state drifts.
package validation

import (
	"fmt"
	"sort"

	"github.com/julianstephens/shareplan/internal/models"
	"github.com/julianstephens/shareplan/internal/scheduler"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictMissingTemplate ConflictType = "missing_template"
	ConflictTemplateType    ConflictType = "template_type_mismatch"
	ConflictInvalidStatus   ConflictType = "invalid_status"
	ConflictInvalidInterval ConflictType = "invalid_interval"
	ConflictEventDuration   ConflictType = "event_duration"
	ConflictEventGap        ConflictType = "event_gap"
	ConflictStaleShare      ConflictType = "stale_share"
)

// Conflict represents a detected problem in one schedule
type Conflict struct {
	Type        ConflictType
	Description string
	ScheduleID  string
	Items       []string // Event names or user ids involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

func (vr *ValidationResult) add(c Conflict) {
	vr.Conflicts = append(vr.Conflicts, c)
}

// Validator validates stored schedules and shares
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// Validate checks every schedule held by m, then every friend view against
// friends.
func (v *Validator) Validate(m *scheduler.Manager, friends scheduler.FriendDirectory) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	for _, s := range m.AllSchedules() {
		v.validateSchedule(m, s, &result)
	}
	v.validateShares(m, friends, &result)
	return result
}

func (v *Validator) validateSchedule(m *scheduler.Manager, s *models.Schedule, result *ValidationResult) {
	if !s.Status.Valid() {
		result.add(Conflict{
			Type:        ConflictInvalidStatus,
			Description: fmt.Sprintf("Schedule %s has unknown status %q", s.ID, s.Status),
			ScheduleID:  s.ID,
		})
	}

	id, ok := m.TemplateOf(s.ID)
	if !ok {
		result.add(Conflict{
			Type:        ConflictMissingTemplate,
			Description: fmt.Sprintf("Schedule %s is not bound to a template", s.ID),
			ScheduleID:  s.ID,
		})
		return
	}
	tmpl, err := m.Templates().Get(id)
	if err != nil {
		result.add(Conflict{
			Type:        ConflictMissingTemplate,
			Description: fmt.Sprintf("Schedule %s uses deleted template %d", s.ID, id),
			ScheduleID:  s.ID,
		})
		return
	}
	if tmpl.Type != s.Type {
		result.add(Conflict{
			Type:        ConflictTemplateType,
			Description: fmt.Sprintf("Schedule %s is %s but template %d is %s", s.ID, s.Type, tmpl.ID, tmpl.Type),
			ScheduleID:  s.ID,
		})
	}

	occurrences := s.Occurrences()
	for _, o := range occurrences {
		iv := o.Interval
		if !iv.Start.Before(iv.End) {
			result.add(Conflict{
				Type:        ConflictInvalidInterval,
				Description: fmt.Sprintf("Event \"%s\" in schedule %s ends before it starts", o.Name, s.ID),
				ScheduleID:  s.ID,
				Items:       []string{o.Name},
			})
			continue
		}
		if h := iv.Hours(); h < tmpl.MinEventHours || h > tmpl.MaxEventHours {
			result.add(Conflict{
				Type: ConflictEventDuration,
				Description: fmt.Sprintf("Event \"%s\" in schedule %s lasts %.2fh, outside %gh-%gh",
					o.Name, s.ID, h, tmpl.MinEventHours, tmpl.MaxEventHours),
				ScheduleID: s.ID,
				Items:      []string{o.Name},
			})
		}
	}

	if !tmpl.ChecksGap() {
		return
	}
	// Occurrences are sorted by start, so only later entries can follow a.
	// Overlapping pairs are skipped, matching the check done on insert.
	for i := 0; i < len(occurrences); i++ {
		for j := i + 1; j < len(occurrences); j++ {
			a, b := occurrences[i], occurrences[j]
			if b.Interval.Start.Before(a.Interval.End) {
				continue
			}
			if gap := b.Interval.Start.Sub(a.Interval.End).Hours(); gap < tmpl.MinGapHours {
				result.add(Conflict{
					Type: ConflictEventGap,
					Description: fmt.Sprintf("Events \"%s\" and \"%s\" in schedule %s are %.2fh apart, minimum %gh",
						a.Name, b.Name, s.ID, gap, tmpl.MinGapHours),
					ScheduleID: s.ID,
					Items:      []string{a.Name, b.Name},
				})
			}
		}
	}
}

func (v *Validator) validateShares(m *scheduler.Manager, friends scheduler.FriendDirectory, result *ValidationResult) {
	viewers := make([]string, 0, len(m.FriendVisible()))
	for viewer := range m.FriendVisible() {
		viewers = append(viewers, viewer)
	}
	sort.Strings(viewers)

	for _, viewer := range viewers {
		friendSet := make(map[string]bool)
		for _, f := range friends.FriendIDs(viewer) {
			friendSet[f] = true
		}
		seen := make(map[string]bool)
		for _, s := range m.ListFriendShared(viewer) {
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			switch {
			case s.Status != models.StatusFriendOnly:
				result.add(Conflict{
					Type:        ConflictStaleShare,
					Description: fmt.Sprintf("%s still sees %s schedule %s", viewer, s.Status, s.ID),
					ScheduleID:  s.ID,
					Items:       []string{viewer},
				})
			case !friendSet[s.Owner]:
				result.add(Conflict{
					Type:        ConflictStaleShare,
					Description: fmt.Sprintf("%s sees schedule %s but is not friends with %s", viewer, s.ID, s.Owner),
					ScheduleID:  s.ID,
					Items:       []string{viewer, s.Owner},
				})
			}
		}
	}
}
