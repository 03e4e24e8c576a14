package scheduler

import (
	"fmt"

	"github.com/julianstephens/shareplan/internal/logger"
	"github.com/julianstephens/shareplan/internal/models"
)

// AddEvent parses startRaw and endRaw with the schedule's event layout,
// validates the interval against the bound template, and appends it under
// eventName.
func (m *Manager) AddEvent(scheduleID, eventName, startRaw, endRaw string) error {
	s, err := m.Get(scheduleID)
	if err != nil {
		return err
	}
	iv, v, err := parseInterval(s, startRaw, endRaw)
	if err != nil {
		return err
	}
	if v.window != nil {
		if err := v.window(s, iv); err != nil {
			return err
		}
	}
	tmpl, err := m.templateFor(s)
	if err != nil {
		return err
	}
	if err := ValidateInterval(s, *tmpl, iv); err != nil {
		return err
	}
	m.AddValidEvent(s, eventName, iv)
	return nil
}

// AddValidEvent appends iv under eventName without any validation.
func (m *Manager) AddValidEvent(s *models.Schedule, eventName string, iv models.Interval) {
	if s.Events == nil {
		s.Events = make(map[string][]models.Interval)
	}
	s.Events[eventName] = append(s.Events[eventName], iv)
	logger.Debug("Event added", "schedule", s.ID, "event", eventName, "start", iv.Start, "end", iv.End)
}

// ValidateInterval applies the template policy to a new interval on s:
// start before end, duration within bounds, then the minimum gap to every
// existing interval unless the template disables it.
//
// Overlapping intervals are neither before nor after each other and so pass
// the gap rule.
func ValidateInterval(s *models.Schedule, tmpl models.Template, iv models.Interval) error {
	if !iv.Start.Before(iv.End) {
		return fmt.Errorf("%w: the start time is not before the end time", ErrStartEnd)
	}

	duration := iv.Hours()
	if duration < tmpl.MinEventHours {
		return fmt.Errorf("%w: duration is too short (%.2fh, minimum %gh)", ErrDuration, duration, tmpl.MinEventHours)
	}
	if duration > tmpl.MaxEventHours {
		return fmt.Errorf("%w: duration is too long (%.2fh, maximum %gh)", ErrDuration, duration, tmpl.MaxEventHours)
	}

	if !tmpl.ChecksGap() {
		return nil
	}
	for _, existing := range s.Events {
		for _, e := range existing {
			if !e.Start.Before(iv.End) && e.Start.Sub(iv.End).Hours() < tmpl.MinGapHours {
				return fmt.Errorf("%w: move event forward (need %gh before the next event)", ErrBetween, tmpl.MinGapHours)
			}
			if !iv.Start.Before(e.End) && iv.Start.Sub(e.End).Hours() < tmpl.MinGapHours {
				return fmt.Errorf("%w: move event afterward (need %gh after the previous event)", ErrBetween, tmpl.MinGapHours)
			}
		}
	}
	return nil
}

// DeleteEvent removes the interval of eventName that exactly matches the
// parsed start and end. The removed interval replaces whatever was held in
// the schedule's deleted-event slot for that name. It reports false when
// the name is unknown or nothing matches.
func (m *Manager) DeleteEvent(scheduleID, eventName, startRaw, endRaw string) (bool, error) {
	s, err := m.Get(scheduleID)
	if err != nil {
		return false, err
	}
	if _, ok := s.Events[eventName]; !ok {
		return false, nil
	}
	target, _, err := parseInterval(s, startRaw, endRaw)
	if err != nil {
		return false, err
	}
	return m.DeleteInterval(s, eventName, target), nil
}

// DeleteInterval is DeleteEvent for an already-resolved interval.
func (m *Manager) DeleteInterval(s *models.Schedule, eventName string, target models.Interval) bool {
	intervals := s.Events[eventName]
	for i, iv := range intervals {
		if !iv.Equal(target) {
			continue
		}
		if s.DeletedEvents == nil {
			s.DeletedEvents = make(map[string]models.Interval)
		}
		s.DeletedEvents[eventName] = iv
		remaining := append(intervals[:i:i], intervals[i+1:]...)
		if len(remaining) == 0 {
			delete(s.Events, eventName)
		} else {
			s.Events[eventName] = remaining
		}
		logger.Debug("Event deleted", "schedule", s.ID, "event", eventName, "start", iv.Start, "end", iv.End)
		return true
	}
	return false
}

// Events returns the live event map of a schedule.
func (m *Manager) Events(scheduleID string) (map[string][]models.Interval, error) {
	s, err := m.Get(scheduleID)
	if err != nil {
		return nil, err
	}
	return s.Events, nil
}

// DeletedEvent returns the buffered interval for eventName, if any.
func (m *Manager) DeletedEvent(scheduleID, eventName string) (models.Interval, bool, error) {
	s, err := m.Get(scheduleID)
	if err != nil {
		return models.Interval{}, false, err
	}
	iv, ok := s.DeletedEvents[eventName]
	return iv, ok, nil
}

func (m *Manager) RemoveDeletedEvent(scheduleID, eventName string) error {
	s, err := m.Get(scheduleID)
	if err != nil {
		return err
	}
	delete(s.DeletedEvents, eventName)
	return nil
}
