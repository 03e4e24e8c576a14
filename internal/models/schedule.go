package models

import (
	"fmt"
	"sort"
	"time"
)

type Status string

const (
	StatusPublic     Status = "public"
	StatusPrivate    Status = "private"
	StatusFriendOnly Status = "friend-only"
)

func (s Status) Valid() bool {
	return s == StatusPublic || s == StatusPrivate || s == StatusFriendOnly
}

// Interval is one occurrence of an event. Start is always before End.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Hours returns the interval length in hours.
func (iv Interval) Hours() float64 {
	return iv.End.Sub(iv.Start).Hours()
}

func (iv Interval) Equal(other Interval) bool {
	return iv.Start.Equal(other.Start) && iv.End.Equal(other.End)
}

// Schedule is one calendar owned by a user.
//
// DateKey anchors the schedule: "YYYY MM DD" for Daily and Weekly schedules
// (the first day of the week for Weekly), "YYYY MM" for Monthly ones.
// DeletedEvents keeps the most recently deleted interval per event name so
// an edit session can put it back; it is never persisted.
type Schedule struct {
	ID            string                `json:"id"`
	Owner         string                `json:"owner"`
	Name          string                `json:"name"`
	DateKey       string                `json:"date_key"`
	Status        Status                `json:"status"`
	Type          ScheduleType          `json:"type"`
	Events        map[string][]Interval `json:"events"`
	DeletedEvents map[string]Interval   `json:"-"`
}

func NewSchedule(id, owner, name, dateKey string, status Status, t ScheduleType) *Schedule {
	return &Schedule{
		ID:            id,
		Owner:         owner,
		Name:          name,
		DateKey:       dateKey,
		Status:        status,
		Type:          t,
		Events:        make(map[string][]Interval),
		DeletedEvents: make(map[string]Interval),
	}
}

// EventNames returns the schedule's event names in lexical order.
func (s *Schedule) EventNames() []string {
	names := make([]string, 0, len(s.Events))
	for name := range s.Events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Occurrence is one named interval of a schedule.
type Occurrence struct {
	Name     string
	Interval Interval
}

// Occurrences flattens Events into one list ordered by start time. Ties
// keep event-name order.
func (s *Schedule) Occurrences() []Occurrence {
	var out []Occurrence
	for _, name := range s.EventNames() {
		for _, iv := range s.Events[name] {
			out = append(out, Occurrence{Name: name, Interval: iv})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Interval.Start.Before(out[j].Interval.Start)
	})
	return out
}

func (s *Schedule) String() string {
	return fmt.Sprintf("ID: %s, Owner: %s, Type: %s, Name: %s, DateRange: %s, Status: %s",
		s.ID, s.Owner, s.Type, s.Name, s.DateKey, s.Status)
}
