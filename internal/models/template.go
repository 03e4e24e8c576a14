package models

import "fmt"

type ScheduleType string

const (
	ScheduleDaily   ScheduleType = "Daily"
	ScheduleWeekly  ScheduleType = "Weekly"
	ScheduleMonthly ScheduleType = "Monthly"
)

// ParseScheduleType accepts the canonical names and the legacy "<Type>Template" tags.
func ParseScheduleType(s string) (ScheduleType, error) {
	switch s {
	case "Daily", "daily", "DailyTemplate":
		return ScheduleDaily, nil
	case "Weekly", "weekly", "WeeklyTemplate":
		return ScheduleWeekly, nil
	case "Monthly", "monthly", "MonthlyTemplate":
		return ScheduleMonthly, nil
	}
	return "", fmt.Errorf("unknown schedule type: %q", s)
}

// NoGapCheck disables the minimum-gap rule when used as MinGapHours.
const NoGapCheck = -1.0

// Template holds the event policy applied to every schedule created from it.
// All durations are in hours. Type never changes after creation; the policy
// fields may be edited, and callers are responsible for keeping
// MinEventHours <= MaxEventHours.
type Template struct {
	ID            int          `json:"id"`
	Type          ScheduleType `json:"type"`
	MinGapHours   float64      `json:"min_gap_hours"`
	MinEventHours float64      `json:"min_event_hours"`
	MaxEventHours float64      `json:"max_event_hours"`
}

// NewTemplate returns a template of the given type with its default policy.
func NewTemplate(id int, t ScheduleType) Template {
	tmpl := Template{ID: id, Type: t, MinEventHours: 0.5}
	switch t {
	case ScheduleDaily:
		tmpl.MaxEventHours = 24
	case ScheduleWeekly:
		tmpl.MaxEventHours = 168
	case ScheduleMonthly:
		tmpl.MaxEventHours = 744
	}
	return tmpl
}

// ChecksGap reports whether events must respect MinGapHours.
func (t Template) ChecksGap() bool {
	return t.MinGapHours != NoGapCheck
}

func (t Template) String() string {
	return fmt.Sprintf("ID: %d, Type: %s, Min event: %gh, Max event: %gh, Min gap: %gh",
		t.ID, t.Type, t.MinEventHours, t.MaxEventHours, t.MinGapHours)
}
