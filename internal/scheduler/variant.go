package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/shareplan/internal/constants"
	"github.com/julianstephens/shareplan/internal/models"
)

// variant carries the date rules of one schedule type.
type variant struct {
	// dateLayout is the layout of the schedule's DateKey.
	dateLayout string
	// eventLayout is what users type for an event time; shown in errors.
	eventLayout string
	// eventPrefix returns what is prepended to a raw event time so that the
	// result parses with constants.InstantFormat.
	eventPrefix func(s *models.Schedule) string
	// window rejects intervals outside the schedule's period. May be nil.
	window func(s *models.Schedule, iv models.Interval) error
}

var variants = map[models.ScheduleType]variant{
	models.ScheduleDaily: {
		dateLayout:  constants.DayFormat,
		eventLayout: "HH:mm",
		eventPrefix: func(s *models.Schedule) string { return s.DateKey + " " },
	},
	models.ScheduleMonthly: {
		dateLayout:  constants.MonthFormat,
		eventLayout: "DD HH:mm",
		eventPrefix: func(s *models.Schedule) string { return s.DateKey + " " },
	},
	models.ScheduleWeekly: {
		dateLayout:  constants.DayFormat,
		eventLayout: "MM DD HH:mm",
		eventPrefix: func(s *models.Schedule) string {
			year, _, _ := strings.Cut(s.DateKey, " ")
			return year + " "
		},
		window: weekWindow,
	},
}

func lookupVariant(t models.ScheduleType) (variant, error) {
	v, ok := variants[t]
	if !ok {
		return variant{}, fmt.Errorf("%w: unknown schedule type %q", ErrTemplateNotFound, t)
	}
	return v, nil
}

// weekWindow requires both ends to fall within 168 hours of the schedule's
// first day at midnight.
func weekWindow(s *models.Schedule, iv models.Interval) error {
	anchor, err := time.Parse(constants.DayFormat, s.DateKey)
	if err != nil {
		return fmt.Errorf("%w: schedule date %q: %v", ErrDateFormat, s.DateKey, err)
	}
	startOffset := iv.Start.Sub(anchor).Hours()
	endOffset := iv.End.Sub(anchor).Hours()
	if startOffset < 0 || startOffset >= constants.WeekHours || endOffset > constants.WeekHours {
		return fmt.Errorf("%w: the start time or the end time is not within the week of this schedule", ErrStartEnd)
	}
	return nil
}

// parseInstant resolves a raw event time against the schedule's anchor.
// Parsing is strict: "02 30" on a February schedule fails rather than
// rolling into March.
func parseInstant(s *models.Schedule, v variant, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(constants.InstantFormat, v.eventPrefix(s)+raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (expected %s): %v", ErrDateFormat, raw, v.eventLayout, err)
	}
	return t, nil
}

// parseInterval parses both ends of an event for schedule s.
func parseInterval(s *models.Schedule, startRaw, endRaw string) (models.Interval, variant, error) {
	v, err := lookupVariant(s.Type)
	if err != nil {
		return models.Interval{}, v, err
	}
	start, err := parseInstant(s, v, startRaw)
	if err != nil {
		return models.Interval{}, v, err
	}
	end, err := parseInstant(s, v, endRaw)
	if err != nil {
		return models.Interval{}, v, err
	}
	return models.Interval{Start: start, End: end}, v, nil
}
