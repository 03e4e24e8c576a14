// Package ics renders a schedule as an iCalendar document.
package ics

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/julianstephens/shareplan/internal/constants"
	"github.com/julianstephens/shareplan/internal/models"
)

var ErrNoEvents = errors.New("schedule has no events to export")

// uidNamespace keeps UIDs stable across exports of the same interval.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/julianstephens/shareplan"))

var classes = map[models.Status]string{
	models.StatusPublic:     "PUBLIC",
	models.StatusPrivate:    "PRIVATE",
	models.StatusFriendOnly: "CONFIDENTIAL",
}

// UID derives the iCalendar UID of one interval.
func UID(scheduleID, eventName string, iv models.Interval) string {
	key := fmt.Sprintf("%s/%s/%s/%s", scheduleID, eventName, iv.Start.UTC().Format(time.RFC3339), iv.End.UTC().Format(time.RFC3339))
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@" + constants.AppName
}

// Build converts s into a calendar with one VEVENT per interval, ordered
// by start time. stamp becomes every event's DTSTAMP.
func Build(s *models.Schedule, stamp time.Time) (*ical.Calendar, error) {
	entries := s.Occurrences()
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoEvents, s.ID)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//"+constants.AppName+"//"+constants.Version+"//EN")
	cal.Props.SetText("X-WR-CALNAME", s.Name)

	for _, e := range entries {
		ve := ical.NewComponent(ical.CompEvent)
		ve.Props.SetText(ical.PropUID, UID(s.ID, e.Name, e.Interval))
		ve.Props.SetText(ical.PropSummary, e.Name)
		ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		ve.Props.SetDateTime(ical.PropDateTimeStart, e.Interval.Start.UTC())
		ve.Props.SetDateTime(ical.PropDateTimeEnd, e.Interval.End.UTC())
		ve.Props.SetText(ical.PropClass, classes[s.Status])
		ve.Props.SetText(ical.PropDescription, fmt.Sprintf("%s schedule %q owned by %s", s.Type, s.Name, s.Owner))
		cal.Children = append(cal.Children, ve)
	}
	return cal, nil
}

// Export writes s to w as an .ics document.
func Export(w io.Writer, s *models.Schedule, stamp time.Time) error {
	cal, err := Build(s, stamp)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}
