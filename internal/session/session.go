// Package session holds the undo state of one schedule-editing session.
//
// An EditSession is created when a user starts editing schedules and
// discarded when they finish. Nothing in it is persisted.
package session

import (
	"errors"
	"fmt"

	"github.com/julianstephens/shareplan/internal/logger"
	"github.com/julianstephens/shareplan/internal/models"
	"github.com/julianstephens/shareplan/internal/scheduler"
)

type deletedSchedule struct {
	schedule   *models.Schedule
	templateID int
}

// EditSession wraps a scheduler.Manager with LIFO undo for schedule
// deletion, status changes, and event deletion.
type EditSession struct {
	manager *scheduler.Manager
	friends scheduler.FriendDirectory

	deletedSchedules []deletedSchedule
	// previousStatuses is one stack for all schedules: restoring pops the
	// most recent change no matter which schedule it came from.
	previousStatuses  []models.Status
	deletedEventNames map[string][]string
}

func New(manager *scheduler.Manager, friends scheduler.FriendDirectory) *EditSession {
	return &EditSession{
		manager:           manager,
		friends:           friends,
		deletedEventNames: make(map[string][]string),
	}
}

func (e *EditSession) Manager() *scheduler.Manager {
	return e.manager
}

// DeleteSchedule deletes a schedule and remembers it for RecoverLast.
func (e *EditSession) DeleteSchedule(scheduleID string) error {
	s, err := e.manager.Get(scheduleID)
	if err != nil {
		return err
	}
	templateID, _ := e.manager.TemplateOf(scheduleID)
	if !e.manager.DeleteSchedule(scheduleID) {
		return fmt.Errorf("%w: %s", scheduler.ErrScheduleNotFound, scheduleID)
	}
	e.RecordDeleted(s, templateID)
	return nil
}

func (e *EditSession) RecordDeleted(s *models.Schedule, templateID int) {
	e.deletedSchedules = append(e.deletedSchedules, deletedSchedule{schedule: s, templateID: templateID})
}

// RecoverLast puts the most recently deleted schedule back at the end of its
// owner's list. ok is false when there is nothing to recover.
func (e *EditSession) RecoverLast() (*models.Schedule, bool) {
	n := len(e.deletedSchedules)
	if n == 0 {
		return nil, false
	}
	last := e.deletedSchedules[n-1]
	e.deletedSchedules = e.deletedSchedules[:n-1]
	e.manager.Reinsert(last.schedule, last.templateID)
	logger.Info("Schedule recovered", "schedule", last.schedule.ID)
	return last.schedule, true
}

// ChangeStatus changes a schedule's status and remembers the old one.
// Moving to friend-only shares the schedule with the owner's friends.
func (e *EditSession) ChangeStatus(scheduleID string, status models.Status) error {
	s, err := e.manager.Get(scheduleID)
	if err != nil {
		return err
	}
	old := s.Status
	if err := e.manager.ChangeStatus(scheduleID, status); err != nil {
		return err
	}
	e.RecordPreviousStatus(old)
	if status == models.StatusFriendOnly {
		return e.manager.ShareToFriends(scheduleID, e.friends)
	}
	return nil
}

func (e *EditSession) RecordPreviousStatus(status models.Status) {
	e.previousStatuses = append(e.previousStatuses, status)
}

// RestoreLast pops the most recent previous status and applies it to
// scheduleID, sharing again when it is friend-only. ok is false when the
// stack is empty.
func (e *EditSession) RestoreLast(scheduleID string) (models.Status, bool, error) {
	n := len(e.previousStatuses)
	if n == 0 {
		return "", false, nil
	}
	status := e.previousStatuses[n-1]
	err := e.manager.ChangeStatus(scheduleID, status)
	switch {
	case errors.Is(err, scheduler.ErrSameStatus):
		logger.Warn("Restored status already current", "schedule", scheduleID, "status", status)
	case err != nil:
		return "", false, err
	}
	e.previousStatuses = e.previousStatuses[:n-1]
	if status == models.StatusFriendOnly {
		if err := e.manager.ShareToFriends(scheduleID, e.friends); err != nil {
			return status, true, err
		}
	}
	return status, true, nil
}

// DeleteEvent deletes one interval and remembers the event name.
func (e *EditSession) DeleteEvent(scheduleID, eventName, startRaw, endRaw string) (bool, error) {
	ok, err := e.manager.DeleteEvent(scheduleID, eventName, startRaw, endRaw)
	if err != nil || !ok {
		return ok, err
	}
	e.RecordDeletedEventName(scheduleID, eventName)
	return true, nil
}

// DeleteInterval deletes an already-resolved interval and remembers the name.
func (e *EditSession) DeleteInterval(scheduleID, eventName string, iv models.Interval) (bool, error) {
	s, err := e.manager.Get(scheduleID)
	if err != nil {
		return false, err
	}
	if !e.manager.DeleteInterval(s, eventName, iv) {
		return false, nil
	}
	e.RecordDeletedEventName(scheduleID, eventName)
	return true, nil
}

func (e *EditSession) RecordDeletedEventName(scheduleID, eventName string) {
	e.deletedEventNames[scheduleID] = append(e.deletedEventNames[scheduleID], eventName)
}

// RecoveredEvent describes an interval put back by RecoverLastEvent.
type RecoveredEvent struct {
	Name     string
	Interval models.Interval
}

// RecoverLastEvent pops the last deleted event name of scheduleID and
// re-adds its buffered interval without validating it again. ok is false
// when there is no name to pop or the name's buffer was already consumed.
func (e *EditSession) RecoverLastEvent(scheduleID string) (RecoveredEvent, bool, error) {
	names := e.deletedEventNames[scheduleID]
	if len(names) == 0 {
		return RecoveredEvent{}, false, nil
	}
	s, err := e.manager.Get(scheduleID)
	if err != nil {
		return RecoveredEvent{}, false, err
	}
	name := names[len(names)-1]
	e.deletedEventNames[scheduleID] = names[:len(names)-1]

	iv, ok := s.DeletedEvents[name]
	if !ok {
		return RecoveredEvent{}, false, nil
	}
	e.manager.AddValidEvent(s, name, iv)
	delete(s.DeletedEvents, name)
	logger.Info("Event recovered", "schedule", scheduleID, "event", name)
	return RecoveredEvent{Name: name, Interval: iv}, true, nil
}

// Clear drops all undo state, including every schedule's deleted-event
// buffer. Call it when the editing session ends.
func (e *EditSession) Clear() {
	e.deletedSchedules = nil
	e.previousStatuses = nil
	e.deletedEventNames = make(map[string][]string)
	e.manager.ClearDeletedEvents()
}

// Pending reports how many entries each undo stack holds.
func (e *EditSession) Pending() (schedules, statuses, events int) {
	for _, names := range e.deletedEventNames {
		events += len(names)
	}
	return len(e.deletedSchedules), len(e.previousStatuses), events
}
