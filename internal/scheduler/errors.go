package scheduler

import "errors"

// Every validation failure returned by this package wraps one of these, so
// callers can branch with errors.Is while the message keeps the detail.
var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrSameStatus       = errors.New("schedule is already in the requested status")
	ErrDateFormat       = errors.New("invalid date format")
	ErrStartEnd         = errors.New("invalid start or end time")
	ErrDuration         = errors.New("invalid event duration")
	ErrBetween          = errors.New("time between events is too short")
)
