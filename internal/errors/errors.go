package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/shareplan/internal/identity"
	"github.com/julianstephens/shareplan/internal/logger"
	"github.com/julianstephens/shareplan/internal/scheduler"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

var hints = []struct {
	target error
	hint   string
}{
	{scheduler.ErrDateFormat, "check the date layout for this schedule type (Daily \"HH:mm\", Weekly \"MM DD HH:mm\", Monthly \"DD HH:mm\")"},
	{scheduler.ErrStartEnd, "the start must come before the end, and weekly events must stay inside the schedule's week"},
	{scheduler.ErrDuration, "see the duration bounds with 'shareplan template list'"},
	{scheduler.ErrBetween, "leave at least the template's minimum gap between events"},
	{scheduler.ErrSameStatus, "the schedule already has that status"},
	{scheduler.ErrTemplateNotFound, "list templates with 'shareplan template list'"},
	{scheduler.ErrScheduleNotFound, "list schedules with 'shareplan schedule list'"},
	{identity.ErrFrozen, "ask an administrator to remove the user from the frozen list"},
}

// Hint returns a short suggestion for a known error, or "".
func Hint(err error) string {
	for _, h := range hints {
		if errors.Is(err, h.target) {
			return h.hint
		}
	}
	return ""
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		if hint := Hint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
