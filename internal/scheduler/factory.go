package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/shareplan/internal/models"
)

// Factory builds schedules of the variant matching a template type.
type Factory struct {
	// NewID generates schedule ids. Defaults to random UUIDs.
	NewID func() string
}

func NewFactory() *Factory {
	return &Factory{NewID: func() string { return uuid.New().String() }}
}

// Create validates date against the variant's layout and returns a new
// schedule with a fresh id.
//
// Daily schedules take "YYYY MM DD", Monthly "YYYY MM", and Weekly
// "YYYY MM DD" naming the first day of a seven-day window.
func (f *Factory) Create(t models.ScheduleType, date, name, owner string, status models.Status) (*models.Schedule, error) {
	v, err := lookupVariant(t)
	if err != nil {
		return nil, err
	}
	date = strings.TrimSpace(date)
	if _, err := time.Parse(v.dateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: %q for a %s schedule: %v", ErrDateFormat, date, t, err)
	}
	return models.NewSchedule(f.NewID(), owner, name, date, status, t), nil
}
