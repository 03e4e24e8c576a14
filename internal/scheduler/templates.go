package scheduler

import (
	"fmt"
	"sort"

	"github.com/julianstephens/shareplan/internal/constants"
	"github.com/julianstephens/shareplan/internal/logger"
	"github.com/julianstephens/shareplan/internal/models"
)

// Templates is the template collection. Ids are handed out in increasing
// order and never reused, even after a template is deleted.
type Templates struct {
	byID   map[int]*models.Template
	nextID int
}

func NewTemplates() *Templates {
	return &Templates{
		byID:   make(map[int]*models.Template),
		nextID: constants.FirstTemplateID,
	}
}

// Create adds a template with the default policy for t.
func (ts *Templates) Create(t models.ScheduleType) *models.Template {
	tmpl := models.NewTemplate(ts.nextID, t)
	ts.nextID++
	ts.byID[tmpl.ID] = &tmpl
	logger.Debug("Template created", "template", tmpl.ID, "type", t)
	return &tmpl
}

// SeedDefaults creates one template of each type.
func (ts *Templates) SeedDefaults() {
	ts.Create(models.ScheduleDaily)
	ts.Create(models.ScheduleMonthly)
	ts.Create(models.ScheduleWeekly)
}

// Get returns the live template; edits through the pointer change the
// policy applied to future events.
func (ts *Templates) Get(id int) (*models.Template, error) {
	tmpl, ok := ts.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrTemplateNotFound, id)
	}
	return tmpl, nil
}

func (ts *Templates) Exists(id int) bool {
	_, ok := ts.byID[id]
	return ok
}

func (ts *Templates) Delete(id int) error {
	if !ts.Exists(id) {
		return fmt.Errorf("%w: %d", ErrTemplateNotFound, id)
	}
	delete(ts.byID, id)
	logger.Debug("Template deleted", "template", id)
	return nil
}

// List returns copies of all templates ordered by id.
func (ts *Templates) List() []models.Template {
	out := make([]models.Template, 0, len(ts.byID))
	for _, tmpl := range ts.byID {
		out = append(out, *tmpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NextID is the id the next created template will receive.
func (ts *Templates) NextID() int {
	return ts.nextID
}

// Replace swaps in a whole template collection, as read by persistence.
// nextID is raised past every loaded id so ids stay monotonic.
func (ts *Templates) Replace(templates []models.Template, nextID int) {
	ts.byID = make(map[int]*models.Template, len(templates))
	if nextID < constants.FirstTemplateID {
		nextID = constants.FirstTemplateID
	}
	for i := range templates {
		tmpl := templates[i]
		ts.byID[tmpl.ID] = &tmpl
		if tmpl.ID >= nextID {
			nextID = tmpl.ID + 1
		}
	}
	ts.nextID = nextID
}
