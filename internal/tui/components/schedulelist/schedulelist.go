package schedulelist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/shareplan/internal/models"
)

type DeleteScheduleMsg struct {
	ID string
}

type RecoverScheduleMsg struct{}

type SetStatusMsg struct {
	ID     string
	Status models.Status
}

type RestoreStatusMsg struct {
	ID string
}

type OpenScheduleMsg struct {
	ID string
}

type Item struct {
	Schedule *models.Schedule
}

func (i Item) Title() string { return i.Schedule.Name }
func (i Item) Description() string {
	return fmt.Sprintf("%s | %s | %s | %d event(s)", i.Schedule.Type, i.Schedule.DateKey, i.Schedule.Status, len(i.Schedule.Occurrences()))
}
func (i Item) FilterValue() string { return i.Schedule.Name }

type KeyMap struct {
	Delete        key.Binding
	Recover       key.Binding
	Public        key.Binding
	Private       key.Binding
	FriendOnly    key.Binding
	RestoreStatus key.Binding
	Open          key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete"),
		),
		Recover: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo delete"),
		),
		Public: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "public"),
		),
		Private: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "private"),
		),
		FriendOnly: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "friend-only"),
		),
		RestoreStatus: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "undo status"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "events"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(schedules []*models.Schedule, width, height int) Model {
	l := list.New(items(schedules), list.NewDefaultDelegate(), width, height)
	l.Title = "Schedules"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Delete, keys.Recover, keys.Public, keys.Private, keys.FriendOnly, keys.RestoreStatus, keys.Open}
	}
	return Model{list: l, keys: keys}
}

func items(schedules []*models.Schedule) []list.Item {
	out := make([]list.Item, len(schedules))
	for i, s := range schedules {
		out[i] = Item{Schedule: s}
	}
	return out
}

func (m *Model) SetSchedules(schedules []*models.Schedule) {
	m.list.SetItems(items(schedules))
}

// Selected returns the highlighted schedule, or nil.
func (m Model) Selected() *models.Schedule {
	if i, ok := m.list.SelectedItem().(Item); ok {
		return i.Schedule
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, m.keys.Recover) {
			return m, func() tea.Msg { return RecoverScheduleMsg{} }
		}
		if s := m.Selected(); s != nil {
			id := s.ID
			switch {
			case key.Matches(msg, m.keys.Delete):
				return m, func() tea.Msg { return DeleteScheduleMsg{ID: id} }
			case key.Matches(msg, m.keys.Public):
				return m, func() tea.Msg { return SetStatusMsg{ID: id, Status: models.StatusPublic} }
			case key.Matches(msg, m.keys.Private):
				return m, func() tea.Msg { return SetStatusMsg{ID: id, Status: models.StatusPrivate} }
			case key.Matches(msg, m.keys.FriendOnly):
				return m, func() tea.Msg { return SetStatusMsg{ID: id, Status: models.StatusFriendOnly} }
			case key.Matches(msg, m.keys.RestoreStatus):
				return m, func() tea.Msg { return RestoreStatusMsg{ID: id} }
			case key.Matches(msg, m.keys.Open):
				return m, func() tea.Msg { return OpenScheduleMsg{ID: id} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No schedules.\n  Press 'u' to recover a deleted one, or create one with 'shareplan schedule create'."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
