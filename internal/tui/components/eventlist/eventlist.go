package eventlist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/shareplan/internal/models"
)

const timeLayout = "Mon 01/02 15:04"

var timeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

type DeleteEventMsg struct {
	Name     string
	Interval models.Interval
}

type RecoverEventMsg struct{}

type Item struct {
	models.Occurrence
}

func (i Item) Title() string { return i.Name }
func (i Item) Description() string {
	return timeStyle.Render(i.Interval.Start.Format(timeLayout) + " → " + i.Interval.End.Format(timeLayout))
}
func (i Item) FilterValue() string { return i.Name }

type KeyMap struct {
	Delete  key.Binding
	Recover key.Binding
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
	}
}

type Model struct {
	list     list.Model
	keys     KeyMap
	schedule *models.Schedule
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Delete, keys.Recover}
	}
	return Model{list: l, keys: keys}
}

// SetSchedule shows the events of s, ordered by start time.
func (m *Model) SetSchedule(s *models.Schedule) {
	m.schedule = s
	m.Refresh()
}

func (m *Model) Refresh() {
	if m.schedule == nil {
		m.list.SetItems(nil)
		return
	}
	m.list.Title = m.schedule.Name
	occurrences := m.schedule.Occurrences()
	items := make([]list.Item, len(occurrences))
	for i, o := range occurrences {
		items[i] = Item{Occurrence: o}
	}
	m.list.SetItems(items)
}

func (m Model) Schedule() *models.Schedule {
	return m.schedule
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Recover):
			return m, func() tea.Msg { return RecoverEventMsg{} }
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteEventMsg{Name: i.Name, Interval: i.Interval} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No events.\n  Press 'u' to recover the last deleted one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
