// Package tui is the interactive edit session: one user's schedules with
// undo for deletions and status changes.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/shareplan/internal/models"
	"github.com/julianstephens/shareplan/internal/session"
	"github.com/julianstephens/shareplan/internal/tui/components/eventlist"
	"github.com/julianstephens/shareplan/internal/tui/components/schedulelist"
)

type SessionState int

const (
	StateSchedules SessionState = iota
	StateEvents
	StateConfirmDelete
)

type Model struct {
	session   *session.EditSession
	user      string
	state     SessionState
	keys      KeyMap
	help      help.Model
	schedules schedulelist.Model
	events    eventlist.Model

	form            *huh.Form
	confirmed       *bool
	pendingDeleteID string

	message  string
	failed   bool
	quitting bool
	width    int
	height   int
}

func NewModel(sess *session.EditSession, user string) Model {
	m := Model{
		session:   sess,
		user:      user,
		state:     StateSchedules,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		schedules: schedulelist.New(nil, 0, 0),
		events:    eventlist.New(0, 0),
	}
	m.refreshSchedules()
	return m
}

// owned lists the user's schedules; a user with none gets an empty list.
func (m Model) owned() []*models.Schedule {
	list, err := m.session.Manager().ListForOwner(m.user)
	if err != nil {
		return nil
	}
	return list
}

func (m *Model) refreshSchedules() {
	m.schedules.SetSchedules(m.owned())
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Quit, m.keys.Help}
	if m.state == StateEvents {
		keys = append(keys, m.keys.Back)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) report(msg string) {
	m.message = msg
	m.failed = false
}

func (m *Model) fail(err error) {
	m.message = err.Error()
	m.failed = true
}
