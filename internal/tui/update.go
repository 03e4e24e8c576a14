package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/shareplan/internal/logger"
	"github.com/julianstephens/shareplan/internal/tui/components/eventlist"
	"github.com/julianstephens/shareplan/internal/tui/components/schedulelist"
)

const chromeHeight = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.schedules.SetSize(msg.Width-h, msg.Height-v-chromeHeight)
		m.events.SetSize(msg.Width-h, msg.Height-v-chromeHeight)
		return m, nil

	case schedulelist.DeleteScheduleMsg:
		return m, m.confirmDelete(msg.ID)
	case schedulelist.RecoverScheduleMsg:
		m.recoverSchedule()
		return m, nil
	case schedulelist.SetStatusMsg:
		if err := m.session.ChangeStatus(msg.ID, msg.Status); err != nil {
			m.fail(err)
		} else {
			m.report(fmt.Sprintf("Schedule is now %s", msg.Status))
		}
		m.refreshSchedules()
		return m, nil
	case schedulelist.RestoreStatusMsg:
		m.restoreStatus(msg.ID)
		return m, nil
	case schedulelist.OpenScheduleMsg:
		s, err := m.session.Manager().Get(msg.ID)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.events.SetSchedule(s)
		m.state = StateEvents
		m.message = ""
		return m, nil

	case eventlist.DeleteEventMsg:
		m.deleteEvent(msg)
		return m, nil
	case eventlist.RecoverEventMsg:
		m.recoverEvent()
		return m, nil
	}

	if m.state == StateConfirmDelete {
		return m.updateConfirm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Back) && m.state == StateEvents:
			m.state = StateSchedules
			m.message = ""
			m.refreshSchedules()
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateEvents:
		m.events, cmd = m.events.Update(msg)
	default:
		m.schedules, cmd = m.schedules.Update(msg)
	}
	return m, cmd
}

func (m *Model) confirmDelete(id string) tea.Cmd {
	s, err := m.session.Manager().Get(id)
	if err != nil {
		m.fail(err)
		return nil
	}
	m.pendingDeleteID = id
	m.confirmed = new(bool)
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete schedule %q?", s.Name)).
				Description("Press 'u' afterwards to bring it back.").
				Affirmative("Delete").
				Negative("Keep").
				Value(m.confirmed),
		),
	).WithTheme(huh.ThemeDracula())
	m.state = StateConfirmDelete
	return m.form.Init()
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.finishDelete(false)
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.finishDelete(*m.confirmed)
	case huh.StateAborted:
		m.finishDelete(false)
	}
	return m, cmd
}

func (m *Model) finishDelete(confirmed bool) {
	id := m.pendingDeleteID
	m.pendingDeleteID = ""
	m.form = nil
	m.state = StateSchedules
	if !confirmed {
		m.report("Delete cancelled")
		return
	}
	if err := m.session.DeleteSchedule(id); err != nil {
		m.fail(err)
		return
	}
	logger.Info("Schedule deleted in edit session", "schedule", id)
	m.report("Schedule deleted; press 'u' to undo")
	m.refreshSchedules()
}

func (m *Model) recoverSchedule() {
	s, ok := m.session.RecoverLast()
	if !ok {
		m.report("Nothing to recover")
		return
	}
	m.report(fmt.Sprintf("Recovered %q", s.Name))
	m.refreshSchedules()
}

func (m *Model) restoreStatus(id string) {
	status, ok, err := m.session.RestoreLast(id)
	switch {
	case err != nil:
		m.fail(err)
	case !ok:
		m.report("No status change to undo")
	default:
		m.report(fmt.Sprintf("Status restored to %s", status))
	}
	m.refreshSchedules()
}

func (m *Model) deleteEvent(msg eventlist.DeleteEventMsg) {
	s := m.events.Schedule()
	if s == nil {
		return
	}
	ok, err := m.session.DeleteInterval(s.ID, msg.Name, msg.Interval)
	switch {
	case err != nil:
		m.fail(err)
	case !ok:
		m.report("Event already gone")
	default:
		m.report(fmt.Sprintf("Deleted %q; press 'u' to undo", msg.Name))
	}
	m.events.Refresh()
}

func (m *Model) recoverEvent() {
	s := m.events.Schedule()
	if s == nil {
		return
	}
	recovered, ok, err := m.session.RecoverLastEvent(s.ID)
	switch {
	case err != nil:
		m.fail(err)
	case !ok:
		m.report("Nothing to recover")
	default:
		m.report(fmt.Sprintf("Recovered %q", recovered.Name))
	}
	m.events.Refresh()
}
