package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateEvents:
		content = m.events.View()
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = m.schedules.View()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		docStyle.Render(content),
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	title := fmt.Sprintf("shareplan · %s", m.user)
	if m.state == StateEvents {
		if s := m.events.Schedule(); s != nil {
			title += " · " + s.Name
		}
	}
	deleted, statuses, events := m.session.Pending()
	undo := mutedStyle.Render(fmt.Sprintf("  undo: %d deleted, %d status, %d event(s)", deleted, statuses, events))
	return lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render(title), undo)
}

func (m Model) viewStatus() string {
	if m.message == "" {
		return ""
	}
	if m.failed {
		return dangerStyle.Render("✗ " + m.message)
	}
	return okStyle.Render("✓ " + m.message)
}

func (m Model) viewConfirmDelete() string {
	if m.form == nil {
		return ""
	}
	return lipgloss.Place(m.width, m.height-chromeHeight,
		lipgloss.Center, lipgloss.Center,
		m.form.View(),
	)
}
