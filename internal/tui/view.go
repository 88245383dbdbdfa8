package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var tabTitles = []string{"Courses", "Timetable"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateCourses:
		content = docStyle.Render(m.courses.View())
	case StateTimetable:
		content = docStyle.Render(m.week.View())
	case StateConfirm:
		content = lipgloss.Place(m.width, max(m.height-chromeHeight, 0),
			lipgloss.Center, lipgloss.Center,
			m.form.View(),
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.state
	if active == StateConfirm {
		active = m.previousState
	}

	var tabs []string
	for i, title := range tabTitles {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	switch m.statusKind {
	case statusWarning:
		return warningStyle.Render("⚠ " + m.status)
	case statusError:
		return errorStyle.Render("✗ " + m.status)
	default:
		return statusStyle.Render("✓ " + m.status)
	}
}
