package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/jadwal/internal/tui/components/courselist"
	"github.com/julianstephens/jadwal/internal/tui/components/week"
)

// chromeHeight is the space taken by the tabs, status line and help.
const chromeHeight = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.courses.SetSize(msg.Width-h, msg.Height-v-chromeHeight)
		m.week.SetSize(msg.Width-h, msg.Height-v-chromeHeight)
		return m, nil
	}

	if m.state == StateConfirm {
		cmd = m.updateConfirm(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == StateCourses && m.courses.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		}

	case courselist.AddCourseMsg:
		cmd = m.addCourse(msg.ID, false)
		return m, cmd

	case week.RemoveEntryMsg:
		cmd = m.removeEntry(msg.ID)
		return m, cmd

	case week.ClearMsg:
		cmd = m.confirm("Clear the timetable?", "Every placed section will be removed.", (*Model).clearTimetable)
		return m, cmd
	}

	switch m.state {
	case StateCourses:
		m.courses, cmd = m.courses.Update(msg)
	case StateTimetable:
		m.week, cmd = m.week.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.pendingAction = nil
		m.state = m.previousState
		return nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		action := m.pendingAction
		m.pendingAction = nil
		m.state = m.previousState
		if m.confirmationForm.Confirmed && action != nil {
			cmds = append(cmds, action(m))
		}
	case huh.StateAborted:
		m.pendingAction = nil
		m.state = m.previousState
	}
	return tea.Batch(cmds...)
}

func (m *Model) addCourse(id string, force bool) tea.Cmd {
	res, err := m.planner.Add(id, force)
	if err != nil {
		m.setStatus(statusError, "Add failed: "+err.Error())
		return nil
	}
	cmd := m.refresh()

	switch {
	case res.AlreadyPlaced:
		m.setStatus(statusInfo, id+" is already on the timetable")
	case !res.Added && res.Conflict != nil && !force:
		m.setStatus(statusWarning, res.Conflict.Description)
		return tea.Batch(cmd, m.confirm(
			"Add anyway?",
			fmt.Sprintf("%s\nThe section will be marked as a conflict section.", res.Conflict.Description),
			func(m *Model) tea.Cmd { return m.addCourse(id, true) },
		))
	case !res.Added:
		m.setStatus(statusError, id+" was not added")
	case res.Warning != nil:
		m.setStatus(statusWarning, "Added "+id+". Warning: "+res.Warning.Description)
	case res.Conflict != nil:
		m.setStatus(statusWarning, "Added "+id+" as a conflict section")
	default:
		m.setStatus(statusInfo, "Added "+id)
	}
	return cmd
}

func (m *Model) removeEntry(id string) tea.Cmd {
	removed, err := m.planner.Remove(id)
	if err != nil {
		m.setStatus(statusError, "Remove failed: "+err.Error())
		return nil
	}
	if removed {
		m.setStatus(statusInfo, "Removed "+id)
	}
	return m.refresh()
}

func (m *Model) clearTimetable() tea.Cmd {
	if err := m.planner.Clear(); err != nil {
		m.setStatus(statusError, "Clear failed: "+err.Error())
		return nil
	}
	m.setStatus(statusInfo, "Timetable cleared")
	return m.refresh()
}
