package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/jadwal/internal/logger"
	"github.com/julianstephens/jadwal/internal/planner"
	"github.com/julianstephens/jadwal/internal/tui/components/courselist"
	"github.com/julianstephens/jadwal/internal/tui/components/week"
)

type SessionState int

const (
	StateCourses SessionState = iota
	StateTimetable
	StateConfirm
)

// tabCount is the number of states reachable with tab.
const tabCount = 2

type statusKind int

const (
	statusInfo statusKind = iota
	statusWarning
	statusError
)

type ConfirmationFormModel struct {
	Confirmed bool
}

type Model struct {
	planner       *planner.Planner
	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model
	courses       courselist.Model
	week          week.Model

	form             *huh.Form
	confirmationForm *ConfirmationFormModel
	pendingAction    func(*Model) tea.Cmd

	status     string
	statusKind statusKind
	quitting   bool
	width      int
	height     int
}

func NewModel(p *planner.Planner) Model {
	m := Model{
		planner: p,
		state:   StateCourses,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		week:    week.New(p.Entries(), 0, 0),
	}

	courses, err := p.Courses()
	if err != nil {
		logger.Warn("failed to load courses", "err", err)
		m.setStatus(statusError, "Failed to load courses: "+err.Error())
	}
	m.courses = courselist.New(courses, p.IsPlaced, 0, 0)
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateCourses:
		keys = append(keys, m.keys.Add)
	case StateTimetable:
		keys = append(keys, m.keys.Delete, m.keys.Clear)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case StateCourses:
		actions = []key.Binding{m.keys.Add}
	case StateTimetable:
		actions = []key.Binding{m.keys.Delete, m.keys.Clear}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) setStatus(kind statusKind, msg string) {
	m.statusKind = kind
	m.status = msg
}

// refresh reloads both tabs after the timetable changed.
func (m *Model) refresh() tea.Cmd {
	m.week.SetEntries(m.planner.Entries())
	courses, err := m.planner.Courses()
	if err != nil {
		m.setStatus(statusError, "Failed to load courses: "+err.Error())
		return nil
	}
	return m.courses.SetCourses(courses, m.planner.IsPlaced)
}

// confirm asks a yes/no question and runs action when the answer is yes.
func (m *Model) confirm(title, description string, action func(*Model) tea.Cmd) tea.Cmd {
	m.confirmationForm = &ConfirmationFormModel{}
	m.pendingAction = action
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&m.confirmationForm.Confirmed),
		),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(false)

	m.previousState = m.state
	m.state = StateConfirm
	return m.form.Init()
}

// Run starts the interactive timetable on the alternate screen.
func Run(p *planner.Planner) error {
	_, err := tea.NewProgram(NewModel(p), tea.WithAltScreen()).Run()
	return err
}
