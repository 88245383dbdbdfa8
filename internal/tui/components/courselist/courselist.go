package courselist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/jadwal/internal/models"
)

type AddCourseMsg struct {
	ID string
}

type Item struct {
	Course models.Course
	Placed bool
}

func (i Item) Title() string {
	title := fmt.Sprintf("%s/%s  %s", i.Course.Code, i.Course.Section, i.Course.Name)
	if i.Placed {
		title = "✓ " + title
	}
	return title
}

func (i Item) Description() string {
	var windows []string
	for _, slot := range i.Course.Slots() {
		windows = append(windows, fmt.Sprintf("%s %s-%s", joinDays(slot.Days), slot.StartTime, slot.EndTime))
	}
	parts := []string{strings.Join(windows, "; ")}
	if i.Course.Instructor != "" {
		parts = append(parts, i.Course.Instructor)
	}
	if i.Course.Status != "" {
		parts = append(parts, string(i.Course.Status))
	}
	if p := i.Course.ExamPeriod(); p != "" {
		parts = append(parts, "exam "+p)
	}
	return strings.Join(parts, " | ")
}

func (i Item) FilterValue() string {
	return i.Course.Code + " " + i.Course.Name + " " + i.Course.Section
}

type KeyMap struct {
	Add key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(courses []models.Course, placed func(id string) bool, width, height int) Model {
	l := list.New(items(courses, placed), list.NewDefaultDelegate(), width, height)
	l.Title = "Courses"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // help is rendered by the main model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add}
	}

	return Model{list: l, keys: keys}
}

// SetCourses replaces the items, keeping the current filter and cursor.
func (m *Model) SetCourses(courses []models.Course, placed func(id string) bool) tea.Cmd {
	return m.list.SetItems(items(courses, placed))
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Selected() (models.Course, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Course, ok
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		if key.Matches(msg, m.keys.Add) {
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return AddCourseMsg{ID: i.Course.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No courses imported yet.\n  Run 'jadwal import <page.html>' or send the page from the extension."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

func items(courses []models.Course, placed func(id string) bool) []list.Item {
	out := make([]list.Item, len(courses))
	for i, c := range courses {
		out[i] = Item{Course: c, Placed: placed != nil && placed(c.ID)}
	}
	return out
}

func joinDays(days []models.Weekday) string {
	s := make([]string, len(days))
	for i, d := range days {
		s[i] = string(d)
	}
	return strings.Join(s, " ")
}
