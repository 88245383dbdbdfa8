package week

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/jadwal/internal/models"
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1)
	conflictStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Padding(0, 1)
	timeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	entryStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// workWeek is always shown; Fri and Sat only appear when something meets then.
var workWeek = []models.Weekday{models.Sunday, models.Monday, models.Tuesday, models.Wednesday, models.Thursday}

type RemoveEntryMsg struct {
	ID string
}

type ClearMsg struct{}

type Cell struct {
	Labels   []string
	Conflict bool
}

// Row is one distinct meeting window of the grid.
type Row struct {
	Start string
	End   string
	Cells []Cell
}

// Layout arranges entries into a weekly grid: one column per day, one row per
// distinct window, ordered by start then end time.
func Layout(entries []models.TimetableEntry) ([]models.Weekday, []Row) {
	days := slices.Clone(workWeek)
	for _, e := range entries {
		for _, d := range e.Course.Days {
			if !slices.Contains(days, d) && d.Order() >= 0 {
				days = append(days, d)
			}
		}
	}
	slices.SortFunc(days, func(a, b models.Weekday) int { return a.Order() - b.Order() })

	type window struct{ start, end string }
	var windows []window
	for _, e := range entries {
		w := window{e.Course.StartTime, e.Course.EndTime}
		if !slices.Contains(windows, w) {
			windows = append(windows, w)
		}
	}
	slices.SortFunc(windows, func(a, b window) int {
		if c := strings.Compare(a.start, b.start); c != 0 {
			return c
		}
		return strings.Compare(a.end, b.end)
	})

	rows := make([]Row, len(windows))
	for i, w := range windows {
		rows[i] = Row{Start: w.start, End: w.end, Cells: make([]Cell, len(days))}
		for _, e := range entries {
			if e.Course.StartTime != w.start || e.Course.EndTime != w.end {
				continue
			}
			for j, d := range days {
				if slices.Contains(e.Course.Days, d) {
					cell := &rows[i].Cells[j]
					cell.Labels = append(cell.Labels, e.Course.Code+"/"+e.Course.Section)
					cell.Conflict = cell.Conflict || e.IsConflictSection
				}
			}
		}
	}
	return days, rows
}

// Grid renders the weekly table. Conflict sections are highlighted.
func Grid(entries []models.TimetableEntry) string {
	days, rows := Layout(entries)

	headers := []string{"Time"}
	for _, d := range days {
		headers = append(headers, string(d))
	}
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{r.Start + "-" + r.End}
		for _, c := range r.Cells {
			data[i] = append(data[i], strings.Join(c.Labels, "\n"))
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return timeStyle
			case rows[row].Cells[col-1].Conflict:
				return conflictStyle
			default:
				return cellStyle
			}
		}).
		String()
}

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Delete key.Binding
	Clear  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k")),
		Down:   key.NewBinding(key.WithKeys("down", "j")),
		Delete: key.NewBinding(key.WithKeys("d")),
		Clear:  key.NewBinding(key.WithKeys("X")),
	}
}

type Model struct {
	viewport viewport.Model
	keys     KeyMap
	entries  []models.TimetableEntry
	cursor   int
}

func New(entries []models.TimetableEntry, width, height int) Model {
	m := Model{
		viewport: viewport.New(width, height),
		keys:     DefaultKeyMap(),
	}
	m.SetEntries(entries)
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.render()
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
				m.render()
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if e, ok := m.Selected(); ok {
				return m, func() tea.Msg { return RemoveEntryMsg{ID: e.CourseID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			if len(m.entries) > 0 {
				return m, func() tea.Msg { return ClearMsg{} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.entries) == 0 {
		return "\n  Timetable is empty.\n  Add sections from the Courses tab."
	}
	return m.viewport.View()
}

func (m Model) Selected() (models.TimetableEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return models.TimetableEntry{}, false
	}
	return m.entries[m.cursor], true
}

func (m *Model) SetEntries(entries []models.TimetableEntry) {
	m.entries = entries
	m.cursor = min(m.cursor, max(len(entries)-1, 0))
	m.render()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}

func (m *Model) render() {
	var b strings.Builder
	b.WriteString(Grid(m.entries))
	b.WriteString("\n\n")
	for i, e := range m.entries {
		line := fmt.Sprintf("%s  %s %s-%s", e.CourseID, joinDays(e.Course.Days), e.Course.StartTime, e.Course.EndTime)
		if e.IsConflictSection {
			line += "  (conflict)"
		}
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString(entryStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
}

func joinDays(days []models.Weekday) string {
	s := make([]string, len(days))
	for i, d := range days {
		s[i] = string(d)
	}
	return strings.Join(s, " ")
}
