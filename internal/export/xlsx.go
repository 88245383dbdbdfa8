package export

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/jadwal/internal/models"
)

const (
	listSheet = "Timetable"
	weekSheet = "Week"
)

// weekColumns are the days laid out on the Week sheet.
var weekColumns = []models.Weekday{models.Sunday, models.Monday, models.Tuesday, models.Wednesday, models.Thursday}

// XLSX writes a workbook with the entry list and a weekly grid.
func XLSX(w io.Writer, entries []models.TimetableEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), listSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := writeList(f, entries, bold); err != nil {
		return fmt.Errorf("failed to write %s sheet: %w", listSheet, err)
	}
	if err := writeWeek(f, entries, bold); err != nil {
		return fmt.Errorf("failed to write %s sheet: %w", weekSheet, err)
	}

	_, err = f.WriteTo(w)
	return err
}

func writeList(f *excelize.File, entries []models.TimetableEntry, headerStyle int) error {
	if err := setRow(f, listSheet, 1, Header); err != nil {
		return err
	}
	for i, e := range entries {
		if err := setRow(f, listSheet, i+2, record(e)); err != nil {
			return err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(listSheet, "A1", last, headerStyle)
}

// writeWeek lays entries out with one row per distinct start time and one
// column per day. Entries sharing a cell are listed on separate lines.
func writeWeek(f *excelize.File, entries []models.TimetableEntry, headerStyle int) error {
	if _, err := f.NewSheet(weekSheet); err != nil {
		return err
	}

	header := []string{"time"}
	for _, d := range weekColumns {
		header = append(header, string(d))
	}
	if err := setRow(f, weekSheet, 1, header); err != nil {
		return err
	}

	var starts []string
	for _, e := range entries {
		if !slices.Contains(starts, e.Course.StartTime) {
			starts = append(starts, e.Course.StartTime)
		}
	}
	slices.Sort(starts)

	for r, start := range starts {
		row := []string{start}
		for _, day := range weekColumns {
			var cell []string
			for _, e := range entries {
				if e.Course.StartTime == start && slices.Contains(e.Course.Days, day) {
					cell = append(cell, weekCell(e))
				}
			}
			row = append(row, strings.Join(cell, "\n"))
		}
		if err := setRow(f, weekSheet, r+2, row); err != nil {
			return err
		}
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(weekSheet, "A1", last, headerStyle)
}

func weekCell(e models.TimetableEntry) string {
	c := e.Course
	text := fmt.Sprintf("%s/%s %s-%s", c.Code, c.Section, c.StartTime, c.EndTime)
	if c.Location != "" {
		text += " " + c.Location
	}
	if e.IsConflictSection {
		text += " (!)"
	}
	return text
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheet, cell, &cells)
}
