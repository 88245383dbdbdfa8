// Package export renders the timetable for use outside jadwal.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/julianstephens/jadwal/internal/models"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatICS  Format = "ics"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatCSV, FormatXLSX, FormatICS}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want csv, xlsx or ics)", s)
}

type Options struct {
	// TermStart anchors recurring calendar events. Zero means today.
	TermStart time.Time
	// Now stamps generated calendar events. Nil means time.Now.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Write renders entries in the given format.
func Write(w io.Writer, format Format, entries []models.TimetableEntry, opts Options) error {
	switch format {
	case FormatCSV:
		return CSV(w, entries)
	case FormatXLSX:
		return XLSX(w, entries)
	case FormatICS:
		return ICS(w, entries, opts)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// Header is the column layout shared by the tabular formats.
var Header = []string{
	"course_id", "code", "name", "section", "days", "start", "end",
	"location", "instructor", "exam_period", "conflict",
}

func record(e models.TimetableEntry) []string {
	c := e.Course
	return []string{
		e.CourseID,
		c.Code,
		c.Name,
		c.Section,
		joinDays(c.Days, " "),
		c.StartTime,
		c.EndTime,
		c.Location,
		c.Instructor,
		c.ExamPeriod(),
		fmt.Sprintf("%t", e.IsConflictSection),
	}
}

func joinDays(days []models.Weekday, sep string) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = string(d)
	}
	return strings.Join(parts, sep)
}
