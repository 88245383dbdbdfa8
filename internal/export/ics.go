package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/julianstephens/jadwal/internal/constants"
	"github.com/julianstephens/jadwal/internal/models"
)

// icsDateTime is a floating local date-time.
const icsDateTime = "20060102T150405"

var (
	icsWeekdays = map[models.Weekday]time.Weekday{
		models.Sunday:    time.Sunday,
		models.Monday:    time.Monday,
		models.Tuesday:   time.Tuesday,
		models.Wednesday: time.Wednesday,
		models.Thursday:  time.Thursday,
		models.Friday:    time.Friday,
		models.Saturday:  time.Saturday,
	}
	icsByDay = map[models.Weekday]string{
		models.Sunday:    "SU",
		models.Monday:    "MO",
		models.Tuesday:   "TU",
		models.Wednesday: "WE",
		models.Thursday:  "TH",
		models.Friday:    "FR",
		models.Saturday:  "SA",
	}
)

// ICS writes an iCalendar feed with one weekly recurring event per entry.
// Times are floating local times; the first occurrence is the first
// meeting day on or after the term start.
func ICS(w io.Writer, entries []models.TimetableEntry, opts Options) error {
	now := opts.now()
	termStart := opts.TermStart
	if termStart.IsZero() {
		termStart = now
	}
	termStart = time.Date(termStart.Year(), termStart.Month(), termStart.Day(), 0, 0, 0, 0, time.Local)

	cal := ics.NewCalendar()
	cal.SetProductId("-//" + constants.AppName + "//timetable " + constants.Version + "//EN")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)

	for _, e := range entries {
		start, end, ok := firstOccurrence(e.Course, termStart)
		if !ok {
			continue
		}

		event := cal.AddEvent(e.CourseID + "@" + constants.AppName)
		event.SetDtStampTime(now)
		event.SetProperty(ics.ComponentPropertyDtStart, start.Format(icsDateTime))
		event.SetProperty(ics.ComponentPropertyDtEnd, end.Format(icsDateTime))
		event.AddRrule("FREQ=WEEKLY;BYDAY=" + byDay(e.Course.Days))
		event.SetSummary(summary(e.Course))
		if e.Course.Location != "" {
			event.SetLocation(e.Course.Location)
		}
		if desc := description(e); desc != "" {
			event.SetDescription(desc)
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

// firstOccurrence finds the earliest meeting of c on or after termStart.
func firstOccurrence(c models.Course, termStart time.Time) (time.Time, time.Time, bool) {
	startClock, err := time.Parse(constants.TimeFormat, c.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	endClock, err := time.Parse(constants.TimeFormat, c.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}

	best := -1
	for _, d := range c.Days {
		wd, ok := icsWeekdays[d]
		if !ok {
			continue
		}
		offset := (int(wd) - int(termStart.Weekday()) + 7) % 7
		if best < 0 || offset < best {
			best = offset
		}
	}
	if best < 0 {
		return time.Time{}, time.Time{}, false
	}

	day := termStart.AddDate(0, 0, best)
	at := func(clock time.Time) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local)
	}
	return at(startClock), at(endClock), true
}

func byDay(days []models.Weekday) string {
	codes := make([]string, 0, len(days))
	for _, d := range days {
		if code, ok := icsByDay[d]; ok {
			codes = append(codes, code)
		}
	}
	return strings.Join(codes, ",")
}

func summary(c models.Course) string {
	if c.Name == "" {
		return fmt.Sprintf("%s (%s)", c.Code, c.Section)
	}
	return fmt.Sprintf("%s %s (%s)", c.Code, c.Name, c.Section)
}

func description(e models.TimetableEntry) string {
	var parts []string
	if e.Course.Instructor != "" {
		parts = append(parts, "Instructor: "+e.Course.Instructor)
	}
	if period := e.Course.ExamPeriod(); period != "" {
		parts = append(parts, "Exam period: "+period)
	}
	if e.IsConflictSection {
		parts = append(parts, "Conflicts with another section")
	}
	return strings.Join(parts, "\n")
}
