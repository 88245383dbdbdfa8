// Package extractor turns a saved offered-courses page of the student portal
// into catalog courses.
//
// Each row packs its meeting times into one hidden section value, a list of
// "<days> @t <time range> @r <location>" records. Records are normally split
// by "@n". When a record follows the previous one directly, the trailing run
// of day numbers 1-5 in the previous location is taken as the next record's
// days. A location that itself ends in such a number is therefore cut short:
// "Hall 3 2 @t ..." reads as location "Hall" followed by a Mon/Tue record.
package extractor

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/julianstephens/jadwal/internal/logger"
	"github.com/julianstephens/jadwal/internal/models"
)

// Column positions of the offered-courses table.
const (
	colCode    = 0
	colName    = 1
	colSection = 3
	colType    = 4
	colStatus  = 6
	colDetails = 7
	minCells   = colDetails + 1
)

var (
	rowClass   = regexp.MustCompile(`(?:^|\s)ROW\d`)
	tableIndex = regexp.MustCompile(`table:(\d+):`)
)

// Stats counts what happened to the rows of one extraction.
type Stats struct {
	RowsSeen    int `json:"rows_seen"`
	RowsSkipped int `json:"rows_skipped"`
	RowsFailed  int `json:"rows_failed"`
	Courses     int `json:"courses"`
}

// Extractor turns the portal's offered-courses page into courses. It keeps
// no state between calls.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// ExtractHTML parses r as HTML and extracts it. The only error is a failure
// to read the document.
func (e *Extractor) ExtractHTML(r io.Reader) ([]models.Course, Stats, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to parse document: %w", err)
	}
	courses, stats := e.Extract(doc)
	return courses, stats, nil
}

// Extract walks every section row of doc. Rows that are malformed or fail to
// parse are counted and skipped; the result is never nil.
func (e *Extractor) Extract(doc *goquery.Document) ([]models.Course, Stats) {
	courses := []models.Course{}
	var stats Stats
	seen := make(map[string]int)

	rows := doc.Find("tr").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return rowClass.MatchString(class)
	})

	rows.Each(func(position int, row *goquery.Selection) {
		stats.RowsSeen++
		course, ok, err := parseRow(position, row)
		switch {
		case err != nil:
			stats.RowsFailed++
			logger.Debug("failed to parse row", "position", position, "err", err)
			return
		case !ok:
			stats.RowsSkipped++
			return
		}

		if n := seen[course.ID]; n > 0 {
			seen[course.ID] = n + 1
			course.ID = course.ID + "-" + strconv.Itoa(n+1)
		} else {
			seen[course.ID] = 1
		}
		courses = append(courses, course)
	})

	stats.Courses = len(courses)
	logger.Debug("extraction finished",
		"rows_seen", stats.RowsSeen,
		"rows_skipped", stats.RowsSkipped,
		"rows_failed", stats.RowsFailed,
		"courses", stats.Courses,
	)
	if stats.RowsFailed > 0 {
		logger.Warn("some rows could not be parsed", "rows_failed", stats.RowsFailed)
	}
	return courses, stats
}

// details holds the hidden inputs of a row's details cell.
type details struct {
	instructor string
	examPeriod string
	packed     string
	index      int
	hasIndex   bool
}

func parseRow(position int, row *goquery.Selection) (course models.Course, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	cells := row.ChildrenFiltered("td")
	if cells.Length() < minCells {
		return models.Course{}, false, nil
	}

	code := cellText(cells, colCode)
	section := cellText(cells, colSection)
	if code == "" || section == "" {
		return models.Course{}, false, nil
	}

	d := readDetails(cells.Eq(colDetails))
	index := position
	if d.hasIndex {
		index = d.index
	}

	slots := ParseSlots(d.packed)
	if len(slots) == 0 {
		slots = []models.TimeSlot{defaultSlot()}
	}
	primary := slots[0]

	course = models.Course{
		ID:            code + "-" + section + "-" + strconv.Itoa(index),
		Code:          code,
		Name:          cellText(cells, colName),
		Section:       section,
		Days:          unionDays(slots),
		StartTime:     primary.StartTime,
		EndTime:       primary.EndTime,
		Location:      primary.Location,
		Instructor:    d.instructor,
		Status:        ClassifyStatus(cellText(cells, colStatus)),
		ClassType:     ClassifyClassType(cellText(cells, colType)),
		OriginalIndex: &index,
	}
	if len(slots) > 1 {
		course.TimeSlots = slots
	}
	if d.examPeriod != "" {
		course.FinalExam = &models.Exam{Date: d.examPeriod}
	}
	return course, true, nil
}

func cellText(cells *goquery.Selection, i int) string {
	return cleanText(cells.Eq(i).Text())
}

// readDetails identifies each hidden input by the last segment of its name.
func readDetails(cell *goquery.Selection) details {
	var d details
	cell.Find("input").Each(func(_ int, input *goquery.Selection) {
		name, _ := input.Attr("name")
		value, _ := input.Attr("value")

		if !d.hasIndex {
			if m := tableIndex.FindStringSubmatch(name); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					d.index, d.hasIndex = n, true
				}
			}
		}

		field := strings.ToLower(name)
		if i := strings.LastIndexAny(field, ":."); i >= 0 {
			field = field[i+1:]
		}
		switch {
		case strings.Contains(field, "exam"):
			d.examPeriod = cleanText(value)
		case strings.Contains(field, "instructor"),
			strings.Contains(field, "teacher"),
			strings.Contains(field, "lecturer"):
			d.instructor = cleanText(value)
		case strings.Contains(field, "section"):
			d.packed = value
		}
	})
	return d
}
