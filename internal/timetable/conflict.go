package timetable

import (
	"fmt"
	"slices"

	"github.com/julianstephens/jadwal/internal/models"
	"github.com/julianstephens/jadwal/internal/utils"
)

// ConflictType distinguishes blocking from advisory conflicts.
type ConflictType string

const (
	// ConflictSchedule is a hard conflict: overlapping class time on a shared day.
	ConflictSchedule ConflictType = "schedule"
	// ConflictExam is a soft conflict: both courses share an exam period.
	ConflictExam ConflictType = "exam"
)

// ConflictInfo explains why a course collides with an entry already placed.
type ConflictInfo struct {
	Type ConflictType `json:"type"`
	// CourseID is the id of the placed entry, possibly a slot sub-id.
	CourseID    string         `json:"course_id"`
	With        models.Course  `json:"with"`
	Day         models.Weekday `json:"day,omitempty"`
	CanProceed  bool           `json:"can_proceed"`
	Description string         `json:"description"`
}

// overlap is one pair of windows that share a day and intersect in time.
type overlap struct {
	day       models.Weekday
	candidate models.TimeSlot
	existing  models.TimeSlot
}

// scheduleOverlap compares every window of a with every window of b.
func scheduleOverlap(a, b models.Course) (overlap, bool) {
	for _, sa := range a.Slots() {
		for _, sb := range b.Slots() {
			day, shared := sharedDay(sa.Days, sb.Days)
			if !shared {
				continue
			}
			if utils.WindowsOverlap(sa.StartTime, sa.EndTime, sb.StartTime, sb.EndTime) {
				return overlap{day: day, candidate: sa, existing: sb}, true
			}
		}
	}
	return overlap{}, false
}

func sharedDay(a, b []models.Weekday) (models.Weekday, bool) {
	for _, day := range a {
		if slices.Contains(b, day) {
			return day, true
		}
	}
	return "", false
}

// sameExamPeriod reports whether both courses carry the same non-empty
// exam-period token.
func sameExamPeriod(a, b models.Course) bool {
	period := a.ExamPeriod()
	return period != "" && period == b.ExamPeriod()
}

func scheduleConflict(candidate models.Course, entry models.TimetableEntry, o overlap) *ConflictInfo {
	return &ConflictInfo{
		Type:       ConflictSchedule,
		CourseID:   entry.CourseID,
		With:       entry.Course,
		Day:        o.day,
		CanProceed: false,
		Description: fmt.Sprintf("%s (%s-%s) overlaps %s section %s (%s-%s) on %s",
			label(candidate), o.candidate.StartTime, o.candidate.EndTime,
			entry.Course.Code, entry.Course.Section, o.existing.StartTime, o.existing.EndTime,
			o.day),
	}
}

func examConflict(candidate models.Course, entry models.TimetableEntry) *ConflictInfo {
	return &ConflictInfo{
		Type:       ConflictExam,
		CourseID:   entry.CourseID,
		With:       entry.Course,
		CanProceed: true,
		Description: fmt.Sprintf("%s shares exam period %s with %s section %s",
			label(candidate), candidate.ExamPeriod(), entry.Course.Code, entry.Course.Section),
	}
}

func label(c models.Course) string {
	return fmt.Sprintf("%s section %s", c.Code, c.Section)
}
