package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/jadwal/internal/constants"
)

// TimetableEntry is one placed meeting window. CourseID is either a course id
// or a slot sub-id; Course is the slot-narrowed view in the latter case.
type TimetableEntry struct {
	CourseID          string `json:"course_id"`
	Course            Course `json:"course"`
	IsConflictSection bool   `json:"is_conflict_section"`
}

// BaseID strips a slot suffix from id. Ids without one are returned as is.
func BaseID(id string) string {
	i := strings.LastIndex(id, constants.SlotIDSeparator)
	if i < 0 {
		return id
	}
	if _, err := strconv.Atoi(id[i+len(constants.SlotIDSeparator):]); err != nil {
		return id
	}
	return id[:i]
}

// IsSlotID reports whether id refers to one slot of a multi-slot course.
func IsSlotID(id string) bool {
	return BaseID(id) != id
}

// ImportBatch records one extraction run over a portal page.
type ImportBatch struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	ImportedAt  time.Time `json:"imported_at"`
	RowsSeen    int       `json:"rows_seen"`
	RowsSkipped int       `json:"rows_skipped"`
	RowsFailed  int       `json:"rows_failed"`
	CourseCount int       `json:"course_count"`
}
