// Package timetable holds the student's placed sections and decides whether
// a new section can join them.
package timetable

import (
	"slices"
	"sync"

	"github.com/julianstephens/jadwal/internal/logger"
	"github.com/julianstephens/jadwal/internal/models"
)

// Timetable is the ordered set of placed entries. No two entries share a
// CourseID. All methods are safe for concurrent use.
type Timetable struct {
	mu      sync.Mutex
	entries []models.TimetableEntry
}

// New seeds a timetable from previously stored entries. Entries repeating an
// earlier CourseID are dropped.
func New(entries []models.TimetableEntry) *Timetable {
	t := &Timetable{}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.CourseID] {
			logger.Warn("dropping duplicate timetable entry", "course_id", e.CourseID)
			continue
		}
		seen[e.CourseID] = true
		t.entries = append(t.entries, e)
	}
	return t
}

// Entries returns a copy of the placed entries in insertion order.
func (t *Timetable) Entries() []models.TimetableEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.entries)
}

func (t *Timetable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Add places course on the timetable. A multi-slot course is placed as one
// entry per slot: slots already present are skipped, slots with a schedule
// conflict are skipped unless force is set, and the rest are inserted
// together. Add returns true only when every slot not already present was
// inserted and at least one entry was added.
//
// Forced entries that override a schedule conflict are flagged as conflict
// sections. Exam-period conflicts never block.
func (t *Timetable) Add(course models.Course, force bool) bool {
	if err := course.Validate(); err != nil {
		logger.Debug("refusing invalid course", "course_id", course.ID, "err", err)
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !course.IsMultiSlot() {
		if t.indexOf(course.ID) >= 0 {
			return false
		}
		conflict := t.hardConflict(course)
		if conflict != nil && !force {
			return false
		}
		t.entries = append(t.entries, models.TimetableEntry{
			CourseID:          course.ID,
			Course:            course,
			IsConflictSection: conflict != nil,
		})
		return true
	}

	var accepted []models.TimetableEntry
	refused := false
	for i := range course.TimeSlots {
		view := course.SlotView(i)
		if t.indexOf(view.ID) >= 0 {
			continue
		}
		conflict := t.hardConflict(view)
		if conflict != nil && !force {
			refused = true
			continue
		}
		accepted = append(accepted, models.TimetableEntry{
			CourseID:          view.ID,
			Course:            view,
			IsConflictSection: conflict != nil,
		})
	}
	t.entries = append(t.entries, accepted...)
	return len(accepted) > 0 && !refused
}

// Remove deletes the entry with the given id together with every entry of
// the same section: the base course and all of its slot sub-ids. Flags of
// remaining conflict sections whose conflict disappeared are then cleared.
// It reports whether anything was removed.
func (t *Timetable) Remove(courseID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	base := models.BaseID(courseID)
	before := len(t.entries)
	t.entries = slices.DeleteFunc(t.entries, func(e models.TimetableEntry) bool {
		return e.CourseID == courseID || models.BaseID(e.CourseID) == base
	})
	if len(t.entries) == before {
		return false
	}

	for i := range t.entries {
		e := &t.entries[i]
		if e.IsConflictSection && t.hardConflict(e.Course) == nil {
			e.IsConflictSection = false
			logger.Debug("cleared conflict flag", "course_id", e.CourseID)
		}
	}
	return true
}

// Replace swaps the placed entries for entries, as given.
func (t *Timetable) Replace(entries []models.TimetableEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = slices.Clone(entries)
}

// RemoveAll empties the timetable.
func (t *Timetable) RemoveAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
}

// HasConflict reports whether adding course now would hit a schedule
// conflict. Entries belonging to course itself are ignored.
func (t *Timetable) HasConflict(course models.Course) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hardConflict(course) != nil
}

// GetConflictInfo returns the first conflict of either kind that adding
// course would meet, scanning entries in insertion order, or nil. For each
// entry a schedule conflict is reported before an exam-period one.
func (t *Timetable) GetConflictInfo(course models.Course) *ConflictInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		if isSameSection(course.ID, e.CourseID) {
			continue
		}
		if o, ok := scheduleOverlap(course, e.Course); ok {
			return scheduleConflict(course, e, o)
		}
		if sameExamPeriod(course, e.Course) {
			return examConflict(course, e)
		}
	}
	return nil
}

// ScheduleConflict returns the blocking conflict Add would meet for the
// windows of course that are not placed yet, or nil.
func (t *Timetable) ScheduleConflict(course models.Course) *ConflictInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !course.IsMultiSlot() {
		return t.hardConflict(course)
	}
	for i := range course.TimeSlots {
		view := course.SlotView(i)
		if t.indexOf(view.ID) >= 0 {
			continue
		}
		if c := t.hardConflict(view); c != nil {
			return c
		}
	}
	return nil
}

// ExamConflict returns the first placed section sharing the exam period of
// course, or nil.
func (t *Timetable) ExamConflict(course models.Course) *ConflictInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		if !isSameSection(course.ID, e.CourseID) && sameExamPeriod(course, e.Course) {
			return examConflict(course, e)
		}
	}
	return nil
}

// IsFullyPlaced reports whether every window of course is already on the
// timetable, so Add has nothing left to insert.
func (t *Timetable) IsFullyPlaced(course models.Course) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !course.IsMultiSlot() {
		return t.indexOf(course.ID) >= 0
	}
	for i := range course.TimeSlots {
		if t.indexOf(course.SlotView(i).ID) < 0 {
			return false
		}
	}
	return true
}

// IsInTimetable reports whether courseID, or any slot sub-id derived from
// it, is placed.
func (t *Timetable) IsInTimetable(courseID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		if e.CourseID == courseID || models.BaseID(e.CourseID) == courseID {
			return true
		}
	}
	return false
}

// StaleFlags lists flagged entries that no longer conflict with anything.
// Remove keeps this empty; it can only be non-empty for stored state edited
// outside the timetable.
func (t *Timetable) StaleFlags() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var ids []string
	for _, e := range t.entries {
		if e.IsConflictSection && t.hardConflict(e.Course) == nil {
			ids = append(ids, e.CourseID)
		}
	}
	return ids
}

// hardConflict returns the first schedule conflict of course against the
// entries of other sections. Callers hold the lock.
func (t *Timetable) hardConflict(course models.Course) *ConflictInfo {
	for _, e := range t.entries {
		if isSameSection(course.ID, e.CourseID) {
			continue
		}
		if o, ok := scheduleOverlap(course, e.Course); ok {
			return scheduleConflict(course, e, o)
		}
	}
	return nil
}

func (t *Timetable) indexOf(courseID string) int {
	return slices.IndexFunc(t.entries, func(e models.TimetableEntry) bool {
		return e.CourseID == courseID
	})
}

func isSameSection(a, b string) bool {
	return models.BaseID(a) == models.BaseID(b)
}
