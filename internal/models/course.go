package models

import (
	"slices"
	"strconv"

	"github.com/julianstephens/jadwal/internal/constants"
)

type Weekday string

const (
	Sunday    Weekday = "Sun"
	Monday    Weekday = "Mon"
	Tuesday   Weekday = "Tue"
	Wednesday Weekday = "Wed"
	Thursday  Weekday = "Thu"
	Friday    Weekday = "Fri"
	Saturday  Weekday = "Sat"
)

// Week lists the weekday codes in calendar order, starting on Sunday.
var Week = []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// Order returns the position of the day in the week, or -1 for unknown codes.
func (d Weekday) Order() int {
	return slices.Index(Week, d)
}

type ClassType string

const (
	ClassTheoretical ClassType = "theoretical"
	ClassPractical   ClassType = "practical"
	ClassExercise    ClassType = "exercise"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

type TimeSlot struct {
	Days      []Weekday `json:"days" validate:"min=1,dive,oneof=Sun Mon Tue Wed Thu Fri Sat"`
	StartTime string    `json:"start_time" validate:"required,datetime=15:04"` // HH:MM format
	EndTime   string    `json:"end_time" validate:"required,datetime=15:04"`   // HH:MM format
	Location  string    `json:"location,omitempty"`
}

// Exam describes a final exam. Date carries the portal's exam-period token,
// not a calendar date, and is only ever compared for equality.
type Exam struct {
	Day       Weekday `json:"day,omitempty" validate:"omitempty,oneof=Sun Mon Tue Wed Thu Fri Sat"`
	Date      string  `json:"date,omitempty"`
	StartTime string  `json:"start_time,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime   string  `json:"end_time,omitempty" validate:"omitempty,datetime=15:04"`
	Location  string  `json:"location,omitempty"`
}

// Course is one section offering as scraped from the portal. Days, StartTime,
// EndTime and Location always describe the primary (first) meeting window;
// TimeSlots is only populated when the section meets in more than one pattern.
type Course struct {
	ID            string     `json:"id" validate:"required"`
	Code          string     `json:"code" validate:"required"`
	Name          string     `json:"name"`
	Section       string     `json:"section" validate:"required"`
	Days          []Weekday  `json:"days" validate:"min=1,dive,oneof=Sun Mon Tue Wed Thu Fri Sat"`
	StartTime     string     `json:"start_time" validate:"required,datetime=15:04"`
	EndTime       string     `json:"end_time" validate:"required,datetime=15:04"`
	Location      string     `json:"location,omitempty"`
	TimeSlots     []TimeSlot `json:"time_slots,omitempty" validate:"omitempty,dive"`
	Instructor    string     `json:"instructor,omitempty"`
	FinalExam     *Exam      `json:"final_exam,omitempty"`
	Status        Status     `json:"status,omitempty" validate:"omitempty,oneof=open closed"`
	ClassType     ClassType  `json:"class_type,omitempty" validate:"omitempty,oneof=practical theoretical exercise"`
	OriginalIndex *int       `json:"original_index,omitempty"`
}

// IsMultiSlot reports whether the course meets in more than one distinct pattern.
func (c Course) IsMultiSlot() bool {
	return len(c.TimeSlots) > 1
}

// PrimarySlot returns the window used as the course's headline time. For
// multi-slot courses that is the first slot, so the union of days kept on
// the course itself never pairs with the first slot's hours.
func (c Course) PrimarySlot() TimeSlot {
	if c.IsMultiSlot() {
		return c.TimeSlots[0]
	}
	return TimeSlot{
		Days:      c.Days,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		Location:  c.Location,
	}
}

// Slots returns every meeting window of the course in order.
func (c Course) Slots() []TimeSlot {
	if c.IsMultiSlot() {
		return c.TimeSlots
	}
	return []TimeSlot{c.PrimarySlot()}
}

// SlotView narrows the course to a single meeting window, identified by the
// slot sub-id.
func (c Course) SlotView(index int) Course {
	slot := c.Slots()[index]
	view := c
	view.ID = SlotID(c.ID, index)
	view.Days = slices.Clone(slot.Days)
	view.StartTime = slot.StartTime
	view.EndTime = slot.EndTime
	view.Location = slot.Location
	view.TimeSlots = nil
	return view
}

// ExamPeriod returns the exam-period token, or "" when the course has none.
func (c Course) ExamPeriod() string {
	if c.FinalExam == nil {
		return ""
	}
	return c.FinalExam.Date
}

// SortKey is the display order of the course in the source page.
func (c Course) SortKey() int {
	if c.OriginalIndex == nil {
		return -1
	}
	return *c.OriginalIndex
}

// SubjectKey groups sibling sections of the same subject.
func (c Course) SubjectKey() string {
	return c.Code + "\x00" + c.Name
}

// SlotID composes the sub-id of one meeting window of a multi-slot course.
func SlotID(courseID string, index int) string {
	return courseID + constants.SlotIDSeparator + strconv.Itoa(index)
}
