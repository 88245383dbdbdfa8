package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/jadwal/internal/constants"
)

// ParseTime parses a time string in the standard format (HH:MM).
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// ParseTimeToMinutes parses a time string (HH:MM) and returns the number of minutes from midnight.
func ParseTimeToMinutes(timeStr string) (int, error) {
	t, err := ParseTime(timeStr)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders hour and minute as zero-padded 24-hour HH:MM.
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// WindowsOverlap reports whether [start1, end1) and [start2, end2) intersect.
// A window ending exactly when the other starts does not overlap it.
// Unparseable times never overlap anything.
func WindowsOverlap(start1, end1, start2, end2 string) bool {
	s1, err := ParseTimeToMinutes(start1)
	if err != nil {
		return false
	}
	e1, err := ParseTimeToMinutes(end1)
	if err != nil {
		return false
	}
	s2, err := ParseTimeToMinutes(start2)
	if err != nil {
		return false
	}
	e2, err := ParseTimeToMinutes(end2)
	if err != nil {
		return false
	}

	return s1 < e2 && s2 < e1
}

// DurationMinutes returns end minus start in minutes, or 0 for invalid input.
func DurationMinutes(start, end string) int {
	s, err := ParseTimeToMinutes(start)
	if err != nil {
		return 0
	}
	e, err := ParseTimeToMinutes(end)
	if err != nil {
		return 0
	}
	return e - s
}
