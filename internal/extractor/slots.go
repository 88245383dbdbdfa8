package extractor

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/julianstephens/jadwal/internal/constants"
	"github.com/julianstephens/jadwal/internal/models"
	"github.com/julianstephens/jadwal/internal/utils"
)

// Tokens of the packed section payload:
//
//	<day-numbers> @t <H:MM [marker]> - <H:MM [marker]> @r <location> [@n ...]
const (
	slotSeparator     = "@n"
	timeMarker        = "@t"
	locationMarker    = "@r"
	beforeNoonGlyph   = "ص"
	afterNoonGlyph    = "م"
	meridiemAlternate = `ص|م|[AaPp]\.?[Mm]\.?`
)

var (
	clockPattern     = regexp.MustCompile(`^\s*(\d{1,2})\s*:\s*(\d{2})\s*(` + meridiemAlternate + `)?\s*$`)
	timeRangePattern = regexp.MustCompile(`(\d{1,2})\s*:\s*(\d{2})\s*(` + meridiemAlternate + `)?\s*[-–—]\s*(\d{1,2})\s*:\s*(\d{2})\s*(` + meridiemAlternate + `)?`)
	trailingDays     = regexp.MustCompile(`(?:^|\s)([1-5](?:\s+[1-5])*)\s*$`)
	dayNumber        = regexp.MustCompile(`\d+`)
)

// dayNumbers maps the portal's day numbering onto weekday codes. Only the
// regional Sunday-Thursday school week is ever encoded.
var dayNumbers = map[int]models.Weekday{
	1: models.Sunday,
	2: models.Monday,
	3: models.Tuesday,
	4: models.Wednesday,
	5: models.Thursday,
}

// ParseTime converts "H:MM", "H:MM ص" or "H:MM م" (or AM/PM) into zero-padded
// 24-hour HH:MM. The after-noon marker adds 12 hours unless the hour is
// already 12; the before-noon marker turns 12 into 00.
func ParseTime(s string) (string, bool) {
	m := clockPattern.FindStringSubmatch(cleanText(s))
	if m == nil {
		return "", false
	}
	return clock(m[1], m[2], m[3])
}

func clock(hourText, minuteText, marker string) (string, bool) {
	hour, err := strconv.Atoi(hourText)
	if err != nil {
		return "", false
	}
	minute, err := strconv.Atoi(minuteText)
	if err != nil || minute > 59 {
		return "", false
	}

	switch meridiem(marker) {
	case afterNoonGlyph:
		if hour < 12 {
			hour += 12
		}
	case beforeNoonGlyph:
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 {
		return "", false
	}
	return utils.FormatClock(hour, minute), true
}

// meridiem folds English markers onto the Arabic glyphs.
func meridiem(marker string) string {
	switch strings.ToLower(strings.ReplaceAll(marker, ".", "")) {
	case beforeNoonGlyph, "am":
		return beforeNoonGlyph
	case afterNoonGlyph, "pm":
		return afterNoonGlyph
	default:
		return ""
	}
}

// ParseSlots decodes a packed section payload into its meeting windows.
// It returns nil when nothing in the payload is usable.
func ParseSlots(packed string) []models.TimeSlot {
	packed = cleanText(packed)
	if packed == "" {
		return nil
	}

	var slots []models.TimeSlot
	if strings.Contains(packed, slotSeparator) {
		for _, part := range strings.Split(packed, slotSeparator) {
			if slot, ok := parseSegment(part); ok {
				slots = append(slots, slot)
			}
		}
	} else {
		slots = scanRecords(packed)
	}

	if len(slots) == 0 {
		if slot, ok := parseLoose(packed); ok {
			slots = append(slots, slot)
		}
	}
	return slots
}

// parseSegment reads exactly one record from an @n-delimited part.
func parseSegment(part string) (models.TimeSlot, bool) {
	fields := strings.Split(part, timeMarker)
	if len(fields) < 2 {
		return models.TimeSlot{}, false
	}
	return parseRecord(fields[0], fields[1])
}

// scanRecords handles payloads where records follow each other without @n.
// The day numbers of record i+1 trail the location of record i, so they are
// peeled off the end of each body before it is parsed.
func scanRecords(packed string) []models.TimeSlot {
	fields := strings.Split(packed, timeMarker)
	if len(fields) < 2 {
		return nil
	}

	var slots []models.TimeSlot
	days := fields[0]
	for i := 1; i < len(fields); i++ {
		body := fields[i]
		next := ""
		if i < len(fields)-1 {
			body, next = splitTrailingDays(body)
		}
		if slot, ok := parseRecord(days, body); ok {
			slots = append(slots, slot)
		}
		days = next
	}
	return slots
}

// splitTrailingDays cuts the run of day numbers that ends body off as the
// days of the record that follows.
func splitTrailingDays(body string) (string, string) {
	loc := trailingDays.FindStringSubmatchIndex(body)
	if loc == nil {
		return body, ""
	}
	return body[:loc[0]], body[loc[2]:loc[3]]
}

// parseRecord builds one slot from the text before @t and the text after it.
// A record with a usable time range but no recognizable day falls back to
// the default day.
func parseRecord(daysText, body string) (models.TimeSlot, bool) {
	timeText, location, _ := strings.Cut(body, locationMarker)
	start, end, ok := parseTimeRange(timeText)
	if !ok {
		return models.TimeSlot{}, false
	}

	days := parseDays(daysText)
	if len(days) == 0 {
		days = []models.Weekday{constants.DefaultSlotDay}
	}

	return models.TimeSlot{
		Days:      days,
		StartTime: start,
		EndTime:   end,
		Location:  cleanText(location),
	}, true
}

// parseLoose is the last attempt for payloads without any record markers.
func parseLoose(packed string) (models.TimeSlot, bool) {
	idx := timeRangePattern.FindStringSubmatchIndex(packed)
	if idx == nil {
		return models.TimeSlot{}, false
	}
	start, end, ok := parseTimeRange(packed[idx[0]:idx[1]])
	if !ok {
		return models.TimeSlot{}, false
	}
	days := parseDays(packed[:idx[0]])
	if len(days) == 0 {
		return models.TimeSlot{}, false
	}

	location := strings.ReplaceAll(packed[idx[1]:], locationMarker, " ")
	return models.TimeSlot{
		Days:      days,
		StartTime: start,
		EndTime:   end,
		Location:  cleanText(location),
	}, true
}

func parseTimeRange(text string) (string, string, bool) {
	m := timeRangePattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	start, ok := clock(m[1], m[2], m[3])
	if !ok {
		return "", "", false
	}
	end, ok := clock(m[4], m[5], m[6])
	if !ok {
		return "", "", false
	}
	if utils.DurationMinutes(start, end) <= 0 {
		return "", "", false
	}
	return start, end, true
}

// parseDays reads every day number in text, ignoring numbers outside the
// mapped range, and returns the weekdays deduplicated in week order.
func parseDays(text string) []models.Weekday {
	var days []models.Weekday
	for _, token := range dayNumber.FindAllString(text, -1) {
		n, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		if day, ok := dayNumbers[n]; ok && !slices.Contains(days, day) {
			days = append(days, day)
		}
	}
	sortDays(days)
	return days
}

func sortDays(days []models.Weekday) {
	slices.SortFunc(days, func(a, b models.Weekday) int {
		return a.Order() - b.Order()
	})
}

// unionDays merges the days of every slot, deduplicated in week order.
func unionDays(slots []models.TimeSlot) []models.Weekday {
	var days []models.Weekday
	for _, slot := range slots {
		for _, day := range slot.Days {
			if !slices.Contains(days, day) {
				days = append(days, day)
			}
		}
	}
	sortDays(days)
	return days
}

func defaultSlot() models.TimeSlot {
	return models.TimeSlot{
		Days:      []models.Weekday{constants.DefaultSlotDay},
		StartTime: constants.DefaultSlotStart,
		EndTime:   constants.DefaultSlotEnd,
	}
}
