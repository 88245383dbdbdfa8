package extractor

import (
	"slices"
	"testing"

	"github.com/julianstephens/jadwal/internal/models"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"12:00 ص", "00:00", true},
		{"12:00 م", "12:00", true},
		{"01:30 م", "13:30", true},
		{"1:30 م", "13:30", true},
		{"11:59 م", "23:59", true},
		{"09:40 ص", "09:40", true},
		{"9:05", "09:05", true},
		{"14:15", "14:15", true},
		{"11:00 PM", "23:00", true},
		{"12:30 am", "00:30", true},
		{"25:00", "", false},
		{"10:75", "", false},
		{"noon", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTime(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseTime(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseTime(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTime_EveryHourBothMarkers(t *testing.T) {
	for hour := 1; hour <= 12; hour++ {
		am := hour % 12
		pm := hour%12 + 12

		gotAM, ok := ParseTime(twoDigits(hour) + ":00 ص")
		if !ok || gotAM != twoDigits(am)+":00" {
			t.Errorf("hour %d before noon = %q (ok=%v), want %s:00", hour, gotAM, ok, twoDigits(am))
		}
		gotPM, ok := ParseTime(twoDigits(hour) + ":00 م")
		if !ok || gotPM != twoDigits(pm)+":00" {
			t.Errorf("hour %d after noon = %q (ok=%v), want %s:00", hour, gotPM, ok, twoDigits(pm))
		}
	}
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

func TestParseSlots(t *testing.T) {
	tests := []struct {
		name   string
		packed string
		want   []models.TimeSlot
	}{
		{
			name:   "single record",
			packed: "1 @t 08:00 ص - 09:40 ص @r 5132 كلية اللغات",
			want: []models.TimeSlot{
				{Days: []models.Weekday{models.Sunday}, StartTime: "08:00", EndTime: "09:40", Location: "5132 كلية اللغات"},
			},
		},
		{
			name:   "several days share one record",
			packed: "2 4 @t 09:45 ص - 11:00 ص @r COC-303COE",
			want: []models.TimeSlot{
				{Days: []models.Weekday{models.Monday, models.Wednesday}, StartTime: "09:45", EndTime: "11:00", Location: "COC-303COE"},
			},
		},
		{
			name:   "explicit separator",
			packed: "1 3 @t 08:00 ص - 09:00 ص @r A101 @n 2 @t 01:00 م - 02:40 م @r LAB 7",
			want: []models.TimeSlot{
				{Days: []models.Weekday{models.Sunday, models.Tuesday}, StartTime: "08:00", EndTime: "09:00", Location: "A101"},
				{Days: []models.Weekday{models.Monday}, StartTime: "13:00", EndTime: "14:40", Location: "LAB 7"},
			},
		},
		{
			name:   "consecutive records without separator",
			packed: "1 @t 08:00 ص - 09:40 ص @r 5132 كلية اللغات 3 @t 10:00 ص - 11:40 ص @r Hall B",
			want: []models.TimeSlot{
				{Days: []models.Weekday{models.Sunday}, StartTime: "08:00", EndTime: "09:40", Location: "5132 كلية اللغات"},
				{Days: []models.Weekday{models.Tuesday}, StartTime: "10:00", EndTime: "11:40", Location: "Hall B"},
			},
		},
		{
			name:   "location ending in a day number without separator",
			packed: "1 @t 08:00 ص - 09:00 ص @r Hall 3 2 @t 10:00 ص - 11:00 ص @r B",
			want: []models.TimeSlot{
				{Days: []models.Weekday{models.Sunday}, StartTime: "08:00", EndTime: "09:00", Location: "Hall"},
				{Days: []models.Weekday{models.Monday, models.Tuesday}, StartTime: "10:00", EndTime: "11:00", Location: "B"},
			},
		},
		{
			name:   "days deduplicated in week order",
			packed: "4 2 4 @t 10:00 ص - 11:00 ص @r X",
			want: []models.TimeSlot{
				{Days: []models.Weekday{models.Monday, models.Wednesday}, StartTime: "10:00", EndTime: "11:00", Location: "X"},
			},
		},
		{
			name:   "record without day numbers",
			packed: "@t 08:00 ص - 09:00 ص @r Online",
			want: []models.TimeSlot{
				{Days: []models.Weekday{models.Sunday}, StartTime: "08:00", EndTime: "09:00", Location: "Online"},
			},
		},
		{
			name:   "loose whole-string parse",
			packed: "5 12:00 م - 01:15 م Room 9",
			want: []models.TimeSlot{
				{Days: []models.Weekday{models.Thursday}, StartTime: "12:00", EndTime: "13:15", Location: "Room 9"},
			},
		},
		{
			name:   "inverted range is unusable",
			packed: "1 @t 11:00 ص - 10:00 ص @r X",
			want:   nil,
		},
		{
			name:   "no schedule",
			packed: "TBA",
			want:   nil,
		},
		{
			name:   "empty",
			packed: "   ",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSlots(tt.packed)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseSlots() returned %d slots, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if !slotsEqual(got[i], tt.want[i]) {
					t.Errorf("slot %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseSlots_SeparatorCount(t *testing.T) {
	segments := []string{
		"1 @t 08:00 ص - 09:00 ص @r A",
		"2 @t 09:00 ص - 10:00 ص @r B",
		"no time here",
		"3 @t 10:00 ص - 11:00 ص @r C",
	}
	packed := segments[0]
	for _, s := range segments[1:] {
		packed += " @n " + s
	}

	if got := len(ParseSlots(packed)); got != 3 {
		t.Errorf("ParseSlots() returned %d slots, want 3", got)
	}
}

func TestUnionDays(t *testing.T) {
	slots := []models.TimeSlot{
		{Days: []models.Weekday{models.Wednesday, models.Monday}},
		{Days: []models.Weekday{models.Sunday, models.Wednesday}},
	}
	want := []models.Weekday{models.Sunday, models.Monday, models.Wednesday}
	if got := unionDays(slots); !slices.Equal(got, want) {
		t.Errorf("unionDays() = %v, want %v", got, want)
	}
}

func slotsEqual(a, b models.TimeSlot) bool {
	return slices.Equal(a.Days, b.Days) &&
		a.StartTime == b.StartTime &&
		a.EndTime == b.EndTime &&
		a.Location == b.Location
}
