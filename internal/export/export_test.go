package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/jadwal/internal/models"
)

func sampleEntries() []models.TimetableEntry {
	multi := models.Course{
		ID: "CS201-1-5", Code: "CS201", Name: "Data Structures", Section: "1",
		Days:      []models.Weekday{models.Sunday, models.Tuesday},
		StartTime: "08:00", EndTime: "09:00", Location: "A1",
		TimeSlots: []models.TimeSlot{
			{Days: []models.Weekday{models.Sunday, models.Tuesday}, StartTime: "08:00", EndTime: "09:00", Location: "A1"},
			{Days: []models.Weekday{models.Wednesday}, StartTime: "13:00", EndTime: "14:40", Location: "LAB, 2"},
		},
		Instructor: "Dr. Noor",
		FinalExam:  &models.Exam{Date: "3"},
	}
	return []models.TimetableEntry{
		{CourseID: "CS201-1-5-slot-0", Course: multi.SlotView(0)},
		{CourseID: "CS201-1-5-slot-1", Course: multi.SlotView(1), IsConflictSection: true},
		{
			CourseID: "ENG101-2-1",
			Course: models.Course{
				ID: "ENG101-2-1", Code: "ENG101", Name: "English", Section: "2",
				Days: []models.Weekday{models.Monday}, StartTime: "08:00", EndTime: "09:15",
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{" XLSX ", FormatXLSX, false},
		{"ics", FormatICS, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, sampleEntries()); err != nil {
		t.Fatalf("CSV() error = %v", err)
	}

	want := strings.Join([]string{
		"course_id,code,name,section,days,start,end,location,instructor,exam_period,conflict",
		"CS201-1-5-slot-0,CS201,Data Structures,1,Sun Tue,08:00,09:00,A1,Dr. Noor,3,false",
		`CS201-1-5-slot-1,CS201,Data Structures,1,Wed,13:00,14:40,"LAB, 2",Dr. Noor,3,true`,
		"ENG101-2-1,ENG101,English,2,Mon,08:00,09:15,,,,false",
	}, "\n") + "\n"
	if got := buf.String(); got != want {
		t.Errorf("CSV() =\n%s\nwant\n%s", got, want)
	}
}

func TestCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, nil, Options{}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("empty export should only carry the header, got %q", buf.String())
	}
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := XLSX(&buf, sampleEntries()); err != nil {
		t.Fatalf("XLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Timetable" || sheets[1] != "Week" {
		t.Fatalf("sheets = %v, want [Timetable Week]", sheets)
	}

	rows, err := f.GetRows("Timetable")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("Timetable has %d rows, want 4", len(rows))
	}
	if rows[0][0] != "course_id" || rows[2][7] != "LAB, 2" || rows[2][10] != "true" {
		t.Errorf("unexpected Timetable rows: %v", rows)
	}

	week, err := f.GetRows("Week")
	if err != nil {
		t.Fatal(err)
	}
	// header, 08:00, 13:00
	if len(week) != 3 {
		t.Fatalf("Week has %d rows, want 3: %v", len(week), week)
	}
	if strings.Join(week[0], ",") != "time,Sun,Mon,Tue,Wed,Thu" {
		t.Errorf("Week header = %v", week[0])
	}
	if week[1][0] != "08:00" || !strings.HasPrefix(week[1][1], "CS201/1") || !strings.HasPrefix(week[1][2], "ENG101/2") || !strings.HasPrefix(week[1][3], "CS201/1") {
		t.Errorf("08:00 row = %v", week[1])
	}
	if week[2][0] != "13:00" || !strings.HasSuffix(week[2][4], "(!)") {
		t.Errorf("13:00 row = %v", week[2])
	}
}

func TestICS(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{
		TermStart: time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local), // a Tuesday
		Now:       func() time.Time { return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC) },
	}
	if err := ICS(&buf, sampleEntries(), opts); err != nil {
		t.Fatalf("ICS() error = %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n") || !strings.Contains(out, "END:VCALENDAR") {
		t.Errorf("calendar envelope malformed:\n%s", out)
	}
	if strings.Count(out, "BEGIN:VEVENT") != 3 {
		t.Errorf("expected 3 events:\n%s", out)
	}
	if strings.Contains(strings.ReplaceAll(out, "\r\n", ""), "\n") {
		t.Error("every line must end with CRLF")
	}

	for _, want := range []string{
		"UID:CS201-1-5-slot-0@jadwal",
		"DTSTAMP:20260820T120000Z",
		// Sun/Tue course first meets on the Tuesday term start.
		"DTSTART:20260901T080000",
		"DTEND:20260901T090000",
		"RRULE:FREQ=WEEKLY;BYDAY=SU,TU",
		// Wednesday slot.
		"DTSTART:20260902T130000",
		`LOCATION:LAB\, 2`,
		// Monday course starts the following week.
		"DTSTART:20260907T080000",
		"RRULE:FREQ=WEEKLY;BYDAY=MO",
		"SUMMARY:ENG101 English (2)",
		`DESCRIPTION:Instructor: Dr. Noor\nExam period: 3`,
	} {
		if !strings.Contains(out, want+"\r\n") {
			t.Errorf("missing line %q in:\n%s", want, out)
		}
	}
}

func TestICS_LongDescriptionUnfolds(t *testing.T) {
	instructor := strings.Repeat("ح", 60)
	entries := []models.TimetableEntry{{
		CourseID: "AR101-1-0",
		Course: models.Course{
			ID: "AR101-1-0", Code: "AR101", Section: "1", Instructor: instructor,
			Days: []models.Weekday{models.Sunday}, StartTime: "10:00", EndTime: "11:00",
		},
	}}

	var buf bytes.Buffer
	if err := ICS(&buf, entries, Options{TermStart: time.Date(2026, 9, 6, 0, 0, 0, 0, time.Local)}); err != nil {
		t.Fatalf("ICS() error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "Instructor: "+instructor) {
		t.Error("long DESCRIPTION line was not folded")
	}
	unfolded := strings.ReplaceAll(out, "\r\n ", "")
	if !strings.Contains(unfolded, "DESCRIPTION:Instructor: "+instructor) {
		t.Errorf("unfolded output lost the description:\n%s", out)
	}
}
