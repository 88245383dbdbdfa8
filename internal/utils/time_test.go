package utils

import "testing"

func TestParseTimeToMinutes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "midnight", input: "00:00", want: 0},
		{name: "morning", input: "08:30", want: 510},
		{name: "last minute", input: "23:59", want: 1439},
		{name: "invalid hour", input: "25:00", wantErr: true},
		{name: "garbage", input: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeToMinutes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeToMinutes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseTimeToMinutes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestWindowsOverlap(t *testing.T) {
	tests := []struct {
		name         string
		start1, end1 string
		start2, end2 string
		want         bool
	}{
		{"partial overlap", "09:00", "10:00", "09:30", "10:30", true},
		{"contained", "08:00", "12:00", "09:00", "10:00", true},
		{"identical", "09:00", "10:00", "09:00", "10:00", true},
		{"touching boundary", "09:00", "10:00", "10:00", "11:00", false},
		{"disjoint", "08:00", "09:00", "13:00", "14:00", false},
		{"invalid input", "xx", "10:00", "09:00", "10:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindowsOverlap(tt.start1, tt.end1, tt.start2, tt.end2)
			if got != tt.want {
				t.Errorf("WindowsOverlap(%s-%s, %s-%s) = %v, want %v", tt.start1, tt.end1, tt.start2, tt.end2, got, tt.want)
			}
			reverse := WindowsOverlap(tt.start2, tt.end2, tt.start1, tt.end1)
			if reverse != got {
				t.Errorf("WindowsOverlap is not symmetric for %s-%s and %s-%s", tt.start1, tt.end1, tt.start2, tt.end2)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(7, 5); got != "07:05" {
		t.Errorf("FormatClock(7, 5) = %q, want %q", got, "07:05")
	}
	if got := FormatClock(13, 30); got != "13:30" {
		t.Errorf("FormatClock(13, 30) = %q, want %q", got, "13:30")
	}
}

func TestDurationMinutes(t *testing.T) {
	if got := DurationMinutes("08:00", "09:40"); got != 100 {
		t.Errorf("DurationMinutes() = %d, want 100", got)
	}
	if got := DurationMinutes("bad", "09:40"); got != 0 {
		t.Errorf("DurationMinutes() with invalid start = %d, want 0", got)
	}
}
