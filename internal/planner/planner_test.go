package planner

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/jadwal/internal/models"
	"github.com/julianstephens/jadwal/internal/storage"
	"github.com/julianstephens/jadwal/internal/timetable"
)

const portalPage = `<html><body><table>
<tr class="ROW1"><td>CS201</td><td>Data Structures</td><td>3</td><td>1</td><td>نظري</td><td></td><td>مفتوحة</td>
<td><input type="hidden" name="frm:table:0:examPeriod" value="3"><input type="hidden" name="frm:table:0:section" value="1 @t 08:00 ص - 09:30 ص @r A1"></td></tr>
<tr class="ROW2"><td>MATH101</td><td>Calculus</td><td>3</td><td>2</td><td>نظري</td><td></td><td>مفتوحة</td>
<td><input type="hidden" name="frm:table:1:examPeriod" value="3"><input type="hidden" name="frm:table:1:section" value="1 @t 09:00 ص - 10:30 ص @r B2"></td></tr>
<tr class="ROW1"><td>PHYS101</td><td>Physics</td><td>3</td><td>1</td><td>نظري</td><td></td><td>مغلقة</td>
<td><input type="hidden" name="frm:table:2:examPeriod" value="3"><input type="hidden" name="frm:table:2:section" value="2 @t 08:00 ص - 09:30 ص @r C3"></td></tr>
<tr class="ROW2"><td>BIO101</td><td>Biology</td><td>3</td><td>1</td><td>نظري</td><td></td><td>مفتوحة</td>
<td><input type="hidden" name="frm:table:3:examPeriod" value="7"><input type="hidden" name="frm:table:3:section" value="2 @t 08:30 ص - 10:00 ص @r D4"></td></tr>
<tr class="ROW1"><td>LAB201</td><td>Lab</td><td>1</td><td>1</td><td>عملي</td><td></td><td>مفتوحة</td>
<td><input type="hidden" name="frm:table:4:examPeriod" value="9"><input type="hidden" name="frm:table:4:section" value="1 @t 09:00 ص - 10:00 ص @r L1 @n 4 @t 08:00 ص - 09:00 ص @r L2"></td></tr>
</table></body></html>`

func newPlanner(t *testing.T) (*Planner, storage.Provider) {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "jadwal.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	p, err := New(store)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, _, _, err := p.Import("portal.html", strings.NewReader(portalPage)); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	return p, store
}

func TestImport_SavesCatalogAndBatch(t *testing.T) {
	p, store := newPlanner(t)

	courses, err := p.Courses()
	if err != nil {
		t.Fatalf("Courses() error = %v", err)
	}
	if len(courses) != 5 {
		t.Fatalf("got %d courses, want 5", len(courses))
	}

	batch, err := store.GetLatestImport()
	if err != nil {
		t.Fatalf("GetLatestImport() error = %v", err)
	}
	if batch.ID == "" || batch.Source != "portal.html" || batch.CourseCount != 5 {
		t.Errorf("batch = %+v", batch)
	}
}

func TestAdd_PersistsTimetable(t *testing.T) {
	p, store := newPlanner(t)

	res, err := p.Add("CS201-1-0", false)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !res.Added || res.Conflict != nil {
		t.Errorf("Add() = %+v, want clean add", res)
	}

	entries, err := store.GetEntries()
	if err != nil {
		t.Fatalf("GetEntries() error = %v", err)
	}
	if len(entries) != 1 || entries[0].CourseID != "CS201-1-0" {
		t.Errorf("stored entries = %+v", entries)
	}

	reloaded, err := New(store)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !reloaded.IsPlaced("CS201-1-0") {
		t.Error("reloaded planner lost the entry")
	}
}

func TestAdd_ConflictRefusedThenForced(t *testing.T) {
	p, store := newPlanner(t)
	if _, err := p.Add("CS201-1-0", false); err != nil {
		t.Fatal(err)
	}

	res, err := p.Add("MATH101-2-1", false)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if res.Added {
		t.Error("overlapping section should be refused")
	}
	if res.Conflict == nil || res.Conflict.Type != timetable.ConflictSchedule || res.Conflict.CanProceed {
		t.Errorf("Conflict = %+v, want blocking schedule conflict", res.Conflict)
	}
	if entries, _ := store.GetEntries(); len(entries) != 1 {
		t.Errorf("refused add changed stored entries: %+v", entries)
	}

	res, err = p.Add("MATH101-2-1", true)
	if err != nil {
		t.Fatalf("Add(force) error = %v", err)
	}
	if !res.Added {
		t.Error("forced add should succeed")
	}
	entries, _ := store.GetEntries()
	if len(entries) != 2 || !entries[1].IsConflictSection {
		t.Errorf("stored entries = %+v, want flagged second entry", entries)
	}
}

func TestAdd_ExamWarningDoesNotBlock(t *testing.T) {
	p, _ := newPlanner(t)
	if _, err := p.Add("CS201-1-0", false); err != nil {
		t.Fatal(err)
	}

	res, err := p.Add("PHYS101-1-2", false)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !res.Added {
		t.Error("exam-period conflict must not block")
	}
	if res.Conflict != nil {
		t.Errorf("Conflict = %+v, want none", res.Conflict)
	}
	if res.Warning == nil || res.Warning.Type != timetable.ConflictExam || !res.Warning.CanProceed {
		t.Errorf("Warning = %+v, want proceedable exam conflict", res.Warning)
	}
}

func TestAdd_ReportsScheduleConflictBehindExamConflict(t *testing.T) {
	p, _ := newPlanner(t)
	for _, id := range []string{"CS201-1-0", "BIO101-1-3"} {
		if _, err := p.Add(id, false); err != nil {
			t.Fatal(err)
		}
	}

	// PHYS101 shares CS201's exam period and overlaps the later BIO101.
	res, err := p.Add("PHYS101-1-2", false)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if res.Added {
		t.Fatal("overlapping section should be refused")
	}
	if res.Conflict == nil || res.Conflict.Type != timetable.ConflictSchedule || res.Conflict.CourseID != "BIO101-1-3" {
		t.Errorf("Conflict = %+v, want schedule conflict with BIO101-1-3", res.Conflict)
	}
	if res.Warning == nil || res.Warning.CourseID != "CS201-1-0" {
		t.Errorf("Warning = %+v, want exam conflict with CS201-1-0", res.Warning)
	}
}

func TestAdd_PartiallyPlacedCourse(t *testing.T) {
	p, _ := newPlanner(t)
	if _, err := p.Add("CS201-1-0", false); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		force   bool
		added   bool
		placed  bool
		entries int
	}{
		{"free slot goes in", false, false, false, 2},
		{"refused again while a slot is missing", false, false, false, 2},
		{"forced", true, true, false, 3},
		{"fully placed", false, false, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Add("LAB201-1-4", tt.force)
			if err != nil {
				t.Fatalf("Add() error = %v", err)
			}
			if res.Added != tt.added || res.AlreadyPlaced != tt.placed {
				t.Errorf("Add() = %+v, want added=%v already placed=%v", res, tt.added, tt.placed)
			}
			if !tt.placed && res.Conflict == nil {
				t.Error("the Sunday slot should report its overlap with CS201")
			}
			if got := len(p.Entries()); got != tt.entries {
				t.Errorf("entries = %d, want %d", got, tt.entries)
			}
		})
	}
}

// failingStore refuses to save the timetable once fail is set.
type failingStore struct {
	storage.Provider
	fail bool
}

func (s *failingStore) SaveEntries(entries []models.TimetableEntry) error {
	if s.fail {
		return errSaveFailed
	}
	return s.Provider.SaveEntries(entries)
}

var errSaveFailed = errors.New("disk full")

func TestMutations_RollBackWhenSaveFails(t *testing.T) {
	p, inner := newPlanner(t)
	store := &failingStore{Provider: inner}
	p.store = store
	if _, err := p.Add("CS201-1-0", false); err != nil {
		t.Fatal(err)
	}
	store.fail = true

	tests := []struct {
		name string
		run  func() error
	}{
		{"add", func() error { _, err := p.Add("PHYS101-1-2", false); return err }},
		{"remove", func() error { _, err := p.Remove("CS201-1-0"); return err }},
		{"clear", p.Clear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, errSaveFailed) {
				t.Fatalf("error = %v, want %v", err, errSaveFailed)
			}
			entries := p.Entries()
			if len(entries) != 1 || entries[0].CourseID != "CS201-1-0" {
				t.Errorf("entries = %+v, want the saved state", entries)
			}
		})
	}
}

func TestAdd_Errors(t *testing.T) {
	p, _ := newPlanner(t)

	tests := []struct {
		name string
		id   string
		want error
	}{
		{"unknown course", "NOPE-1-0", storage.ErrNotFound},
		{"slot id", "CS201-1-0-slot-1", ErrSlotID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.Add(tt.id, false); !errors.Is(err, tt.want) {
				t.Errorf("Add(%q) error = %v, want %v", tt.id, err, tt.want)
			}
		})
	}
}

func TestRemoveAndClear(t *testing.T) {
	p, store := newPlanner(t)
	for _, id := range []string{"CS201-1-0", "PHYS101-1-2"} {
		if _, err := p.Add(id, false); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := p.Remove("CS201-1-0")
	if err != nil || !removed {
		t.Fatalf("Remove() = %v, %v", removed, err)
	}
	if removed, _ := p.Remove("CS201-1-0"); removed {
		t.Error("second Remove() should report nothing removed")
	}
	if entries, _ := store.GetEntries(); len(entries) != 1 {
		t.Errorf("stored entries = %+v, want 1", entries)
	}

	if err := p.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if entries, _ := store.GetEntries(); len(entries) != 0 {
		t.Errorf("stored entries after Clear = %+v", entries)
	}
}

func TestCheck(t *testing.T) {
	p, _ := newPlanner(t)
	if _, err := p.Add("CS201-1-0", false); err != nil {
		t.Fatal(err)
	}

	course, info, err := p.Check("MATH101-2-1")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if course.Code != "MATH101" {
		t.Errorf("course = %+v", course)
	}
	if info == nil || info.CourseID != "CS201-1-0" {
		t.Errorf("info = %+v, want conflict with CS201-1-0", info)
	}
	if p.IsPlaced("MATH101-2-1") {
		t.Error("Check must not place the course")
	}
}
