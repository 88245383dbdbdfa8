package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/jadwal/internal/config"
	"github.com/julianstephens/jadwal/internal/models"
	"github.com/julianstephens/jadwal/internal/planner"
	"github.com/julianstephens/jadwal/internal/storage"
	"github.com/julianstephens/jadwal/internal/timetable"
)

const portalPage = `<html><body><table>
<tr class="ROW1"><td>CS201</td><td>Data Structures</td><td>3</td><td>1</td><td>نظري</td><td></td><td>مفتوحة</td>
<td><input type="hidden" name="frm:table:0:examPeriod" value="3"><input type="hidden" name="frm:table:0:section" value="1 @t 08:00 ص - 09:30 ص @r A1"></td></tr>
<tr class="ROW2"><td>MATH101</td><td>Calculus</td><td>3</td><td>2</td><td>نظري</td><td></td><td>مفتوحة</td>
<td><input type="hidden" name="frm:table:1:examPeriod" value="4"><input type="hidden" name="frm:table:1:section" value="1 @t 09:00 ص - 10:30 ص @r B2"></td></tr>
</table></body></html>`

func newTestServer(t *testing.T) (http.Handler, storage.Provider) {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "jadwal.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	p, err := planner.New(store)
	if err != nil {
		t.Fatalf("planner.New() error = %v", err)
	}
	cfg := &config.Config{
		AllowedOrigins:  []string{"chrome-extension://jadwal"},
		ExtractCacheTTL: time.Minute,
		GinMode:         "test",
	}
	return New(p, cfg).Handler(), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if strings.HasPrefix(body, "{") {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func importPage(t *testing.T, h http.Handler) {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/extract?save=true", portalPage)
	if rec.Code != http.StatusOK {
		t.Fatalf("extract status = %d, body = %s", rec.Code, rec.Body)
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestExtract_CachesByBody(t *testing.T) {
	h, store := newTestServer(t)

	first := decode[ExtractResponse](t, do(t, h, http.MethodPost, "/api/v1/extract", portalPage))
	if first.Cached {
		t.Error("first extraction should not be cached")
	}
	if len(first.Courses) != 2 || first.Stats.Courses != 2 {
		t.Errorf("first = %+v", first)
	}
	if first.Batch != nil {
		t.Error("extract without save should not create a batch")
	}
	if courses, _ := store.GetCourses(); len(courses) != 0 {
		t.Errorf("extract without save stored %d courses", len(courses))
	}

	second := decode[ExtractResponse](t, do(t, h, http.MethodPost, "/api/v1/extract?save=true", portalPage))
	if !second.Cached {
		t.Error("second extraction of the same page should be cached")
	}
	if second.Batch == nil || second.Batch.CourseCount != 2 {
		t.Errorf("Batch = %+v", second.Batch)
	}
	if courses, _ := store.GetCourses(); len(courses) != 2 {
		t.Errorf("stored %d courses, want 2", len(courses))
	}
}

func TestExtract_EmptyBody(t *testing.T) {
	h, _ := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/v1/extract", "  ")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTimetableRoutes(t *testing.T) {
	h, store := newTestServer(t)
	importPage(t, h)

	rec := do(t, h, http.MethodPost, "/api/v1/timetable", `{"course_id":"CS201-1-0"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d, body = %s", rec.Code, rec.Body)
	}
	if res := decode[planner.AddResult](t, rec); !res.Added {
		t.Errorf("add = %+v", res)
	}

	info := decode[*timetable.ConflictInfo](t, do(t, h, http.MethodGet, "/api/v1/timetable/conflicts/MATH101-2-1", ""))
	if info == nil || info.Type != timetable.ConflictSchedule {
		t.Errorf("conflict = %+v, want schedule conflict", info)
	}

	res := decode[planner.AddResult](t, do(t, h, http.MethodPost, "/api/v1/timetable", `{"course_id":"MATH101-2-1"}`))
	if res.Added || res.Conflict == nil {
		t.Errorf("conflicting add = %+v, want refused with conflict", res)
	}

	res = decode[planner.AddResult](t, do(t, h, http.MethodPost, "/api/v1/timetable", `{"course_id":"MATH101-2-1","force":true}`))
	if !res.Added {
		t.Errorf("forced add = %+v", res)
	}

	entries := decode[[]models.TimetableEntry](t, do(t, h, http.MethodGet, "/api/v1/timetable", ""))
	if len(entries) != 2 || !entries[1].IsConflictSection {
		t.Errorf("entries = %+v", entries)
	}

	removed := decode[map[string]bool](t, do(t, h, http.MethodDelete, "/api/v1/timetable/CS201-1-0", ""))
	if !removed["removed"] {
		t.Error("remove reported nothing removed")
	}
	stored, _ := store.GetEntries()
	if len(stored) != 1 || stored[0].IsConflictSection {
		t.Errorf("stored entries = %+v, want one unflagged entry", stored)
	}

	if rec := do(t, h, http.MethodDelete, "/api/v1/timetable", ""); rec.Code != http.StatusNoContent {
		t.Errorf("clear status = %d", rec.Code)
	}
	if stored, _ := store.GetEntries(); len(stored) != 0 {
		t.Errorf("stored entries after clear = %+v", stored)
	}
}

func TestTimetableRoutes_Errors(t *testing.T) {
	h, _ := newTestServer(t)
	importPage(t, h)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown course", http.MethodPost, "/api/v1/timetable", `{"course_id":"NOPE-1-0"}`, http.StatusNotFound},
		{"slot id", http.MethodPost, "/api/v1/timetable", `{"course_id":"CS201-1-0-slot-0"}`, http.StatusBadRequest},
		{"missing course id", http.MethodPost, "/api/v1/timetable", `{"force":true}`, http.StatusBadRequest},
		{"conflicts for unknown course", http.MethodGet, "/api/v1/timetable/conflicts/NOPE-1-0", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, tt.method, tt.path, tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		origin string
		allow  bool
	}{
		{"chrome-extension://jadwal", true},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get("Access-Control-Allow-Origin") == tt.origin
			if got != tt.allow {
				t.Errorf("allowed = %v, want %v", got, tt.allow)
			}
		})
	}
}
