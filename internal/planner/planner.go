// Package planner ties the course catalog, the extractor and the timetable
// to a storage provider. Every mutation is persisted before it returns.
package planner

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/jadwal/internal/extractor"
	"github.com/julianstephens/jadwal/internal/logger"
	"github.com/julianstephens/jadwal/internal/models"
	"github.com/julianstephens/jadwal/internal/storage"
	"github.com/julianstephens/jadwal/internal/timetable"
)

var ErrSlotID = errors.New("slot ids cannot be added directly")

// AddResult describes the outcome of one Add call.
type AddResult struct {
	Added bool `json:"added"`
	// AlreadyPlaced is set when every window of the course was on the
	// timetable before the call.
	AlreadyPlaced bool `json:"already_placed"`
	// Conflict is the schedule conflict met by the windows still to place:
	// the reason for a refusal, or what a forced add overrode.
	Conflict *timetable.ConflictInfo `json:"conflict"`
	// Warning is an exam-period clash. It never blocks.
	Warning *timetable.ConflictInfo `json:"warning,omitempty"`
}

// Planner serializes catalog and timetable operations over one store.
type Planner struct {
	mu        sync.Mutex
	store     storage.Provider
	extractor *extractor.Extractor
	timetable *timetable.Timetable
	now       func() time.Time
}

// New loads the stored timetable. The store must already be loaded.
func New(store storage.Provider) (*Planner, error) {
	entries, err := store.GetEntries()
	if err != nil {
		return nil, fmt.Errorf("failed to load timetable: %w", err)
	}
	return &Planner{
		store:     store,
		extractor: extractor.New(),
		timetable: timetable.New(entries),
		now:       time.Now,
	}, nil
}

func (p *Planner) Store() storage.Provider {
	return p.store
}

// Extract parses a portal page without touching the catalog.
func (p *Planner) Extract(r io.Reader) ([]models.Course, extractor.Stats, error) {
	return p.extractor.ExtractHTML(r)
}

// SaveCatalog records an extraction run and makes courses the new catalog.
func (p *Planner) SaveCatalog(source string, courses []models.Course, stats extractor.Stats) (models.ImportBatch, error) {
	batch := models.ImportBatch{
		ID:          uuid.NewString(),
		Source:      source,
		ImportedAt:  p.now(),
		RowsSeen:    stats.RowsSeen,
		RowsSkipped: stats.RowsSkipped,
		RowsFailed:  stats.RowsFailed,
		CourseCount: len(courses),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.SaveImport(batch, courses); err != nil {
		return models.ImportBatch{}, fmt.Errorf("failed to save catalog: %w", err)
	}
	logger.Info("catalog imported", "batch", batch.ID, "source", source, "courses", len(courses))
	return batch, nil
}

// Import extracts r and saves the result as the catalog.
func (p *Planner) Import(source string, r io.Reader) (models.ImportBatch, []models.Course, extractor.Stats, error) {
	courses, stats, err := p.Extract(r)
	if err != nil {
		return models.ImportBatch{}, nil, stats, err
	}
	batch, err := p.SaveCatalog(source, courses, stats)
	if err != nil {
		return models.ImportBatch{}, nil, stats, err
	}
	return batch, courses, stats, nil
}

func (p *Planner) Courses() ([]models.Course, error) {
	return p.store.GetCourses()
}

func (p *Planner) Course(id string) (models.Course, error) {
	return p.store.GetCourse(id)
}

func (p *Planner) Entries() []models.TimetableEntry {
	return p.timetable.Entries()
}

func (p *Planner) IsPlaced(id string) bool {
	return p.timetable.IsInTimetable(id)
}

// Check looks up a catalog course and reports the first conflict it would
// meet, or nil.
func (p *Planner) Check(id string) (models.Course, *timetable.ConflictInfo, error) {
	course, err := p.lookup(id)
	if err != nil {
		return models.Course{}, nil, err
	}
	return course, p.timetable.GetConflictInfo(course), nil
}

// Add places a catalog course and persists the timetable when anything
// changed. When persisting fails the timetable is rolled back.
func (p *Planner) Add(id string, force bool) (AddResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	course, err := p.lookup(id)
	if err != nil {
		return AddResult{}, err
	}
	if err := course.Validate(); err != nil {
		return AddResult{}, fmt.Errorf("course %q is invalid: %w", id, err)
	}
	if p.timetable.IsFullyPlaced(course) {
		return AddResult{AlreadyPlaced: true}, nil
	}

	res := AddResult{
		Conflict: p.timetable.ScheduleConflict(course),
		Warning:  p.timetable.ExamConflict(course),
	}
	snapshot := p.timetable.Entries()
	res.Added = p.timetable.Add(course, force)
	if p.timetable.Len() != len(snapshot) {
		if err := p.commit(snapshot); err != nil {
			return AddResult{}, err
		}
	}
	logger.Debug("add course", "course_id", id, "force", force, "added", res.Added)
	return res, nil
}

// Remove takes the section of id off the timetable.
func (p *Planner) Remove(id string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := p.timetable.Entries()
	if !p.timetable.Remove(id) {
		return false, nil
	}
	if err := p.commit(snapshot); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Planner) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := p.timetable.Entries()
	p.timetable.RemoveAll()
	return p.commit(snapshot)
}

func (p *Planner) StaleFlags() []string {
	return p.timetable.StaleFlags()
}

func (p *Planner) lookup(id string) (models.Course, error) {
	if models.IsSlotID(id) {
		return models.Course{}, fmt.Errorf("%q: %w", id, ErrSlotID)
	}
	course, err := p.store.GetCourse(id)
	if err != nil {
		return models.Course{}, fmt.Errorf("course %q: %w", id, err)
	}
	return course, nil
}

// commit saves the timetable, restoring snapshot when the store refuses it.
func (p *Planner) commit(snapshot []models.TimetableEntry) error {
	if err := p.store.SaveEntries(p.timetable.Entries()); err != nil {
		p.timetable.Replace(snapshot)
		return fmt.Errorf("failed to save timetable: %w", err)
	}
	return nil
}
