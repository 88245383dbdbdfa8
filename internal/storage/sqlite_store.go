package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/jadwal/internal/migration"
	"github.com/julianstephens/jadwal/internal/models"
	"github.com/julianstephens/jadwal/migrations"
)

// timestampFormat sorts lexically in time order.
const timestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

// Init creates the database if needed and applies pending migrations.
func (s *SQLiteStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.open(); err != nil {
		return err
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := runner.Apply(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return ErrNotInitialized
	}

	if err := s.open(); err != nil {
		return err
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.Validate()
}

func (s *SQLiteStore) open() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; the handoff server shares this handle.
	db.SetMaxOpenConns(1)
	s.db = db
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) runner() (*migration.Runner, error) {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, sub), nil
}

// SchemaVersion returns the applied and the latest known schema versions.
func (s *SQLiteStore) SchemaVersion() (current, latest int, err error) {
	if s.db == nil {
		return 0, 0, ErrNotInitialized
	}
	runner, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = runner.CurrentVersion(); err != nil {
		return 0, 0, err
	}
	if latest, err = runner.LatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

// SaveImport records the batch and replaces the catalog with courses.
func (s *SQLiteStore) SaveImport(batch models.ImportBatch, courses []models.Course) error {
	if s.db == nil {
		return ErrNotInitialized
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO import_batches (id, source, imported_at, rows_seen, rows_skipped, rows_failed, course_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		batch.ID, batch.Source, batch.ImportedAt.UTC().Format(timestampFormat),
		batch.RowsSeen, batch.RowsSkipped, batch.RowsFailed, batch.CourseCount)
	if err != nil {
		return fmt.Errorf("failed to save import batch: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM courses"); err != nil {
		return fmt.Errorf("failed to clear catalog: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO courses (id, position, batch_id, code, name, section, days, start_time, end_time,
			location, time_slots, instructor, final_exam, status, class_type, original_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range courses {
		days, err := json.Marshal(c.Days)
		if err != nil {
			return err
		}
		slots, err := nullableJSON(c.TimeSlots, len(c.TimeSlots) > 0)
		if err != nil {
			return err
		}
		exam, err := nullableJSON(c.FinalExam, c.FinalExam != nil)
		if err != nil {
			return err
		}
		var originalIndex sql.NullInt64
		if c.OriginalIndex != nil {
			originalIndex = sql.NullInt64{Int64: int64(*c.OriginalIndex), Valid: true}
		}

		_, err = stmt.Exec(c.ID, i, batch.ID, c.Code, c.Name, c.Section, string(days), c.StartTime, c.EndTime,
			c.Location, slots, c.Instructor, exam, string(c.Status), string(c.ClassType), originalIndex)
		if err != nil {
			return fmt.Errorf("failed to save course %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

const courseColumns = `id, code, name, section, days, start_time, end_time, location,
	time_slots, instructor, final_exam, status, class_type, original_index`

func (s *SQLiteStore) GetCourses() ([]models.Course, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.Query("SELECT " + courseColumns + " FROM courses ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortCatalog(courses)
	return courses, nil
}

func (s *SQLiteStore) GetCourse(id string) (models.Course, error) {
	if s.db == nil {
		return models.Course{}, ErrNotInitialized
	}

	row := s.db.QueryRow("SELECT "+courseColumns+" FROM courses WHERE id = ?", id)
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Course{}, fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	return c, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCourse(row scanner) (models.Course, error) {
	var c models.Course
	var days string
	var slots, exam sql.NullString
	var status, classType string
	var originalIndex sql.NullInt64

	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Section, &days, &c.StartTime, &c.EndTime, &c.Location,
		&slots, &c.Instructor, &exam, &status, &classType, &originalIndex)
	if err != nil {
		return models.Course{}, err
	}

	if err := json.Unmarshal([]byte(days), &c.Days); err != nil {
		return models.Course{}, fmt.Errorf("course %s: invalid days: %w", c.ID, err)
	}
	if slots.Valid {
		if err := json.Unmarshal([]byte(slots.String), &c.TimeSlots); err != nil {
			return models.Course{}, fmt.Errorf("course %s: invalid time slots: %w", c.ID, err)
		}
	}
	if exam.Valid {
		c.FinalExam = &models.Exam{}
		if err := json.Unmarshal([]byte(exam.String), c.FinalExam); err != nil {
			return models.Course{}, fmt.Errorf("course %s: invalid final exam: %w", c.ID, err)
		}
	}
	c.Status = models.Status(status)
	c.ClassType = models.ClassType(classType)
	if originalIndex.Valid {
		idx := int(originalIndex.Int64)
		c.OriginalIndex = &idx
	}
	return c, nil
}

func (s *SQLiteStore) GetLatestImport() (models.ImportBatch, error) {
	if s.db == nil {
		return models.ImportBatch{}, ErrNotInitialized
	}

	var b models.ImportBatch
	var importedAt string
	err := s.db.QueryRow(`
		SELECT id, source, imported_at, rows_seen, rows_skipped, rows_failed, course_count
		FROM import_batches ORDER BY imported_at DESC LIMIT 1`).
		Scan(&b.ID, &b.Source, &importedAt, &b.RowsSeen, &b.RowsSkipped, &b.RowsFailed, &b.CourseCount)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ImportBatch{}, fmt.Errorf("import: %w", ErrNotFound)
	}
	if err != nil {
		return models.ImportBatch{}, err
	}

	if b.ImportedAt, err = time.Parse(timestampFormat, importedAt); err != nil {
		return models.ImportBatch{}, fmt.Errorf("invalid import timestamp %q: %w", importedAt, err)
	}
	return b, nil
}

func (s *SQLiteStore) GetEntries() ([]models.TimetableEntry, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.Query("SELECT course_id, course, is_conflict_section FROM timetable_entries ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.TimetableEntry{}
	for rows.Next() {
		var e models.TimetableEntry
		var course string
		if err := rows.Scan(&e.CourseID, &course, &e.IsConflictSection); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(course), &e.Course); err != nil {
			return nil, fmt.Errorf("entry %s: invalid course: %w", e.CourseID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveEntries replaces the stored timetable with entries, keeping their order.
func (s *SQLiteStore) SaveEntries(entries []models.TimetableEntry) error {
	if s.db == nil {
		return ErrNotInitialized
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM timetable_entries"); err != nil {
		return fmt.Errorf("failed to clear timetable: %w", err)
	}
	for i, e := range entries {
		course, err := json.Marshal(e.Course)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO timetable_entries (course_id, position, course, is_conflict_section)
			VALUES (?, ?, ?, ?)`,
			e.CourseID, i, string(course), e.IsConflictSection)
		if err != nil {
			return fmt.Errorf("failed to save entry %s: %w", e.CourseID, err)
		}
	}
	return tx.Commit()
}

func nullableJSON(v any, present bool) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
