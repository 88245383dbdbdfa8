package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/julianstephens/jadwal/internal/models"
)

const jsonStoreVersion = 1

type Store struct {
	Version int                     `json:"version"`
	Courses []models.Course         `json:"courses"`
	Entries []models.TimetableEntry `json:"entries"`
	Imports []models.ImportBatch    `json:"imports"`
}

// JSONStore keeps everything in one file, rewritten on every change.
type JSONStore struct {
	path  string
	mu    sync.Mutex
	store *Store
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

// Init creates an empty store file, or loads the existing one.
func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = &Store{
		Version: jsonStoreVersion,
		Courses: []models.Course{},
		Entries: []models.TimetableEntry{},
		Imports: []models.ImportBatch{},
	}
	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	store := &Store{}
	if err := json.Unmarshal(data, store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if store.Version > jsonStoreVersion {
		return fmt.Errorf("storage version (%d) is newer than supported version (%d) - please upgrade jadwal", store.Version, jsonStoreVersion)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = store
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

// save writes through a temporary file so a crash never leaves a torn store.
// Callers hold the lock.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) SaveImport(batch models.ImportBatch, courses []models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return ErrNotInitialized
	}

	s.store.Imports = append(s.store.Imports, batch)
	s.store.Courses = slices.Clone(courses)
	if s.store.Courses == nil {
		s.store.Courses = []models.Course{}
	}
	return s.save()
}

func (s *JSONStore) GetCourses() ([]models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, ErrNotInitialized
	}

	courses := append([]models.Course{}, s.store.Courses...)
	sortCatalog(courses)
	return courses, nil
}

func (s *JSONStore) GetCourse(id string) (models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return models.Course{}, ErrNotInitialized
	}

	for _, c := range s.store.Courses {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Course{}, fmt.Errorf("course %s: %w", id, ErrNotFound)
}

func (s *JSONStore) GetLatestImport() (models.ImportBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return models.ImportBatch{}, ErrNotInitialized
	}

	if len(s.store.Imports) == 0 {
		return models.ImportBatch{}, fmt.Errorf("import: %w", ErrNotFound)
	}
	latest := s.store.Imports[0]
	for _, b := range s.store.Imports[1:] {
		if !b.ImportedAt.Before(latest.ImportedAt) {
			latest = b
		}
	}
	return latest, nil
}

func (s *JSONStore) GetEntries() ([]models.TimetableEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, ErrNotInitialized
	}
	return append([]models.TimetableEntry{}, s.store.Entries...), nil
}

func (s *JSONStore) SaveEntries(entries []models.TimetableEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return ErrNotInitialized
	}

	s.store.Entries = append([]models.TimetableEntry{}, entries...)
	return s.save()
}
