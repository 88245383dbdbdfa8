package storage

import "github.com/julianstephens/jadwal/internal/models"

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Catalog
	SaveImport(batch models.ImportBatch, courses []models.Course) error
	GetCourses() ([]models.Course, error)
	GetCourse(id string) (models.Course, error)
	GetLatestImport() (models.ImportBatch, error)

	// Timetable
	GetEntries() ([]models.TimetableEntry, error)
	SaveEntries(entries []models.TimetableEntry) error

	// Utils
	GetConfigPath() string
}
