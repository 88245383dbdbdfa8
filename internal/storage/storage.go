package storage

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"

	"github.com/julianstephens/jadwal/internal/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrNotInitialized = errors.New("storage not initialized")
)

// New picks the store for path: a ".json" file selects the JSON store,
// anything else SQLite.
func New(path string) Provider {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return NewJSONStore(path)
	}
	return NewSQLiteStore(path)
}

// sortCatalog orders courses for display by their source-page index. Ties
// keep extraction order; courses without an index come first.
func sortCatalog(courses []models.Course) {
	slices.SortStableFunc(courses, func(a, b models.Course) int {
		return a.SortKey() - b.SortKey()
	})
}
