package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/jadwal/internal/backup"
	"github.com/julianstephens/jadwal/internal/models"
	"github.com/julianstephens/jadwal/internal/storage"
	"github.com/julianstephens/jadwal/internal/timetable"
)

type DoctorCmd struct{}

// errWarning marks a check result that is reported but does not fail doctor.
type errWarning struct{ msg string }

func (w errWarning) Error() string { return w.msg }

func warning(format string, args ...any) error {
	return errWarning{msg: fmt.Sprintf(format, args...)}
}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	report := func(name string, err error) {
		var w errWarning
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", name)
		case errors.As(err, &w):
			ctx.Printf("⚠ %s: WARNING\n", name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}
	skip := func(name string) {
		ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", name)
	}

	dbErr := checkDBReachable(ctx)
	report("Database reachable", dbErr)

	dependent := []struct {
		name  string
		check func(*Context) error
	}{
		{"Schema version", checkSchemaVersion},
		{"Migrations complete", checkMigrationsComplete},
		{"Catalog imported", checkCatalog},
		{"Timetable entries", checkEntries},
		{"Entries in catalog", checkEntriesInCatalog},
		{"Conflict flags", checkConflictFlags},
	}
	for _, c := range dependent {
		if dbErr != nil {
			skip(c.name)
			continue
		}
		report(c.name, c.check(ctx))
	}

	report("Backups present", checkBackupsPresent(ctx))
	report("Clock", checkClock())

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Store.GetEntries(); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *Context) error {
	sqliteStore, ok := ctx.Store.(*storage.SQLiteStore)
	if !ok {
		// JSON store doesn't have schema version
		return nil
	}

	current, latest, err := sqliteStore.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *Context) error {
	sqliteStore, ok := ctx.Store.(*storage.SQLiteStore)
	if !ok {
		return nil
	}

	current, latest, err := sqliteStore.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkCatalog(ctx *Context) error {
	batch, err := ctx.Store.GetLatestImport()
	if errors.Is(err, storage.ErrNotFound) {
		return warning("no catalog imported yet - run 'jadwal import <page.html>'")
	}
	if err != nil {
		return err
	}
	if batch.CourseCount == 0 {
		return warning("latest import (%s) contained no courses", batch.ImportedAt.Format(time.DateTime))
	}
	return nil
}

func checkEntries(ctx *Context) error {
	entries, err := ctx.Store.GetEntries()
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(entries))
	var problems []string
	for _, e := range entries {
		if seen[e.CourseID] {
			problems = append(problems, "duplicate entry "+e.CourseID)
		}
		seen[e.CourseID] = true
		if err := e.Course.Validate(); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func checkEntriesInCatalog(ctx *Context) error {
	entries, err := ctx.Store.GetEntries()
	if err != nil {
		return err
	}

	var missing []string
	for _, e := range entries {
		_, err := ctx.Store.GetCourse(models.BaseID(e.CourseID))
		if errors.Is(err, storage.ErrNotFound) {
			missing = append(missing, e.CourseID)
			continue
		}
		if err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		return warning("entries no longer offered in the latest catalog: %s", strings.Join(missing, ", "))
	}
	return nil
}

func checkConflictFlags(ctx *Context) error {
	entries, err := ctx.Store.GetEntries()
	if err != nil {
		return err
	}
	if stale := timetable.New(entries).StaleFlags(); len(stale) > 0 {
		return warning("flagged as conflict sections but no longer conflicting: %s", strings.Join(stale, ", "))
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	if _, ok := ctx.Store.(*storage.SQLiteStore); !ok {
		return nil
	}

	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return warning("failed to list backups: %v", err)
	}
	if len(backups) == 0 {
		return warning("no backups found - consider creating one with 'jadwal backup create'")
	}
	return nil
}

func checkClock() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
