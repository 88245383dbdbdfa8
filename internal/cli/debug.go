package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/jadwal/internal/storage"
)

type DebugCmd struct {
	DBPath        *DebugDBPathCmd        `cmd:"" help:"Show database path."`
	DumpCourse    *DebugDumpCourseCmd    `cmd:"" help:"Dump a catalog course as JSON."`
	DumpTimetable *DebugDumpTimetableCmd `cmd:"" help:"Dump the timetable entries as JSON."`
	DumpImport    *DebugDumpImportCmd    `cmd:"" help:"Dump the latest import batch as JSON."`
}

func (c *Context) printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	c.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	// Output in machine-readable format
	return ctx.printJSON(map[string]string{
		"path": ctx.Store.GetConfigPath(),
	})
}

type DebugDumpCourseCmd struct {
	ID string `arg:"" help:"ID of the course to dump."`
}

func (cmd *DebugDumpCourseCmd) Run(ctx *Context) error {
	course, err := ctx.Store.GetCourse(cmd.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("course not found: %s", cmd.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to get course: %w", err)
	}
	return ctx.printJSON(course)
}

type DebugDumpTimetableCmd struct{}

func (cmd *DebugDumpTimetableCmd) Run(ctx *Context) error {
	entries, err := ctx.Store.GetEntries()
	if err != nil {
		return fmt.Errorf("failed to get timetable: %w", err)
	}
	return ctx.printJSON(entries)
}

type DebugDumpImportCmd struct{}

func (cmd *DebugDumpImportCmd) Run(ctx *Context) error {
	batch, err := ctx.Store.GetLatestImport()
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no import found")
	}
	if err != nil {
		return fmt.Errorf("failed to get import: %w", err)
	}
	return ctx.printJSON(batch)
}
