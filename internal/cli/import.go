package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

type ImportCmd struct {
	File string `arg:"" help:"Saved offered-courses page (HTML)." type:"existingfile"`
}

func (c *ImportCmd) Run(ctx *Context) error {
	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()

	p, err := ctx.Planner()
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()

	batch, _, stats, err := p.Import(filepath.Base(c.File), f)
	if err != nil {
		return err
	}

	ctx.Printf("✓ Imported %d courses from %s\n", batch.CourseCount, batch.Source)
	ctx.Printf("  rows seen: %d, skipped: %d, failed: %d\n", stats.RowsSeen, stats.RowsSkipped, stats.RowsFailed)
	if stats.RowsFailed > 0 {
		ctx.Println("  Some rows could not be parsed; run with --debug for details.")
	}
	return nil
}
