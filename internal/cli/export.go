package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/jadwal/internal/constants"
	"github.com/julianstephens/jadwal/internal/export"
)

type ExportCmd struct {
	Format    string `help:"Output format." enum:"csv,xlsx,ics" default:"csv"`
	Out       string `short:"o" required:"" help:"File to write." type:"path"`
	TermStart string `help:"First day of term for calendar events (YYYY-MM-DD). Defaults to today."`
}

func (c *ExportCmd) Run(ctx *Context) error {
	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	var opts export.Options
	if c.TermStart != "" {
		start, err := time.ParseInLocation(constants.DateFormat, c.TermStart, time.Local)
		if err != nil {
			return fmt.Errorf("invalid term start %q (expected YYYY-MM-DD): %w", c.TermStart, err)
		}
		opts.TermStart = start
	}

	p, err := ctx.Planner()
	if err != nil {
		return err
	}
	entries := p.Entries()

	f, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", c.Out, err)
	}
	if err := export.Write(f, format, entries, opts); err != nil {
		f.Close()
		return fmt.Errorf("export failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Out, err)
	}

	ctx.Printf("✓ Exported %d entries to %s\n", len(entries), c.Out)
	return nil
}
