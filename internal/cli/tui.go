package cli

import (
	"fmt"

	"github.com/julianstephens/jadwal/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	p, err := ctx.Planner()
	if err != nil {
		return err
	}

	// Back up once per session; the TUI mutates freely afterwards.
	ctx.PerformAutomaticBackup()

	if err := tui.Run(p); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
