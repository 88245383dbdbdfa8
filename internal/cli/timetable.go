package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/jadwal/internal/models"
)

type AddCmd struct {
	ID    string `arg:"" help:"Course id, as shown by 'jadwal courses --show-ids'."`
	Force bool   `help:"Add even when the section overlaps another one."`
}

func (c *AddCmd) Run(ctx *Context) error {
	p, err := ctx.Planner()
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()

	res, err := p.Add(c.ID, c.Force)
	if err != nil {
		return err
	}

	switch {
	case res.AlreadyPlaced:
		ctx.Printf("%s is already on the timetable.\n", c.ID)
		return nil
	case res.Added && res.Conflict != nil:
		ctx.Printf("✓ Added %s as a conflict section\n", c.ID)
		ctx.Printf("  %s\n", res.Conflict.Description)
	case res.Added:
		ctx.Printf("✓ Added %s\n", c.ID)
	case res.Conflict != nil:
		ctx.Printf("✗ Not added: %s\n", res.Conflict.Description)
		if p.IsPlaced(c.ID) {
			ctx.Println("  Slots without a conflict were added.")
		}
		ctx.Println("  Use --force to add it anyway.")
	default:
		ctx.Printf("✗ %s was not added.\n", c.ID)
	}
	if res.Warning != nil {
		ctx.Printf("⚠ %s\n", res.Warning.Description)
	}
	return nil
}

type RemoveCmd struct {
	ID string `arg:"" help:"Course or slot id to remove; all slots of the section are removed."`
}

func (c *RemoveCmd) Run(ctx *Context) error {
	p, err := ctx.Planner()
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()

	removed, err := p.Remove(c.ID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%s is not on the timetable", c.ID)
	}
	ctx.Printf("✓ Removed %s\n", c.ID)
	return nil
}

type ClearCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation."`
}

func (c *ClearCmd) Run(ctx *Context) error {
	p, err := ctx.Planner()
	if err != nil {
		return err
	}
	if len(p.Entries()) == 0 {
		ctx.Println("Timetable is already empty.")
		return nil
	}

	ok, err := confirm("Clear the timetable?", "Every placed section will be removed.", c.Yes)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Clear cancelled.")
		return nil
	}

	ctx.PerformAutomaticBackup()
	if err := p.Clear(); err != nil {
		return err
	}
	ctx.Println("✓ Timetable cleared")
	return nil
}

type ShowCmd struct{}

func (c *ShowCmd) Run(ctx *Context) error {
	p, err := ctx.Planner()
	if err != nil {
		return err
	}
	entries := p.Entries()
	if len(entries) == 0 {
		ctx.Println("Timetable is empty.")
		return nil
	}

	for _, day := range models.Week {
		var today []models.TimetableEntry
		for _, e := range entries {
			if slices.Contains(e.Course.Days, day) {
				today = append(today, e)
			}
		}
		if len(today) == 0 {
			continue
		}
		slices.SortStableFunc(today, func(a, b models.TimetableEntry) int {
			return strings.Compare(a.Course.StartTime, b.Course.StartTime)
		})

		ctx.Println(string(day))
		for _, e := range today {
			line := fmt.Sprintf("  %s-%s  %s/%s  %s", e.Course.StartTime, e.Course.EndTime, e.Course.Code, e.Course.Section, e.Course.Name)
			if e.Course.Location != "" {
				line += "  @ " + e.Course.Location
			}
			if e.IsConflictSection {
				line += "  [conflict]"
			}
			ctx.Println(line)
		}
	}

	if stale := p.StaleFlags(); len(stale) > 0 {
		ctx.Printf("\n⚠ Flagged sections without a conflict: %s\n", strings.Join(stale, ", "))
	}
	return nil
}

type CheckCmd struct {
	ID string `arg:"" help:"Course id to check against the timetable."`
}

func (c *CheckCmd) Run(ctx *Context) error {
	p, err := ctx.Planner()
	if err != nil {
		return err
	}
	course, info, err := p.Check(c.ID)
	if err != nil {
		return err
	}

	ctx.Printf("%s/%s  %s\n", course.Code, course.Section, describeWindows(course))
	switch {
	case p.IsPlaced(c.ID):
		ctx.Println("Already on the timetable.")
	case info == nil:
		ctx.Println("✓ No conflicts")
	case info.CanProceed:
		ctx.Printf("⚠ %s conflict with %s: %s\n", info.Type, info.CourseID, info.Description)
	default:
		ctx.Printf("✗ %s conflict with %s: %s\n", info.Type, info.CourseID, info.Description)
	}
	return nil
}
