package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/jadwal/internal/backup"
	"github.com/julianstephens/jadwal/internal/config"
	"github.com/julianstephens/jadwal/internal/logger"
	"github.com/julianstephens/jadwal/internal/models"
	"github.com/julianstephens/jadwal/internal/planner"
	"github.com/julianstephens/jadwal/internal/storage"
)

type Context struct {
	Store  storage.Provider
	Config *config.Config
	// Out receives command output. Nil means stdout.
	Out io.Writer

	planner *planner.Planner
}

// Planner returns the planner over the loaded store, creating it on first use.
func (c *Context) Planner() (*planner.Planner, error) {
	if c.planner == nil {
		p, err := planner.New(c.Store)
		if err != nil {
			return nil, err
		}
		c.planner = p
	}
	return c.planner, nil
}

// PerformAutomaticBackup backs up SQLite stores before a mutation. Failures
// are logged and never interrupt the command.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*storage.SQLiteStore); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

func (c *Context) stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.stdout(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.stdout(), args...)
}

// confirm asks a yes/no question on the terminal unless assumeYes is set.
func confirm(title, description string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}

func joinDays(days []models.Weekday) string {
	s := make([]string, len(days))
	for i, d := range days {
		s[i] = string(d)
	}
	return strings.Join(s, " ")
}

func describeWindows(c models.Course) string {
	var windows []string
	for _, slot := range c.Slots() {
		w := fmt.Sprintf("%s %s-%s", joinDays(slot.Days), slot.StartTime, slot.EndTime)
		if slot.Location != "" {
			w += " @ " + slot.Location
		}
		windows = append(windows, w)
	}
	return strings.Join(windows, "; ")
}
