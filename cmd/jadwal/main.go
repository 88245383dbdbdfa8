package main

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/jadwal/internal/cli"
	"github.com/julianstephens/jadwal/internal/config"
	"github.com/julianstephens/jadwal/internal/constants"
	jerrors "github.com/julianstephens/jadwal/internal/errors"
	"github.com/julianstephens/jadwal/internal/logger"
	"github.com/julianstephens/jadwal/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database path. A .json suffix selects the JSON file store." type:"path" default:"${config_path}"`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Init      cli.InitCmd    `cmd:"" help:"Initialize jadwal storage."`
	Import    cli.ImportCmd  `cmd:"" help:"Import the offered-courses catalog from a saved portal page."`
	Courses   cli.CoursesCmd `cmd:"" help:"List the course catalog."`
	Add       cli.AddCmd     `cmd:"" help:"Add a section to the timetable."`
	Remove    cli.RemoveCmd  `cmd:"" help:"Remove a section from the timetable."`
	Clear     cli.ClearCmd   `cmd:"" help:"Remove every section from the timetable."`
	Show      cli.ShowCmd    `cmd:"" help:"Print the timetable by weekday."`
	Check     cli.CheckCmd   `cmd:"" help:"Check a section against the timetable."`
	Export    cli.ExportCmd  `cmd:"" help:"Export the timetable as CSV, XLSX or iCalendar."`
	Serve     cli.ServeCmd   `cmd:"" help:"Run the handoff server for the browser extension."`
	Tui       cli.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Doctor    cli.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	DebugCmds cli.DebugCmd   `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Backup    struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
}

// selfLoading commands open the store themselves.
var selfLoading = map[string]bool{
	"init":   true,
	"doctor": true,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		jerrors.Fatal(jerrors.WithHint(err, "check the JADWAL_* environment variables and .env"))
	}

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Course timetable planner for the university portal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)

	command := strings.Fields(ctx.Command())[0]
	cfg.Debug = cfg.Debug || CLI.Debug

	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: filepath.Dir(CLI.Config),
		Stderr:    command == "serve",
	}); err != nil {
		jerrors.Fatal(err)
	}
	logger.Debug("starting", "command", ctx.Command(), "config", CLI.Config)

	store := storage.New(CLI.Config)
	defer store.Close()

	if !selfLoading[command] {
		if err := store.Load(); err != nil {
			if errors.Is(err, storage.ErrNotInitialized) {
				err = jerrors.WithHint(err, "run `jadwal init` first")
			}
			store.Close()
			jerrors.Fatal(err)
		}
	}

	appCtx := &cli.Context{
		Store:  store,
		Config: cfg,
	}
	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		jerrors.Fatal(err)
	}
}
