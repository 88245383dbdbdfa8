// Package logger is jadwal's process-wide structured log. Records go to a
// rotating file under the config directory, and for debug runs and the
// handoff server to stderr as well.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/jadwal/internal/constants"
)

// Rotation limits of the log file.
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

// Logger stays nil until Init; the helpers drop records until then.
var Logger *log.Logger

type Config struct {
	Debug     bool
	ConfigDir string
	// Stderr mirrors records to stderr at info level.
	Stderr bool
}

func (c Config) level() log.Level {
	switch {
	case c.Debug:
		return log.DebugLevel
	case c.Stderr:
		return log.InfoLevel
	default:
		return log.WarnLevel
	}
}

// File is where Init writes the log for configDir.
func File(configDir string) string {
	return filepath.Join(configDir, "logs", constants.AppName+".log")
}

// Init replaces the global logger.
func Init(cfg Config) error {
	path := File(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	var out io.Writer = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	if cfg.Debug || cfg.Stderr {
		out = io.MultiWriter(os.Stderr, out)
	}

	Logger = log.NewWithOptions(out, log.Options{
		Level:           cfg.level(),
		Prefix:          constants.AppName,
		ReportTimestamp: true,
		ReportCaller:    cfg.Debug,
		// skip emit and the level helper
		CallerOffset: 2,
	})
	return nil
}

func Debug(msg string, keyvals ...any) { emit(log.DebugLevel, msg, keyvals) }

func Info(msg string, keyvals ...any) { emit(log.InfoLevel, msg, keyvals) }

func Warn(msg string, keyvals ...any) { emit(log.WarnLevel, msg, keyvals) }

func Error(msg string, keyvals ...any) { emit(log.ErrorLevel, msg, keyvals) }

// Fatal logs msg and exits with status 1, with or without a logger.
func Fatal(msg string, keyvals ...any) {
	emit(log.FatalLevel, msg, keyvals)
	os.Exit(1)
}

func emit(level log.Level, msg string, keyvals []any) {
	if Logger != nil {
		Logger.Log(level, msg, keyvals...)
	}
}
