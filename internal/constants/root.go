package constants

import "time"

const (
	AppName           = "jadwal"
	DefaultConfigPath = "~/.config/jadwal/jadwal.db"
	Version           = "v0.3.0"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "jadwal-"
	BackupFileSuffix = ".db"

	// Extraction fallbacks for sections without usable time data
	DefaultSlotDay   = "Sun"
	DefaultSlotStart = "08:00"
	DefaultSlotEnd   = "09:30"

	// SlotIDSeparator joins a course id and a slot index into a slot sub-id
	SlotIDSeparator = "-slot-"

	// Server defaults
	DefaultServerAddr      = "127.0.0.1:8765"
	DefaultExtractCacheTTL = 10 * time.Minute
	MaxPageBytes           = 16 << 20
)
