package constants

import "time"

// SessionState represents the current tab of the TUI application
type SessionState int

const (
	AppName            = "seasonal"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/seasonal"
	DefaultConfigPath  = "~/.config/seasonal/config.yaml"
	DefaultStorePath   = "~/.config/seasonal/seasonal.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DayLabelFormat renders a schedule day the way the calendar header shows it
	DayLabelFormat = "02/01/2006"

	// Environment overrides
	EnvStore        = "SEASONAL_STORE"
	EnvDBConnection = "SEASONAL_DB_CONNECTION"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "seasonal-"
	BackupFileSuffix = ".json"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "seasonal-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.seasonal"
)

// Session States
const (
	StateCalendar SessionState = iota
	StateCountdowns
	StateSuffixes
	StateGoToDay
	StateEditSuffix
)
