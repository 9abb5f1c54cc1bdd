package constants

const (
	AppName           = "habitd"
	DefaultConfigPath = "~/.config/habitd/habitd.db"
	Version           = "v0.1.0"

	// DateFormat is the calendar day format used for progress records (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Keyring entries
	KeyringDBConnection = "database-connection"
	KeyringJWTSecret    = "jwt-secret"

	// Environment variables
	EnvDBConnection = "HABITD_DB_CONNECTION"
	EnvJWTSecret    = "HABITD_JWT_SECRET"
	EnvOwner        = "HABITD_OWNER"
	EnvTimezone     = "HABITD_TIMEZONE"

	// DefaultOwner owns records created from the local CLI and TUI
	DefaultOwner = "local"

	// Backups
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitd-"
	BackupFileSuffix = ".db"

	// ServerLockfileName is written next to the database while `habitd serve` runs
	ServerLockfileName = "habitd-server.lock"

	// DefaultAddr is the listen address for the HTTP API
	DefaultAddr = "127.0.0.1:8088"
)

const (
	// CustomCategoryName holds every user-authored interest
	CustomCategoryName = "Custom"
	CustomCategoryIcon = "✨"
	DefaultCustomIcon  = "⭐"
)
