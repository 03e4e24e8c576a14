package constants

const (
	AppName            = "shareplan"
	Version            = "v0.3.0"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/shareplan"
	DefaultConfigFile  = "config.yaml"
	DefaultStoragePath = "~/.config/shareplan/shareplan.db"

	// DayFormat is the date key layout for Daily and Weekly schedules (YYYY MM DD)
	DayFormat = "2006 01 02"

	// MonthFormat is the date key layout for Monthly schedules (YYYY MM)
	MonthFormat = "2006 01"

	// InstantFormat is the absolute layout every event time is resolved to
	InstantFormat = "2006 01 02 15:04"

	// WeekHours bounds a weekly schedule's window
	WeekHours = 168

	// FirstTemplateID is the id given to the first template ever created
	FirstTemplateID = 10000

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "shareplan-"
	BackupFileSuffix = ".db"

	// Environment overrides
	EnvStorage      = "SHAREPLAN_STORAGE"
	EnvDebug        = "SHAREPLAN_DEBUG"
	EnvDBConnection = "SHAREPLAN_DB_CONNECTION"
)
