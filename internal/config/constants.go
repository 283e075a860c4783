package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./spreadhub.db"

	// DefaultSpoolDir is where uploads are spooled before import. The import
	// scans its source twice, so uploads must land on disk first.
	DefaultSpoolDir = "./spool"
)
