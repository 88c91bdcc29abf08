package config

// Default paths
const (
	// DefaultSessionsDBPath is the default path for the local session store database
	DefaultSessionsDBPath = "./liber-sessions.db"

	// DefaultTasksDBPath is the default path for the local task queue database
	DefaultTasksDBPath = "./liber-tasks.db"

	// DefaultBackupDir is the default directory for database dumps
	DefaultBackupDir = "./backups"

	// DefaultAssetsDir is the default directory for book cover images
	DefaultAssetsDir = "./assets/images"
)
